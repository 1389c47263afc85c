package application

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"letta-mcp-server/internal/domain"
)

// Server is the main MCP server implementation.
// It orchestrates the transport layer and request routing,
// and implements the MCP protocol methods.
type Server struct {
	transport domain.Transport
	router    *RequestRouter
	config    *domain.Config

	inflight sync.WaitGroup
}

// NewServer creates a new MCP server instance.
func NewServer(transport domain.Transport, router *RequestRouter, config *domain.Config) *Server {
	return &Server{
		transport: transport,
		router:    router,
		config:    config,
	}
}

// Run starts the transport and serves requests until the inbound channel
// closes or ctx is cancelled. In-flight tool calls are drained before it returns.
func (s *Server) Run(ctx context.Context) error {
	if err := s.transport.Start(ctx); err != nil {
		logger.KV(xlog.ERROR,
			"status", "transport_start_failed",
			"transport", s.config.Transport.Type,
			"err", err.Error(),
		)
		return errors.Wrap(err, "failed to start transport")
	}

	logger.KV(xlog.INFO,
		"status", "server_started",
		"transport", s.config.Transport.Type,
		"server", domain.ServerName,
		"version", domain.ServerVersion,
	)

	s.processRequests(ctx)
	s.inflight.Wait()

	logger.KV(xlog.INFO, "status", "server_stopped")
	return nil
}

// processRequests consumes inbound requests until the channel closes.
func (s *Server) processRequests(ctx context.Context) {
	reqChan := s.transport.Receive()

	for {
		select {
		case <-ctx.Done():
			logger.KV(xlog.INFO, "status", "server_shutting_down")
			return
		case req, ok := <-reqChan:
			if !ok {
				return
			}
			s.handleRequest(ctx, req)
		}
	}
}

// handleRequest processes a single JSON-RPC message.
// tools/call runs on its own goroutine so a slow remote call does not block the channel.
func (s *Server) handleRequest(ctx context.Context, req *domain.Request) {
	logger.KV(xlog.DEBUG, "method", req.Method, "request_id", req.ID)

	if req.IsNotification() {
		logger.KV(xlog.DEBUG, "status", "notification", "method", req.Method)
		return
	}

	if err := s.validateRequest(req); err != nil {
		s.sendErrorResponse(req, domain.InvalidRequest, "Invalid Request", err.Error())
		return
	}

	switch req.Method {
	case "initialize":
		s.send(req, s.handleInitialize(req))
	case "ping":
		s.send(req, map[string]interface{}{})
	case "tools/list":
		s.send(req, map[string]interface{}{"tools": s.router.ListAllTools()})
	case "tools/call":
		toolReq, err := s.parseToolRequest(req.Params)
		if err != nil {
			s.sendErrorResponse(req, domain.InvalidParams, "Invalid params", err.Error())
			return
		}
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			s.send(req, s.router.Route(ctx, toolReq))
		}()
	default:
		s.sendErrorResponse(req, domain.MethodNotFound, "Method not found", fmt.Sprintf("unknown method: %s", req.Method))
	}
}

// validateRequest validates the basic structure of a JSON-RPC request.
func (s *Server) validateRequest(req *domain.Request) error {
	if req.JSONRPC != "2.0" {
		return errors.Newf("invalid jsonrpc version: %s", req.JSONRPC)
	}

	if req.Method == "" {
		return errors.New("method is required")
	}

	return nil
}

// handleInitialize answers the MCP handshake.
// The client's protocol version is echoed when supported.
func (s *Server) handleInitialize(req *domain.Request) map[string]interface{} {
	version := domain.DefaultProtocolVersion
	if params, ok := req.Params.(map[string]interface{}); ok {
		if requested, ok := params["protocolVersion"].(string); ok && slices.Contains(domain.SupportedProtocolVersions, requested) {
			version = requested
		}
	}

	return map[string]interface{}{
		"protocolVersion": version,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    domain.ServerName,
			"version": domain.ServerVersion,
		},
	}
}

// parseToolRequest parses the params field into a ToolRequest.
func (s *Server) parseToolRequest(params interface{}) (*domain.ToolRequest, error) {
	if params == nil {
		return nil, errors.New("params is required for tools/call")
	}

	// Convert params to JSON and back to ToolRequest
	// This handles both map[string]interface{} and already-parsed structs
	jsonData, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal params")
	}

	var toolReq domain.ToolRequest
	if err := json.Unmarshal(jsonData, &toolReq); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal tool request")
	}

	if strings.TrimSpace(toolReq.Name) == "" {
		return nil, errors.New("tool name is required")
	}

	if toolReq.Arguments == nil {
		toolReq.Arguments = make(map[string]interface{})
	}

	return &toolReq, nil
}

func (s *Server) send(req *domain.Request, result interface{}) {
	s.write(&domain.Response{
		JSONRPC:   "2.0",
		ID:        req.ID,
		Result:    result,
		SessionID: req.SessionID,
	})
}

// sendErrorResponse sends a JSON-RPC error response.
func (s *Server) sendErrorResponse(req *domain.Request, code int, message string, data interface{}) {
	s.write(&domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Error: &domain.Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		SessionID: req.SessionID,
	})
}

func (s *Server) write(response *domain.Response) {
	if err := s.transport.Send(response); err != nil {
		logger.KV(xlog.ERROR,
			"status", "send_failed",
			"request_id", response.ID,
			"err", err.Error(),
		)
	}
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	logger.KV(xlog.INFO, "status", "closing_server")
	return s.transport.Close()
}
