package application

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"letta-mcp-server/internal/domain"
)

var logger = xlog.NewPackageLogger("letta-mcp-server/internal", "application")

// RequestRouter dispatches MCP tool requests to the appropriate ToolHandler.
// Tools are matched by exact name; the catalog keeps registration order.
type RequestRouter struct {
	handlers map[string]domain.ToolHandler
	order    []string
	mapper   domain.ResponseMapper
}

// NewRequestRouter creates a new RequestRouter with the provided handlers.
// Handlers are registered by their definition name.
func NewRequestRouter(mapper domain.ResponseMapper, handlers ...domain.ToolHandler) *RequestRouter {
	router := &RequestRouter{
		handlers: make(map[string]domain.ToolHandler, len(handlers)),
		mapper:   mapper,
	}

	for _, handler := range handlers {
		name := handler.Definition().Name
		if _, exists := router.handlers[name]; !exists {
			router.order = append(router.order, name)
		}
		router.handlers[name] = handler
	}

	return router
}

// Route dispatches a tool request to its handler.
// It never fails: unknown tools, handler errors and handler panics are
// returned as error envelopes.
func (r *RequestRouter) Route(ctx context.Context, req *domain.ToolRequest) (resp *domain.ToolResponse) {
	handler, exists := r.handlers[req.Name]
	if !exists {
		logger.ContextKV(ctx, xlog.WARNING, "status", "unknown_tool", "tool", req.Name)
		return r.mapper.MapError(&domain.UnknownToolError{Name: req.Name})
	}

	defer func() {
		if p := recover(); p != nil {
			logger.ContextKV(ctx, xlog.ERROR, "status", "tool_panicked", "tool", req.Name, "panic", fmt.Sprint(p))
			resp = r.mapper.MapError(errors.Newf("tool %s failed: %v", req.Name, p))
		}
	}()

	resp, err := handler.Handle(ctx, req)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "status", "tool_failed", "tool", req.Name, "err", err.Error())
		return r.mapper.MapError(err)
	}

	return resp
}

// ListAllTools returns the tool definitions in registration order.
// This is used for MCP tool discovery (tools/list method).
func (r *RequestRouter) ListAllTools() []domain.ToolDefinition {
	tools := make([]domain.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.handlers[name].Definition())
	}
	return tools
}

// GetHandler returns the handler for a specific tool name.
// This is useful for testing and debugging.
func (r *RequestRouter) GetHandler(toolName string) (domain.ToolHandler, bool) {
	handler, exists := r.handlers[toolName]
	return handler, exists
}
