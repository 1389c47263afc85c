package domain

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

var logger = xlog.NewPackageLogger("letta-mcp-server/internal", "domain")

// ErrTransportClosed is returned when sending on a closed transport.
var ErrTransportClosed = errors.New("transport is closed")

// Transport defines the interface for MCP transport mechanisms.
// Implementations handle communication between MCP clients and the server
// using either stdio or HTTP transport.
type Transport interface {
	// Start begins listening for incoming MCP messages.
	// Returns an error if the transport cannot be initialized.
	Start(ctx context.Context) error

	// Send transmits a JSON-RPC response to the client.
	// Safe for concurrent use.
	Send(response *Response) error

	// Receive returns a channel for incoming JSON-RPC requests.
	// The channel is closed when the peer goes away or the transport is shut down.
	Receive() <-chan *Request

	// Close gracefully shuts down the transport.
	Close() error
}

// StdioTransport implements Transport using stdin/stdout for communication.
// It reads newline-delimited JSON-RPC messages from stdin and writes
// responses to stdout.
type StdioTransport struct {
	reader  *bufio.Reader
	writer  *bufio.Writer
	reqChan chan *Request
	mu      sync.Mutex
	closed  bool
}

// NewStdioTransport creates a new StdioTransport on os.Stdin and os.Stdout.
func NewStdioTransport() *StdioTransport {
	return NewStdioTransportWithIO(os.Stdin, os.Stdout)
}

// NewStdioTransportWithIO creates a new StdioTransport with custom IO streams.
func NewStdioTransportWithIO(reader io.Reader, writer io.Writer) *StdioTransport {
	return &StdioTransport{
		reader:  bufio.NewReader(reader),
		writer:  bufio.NewWriter(writer),
		reqChan: make(chan *Request, 10),
	}
}

// Start spawns the read loop.
func (t *StdioTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTransportClosed
	}
	t.mu.Unlock()

	go t.readLoop(ctx)
	return nil
}

// readLoop reads stdin line by line until EOF, then closes the request channel.
func (t *StdioTransport) readLoop(ctx context.Context) {
	defer close(t.reqChan)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := t.reader.ReadString('\n')
		if err != nil && (line == "" || err != io.EOF) {
			if err != io.EOF {
				logger.KV(xlog.ERROR, "status", "stdin_read_failed", "err", err.Error())
			}
			return
		}

		line = strings.TrimSpace(line)
		if line != "" {
			if req := t.parse(line); req != nil {
				select {
				case t.reqChan <- req:
				case <-ctx.Done():
					return
				}
			}
		}

		if err == io.EOF {
			return
		}
	}
}

// parse decodes a line, answering malformed input directly.
func (t *StdioTransport) parse(line string) *Request {
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		t.sendError(nil, ParseError, "Parse error", err.Error())
		return nil
	}

	if req.JSONRPC != "2.0" {
		t.sendError(req.ID, InvalidRequest, "Invalid Request", "invalid jsonrpc version")
		return nil
	}

	return &req
}

// Send writes a JSON-RPC response to stdout as a single line.
func (t *StdioTransport) Send(response *Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTransportClosed
	}

	if response.JSONRPC == "" {
		response.JSONRPC = "2.0"
	}

	// json.Marshal escapes control characters, so the line never contains a raw newline
	data, err := json.Marshal(response)
	if err != nil {
		return errors.Wrap(err, "failed to marshal response")
	}

	if _, err := t.writer.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, "failed to write response")
	}

	if err := t.writer.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush response")
	}

	return nil
}

// Receive returns the channel for incoming JSON-RPC requests.
func (t *StdioTransport) Receive() <-chan *Request {
	return t.reqChan
}

// Close marks the transport closed. The request channel is closed by the read loop.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	return nil
}

func (t *StdioTransport) sendError(id interface{}, code int, message string, data interface{}) {
	_ = t.Send(&Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

// HTTPTransport implements Transport using HTTP with SSE for communication.
// It exposes:
//   - GET  /mcp          SSE stream for server-to-client messages
//   - POST /mcp/message  client-to-server messages, addressed by sessionId
//   - GET  /health       liveness check
type HTTPTransport struct {
	host    string
	port    int
	server  *http.Server
	router  chi.Router
	reqChan chan *Request
	mu      sync.Mutex
	closed  bool

	sessions   map[string]*sseSession
	sessionsMu sync.RWMutex
}

// sseSession represents an active SSE connection
type sseSession struct {
	id          string
	messageChan chan *Response
	done        chan struct{}
	closeOnce   sync.Once
}

func (s *sseSession) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(host string, port int) *HTTPTransport {
	t := &HTTPTransport{
		host:     host,
		port:     port,
		reqChan:  make(chan *Request, 10),
		sessions: make(map[string]*sseSession),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", t.handleHealth)
	r.Get("/mcp", t.handleSSE)
	r.Post("/mcp/message", t.handleMessage)
	t.router = r

	return t
}

// Handler exposes the HTTP routes, mainly for tests.
func (t *HTTPTransport) Handler() http.Handler {
	return t.router
}

// Start begins the HTTP server and starts listening for incoming requests.
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTransportClosed
	}
	t.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", t.host, t.port),
		Handler:           t.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := t.server
	t.mu.Unlock()

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.KV(xlog.ERROR, "status", "http_listen_failed", "addr", server.Addr, "err", err.Error())
		}
	}()

	go func() {
		<-ctx.Done()
		_ = t.Close()
	}()

	return nil
}

func (t *HTTPTransport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleSSE opens a session and streams responses addressed to it.
func (t *HTTPTransport) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	session := &sseSession{
		id:          uuid.NewString(),
		messageChan: make(chan *Response, 10),
		done:        make(chan struct{}),
	}

	t.sessionsMu.Lock()
	t.sessions[session.id] = session
	t.sessionsMu.Unlock()

	defer func() {
		t.sessionsMu.Lock()
		delete(t.sessions, session.id)
		t.sessionsMu.Unlock()
		session.close()
	}()

	// tell the client where to post its messages
	fmt.Fprintf(w, "event: endpoint\ndata: /mcp/message?sessionId=%s\n\n", session.id)
	flusher.Flush()

	logger.KV(xlog.DEBUG, "status", "sse_session_opened", "session", session.id, "remote", r.RemoteAddr)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.KV(xlog.DEBUG, "status", "sse_session_closed", "session", session.id)
			return
		case <-session.done:
			return
		case response := <-session.messageChan:
			data, err := json.Marshal(response)
			if err != nil {
				logger.KV(xlog.ERROR, "status", "sse_marshal_failed", "session", session.id, "err", err.Error())
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

// handleMessage accepts a JSON-RPC request for an open session.
func (t *HTTPTransport) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "Missing sessionId parameter", http.StatusBadRequest)
		return
	}

	t.sessionsMu.RLock()
	session, exists := t.sessions[sessionID]
	t.sessionsMu.RUnlock()
	if !exists {
		http.Error(w, "Invalid session", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		t.sendErrorToSession(session, nil, ParseError, "Parse error", err.Error())
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if req.JSONRPC != "2.0" {
		t.sendErrorToSession(session, req.ID, InvalidRequest, "Invalid Request", "invalid jsonrpc version")
		w.WriteHeader(http.StatusAccepted)
		return
	}
	req.SessionID = sessionID

	// the closed check and the enqueue share the lock so Close never races a send
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}

	select {
	case t.reqChan <- &req:
		w.WriteHeader(http.StatusAccepted)
	default:
		t.sendErrorToSession(session, req.ID, InternalError, "Internal error", "request queue full")
		w.WriteHeader(http.StatusServiceUnavailable)
	}
}

// sendErrorToSession sends an error response to a specific session.
func (t *HTTPTransport) sendErrorToSession(session *sseSession, id interface{}, code int, message string, data interface{}) {
	response := &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}

	select {
	case session.messageChan <- response:
	default:
		logger.KV(xlog.WARNING, "status", "sse_channel_full", "session", session.id)
	}
}

// Send delivers the response to the session that issued the request,
// or to every session when the response carries no session.
// A full session buffer blocks Send until the stream drains it or the session ends.
func (t *HTTPTransport) Send(response *Response) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrTransportClosed
	}

	if response.JSONRPC == "" {
		response.JSONRPC = "2.0"
	}

	var targets []*sseSession
	t.sessionsMu.RLock()
	if response.SessionID != "" {
		if session, ok := t.sessions[response.SessionID]; ok {
			targets = append(targets, session)
		}
	} else {
		for _, session := range t.sessions {
			targets = append(targets, session)
		}
	}
	t.sessionsMu.RUnlock()

	if len(targets) == 0 {
		if response.SessionID != "" {
			return errors.Newf("session %s is gone", response.SessionID)
		}
		return errors.New("no active sessions")
	}

	var err error
	for _, session := range targets {
		select {
		case session.messageChan <- response:
		case <-session.done:
			logger.KV(xlog.WARNING, "status", "sse_session_gone", "session", session.id)
			err = errors.CombineErrors(err, errors.Newf("session %s closed before the response was delivered", session.id))
		}
	}

	return err
}

// Receive returns the channel for incoming JSON-RPC requests.
func (t *HTTPTransport) Receive() <-chan *Request {
	return t.reqChan
}

// Close gracefully shuts down the HTTP server and all SSE sessions.
func (t *HTTPTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	server := t.server
	t.mu.Unlock()

	t.sessionsMu.Lock()
	for _, session := range t.sessions {
		session.close()
	}
	t.sessions = make(map[string]*sseSession)
	t.sessionsMu.Unlock()

	var err error
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = server.Shutdown(ctx)
	}

	close(t.reqChan)
	return err
}
