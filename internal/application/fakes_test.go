package application

import (
	"context"
	"encoding/json"
	"iter"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"letta-mcp-server/internal/domain"
)

// fakeClient is an in-memory domain.AgentPlatformClient recording every call.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	agents   []domain.Agent
	blocks   []domain.Block
	reply    *domain.MessageResponse
	search   *domain.PassageSearchResponse
	passages domain.PassageList
	err      error

	// consumed counts agents handed to the consumer of ListAgents
	consumed int

	lastAgentID  string
	lastText     string
	lastTopK     int
	lastPageSize int
}

var _ domain.AgentPlatformClient = (*fakeClient)(nil)

func (f *fakeClient) record(call, agentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.lastAgentID = agentID
}

func (f *fakeClient) BaseURL() string { return "https://letta.test" }

func (f *fakeClient) ListAgents(_ context.Context, pageSize int) iter.Seq2[domain.Agent, error] {
	f.record("ListAgents", "")
	f.lastPageSize = pageSize
	return func(yield func(domain.Agent, error) bool) {
		if f.err != nil {
			yield(domain.Agent{}, f.err)
			return
		}
		for _, a := range f.agents {
			f.consumed++
			if !yield(a, nil) {
				return
			}
		}
	}
}

func (f *fakeClient) GetAgent(_ context.Context, agentID string) (*domain.Agent, error) {
	f.record("GetAgent", agentID)
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.agents {
		if a.ID == agentID {
			return &a, nil
		}
	}
	return nil, domain.NewHTTPError(404, "Not Found", `{"detail":"Agent not found"}`)
}

func (f *fakeClient) SendMessage(_ context.Context, agentID, text string) (*domain.MessageResponse, error) {
	f.record("SendMessage", agentID)
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeClient) ListBlocks(_ context.Context, agentID string) iter.Seq2[domain.Block, error] {
	f.record("ListBlocks", agentID)
	return func(yield func(domain.Block, error) bool) {
		if f.err != nil {
			yield(domain.Block{}, f.err)
			return
		}
		for _, b := range f.blocks {
			if !yield(b, nil) {
				return
			}
		}
	}
}

func (f *fakeClient) GetBlock(_ context.Context, agentID, label string) (*domain.Block, error) {
	f.record("GetBlock", agentID)
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.blocks {
		if b.Label == label {
			return &b, nil
		}
	}
	return nil, domain.NewHTTPError(404, "Not Found", "")
}

func (f *fakeClient) UpdateBlock(_ context.Context, blockID, value string) (*domain.Block, error) {
	f.record("UpdateBlock", "")
	f.lastText = value
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Block{ID: blockID, Label: "human", Value: value}, nil
}

func (f *fakeClient) SearchPassages(_ context.Context, agentID, query string, topK int) (*domain.PassageSearchResponse, error) {
	f.record("SearchPassages", agentID)
	f.lastText = query
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.search, nil
}

func (f *fakeClient) CreatePassage(_ context.Context, agentID, text string) (domain.PassageList, error) {
	f.record("CreatePassage", agentID)
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeProvider hands out a fixed client or a fixed error.
type fakeProvider struct {
	client *fakeClient
	err    error
}

func (p *fakeProvider) Client(context.Context) (domain.AgentPlatformClient, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.client, nil
}

var errMissingKey = &domain.ConfigError{Message: "LETTA_API_KEY environment variable is required"}

// newTestRouter wires the Letta tools around the given client.
func newTestRouter(client *fakeClient, defaultAgentID string) *RequestRouter {
	mapper := domain.NewResponseMapper()
	handler := NewLettaHandler(&fakeProvider{client: client}, defaultAgentID, mapper)
	return NewRequestRouter(mapper, handler.Tools()...)
}

func call(t *testing.T, router *RequestRouter, name string, args map[string]interface{}) *domain.ToolResponse {
	t.Helper()
	if args == nil {
		args = map[string]interface{}{}
	}
	resp := router.Route(context.Background(), &domain.ToolRequest{Name: name, Arguments: args})
	require.NotNil(t, resp)
	require.Len(t, resp.Content, 1)
	require.Equal(t, "text", resp.Content[0].Type)
	return resp
}

// decodeText unmarshals the text block of a successful response into v.
func decodeText(t *testing.T, resp *domain.ToolResponse, v interface{}) {
	t.Helper()
	require.False(t, resp.IsError, resp.Content[0].Text)
	require.NoError(t, json.Unmarshal([]byte(resp.Content[0].Text), v))
}

// decodeEnvelope unmarshals the error envelope of a failed response.
func decodeEnvelope(t *testing.T, resp *domain.ToolResponse) domain.ErrorEnvelope {
	t.Helper()
	require.True(t, resp.IsError, resp.Content[0].Text)

	var envelope domain.ErrorEnvelope
	require.NoError(t, json.Unmarshal([]byte(resp.Content[0].Text), &envelope))
	require.True(t, envelope.Error)
	return envelope
}
