package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letta-mcp-server/internal/domain"
)

func sampleAgents(n int) []domain.Agent {
	agents := make([]domain.Agent, n)
	for i := range agents {
		agents[i] = domain.Agent{
			ID:        fmt.Sprintf("agent-%d", i),
			Name:      fmt.Sprintf("agent %d", i),
			LLMConfig: &domain.LLMConfig{Model: "openai/gpt-4o-mini"},
		}
	}
	return agents
}

func TestTools_CatalogOrder(t *testing.T) {
	router := newTestRouter(&fakeClient{}, "")

	var names []string
	for _, def := range router.ListAllTools() {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Description)
		assert.Equal(t, "object", def.InputSchema.Type)
	}

	assert.Equal(t, []string{
		ToolListAgents, ToolGetAgent, ToolSendMessage,
		ToolListMemoryBlocks, ToolGetMemoryBlock, ToolUpdateMemoryBlock,
		ToolSearchMemory, ToolAddToArchival,
	}, names)
}

func TestValidation_NamesMissingField(t *testing.T) {
	tests := []struct {
		tool  string
		args  map[string]interface{}
		field string
	}{
		{tool: ToolSendMessage, args: map[string]interface{}{"agent_id": "agent-1"}, field: "message"},
		{tool: ToolGetMemoryBlock, args: map[string]interface{}{"agent_id": "agent-1"}, field: "label"},
		{tool: ToolUpdateMemoryBlock, args: map[string]interface{}{"value": "x"}, field: "block_id"},
		{tool: ToolUpdateMemoryBlock, args: map[string]interface{}{"block_id": "block-1"}, field: "value"},
		{tool: ToolSearchMemory, args: map[string]interface{}{"agent_id": "agent-1"}, field: "query"},
		{tool: ToolAddToArchival, args: map[string]interface{}{"agent_id": "agent-1"}, field: "content"},
		{tool: ToolSendMessage, args: map[string]interface{}{"agent_id": "agent-1", "message": nil}, field: "message"},
	}

	for _, tt := range tests {
		t.Run(tt.tool+"/"+tt.field, func(t *testing.T) {
			client := &fakeClient{}
			envelope := decodeEnvelope(t, call(t, newTestRouter(client, ""), tt.tool, tt.args))

			assert.Equal(t, domain.InvalidParams, envelope.Code)
			assert.Equal(t, fmt.Sprintf("Validation error: %s: %s is required", tt.field, tt.field), envelope.Message)
			assert.Zero(t, client.callCount(), "validation failures never reach the platform")
		})
	}
}

func TestValidation_WrongType(t *testing.T) {
	client := &fakeClient{agents: sampleAgents(3)}
	envelope := decodeEnvelope(t, call(t, newTestRouter(client, ""), ToolListAgents, map[string]interface{}{"limit": "ten"}))

	assert.Equal(t, domain.InvalidParams, envelope.Code)
	assert.Equal(t, "Validation error: limit: expected number, received string", envelope.Message)
	assert.Zero(t, client.callCount())
}

func TestAgentResolution(t *testing.T) {
	tools := []struct {
		name string
		args map[string]interface{}
	}{
		{name: ToolGetAgent},
		{name: ToolSendMessage, args: map[string]interface{}{"message": "hi"}},
		{name: ToolListMemoryBlocks},
		{name: ToolGetMemoryBlock, args: map[string]interface{}{"label": "human"}},
		{name: ToolSearchMemory, args: map[string]interface{}{"query": "tea"}},
		{name: ToolAddToArchival, args: map[string]interface{}{"content": "tea"}},
	}

	for _, tool := range tools {
		t.Run(tool.name+"/missing", func(t *testing.T) {
			client := &fakeClient{}
			envelope := decodeEnvelope(t, call(t, newTestRouter(client, ""), tool.name, tool.args))

			assert.Equal(t, domain.InvalidParams, envelope.Code)
			assert.Equal(t, domain.ErrMissingAgentID.Error(), envelope.Message)
			assert.Zero(t, client.callCount())
		})

		t.Run(tool.name+"/default", func(t *testing.T) {
			client := &fakeClient{
				agents:   sampleAgents(1),
				blocks:   []domain.Block{{ID: "block-1", Label: "human", Value: "Sam"}},
				reply:    &domain.MessageResponse{},
				search:   &domain.PassageSearchResponse{},
				passages: domain.PassageList{{ID: "passage-1"}},
			}
			client.agents[0].ID = "agent-default"

			resp := call(t, newTestRouter(client, "agent-default"), tool.name, tool.args)
			assert.False(t, resp.IsError, resp.Content[0].Text)
			assert.Equal(t, "agent-default", client.lastAgentID)
		})

		t.Run(tool.name+"/explicit", func(t *testing.T) {
			client := &fakeClient{
				agents:   sampleAgents(1),
				blocks:   []domain.Block{{ID: "block-1", Label: "human", Value: "Sam"}},
				reply:    &domain.MessageResponse{},
				search:   &domain.PassageSearchResponse{},
				passages: domain.PassageList{{ID: "passage-1"}},
			}

			args := map[string]interface{}{"agent_id": "agent-0"}
			for k, v := range tool.args {
				args[k] = v
			}
			resp := call(t, newTestRouter(client, "agent-default"), tool.name, args)
			assert.False(t, resp.IsError, resp.Content[0].Text)
			assert.Equal(t, "agent-0", client.lastAgentID)
		})
	}
}

func TestMissingAPIKey_IsConfigurationError(t *testing.T) {
	mapper := domain.NewResponseMapper()
	handler := NewLettaHandler(&fakeProvider{err: errMissingKey}, "agent-1", mapper)
	router := NewRequestRouter(mapper, handler.Tools()...)

	envelope := decodeEnvelope(t, call(t, router, ToolListAgents, nil))
	assert.Equal(t, domain.ConfigurationError, envelope.Code)
	assert.Equal(t, "LETTA_API_KEY environment variable is required", envelope.Message)

	// validation still runs first
	envelope = decodeEnvelope(t, call(t, router, ToolSendMessage, nil))
	assert.Equal(t, domain.InvalidParams, envelope.Code)
}

func TestListAgents(t *testing.T) {
	t.Run("limit caps the result and stops iteration", func(t *testing.T) {
		client := &fakeClient{agents: sampleAgents(5)}

		var agents []domain.AgentSummary
		decodeText(t, call(t, newTestRouter(client, ""), ToolListAgents, map[string]interface{}{"limit": 2}), &agents)

		require.Len(t, agents, 2)
		assert.Equal(t, "agent-0", agents[0].ID)
		assert.Equal(t, "openai/gpt-4o-mini", agents[0].Model)
		assert.Equal(t, 2, client.consumed)
		assert.Equal(t, 2, client.lastPageSize)
	})

	t.Run("huge limit is bounded", func(t *testing.T) {
		client := &fakeClient{agents: sampleAgents(120)}

		resp := call(t, newTestRouter(client, ""), ToolListAgents, map[string]interface{}{"limit": 1e15})
		require.False(t, resp.IsError, resp.Content[0].Text)

		var agents []domain.AgentSummary
		decodeText(t, resp, &agents)
		assert.Len(t, agents, 120)
		assert.Equal(t, domain.MaxAgentPageSize, client.lastPageSize)
	})

	t.Run("fractional limit is truncated", func(t *testing.T) {
		client := &fakeClient{agents: sampleAgents(5)}

		var agents []domain.AgentSummary
		decodeText(t, call(t, newTestRouter(client, ""), ToolListAgents, map[string]interface{}{"limit": 2.5}), &agents)
		assert.Len(t, agents, 2)
	})

	t.Run("default limit", func(t *testing.T) {
		client := &fakeClient{agents: sampleAgents(60)}

		var agents []domain.AgentSummary
		decodeText(t, call(t, newTestRouter(client, ""), ToolListAgents, nil), &agents)
		assert.Len(t, agents, domain.DefaultAgentListLimit)
	})

	t.Run("empty account", func(t *testing.T) {
		resp := call(t, newTestRouter(&fakeClient{}, ""), ToolListAgents, nil)
		assert.Equal(t, "[]", resp.Content[0].Text)
	})

	t.Run("negative limit is rejected", func(t *testing.T) {
		envelope := decodeEnvelope(t, call(t, newTestRouter(&fakeClient{}, ""), ToolListAgents, map[string]interface{}{"limit": -1}))
		assert.Equal(t, "Validation error: limit: limit must be greater than or equal to 0", envelope.Message)
	})

	t.Run("remote failure", func(t *testing.T) {
		client := &fakeClient{err: domain.NewHTTPError(401, "Unauthorized", `{"detail":"bad key"}`)}
		envelope := decodeEnvelope(t, call(t, newTestRouter(client, ""), ToolListAgents, nil))
		assert.Equal(t, domain.AuthenticationError, envelope.Code)
		assert.JSONEq(t, `{"detail":"bad key"}`, mustJSON(t, envelope.Details))
	})
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestGetAgent(t *testing.T) {
	long := strings.Repeat("a", 250)
	client := &fakeClient{agents: []domain.Agent{{
		ID:              "agent-1",
		Name:            "helper",
		LLMConfig:       &domain.LLMConfig{Model: "gpt-4o"},
		EmbeddingConfig: &domain.EmbeddingConfig{EmbeddingModel: "text-embedding-3-small"},
		Memory: &domain.Memory{Blocks: []domain.Block{
			{ID: "block-1", Label: "persona", Value: long},
			{ID: "block-2", Label: "human", Value: "Sam"},
		}},
		Tools: []domain.AgentTool{{Name: "archival_memory_search"}, {Name: "send_message"}},
	}}}

	var detail domain.AgentDetail
	decodeText(t, call(t, newTestRouter(client, ""), ToolGetAgent, map[string]interface{}{"agent_id": "agent-1"}), &detail)

	assert.Equal(t, "gpt-4o", detail.Model)
	assert.Equal(t, "text-embedding-3-small", detail.Embedding)
	assert.Equal(t, []string{"archival_memory_search", "send_message"}, detail.Tools)
	require.Len(t, detail.MemoryBlocks, 2)
	assert.Equal(t, strings.Repeat("a", 200)+"...", detail.MemoryBlocks[0].ValuePreview)
	assert.Equal(t, "Sam", detail.MemoryBlocks[1].ValuePreview)
}

func TestGetAgent_NotFound(t *testing.T) {
	envelope := decodeEnvelope(t, call(t, newTestRouter(&fakeClient{}, ""), ToolGetAgent, map[string]interface{}{"agent_id": "missing"}))

	assert.Equal(t, domain.APIError, envelope.Code)
	assert.Equal(t, "Resource not found: HTTP 404 Not Found", envelope.Message)
}

func TestSendMessage(t *testing.T) {
	var reply domain.MessageResponse
	require.NoError(t, json.Unmarshal([]byte(`{
	  "messages": [
	    {"message_type": "reasoning_message", "reasoning": "thinking"},
	    {"message_type": "tool_call_message", "tool_call": {"name": "core_memory_replace", "arguments": "{}"}},
	    {"message_type": "tool_return_message", "tool_return": "ok"},
	    {"message_type": "assistant_message", "content": "done"},
	    {"message_type": "hidden_message", "id": "m5"}
	  ],
	  "usage": {"total_tokens": 12}
	}`), &reply))

	client := &fakeClient{reply: &reply}
	resp := call(t, newTestRouter(client, ""), ToolSendMessage, map[string]interface{}{
		"agent_id": "agent-1",
		"message":  "I prefer tea",
	})

	assert.Equal(t, "I prefer tea", client.lastText)

	var result struct {
		AgentID  string                   `json:"agent_id"`
		Messages []map[string]interface{} `json:"messages"`
		Usage    map[string]interface{}   `json:"usage"`
	}
	decodeText(t, resp, &result)

	assert.Equal(t, "agent-1", result.AgentID)
	require.Len(t, result.Messages, 5)
	assert.Equal(t, map[string]interface{}{"type": "reasoning", "content": "thinking"}, result.Messages[0])
	assert.Equal(t, map[string]interface{}{"type": "tool_call", "name": "core_memory_replace", "arguments": "{}"}, result.Messages[1])
	assert.Equal(t, map[string]interface{}{"type": "tool_return", "content": "ok"}, result.Messages[2])
	assert.Equal(t, map[string]interface{}{"type": "assistant", "content": "done"}, result.Messages[3])
	assert.Equal(t, "hidden_message", result.Messages[4]["type"])
	assert.Equal(t, map[string]interface{}{"message_type": "hidden_message", "id": "m5"}, result.Messages[4]["raw"])
	assert.Equal(t, float64(12), result.Usage["total_tokens"])
}

func TestSendMessage_NoUsage(t *testing.T) {
	client := &fakeClient{reply: &domain.MessageResponse{}}
	resp := call(t, newTestRouter(client, "agent-1"), ToolSendMessage, map[string]interface{}{"message": "hi"})

	var result map[string]interface{}
	decodeText(t, resp, &result)
	assert.NotContains(t, result, "usage")
	assert.Equal(t, []interface{}{}, result["messages"])
}

func TestMemoryBlocks(t *testing.T) {
	limit := 5000
	client := &fakeClient{blocks: []domain.Block{
		{ID: "block-1", Label: "persona", Description: "who I am", Limit: &limit, Value: "helpful"},
		{ID: "block-2", Label: "human", Value: "Sam"},
	}}
	router := newTestRouter(client, "agent-1")

	t.Run("list", func(t *testing.T) {
		var blocks []domain.BlockView
		decodeText(t, call(t, router, ToolListMemoryBlocks, nil), &blocks)

		require.Len(t, blocks, 2)
		assert.Equal(t, "persona", blocks[0].Label)
		require.NotNil(t, blocks[0].Limit)
		assert.Equal(t, 5000, *blocks[0].Limit)
		assert.Equal(t, "Sam", blocks[1].Value)
	})

	t.Run("get", func(t *testing.T) {
		var block domain.BlockView
		decodeText(t, call(t, router, ToolGetMemoryBlock, map[string]interface{}{"label": "human"}), &block)
		assert.Equal(t, domain.BlockView{ID: "block-2", Label: "human", Value: "Sam"}, block)
	})

	t.Run("get unknown label", func(t *testing.T) {
		envelope := decodeEnvelope(t, call(t, router, ToolGetMemoryBlock, map[string]interface{}{"label": "project"}))
		assert.Equal(t, domain.APIError, envelope.Code)
	})

	t.Run("update needs no agent", func(t *testing.T) {
		client := &fakeClient{}
		resp := call(t, newTestRouter(client, ""), ToolUpdateMemoryBlock, map[string]interface{}{
			"block_id": "block-2",
			"value":    "Sam likes tea",
		})

		var result domain.UpdateBlockResult
		decodeText(t, resp, &result)
		assert.True(t, result.Success)
		assert.Equal(t, domain.UpdatedBlock{ID: "block-2", Label: "human", Value: "Sam likes tea"}, result.Block)
	})

	t.Run("update with an empty value clears the block", func(t *testing.T) {
		client := &fakeClient{}
		resp := call(t, newTestRouter(client, ""), ToolUpdateMemoryBlock, map[string]interface{}{
			"block_id": "block-2",
			"value":    "",
		})
		require.False(t, resp.IsError, resp.Content[0].Text)

		var result domain.UpdateBlockResult
		decodeText(t, resp, &result)
		assert.True(t, result.Success)
		assert.Equal(t, "block-2", result.Block.ID)
		assert.Empty(t, result.Block.Value)
		assert.Equal(t, 1, client.callCount())
	})

	t.Run("empty list", func(t *testing.T) {
		resp := call(t, newTestRouter(&fakeClient{}, "agent-1"), ToolListMemoryBlocks, nil)
		assert.Equal(t, "[]", resp.Content[0].Text)
	})
}

func TestSearchMemory(t *testing.T) {
	client := &fakeClient{search: &domain.PassageSearchResponse{
		Count: 2,
		Results: []domain.PassageSearchResult{
			{Content: "likes tea", Timestamp: "2025-01-01T00:00:00Z", Tags: []string{"prefs"}},
			{Content: "met Alex"},
		},
	}}
	router := newTestRouter(client, "agent-1")

	var result domain.SearchResult
	decodeText(t, call(t, router, ToolSearchMemory, map[string]interface{}{"query": "drinks"}), &result)

	assert.Equal(t, domain.DefaultSearchLimit, client.lastTopK)
	assert.Equal(t, "drinks", result.Query)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Results, 2)
	assert.Equal(t, []string{"prefs"}, result.Results[0].Tags)

	call(t, router, ToolSearchMemory, map[string]interface{}{"query": "drinks", "limit": 3})
	assert.Equal(t, 3, client.lastTopK)
}

func TestAddToArchival(t *testing.T) {
	tests := []struct {
		name     string
		passages domain.PassageList
		want     domain.CreatedPassage
	}{
		{
			name:     "single passage",
			passages: domain.PassageList{{ID: "passage-1", Text: "likes tea", CreatedAt: "2025-01-01T00:00:00Z"}},
			want:     domain.CreatedPassage{ID: "passage-1", Text: "likes tea", CreatedAt: "2025-01-01T00:00:00Z"},
		},
		{
			name:     "first of several",
			passages: domain.PassageList{{ID: "passage-1", Text: "a"}, {ID: "passage-2", Text: "b"}},
			want:     domain.CreatedPassage{ID: "passage-1", Text: "a"},
		},
		{
			name: "nothing created",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{passages: tt.passages}
			resp := call(t, newTestRouter(client, "agent-1"), ToolAddToArchival, map[string]interface{}{"content": "likes tea"})

			var result domain.AddPassageResult
			decodeText(t, resp, &result)
			assert.True(t, result.Success)
			assert.Equal(t, tt.want, result.Passage)
			assert.Equal(t, "likes tea", client.lastText)
			assert.Equal(t, 1, client.callCount(), "one remote call per insert")
		})
	}
}

func TestGetHandler(t *testing.T) {
	client := &fakeClient{agents: sampleAgents(1)}
	router := newTestRouter(client, "")

	handler, ok := router.GetHandler(ToolListAgents)
	require.True(t, ok)
	assert.Equal(t, ToolListAgents, handler.Definition().Name)

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{Name: ToolListAgents, Arguments: map[string]interface{}{}})
	require.NoError(t, err)
	assert.False(t, resp.IsError)

	_, err = handler.Handle(context.Background(), &domain.ToolRequest{Name: ToolListAgents, Arguments: map[string]interface{}{"limit": true}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("limit"))

	_, ok = router.GetHandler("delete_agent")
	assert.False(t, ok)
}
