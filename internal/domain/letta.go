package domain

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Agent is the subset of the Letta AgentState this server reads.
type Agent struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	LLMConfig       *LLMConfig       `json:"llm_config,omitempty"`
	EmbeddingConfig *EmbeddingConfig `json:"embedding_config,omitempty"`
	Memory          *Memory          `json:"memory,omitempty"`
	Tools           []AgentTool      `json:"tools,omitempty"`
	CreatedAt       string           `json:"created_at,omitempty"`
}

// LLMConfig holds the model an agent runs on.
type LLMConfig struct {
	Model string `json:"model"`
}

// EmbeddingConfig holds the embedding model of an agent.
type EmbeddingConfig struct {
	EmbeddingModel string `json:"embedding_model"`
}

// Memory is the in-context memory of an agent.
type Memory struct {
	Blocks []Block `json:"blocks"`
}

// AgentTool is a tool attached to an agent.
type AgentTool struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Block is a labeled unit of core memory.
type Block struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Limit       *int   `json:"limit,omitempty"`
	Value       string `json:"value"`
}

// BlockUpdate is the body of a block modification.
type BlockUpdate struct {
	Value string `json:"value"`
}

// MessageCreate is a single input message.
type MessageCreate struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessageCreateRequest is the body of a send-message call.
type MessageCreateRequest struct {
	Messages []MessageCreate `json:"messages"`
}

// MessageResponse is the result of a send-message call.
type MessageResponse struct {
	Messages []Message      `json:"messages"`
	Usage    json.RawMessage `json:"usage,omitempty"`
}

// Message is one entry of an agent response, discriminated by MessageType.
// Raw keeps the undecoded payload for message types this server does not reshape.
type Message struct {
	MessageType string          `json:"message_type"`
	Reasoning   json.RawMessage `json:"reasoning,omitempty"`
	Content     json.RawMessage `json:"content,omitempty"`
	ToolCall    *ToolCall       `json:"tool_call,omitempty"`
	ToolReturn  json.RawMessage `json:"tool_return,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and retains the raw payload.
func (m *Message) UnmarshalJSON(data []byte) error {
	type message Message
	var decoded message
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*m = Message(decoded)
	m.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// ToolCall is the function invocation carried by a tool_call_message.
type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// PassageCreate is the body of an archival insert.
type PassageCreate struct {
	Text string `json:"text"`
}

// Passage is an archival memory record.
type Passage struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at,omitempty"`
}

// PassageList accepts either a single passage object or an array of passages.
type PassageList []Passage

// UnmarshalJSON implements json.Unmarshaler.
func (l *PassageList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*l = nil
		return nil
	case trimmed[0] == '[':
		var list []Passage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return errors.Wrap(err, "failed to decode passage list")
		}
		*l = list
		return nil
	default:
		var single Passage
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return errors.Wrap(err, "failed to decode passage")
		}
		*l = PassageList{single}
		return nil
	}
}

// First returns the first passage, or nil for an empty list.
func (l PassageList) First() *Passage {
	if len(l) == 0 {
		return nil
	}
	return &l[0]
}

// PassageSearchResponse is the result of an archival search.
type PassageSearchResponse struct {
	Results []PassageSearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// PassageSearchResult is a single archival search hit.
type PassageSearchResult struct {
	Content   string   `json:"content"`
	Timestamp string   `json:"timestamp,omitempty"`
	Tags      []string `json:"tags"`
}
