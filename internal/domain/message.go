package domain

import (
	"encoding/json"
)

// Message types produced by the Letta messages API.
const (
	MessageTypeReasoning  = "reasoning_message"
	MessageTypeAssistant  = "assistant_message"
	MessageTypeToolCall   = "tool_call_message"
	MessageTypeToolReturn = "tool_return_message"
)

// FormattedMessage is the uniform shape of an agent response entry.
// Exactly one of the variants is populated depending on Type:
// content for reasoning/assistant/tool_return, name+arguments for tool_call,
// raw for anything unrecognized.
type FormattedMessage struct {
	Type      string          `json:"type"`
	Content   json.RawMessage `json:"content,omitempty"`
	Name      *string         `json:"name,omitempty"`
	Arguments *string         `json:"arguments,omitempty"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// FormatMessage reshapes a single upstream message by its discriminator.
func FormatMessage(msg Message) FormattedMessage {
	switch msg.MessageType {
	case MessageTypeReasoning:
		return FormattedMessage{Type: "reasoning", Content: orNull(msg.Reasoning)}
	case MessageTypeAssistant:
		return FormattedMessage{Type: "assistant", Content: orNull(msg.Content)}
	case MessageTypeToolCall:
		var name, args string
		if msg.ToolCall != nil {
			name, args = msg.ToolCall.Name, msg.ToolCall.Arguments
		}
		return FormattedMessage{Type: "tool_call", Name: &name, Arguments: &args}
	case MessageTypeToolReturn:
		return FormattedMessage{Type: "tool_return", Content: orNull(msg.ToolReturn)}
	default:
		raw := msg.Raw
		if len(raw) == 0 {
			raw, _ = json.Marshal(msg)
		}
		return FormattedMessage{Type: msg.MessageType, Raw: raw}
	}
}

// FormatMessages reshapes every message of an agent response, keeping order.
func FormatMessages(msgs []Message) []FormattedMessage {
	out := make([]FormattedMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, FormatMessage(msg))
	}
	return out
}

// orNull keeps a content key present even when upstream omitted the field.
func orNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
