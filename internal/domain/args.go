package domain

import "math"

// Default result caps for the listing tools.
const (
	DefaultAgentListLimit = 50
	DefaultSearchLimit    = 10

	// MaxAgentPageSize bounds the page requested from the agents listing.
	MaxAgentPageSize = 100
)

// ListAgentsArgs are the arguments of list_agents.
type ListAgentsArgs struct {
	Limit float64 `json:"limit,omitempty" validate:"gte=0" jsonschema_description:"Maximum number of agents to return (default: 50)"`
}

// GetAgentArgs are the arguments of get_agent.
type GetAgentArgs struct {
	AgentID string `json:"agent_id,omitempty" jsonschema_description:"The agent ID. If not provided, uses LETTA_DEFAULT_AGENT_ID environment variable."`
}

// SendMessageArgs are the arguments of send_message.
type SendMessageArgs struct {
	AgentID string `json:"agent_id,omitempty" jsonschema_description:"The agent ID. If not provided, uses LETTA_DEFAULT_AGENT_ID environment variable."`
	Message string `json:"message" jsonschema_description:"The message to send to the agent."`
}

// ListMemoryBlocksArgs are the arguments of list_memory_blocks.
type ListMemoryBlocksArgs struct {
	AgentID string `json:"agent_id,omitempty" jsonschema_description:"The agent ID. If not provided, uses LETTA_DEFAULT_AGENT_ID environment variable."`
}

// GetMemoryBlockArgs are the arguments of get_memory_block.
type GetMemoryBlockArgs struct {
	AgentID string `json:"agent_id,omitempty" jsonschema_description:"The agent ID. If not provided, uses LETTA_DEFAULT_AGENT_ID environment variable."`
	Label   string `json:"label" jsonschema_description:"The label of the memory block to retrieve (e.g., 'persona', 'human', 'project')."`
}

// UpdateMemoryBlockArgs are the arguments of update_memory_block.
type UpdateMemoryBlockArgs struct {
	BlockID string `json:"block_id" jsonschema_description:"The block ID to update. Get this from list_memory_blocks."`
	Value   string `json:"value" jsonschema_description:"The new content for the memory block."`
}

// SearchMemoryArgs are the arguments of search_memory.
type SearchMemoryArgs struct {
	AgentID string  `json:"agent_id,omitempty" jsonschema_description:"The agent ID. If not provided, uses LETTA_DEFAULT_AGENT_ID environment variable."`
	Query   string  `json:"query" jsonschema_description:"Search query to find relevant memories."`
	Limit   float64 `json:"limit,omitempty" validate:"gte=0" jsonschema_description:"Maximum number of results to return (default: 10)."`
}

// AddToArchivalArgs are the arguments of add_to_archival.
type AddToArchivalArgs struct {
	AgentID string `json:"agent_id,omitempty" jsonschema_description:"The agent ID. If not provided, uses LETTA_DEFAULT_AGENT_ID environment variable."`
	Content string `json:"content" jsonschema_description:"The content to add to archival memory."`
}

// ResolveAgentID returns the explicit id, else the configured default, else ErrMissingAgentID.
func ResolveAgentID(explicit, fallback string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", ErrMissingAgentID
}

// ResolveLimit truncates a requested limit to a whole count.
// Values below one fall back to the default; huge values saturate at math.MaxInt32.
func ResolveLimit(requested float64, fallback int) int {
	switch {
	case requested < 1:
		return fallback
	case requested >= math.MaxInt32:
		return math.MaxInt32
	default:
		return int(requested)
	}
}
