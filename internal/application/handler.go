package application

import (
	"letta-mcp-server/internal/domain"
)

// Tool name constants for the Letta operations, in catalog order.
const (
	ToolListAgents        = "list_agents"
	ToolGetAgent          = "get_agent"
	ToolSendMessage       = "send_message"
	ToolListMemoryBlocks  = "list_memory_blocks"
	ToolGetMemoryBlock    = "get_memory_block"
	ToolUpdateMemoryBlock = "update_memory_block"
	ToolSearchMemory      = "search_memory"
	ToolAddToArchival     = "add_to_archival"
)

// LettaHandler implements the Letta tools.
// It resolves the target agent, obtains the shared client from the provider,
// performs the remote call and projects the result.
type LettaHandler struct {
	clients        domain.ClientProvider
	defaultAgentID string
	mapper         domain.ResponseMapper
}

// NewLettaHandler creates a new LettaHandler instance.
// defaultAgentID is used when a call omits agent_id; it may be empty.
func NewLettaHandler(clients domain.ClientProvider, defaultAgentID string, mapper domain.ResponseMapper) *LettaHandler {
	return &LettaHandler{
		clients:        clients,
		defaultAgentID: defaultAgentID,
		mapper:         mapper,
	}
}

// Tools returns one ToolHandler per operation, in catalog order.
func (h *LettaHandler) Tools() []domain.ToolHandler {
	return []domain.ToolHandler{
		newTool(ToolListAgents,
			"List all Letta agents in your account. Returns agent IDs, names, and descriptions.",
			h.mapper, h.listAgents),
		newTool(ToolGetAgent,
			"Get detailed information about a specific Letta agent, including its configuration and memory blocks.",
			h.mapper, h.getAgent),
		newTool(ToolSendMessage,
			"Send a message to a Letta agent. The agent will process the message and may update its memory based on the content. Use this to trigger learning or have conversations with the agent.",
			h.mapper, h.sendMessage),
		newTool(ToolListMemoryBlocks,
			"List all memory blocks attached to a Letta agent. Memory blocks contain persistent information like persona, human info, project context, etc.",
			h.mapper, h.listMemoryBlocks),
		newTool(ToolGetMemoryBlock,
			"Get the content of a specific memory block by its label (e.g., 'persona', 'human', 'project').",
			h.mapper, h.getMemoryBlock),
		newTool(ToolUpdateMemoryBlock,
			"Update the content of a memory block. Use this to directly modify agent memory from external sources. Warning: This completely replaces the block content.",
			h.mapper, h.updateMemoryBlock),
		newTool(ToolSearchMemory,
			"Search the agent's archival memory for relevant information. Archival memory stores historical data that doesn't fit in the context window.",
			h.mapper, h.searchMemory),
		newTool(ToolAddToArchival,
			"Add new information to the agent's archival memory. Use this to store important information that should be retrievable later.",
			h.mapper, h.addToArchival),
	}
}

// resolveAgent applies the default agent id.
func (h *LettaHandler) resolveAgent(explicit string) (string, error) {
	return domain.ResolveAgentID(explicit, h.defaultAgentID)
}
