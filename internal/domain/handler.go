package domain

import (
	"context"
)

// ToolHandler serves a single MCP tool.
type ToolHandler interface {
	// Handle processes an MCP tool call request.
	// Validation, configuration, identifier and remote failures are returned
	// as errors and converted to an error envelope by the router.
	Handle(ctx context.Context, req *ToolRequest) (*ToolResponse, error)

	// Definition returns the tool's catalog entry.
	Definition() ToolDefinition
}
