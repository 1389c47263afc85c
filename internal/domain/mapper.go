package domain

// ResponseMapper converts handler results to MCP tool responses.
// Successful results become a pretty-printed JSON text block; failures become
// the uniform error envelope with the isError flag set.
type ResponseMapper interface {
	// MapToToolResponse converts a handler projection to MCP format.
	// Returns an error if the projection cannot be serialized.
	MapToToolResponse(result interface{}) (*ToolResponse, error)

	// MapError converts any failure raised while serving a tool call
	// into an error envelope.
	MapError(err error) *ToolResponse
}
