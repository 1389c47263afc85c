package application

import (
	"context"

	"letta-mcp-server/internal/domain"
)

// toolFunc runs a tool on validated arguments and returns its projection.
type toolFunc[A any] func(ctx context.Context, args *A) (interface{}, error)

// typedTool adapts a toolFunc to domain.ToolHandler: the input schema is
// reflected from A, and arguments are bound and validated before run is called.
type typedTool[A any] struct {
	def    domain.ToolDefinition
	run    toolFunc[A]
	mapper domain.ResponseMapper
}

func newTool[A any](name, description string, mapper domain.ResponseMapper, run toolFunc[A]) *typedTool[A] {
	var zero A
	return &typedTool[A]{
		def: domain.ToolDefinition{
			Name:        name,
			Description: description,
			InputSchema: domain.InputSchemaFor(&zero),
		},
		run:    run,
		mapper: mapper,
	}
}

// Definition returns the catalog entry of the tool.
func (t *typedTool[A]) Definition() domain.ToolDefinition {
	return t.def
}

// Handle validates the arguments, runs the tool and serializes the projection.
func (t *typedTool[A]) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	var args A
	if err := bindArguments(req.Arguments, &args); err != nil {
		return nil, err
	}

	result, err := t.run(ctx, &args)
	if err != nil {
		return nil, err
	}

	return t.mapper.MapToToolResponse(result)
}
