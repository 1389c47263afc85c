package application

import (
	"context"

	"letta-mcp-server/internal/domain"
)

func (h *LettaHandler) listMemoryBlocks(ctx context.Context, args *domain.ListMemoryBlocksArgs) (interface{}, error) {
	agentID, err := h.resolveAgent(args.AgentID)
	if err != nil {
		return nil, err
	}

	client, err := h.clients.Client(ctx)
	if err != nil {
		return nil, err
	}

	blocks := []domain.BlockView{}
	for block, err := range client.ListBlocks(ctx, agentID) {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, domain.ViewBlock(&block))
	}

	return blocks, nil
}

func (h *LettaHandler) getMemoryBlock(ctx context.Context, args *domain.GetMemoryBlockArgs) (interface{}, error) {
	agentID, err := h.resolveAgent(args.AgentID)
	if err != nil {
		return nil, err
	}

	client, err := h.clients.Client(ctx)
	if err != nil {
		return nil, err
	}

	block, err := client.GetBlock(ctx, agentID, args.Label)
	if err != nil {
		return nil, err
	}

	return domain.ViewBlock(block), nil
}

// updateMemoryBlock addresses the block by id only; no agent is involved.
func (h *LettaHandler) updateMemoryBlock(ctx context.Context, args *domain.UpdateMemoryBlockArgs) (interface{}, error) {
	client, err := h.clients.Client(ctx)
	if err != nil {
		return nil, err
	}

	block, err := client.UpdateBlock(ctx, args.BlockID, args.Value)
	if err != nil {
		return nil, err
	}

	return domain.UpdateBlockResult{
		Success: true,
		Block: domain.UpdatedBlock{
			ID:    block.ID,
			Label: block.Label,
			Value: block.Value,
		},
	}, nil
}
