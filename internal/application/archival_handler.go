package application

import (
	"context"

	"letta-mcp-server/internal/domain"
)

func (h *LettaHandler) searchMemory(ctx context.Context, args *domain.SearchMemoryArgs) (interface{}, error) {
	agentID, err := h.resolveAgent(args.AgentID)
	if err != nil {
		return nil, err
	}

	topK := domain.ResolveLimit(args.Limit, domain.DefaultSearchLimit)

	client, err := h.clients.Client(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.SearchPassages(ctx, agentID, args.Query, topK)
	if err != nil {
		return nil, err
	}

	return domain.SearchResult{
		Query:   args.Query,
		Count:   resp.Count,
		Results: domain.SearchHits(resp.Results),
	}, nil
}

func (h *LettaHandler) addToArchival(ctx context.Context, args *domain.AddToArchivalArgs) (interface{}, error) {
	agentID, err := h.resolveAgent(args.AgentID)
	if err != nil {
		return nil, err
	}

	client, err := h.clients.Client(ctx)
	if err != nil {
		return nil, err
	}

	passages, err := client.CreatePassage(ctx, agentID, args.Content)
	if err != nil {
		return nil, err
	}

	result := domain.AddPassageResult{Success: true}
	if created := passages.First(); created != nil {
		result.Passage = domain.CreatedPassage{
			ID:        created.ID,
			Text:      created.Text,
			CreatedAt: created.CreatedAt,
		}
	}
	return result, nil
}
