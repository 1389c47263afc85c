package application

import (
	"context"

	"letta-mcp-server/internal/domain"
)

func (h *LettaHandler) listAgents(ctx context.Context, args *domain.ListAgentsArgs) (interface{}, error) {
	limit := domain.ResolveLimit(args.Limit, domain.DefaultAgentListLimit)

	client, err := h.clients.Client(ctx)
	if err != nil {
		return nil, err
	}

	pageSize := min(limit, domain.MaxAgentPageSize)
	agents := make([]domain.AgentSummary, 0, pageSize)
	for agent, err := range client.ListAgents(ctx, pageSize) {
		if err != nil {
			return nil, err
		}
		agents = append(agents, domain.SummarizeAgent(&agent))
		if len(agents) >= limit {
			break
		}
	}

	return agents, nil
}

func (h *LettaHandler) getAgent(ctx context.Context, args *domain.GetAgentArgs) (interface{}, error) {
	agentID, err := h.resolveAgent(args.AgentID)
	if err != nil {
		return nil, err
	}

	client, err := h.clients.Client(ctx)
	if err != nil {
		return nil, err
	}

	agent, err := client.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	return domain.DescribeAgent(agent), nil
}

func (h *LettaHandler) sendMessage(ctx context.Context, args *domain.SendMessageArgs) (interface{}, error) {
	agentID, err := h.resolveAgent(args.AgentID)
	if err != nil {
		return nil, err
	}

	client, err := h.clients.Client(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.SendMessage(ctx, agentID, args.Message)
	if err != nil {
		return nil, err
	}

	result := domain.SendMessageResult{
		AgentID:  agentID,
		Messages: domain.FormatMessages(resp.Messages),
	}
	if len(resp.Usage) > 0 && string(resp.Usage) != "null" {
		result.Usage = resp.Usage
	}
	return result, nil
}
