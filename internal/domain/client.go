package domain

import (
	"context"
	"iter"
)

// AgentPlatformClient defines the Letta operations the tool handlers proxy to.
// Listing operations are lazy sequences: the next upstream page is fetched only
// while the consumer keeps iterating.
type AgentPlatformClient interface {
	// BaseURL returns the configured Letta API root.
	BaseURL() string

	ListAgents(ctx context.Context, pageSize int) iter.Seq2[Agent, error]
	GetAgent(ctx context.Context, agentID string) (*Agent, error)
	SendMessage(ctx context.Context, agentID, text string) (*MessageResponse, error)

	ListBlocks(ctx context.Context, agentID string) iter.Seq2[Block, error]
	GetBlock(ctx context.Context, agentID, label string) (*Block, error)
	UpdateBlock(ctx context.Context, blockID, value string) (*Block, error)

	SearchPassages(ctx context.Context, agentID, query string, topK int) (*PassageSearchResponse, error)
	CreatePassage(ctx context.Context, agentID, text string) (PassageList, error)
}

// ClientProvider hands out the process-wide client, constructing it on first use.
// A missing credential surfaces as a *ConfigError from Client.
type ClientProvider interface {
	Client(ctx context.Context) (AgentPlatformClient, error)
}
