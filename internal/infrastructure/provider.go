package infrastructure

import (
	"context"
	"sync"

	"github.com/effective-security/xlog"

	"letta-mcp-server/internal/domain"
)

// LazyClientProvider owns the process-wide Letta client.
// The client is built on the first call to Client; later callers reuse it.
// The credential is fixed at startup, so a missing key yields the same
// *domain.ConfigError on every call.
type LazyClientProvider struct {
	get func() (*LettaClient, error)
}

var _ domain.ClientProvider = (*LazyClientProvider)(nil)

// NewLazyClientProvider creates a provider for the configured Letta endpoint.
func NewLazyClientProvider(cfg domain.LettaConfig, authManager *domain.AuthenticationManager) *LazyClientProvider {
	return &LazyClientProvider{
		get: sync.OnceValues(func() (*LettaClient, error) {
			httpClient, err := authManager.GetAuthenticatedClient()
			if err != nil {
				logger.KV(xlog.ERROR, "status", "letta_client_unavailable", "err", err.Error())
				return nil, err
			}
			logger.KV(xlog.INFO, "status", "letta_client_initialized", "base_url", cfg.BaseURL)
			return NewLettaClient(cfg.BaseURL, httpClient), nil
		}),
	}
}

// Client returns the shared client, constructing it on first use.
func (p *LazyClientProvider) Client(_ context.Context) (domain.AgentPlatformClient, error) {
	client, err := p.get()
	if err != nil {
		return nil, err
	}
	return client, nil
}
