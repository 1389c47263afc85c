package domain

import (
	"net/http"
	"strings"
)

// missingAPIKeyMessage is reported when a remote call is attempted without a credential.
const missingAPIKeyMessage = "LETTA_API_KEY environment variable is required"

// Credentials stores the Letta API key.
type Credentials struct {
	Token string
}

// AuthenticationManager owns the Letta credential and provides authenticated
// HTTP clients for making API calls.
type AuthenticationManager struct {
	credentials *Credentials
	base        http.RoundTripper
}

// NewAuthenticationManager creates a new authentication manager.
// A nil or empty credential is accepted; the failure is deferred to first use.
func NewAuthenticationManager(credentials *Credentials) *AuthenticationManager {
	return &AuthenticationManager{
		credentials: credentials,
		base:        http.DefaultTransport,
	}
}

// NewAuthenticationManagerFromConfig creates an authentication manager from a configuration.
func NewAuthenticationManagerFromConfig(config *Config) *AuthenticationManager {
	return NewAuthenticationManager(&Credentials{Token: config.Letta.APIKey})
}

// WithBaseTransport replaces the round tripper requests are sent through.
func (am *AuthenticationManager) WithBaseTransport(base http.RoundTripper) *AuthenticationManager {
	am.base = base
	return am
}

// ValidateCredentials checks that an API key is configured.
func (am *AuthenticationManager) ValidateCredentials() error {
	if am.credentials == nil || strings.TrimSpace(am.credentials.Token) == "" {
		return &ConfigError{Message: missingAPIKeyMessage}
	}
	return nil
}

// GetAuthenticatedClient returns an HTTP client that sends the API key as a bearer token.
// Returns a *ConfigError if no key is configured.
func (am *AuthenticationManager) GetAuthenticatedClient() (*http.Client, error) {
	if err := am.ValidateCredentials(); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: &authenticatedTransport{
			base:        am.base,
			credentials: am.credentials,
		},
	}, nil
}

// authenticatedTransport is an http.RoundTripper that adds authentication headers.
type authenticatedTransport struct {
	base        http.RoundTripper
	credentials *Credentials
}

// RoundTrip implements http.RoundTripper by adding the bearer token to requests.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())
	clonedReq.Header.Set("Authorization", "Bearer "+t.credentials.Token)
	return t.base.RoundTrip(clonedReq)
}
