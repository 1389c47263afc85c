package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"letta-mcp-server/internal/domain"
)

var logger = xlog.NewPackageLogger("letta-mcp-server/internal", "infrastructure")

// blockPageSize is the page size used when walking an agent's memory blocks.
const blockPageSize = 50

// LettaClient handles Letta REST API interactions.
// It implements domain.AgentPlatformClient.
type LettaClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ domain.AgentPlatformClient = (*LettaClient)(nil)

// NewLettaClient creates a new Letta API client.
// The baseURL is the API root (e.g., "https://api.letta.com").
// The httpClient should be an authenticated client from the AuthenticationManager.
func NewLettaClient(baseURL string, httpClient *http.Client) *LettaClient {
	return &LettaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the configured base URL.
func (c *LettaClient) BaseURL() string {
	return c.baseURL
}

// Do executes an HTTP request with the JSON headers set.
func (c *LettaClient) Do(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}

// ListAgents walks /v1/agents page by page.
func (c *LettaClient) ListAgents(ctx context.Context, pageSize int) iter.Seq2[domain.Agent, error] {
	return paginate(ctx, c, "/v1/agents", pageSize, func(a domain.Agent) string { return a.ID })
}

// GetAgent retrieves a single agent.
func (c *LettaClient) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	var agent domain.Agent
	if err := c.doJSON(ctx, http.MethodGet, agentPath(agentID), nil, nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// SendMessage posts a user message to the agent and returns its response messages.
func (c *LettaClient) SendMessage(ctx context.Context, agentID, text string) (*domain.MessageResponse, error) {
	body := &domain.MessageCreateRequest{
		Messages: []domain.MessageCreate{{Role: "user", Content: text}},
	}

	var resp domain.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, agentPath(agentID)+"/messages", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListBlocks walks the core memory blocks of an agent.
func (c *LettaClient) ListBlocks(ctx context.Context, agentID string) iter.Seq2[domain.Block, error] {
	return paginate(ctx, c, agentPath(agentID)+"/core-memory/blocks", blockPageSize, func(b domain.Block) string { return b.ID })
}

// GetBlock retrieves an agent's memory block by label.
func (c *LettaClient) GetBlock(ctx context.Context, agentID, label string) (*domain.Block, error) {
	var block domain.Block
	path := agentPath(agentID) + "/core-memory/blocks/" + url.PathEscape(label)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// UpdateBlock replaces the value of a memory block.
func (c *LettaClient) UpdateBlock(ctx context.Context, blockID, value string) (*domain.Block, error) {
	var block domain.Block
	path := "/v1/blocks/" + url.PathEscape(blockID)
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, &domain.BlockUpdate{Value: value}, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// SearchPassages runs a semantic search over the agent's archival memory.
func (c *LettaClient) SearchPassages(ctx context.Context, agentID, query string, topK int) (*domain.PassageSearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	if topK > 0 {
		params.Set("top_k", strconv.Itoa(topK))
	}

	var resp domain.PassageSearchResponse
	if err := c.doJSON(ctx, http.MethodGet, agentPath(agentID)+"/archival-memory/search", params, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePassage inserts text into the agent's archival memory.
// The API answers with either a single passage or a list of passages.
func (c *LettaClient) CreatePassage(ctx context.Context, agentID, text string) (domain.PassageList, error) {
	var passages domain.PassageList
	if err := c.doJSON(ctx, http.MethodPost, agentPath(agentID)+"/archival-memory", nil, &domain.PassageCreate{Text: text}, &passages); err != nil {
		return nil, err
	}
	return passages, nil
}

// doJSON performs a single request and decodes a 2xx JSON body into out.
// Non-2xx responses are returned as domain.HTTPError carrying the raw body.
func (c *LettaClient) doJSON(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	logger.ContextKV(ctx, xlog.DEBUG, "method", method, "path", path)

	resp, err := c.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to execute %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		logger.ContextKV(ctx, xlog.DEBUG,
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return domain.NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode %s %s response", method, path)
	}
	return nil
}

// paginate turns a cursor-paginated list endpoint into a lazy sequence.
// A page is requested only when the consumer has drained the previous one.
// Iteration ends on an empty page, an item without a cursor, or when the
// server ignores the cursor. Short pages do not end it since the server may
// cap the page size below the one requested.
func paginate[T any](ctx context.Context, c *LettaClient, path string, pageSize int, cursor func(T) string) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		after := ""
		for {
			params := url.Values{}
			if pageSize > 0 {
				params.Set("limit", strconv.Itoa(pageSize))
			}
			if after != "" {
				params.Set("after", after)
			}

			var page []T
			if err := c.doJSON(ctx, http.MethodGet, path, params, nil, &page); err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if len(page) == 0 {
				return
			}

			next := cursor(page[len(page)-1])
			if after != "" && next == after {
				return
			}

			for _, item := range page {
				if !yield(item, nil) {
					return
				}
			}

			if next == "" {
				return
			}
			after = next
		}
	}
}

func agentPath(agentID string) string {
	return "/v1/agents/" + url.PathEscape(agentID)
}
