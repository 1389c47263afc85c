package domain

// PreviewLimit is the number of characters kept in a memory block preview.
const PreviewLimit = 200

// previewEllipsis marks a truncated preview.
const previewEllipsis = "..."

// Preview truncates value to PreviewLimit characters followed by an ellipsis.
// Values of PreviewLimit characters or fewer pass through unmodified.
func Preview(value string) string {
	runes := []rune(value)
	if len(runes) <= PreviewLimit {
		return value
	}
	return string(runes[:PreviewLimit]) + previewEllipsis
}

// AgentSummary is the list_agents projection of an agent.
type AgentSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Model       string `json:"model,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// BlockPreview is a memory block as embedded in the get_agent projection.
type BlockPreview struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	ValuePreview string `json:"value_preview"`
}

// AgentDetail is the get_agent projection of an agent.
type AgentDetail struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Model        string         `json:"model,omitempty"`
	Embedding    string         `json:"embedding,omitempty"`
	MemoryBlocks []BlockPreview `json:"memory_blocks"`
	Tools        []string       `json:"tools"`
	CreatedAt    string         `json:"created_at,omitempty"`
}

// BlockView is the full projection of a memory block.
type BlockView struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Limit       *int   `json:"limit,omitempty"`
	Value       string `json:"value"`
}

// UpdatedBlock is the block embedded in an update_memory_block result.
type UpdatedBlock struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// UpdateBlockResult is the update_memory_block projection.
type UpdateBlockResult struct {
	Success bool         `json:"success"`
	Block   UpdatedBlock `json:"block"`
}

// SendMessageResult is the send_message projection.
type SendMessageResult struct {
	AgentID  string             `json:"agent_id"`
	Messages []FormattedMessage `json:"messages"`
	Usage    interface{}        `json:"usage,omitempty"`
}

// SearchHit is a single search_memory result.
type SearchHit struct {
	Content   string   `json:"content"`
	Timestamp string   `json:"timestamp,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// SearchResult is the search_memory projection.
type SearchResult struct {
	Query   string      `json:"query"`
	Count   int         `json:"count"`
	Results []SearchHit `json:"results"`
}

// CreatedPassage is the passage embedded in an add_to_archival result.
type CreatedPassage struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// AddPassageResult is the add_to_archival projection.
type AddPassageResult struct {
	Success bool           `json:"success"`
	Passage CreatedPassage `json:"passage"`
}

// SummarizeAgent projects an agent for listings.
func SummarizeAgent(a *Agent) AgentSummary {
	s := AgentSummary{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
	}
	if a.LLMConfig != nil {
		s.Model = a.LLMConfig.Model
	}
	return s
}

// DescribeAgent projects an agent with its memory previews and tool names.
func DescribeAgent(a *Agent) AgentDetail {
	d := AgentDetail{
		ID:           a.ID,
		Name:         a.Name,
		Description:  a.Description,
		MemoryBlocks: []BlockPreview{},
		Tools:        []string{},
		CreatedAt:    a.CreatedAt,
	}
	if a.LLMConfig != nil {
		d.Model = a.LLMConfig.Model
	}
	if a.EmbeddingConfig != nil {
		d.Embedding = a.EmbeddingConfig.EmbeddingModel
	}
	if a.Memory != nil {
		for _, b := range a.Memory.Blocks {
			d.MemoryBlocks = append(d.MemoryBlocks, BlockPreview{
				ID:           b.ID,
				Label:        b.Label,
				ValuePreview: Preview(b.Value),
			})
		}
	}
	for _, t := range a.Tools {
		d.Tools = append(d.Tools, t.Name)
	}
	return d
}

// ViewBlock projects a memory block.
func ViewBlock(b *Block) BlockView {
	return BlockView{
		ID:          b.ID,
		Label:       b.Label,
		Description: b.Description,
		Limit:       b.Limit,
		Value:       b.Value,
	}
}

// SearchHits projects archival search results.
func SearchHits(results []PassageSearchResult) []SearchHit {
	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, SearchHit{
			Content:   r.Content,
			Timestamp: r.Timestamp,
			Tags:      r.Tags,
		})
	}
	return hits
}
