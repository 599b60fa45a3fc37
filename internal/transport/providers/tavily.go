package providers

import (
	"context"
	"net/http"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

const tavilyBaseURL = "https://api.tavily.com"

// Tavily is the Tavily search adapter. It is the one content-capable
// provider: SearchWithContent additionally requests raw page content.
type Tavily struct {
	apiKey  string
	baseURL string
}

var (
	_ domain.Searcher        = (*Tavily)(nil)
	_ domain.ContentSearcher = (*Tavily)(nil)
)

// NewTavily creates a Tavily adapter.
func NewTavily(apiKey, baseURL string) *Tavily {
	if baseURL == "" {
		baseURL = tavilyBaseURL
	}
	return &Tavily{apiKey: apiKey, baseURL: baseURL}
}

type tavilyRequest struct {
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results,omitempty"`
	IncludeRawContent bool   `json:"include_raw_content,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title      string `json:"title"`
		URL        string `json:"url"`
		Content    string `json:"content"`
		RawContent string `json:"raw_content"`
	} `json:"results"`
}

// Search implements domain.Searcher.
func (t *Tavily) Search(ctx context.Context, query string, limit int) ([]domain.Result, error) {
	return t.search(ctx, query, limit, false)
}

// SearchWithContent implements domain.ContentSearcher.
func (t *Tavily) SearchWithContent(ctx context.Context, query string, limit int) ([]domain.Result, error) {
	return t.search(ctx, query, limit, true)
}

func (t *Tavily) search(ctx context.Context, query string, limit int, rawContent bool) ([]domain.Result, error) {
	header := http.Header{"Authorization": []string{"Bearer " + t.apiKey}}
	body := tavilyRequest{Query: query, MaxResults: limit, IncludeRawContent: rawContent}

	var resp tavilyResponse
	if err := postJSON(ctx, domain.ProviderTavily, t.baseURL+"/search", header, body, &resp); err != nil {
		return nil, err
	}

	results := make([]domain.Result, 0, len(resp.Results))
	for i, r := range resp.Results {
		results = append(results, domain.Result{
			Title:    r.Title,
			URL:      r.URL,
			Snippet:  r.Content,
			Content:  r.RawContent,
			Position: i + 1,
			Source:   domain.ProviderTavily,
		})
	}
	return results, nil
}
