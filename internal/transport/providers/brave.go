package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

const braveBaseURL = "https://api.search.brave.com"

// Brave is the Brave Search API adapter.
type Brave struct {
	apiKey  string
	baseURL string
}

var _ domain.Searcher = (*Brave)(nil)

// NewBrave creates a Brave adapter.
func NewBrave(apiKey, baseURL string) *Brave {
	if baseURL == "" {
		baseURL = braveBaseURL
	}
	return &Brave{apiKey: apiKey, baseURL: baseURL}
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search implements domain.Searcher.
func (b *Brave) Search(ctx context.Context, query string, limit int) ([]domain.Result, error) {
	q := url.Values{"q": []string{query}}
	if limit > 0 {
		q.Set("count", fmt.Sprintf("%d", limit))
	}
	header := http.Header{"X-Subscription-Token": []string{b.apiKey}}

	var resp braveResponse
	endpoint := b.baseURL + "/res/v1/web/search?" + q.Encode()
	if err := getJSON(ctx, domain.ProviderBrave, endpoint, header, &resp); err != nil {
		return nil, err
	}

	results := make([]domain.Result, 0, len(resp.Web.Results))
	for i, r := range resp.Web.Results {
		results = append(results, domain.Result{
			Title:    r.Title,
			URL:      r.URL,
			Snippet:  r.Description,
			Position: i + 1,
			Source:   domain.ProviderBrave,
		})
	}
	return results, nil
}
