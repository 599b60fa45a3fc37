package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

const kagiBaseURL = "https://kagi.com"

// Kagi is the Kagi Search API adapter.
type Kagi struct {
	apiKey  string
	baseURL string
}

var _ domain.Searcher = (*Kagi)(nil)

// NewKagi creates a Kagi adapter.
func NewKagi(apiKey, baseURL string) *Kagi {
	if baseURL == "" {
		baseURL = kagiBaseURL
	}
	return &Kagi{apiKey: apiKey, baseURL: baseURL}
}

// kagiResultTypeSearch marks organic search hits; other entries are related
// searches and get dropped.
const kagiResultTypeSearch = 0

type kagiResponse struct {
	Data []struct {
		Type    int    `json:"t"`
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	} `json:"data"`
}

// Search implements domain.Searcher.
func (k *Kagi) Search(ctx context.Context, query string, limit int) ([]domain.Result, error) {
	q := url.Values{"q": []string{query}}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	header := http.Header{"Authorization": []string{"Bot " + k.apiKey}}

	var resp kagiResponse
	endpoint := k.baseURL + "/api/v0/search?" + q.Encode()
	if err := getJSON(ctx, domain.ProviderKagi, endpoint, header, &resp); err != nil {
		return nil, err
	}

	results := make([]domain.Result, 0, len(resp.Data))
	for _, r := range resp.Data {
		if r.Type != kagiResultTypeSearch {
			continue
		}
		results = append(results, domain.Result{
			Title:    r.Title,
			URL:      r.URL,
			Snippet:  r.Snippet,
			Position: len(results) + 1,
			Source:   domain.ProviderKagi,
		})
	}
	return results, nil
}
