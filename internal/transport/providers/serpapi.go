package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

const serpAPIBaseURL = "https://serpapi.com"

// SerpAPI is the SerpApi adapter serving Google results. It doubles as the
// paid fallback for Google-preferred calls.
type SerpAPI struct {
	apiKey  string
	baseURL string
}

var _ domain.Searcher = (*SerpAPI)(nil)

// NewSerpAPI creates a SerpApi adapter.
func NewSerpAPI(apiKey, baseURL string) *SerpAPI {
	if baseURL == "" {
		baseURL = serpAPIBaseURL
	}
	return &SerpAPI{apiKey: apiKey, baseURL: baseURL}
}

type serpAPIResponse struct {
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
}

// Search implements domain.Searcher.
func (s *SerpAPI) Search(ctx context.Context, query string, limit int) ([]domain.Result, error) {
	q := url.Values{
		"engine":  []string{"google"},
		"q":       []string{query},
		"api_key": []string{s.apiKey},
	}
	if limit > 0 {
		q.Set("num", fmt.Sprintf("%d", limit))
	}

	var resp serpAPIResponse
	endpoint := s.baseURL + "/search.json?" + q.Encode()
	if err := getJSON(ctx, domain.ProviderSerpAPI, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	results := make([]domain.Result, 0, len(resp.OrganicResults))
	for i, r := range resp.OrganicResults {
		pos := r.Position
		if pos == 0 {
			pos = i + 1
		}
		results = append(results, domain.Result{
			Title:    r.Title,
			URL:      r.Link,
			Snippet:  r.Snippet,
			Position: pos,
			Source:   domain.ProviderSerpAPI,
		})
	}
	return results, nil
}
