package providers

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

const exaBaseURL = "https://api.exa.ai"

// Exa is the Exa neural search adapter.
type Exa struct {
	apiKey  string
	baseURL string
}

var _ domain.Searcher = (*Exa)(nil)

// NewExa creates an Exa adapter.
func NewExa(apiKey, baseURL string) *Exa {
	if baseURL == "" {
		baseURL = exaBaseURL
	}
	return &Exa{apiKey: apiKey, baseURL: baseURL}
}

type exaRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"numResults,omitempty"`
	Contents   struct {
		Text bool `json:"text"`
	} `json:"contents"`
}

type exaResponse struct {
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Text  string `json:"text"`
	} `json:"results"`
}

// Search implements domain.Searcher.
func (e *Exa) Search(ctx context.Context, query string, limit int) ([]domain.Result, error) {
	header := http.Header{"X-Api-Key": []string{e.apiKey}}
	body := exaRequest{Query: query, NumResults: limit}
	body.Contents.Text = true

	var resp exaResponse
	if err := postJSON(ctx, domain.ProviderExa, e.baseURL+"/search", header, body, &resp); err != nil {
		return nil, err
	}

	results := make([]domain.Result, 0, len(resp.Results))
	for i, r := range resp.Results {
		results = append(results, domain.Result{
			Title:    r.Title,
			URL:      r.URL,
			Snippet:  truncate(r.Text, 300),
			Position: i + 1,
			Source:   domain.ProviderExa,
		})
	}
	return results, nil
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
