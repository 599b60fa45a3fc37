package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

const (
	perplexityBaseURL = "https://api.perplexity.ai"
	perplexityModel   = "sonar"
)

// Perplexity answers queries through the Perplexity chat API, which speaks
// the OpenAI wire format. It maps one grounded answer to a single result.
type Perplexity struct {
	client *openai.Client
	model  string
}

var _ domain.Searcher = (*Perplexity)(nil)

// NewPerplexity creates a Perplexity adapter.
func NewPerplexity(apiKey, baseURL string) *Perplexity {
	if baseURL == "" {
		baseURL = perplexityBaseURL
	}
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = baseURL

	return &Perplexity{
		client: openai.NewClientWithConfig(clientCfg),
		model:  perplexityModel,
	}
}

// Search implements domain.Searcher.
func (p *Perplexity) Search(ctx context.Context, query string, _ int) ([]domain.Result, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "Answer concisely using current web sources."},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	})
	if err != nil {
		return nil, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response: %w", domain.ErrProviderCall)
	}

	answer := resp.Choices[0].Message.Content
	return []domain.Result{{
		Title:    query,
		URL:      perplexitySearchURL(query),
		Snippet:  answer,
		Position: 1,
		Source:   domain.ProviderPerplexity,
	}}, nil
}

func perplexitySearchURL(query string) string {
	return "https://www.perplexity.ai/search?q=" + url.QueryEscape(query)
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrProviderCall so the routing loop can
// treat them as recoverable failures.
func parseAPIError(err error) error {
	wrap := domain.ErrProviderCall

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("perplexity API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("perplexity API error %d: %w", reqErr.HTTPStatusCode, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("perplexity API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("perplexity: %v: %w", err, wrap)
}

// extractDetail pulls the message out of an error body if it is JSON.
func extractDetail(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error.Message
}
