// Package providers holds the search provider adapters: pure format mapping
// from provider-specific wire responses to the uniform result shape. No
// routing or quota logic lives here.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

// Call deadlines come from the request context; the routing engine owns the
// per-provider timeout.
var httpClient = &http.Client{}

const maxErrorBody = 512

func getJSON(ctx context.Context, provider, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s request: %w", provider, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	return doJSON(provider, req, out)
}

func postJSON(ctx context.Context, provider, url string, header http.Header, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s request encode: %w", provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s request: %w", provider, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return doJSON(provider, req, out)
}

func doJSON(provider string, req *http.Request, out any) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", provider, err, domain.ErrProviderCall)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(provider, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s response decode: %v: %w", provider, err, domain.ErrProviderCall)
	}
	return nil
}

// apiError extracts a short diagnostic from a non-2xx response.
func apiError(provider string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		return fmt.Errorf("%s API error %d: %w", provider, resp.StatusCode, domain.ErrProviderCall)
	}
	return fmt.Errorf("%s API error %d: %s: %w", provider, resp.StatusCode, detail, domain.ErrProviderCall)
}
