package domain

import "context"

// Result is a single search hit from any provider.
type Result struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
	Source   string `json:"source"`
	Content  string `json:"content,omitempty"` // full page content, content-capable providers only
}

// RouteRequest is one routed search call.
type RouteRequest struct {
	Query          string
	Limit          int  // max results, 0 = provider default
	PreferGoogle   bool // selects the Google-first provider stack
	IncludeContent bool // short-circuit to the content-capable provider
}

// RouteResult is the outcome of a routed search call.
type RouteResult struct {
	Results      []Result
	Provider     string
	UsedPaidTier bool
}

// Searcher is the uniform provider capability despite heterogeneous backends.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// ContentSearcher additionally retrieves full page content per result.
// Implemented only by the content-capable provider.
type ContentSearcher interface {
	SearchWithContent(ctx context.Context, query string, limit int) ([]Result, error)
}
