// Package mcp exposes the routing engine over the Model Context Protocol on
// stdio. Routing errors become tool errors in the response payload, never
// protocol failures.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
	"github.com/Plaidmustache/mcp-omnisearch/internal/usecase/stats"
)

const defaultLimit = 10

// Router is the routing engine view the tool handlers consume (ISP).
type Router interface {
	Route(ctx context.Context, req domain.RouteRequest) (domain.RouteResult, error)
	SearchDirect(ctx context.Context, name, query string, limit int) (domain.RouteResult, error)
}

// Aggregator fans a query out across providers.
type Aggregator interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Result, error)
}

// Reporter builds the usage/health report.
type Reporter interface {
	Report(ctx context.Context) (stats.Report, error)
}

// Server is the MCP stdio front-end.
type Server struct {
	mcp        *server.MCPServer
	router     Router
	aggregator Aggregator
	reporter   Reporter
	logger     *zap.Logger
}

// New creates the MCP server and registers the tool set.
func New(version string, router Router, aggregator Aggregator, reporter Reporter, logger *zap.Logger) *Server {
	s := &Server{
		mcp: server.NewMCPServer("omnisearch", version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		router:     router,
		aggregator: aggregator,
		reporter:   reporter,
		logger:     logger,
	}

	s.mcp.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Web search routed across free-tier providers with automatic failover."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		mcp.WithBoolean("prefer_google", mcp.Description("Prefer Google-sourced results")),
		mcp.WithBoolean("include_content", mcp.Description("Include full page content per result")),
		mcp.WithString("provider", mcp.Description("Call one specific provider instead of routing")),
	), s.handleSearch)

	s.mcp.AddTool(mcp.NewTool("aggregate_search",
		mcp.WithDescription("Query every available provider concurrently and rerank the merged results."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of merged results (default 10)")),
	), s.handleAggregateSearch)

	s.mcp.AddTool(mcp.NewTool("usage_stats",
		mcp.WithDescription("Per-provider quota usage, estimated paid-tier cost and health."),
	), s.handleUsageStats)

	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// searchPayload is the tool response shape for search calls.
type searchPayload struct {
	Provider     string          `json:"provider,omitempty"`
	UsedPaidTier bool            `json:"used_paid_tier,omitempty"`
	Results      []domain.Result `json:"results"`
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", defaultLimit)

	var res domain.RouteResult
	if provider := req.GetString("provider", ""); provider != "" {
		res, err = s.router.SearchDirect(ctx, provider, query, limit)
	} else {
		res, err = s.router.Route(ctx, domain.RouteRequest{
			Query:          query,
			Limit:          limit,
			PreferGoogle:   req.GetBool("prefer_google", false),
			IncludeContent: req.GetBool("include_content", false),
		})
	}
	if err != nil {
		s.logger.Warn("search tool call failed", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(searchPayload{
		Provider:     res.Provider,
		UsedPaidTier: res.UsedPaidTier,
		Results:      res.Results,
	})
}

func (s *Server) handleAggregateSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := s.aggregator.Search(ctx, query, req.GetInt("limit", defaultLimit))
	if err != nil {
		s.logger.Warn("aggregate tool call failed", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(searchPayload{Results: results})
}

func (s *Server) handleUsageStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.reporter.Report(ctx)
	if err != nil {
		s.logger.Warn("stats tool call failed", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.Render()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
