// Package ops serves the operational HTTP surface: health, metrics and a
// read-only stats view. It is separate from the MCP transport so probes never
// touch the protocol channel.
package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	logpkg "github.com/Plaidmustache/mcp-omnisearch/internal/logger"
	"github.com/Plaidmustache/mcp-omnisearch/internal/usecase/health"
	"github.com/Plaidmustache/mcp-omnisearch/internal/usecase/stats"
)

// HealthChecker runs the component health checks.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// Reporter builds the usage/health report.
type Reporter interface {
	Report(ctx context.Context) (stats.Report, error)
}

// Server is the ops HTTP server.
type Server struct {
	health   HealthChecker
	reporter Reporter
	logger   *zap.Logger
}

// NewServer creates the ops server.
func NewServer(health HealthChecker, reporter Reporter, logger *zap.Logger) *Server {
	return &Server{health: health, reporter: reporter, logger: logger}
}

// Handler builds the chi router for the ops endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	return r
}

// requestLogger places a request-scoped logger in the context and emits one
// canonical log line per request.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := middleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	report, err := s.reporter.Report(r.Context())
	if err != nil {
		logpkg.FromContext(r.Context()).Error("stats report failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
