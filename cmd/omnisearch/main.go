package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Plaidmustache/mcp-omnisearch/internal/config"
	dbRedis "github.com/Plaidmustache/mcp-omnisearch/internal/db/redis"
	logpkg "github.com/Plaidmustache/mcp-omnisearch/internal/logger"
	"github.com/Plaidmustache/mcp-omnisearch/internal/metrics"
	usagerepo "github.com/Plaidmustache/mcp-omnisearch/internal/repository/usage"
	mcpTransport "github.com/Plaidmustache/mcp-omnisearch/internal/transport/mcp"
	"github.com/Plaidmustache/mcp-omnisearch/internal/transport/ops"
	"github.com/Plaidmustache/mcp-omnisearch/internal/transport/providers"
	"github.com/Plaidmustache/mcp-omnisearch/internal/usecase/aggregate"
	"github.com/Plaidmustache/mcp-omnisearch/internal/usecase/breaker"
	healthuc "github.com/Plaidmustache/mcp-omnisearch/internal/usecase/health"
	"github.com/Plaidmustache/mcp-omnisearch/internal/usecase/quota"
	"github.com/Plaidmustache/mcp-omnisearch/internal/usecase/router"
	statsuc "github.com/Plaidmustache/mcp-omnisearch/internal/usecase/stats"
	"github.com/Plaidmustache/mcp-omnisearch/internal/version"
)

func main() {
	// Credentials commonly live in a .env next to the binary; absence is fine.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting omnisearch MCP server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
	)

	ctx := context.Background()

	// Usage counter backend: Redis when addrs are configured, otherwise a
	// local JSON file.
	var (
		usageStore usagerepo.Store
		pinger     healthuc.StoragePinger
	)
	if len(cfg.Storage.RedisAddrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Storage.RedisAddrs,
			Password: cfg.Storage.RedisPassword,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer store.Close()

		readiness := time.Duration(cfg.Storage.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Storage.RedisAddrs))

		usageStore = usagerepo.NewRedisStore(store, cfg.Storage.KeyPrefix)
		pinger = store
	} else {
		path := cfg.Storage.FilePath
		if path == "" {
			path, err = usagerepo.DefaultPath(cfg.Storage.Profile)
			if err != nil {
				logger.Fatal("Failed to resolve usage file path", zap.Error(err))
			}
		}
		fileStore := usagerepo.NewFileStore(path)
		if err := fileStore.Ping(ctx); err != nil {
			logger.Fatal("Usage file location not writable", zap.String("path", path), zap.Error(err))
		}
		logger.Info("Using file-backed usage counters", zap.String("path", path))

		usageStore = fileStore
		pinger = fileStore
	}

	metrics.RegisterRoutingMetrics()

	// Provider adapters, built from the credential scan
	creds := make(map[string]providers.Credential, len(cfg.Providers))
	timeouts := make(map[string]time.Duration, len(cfg.Providers))
	for name, p := range cfg.Providers {
		creds[name] = providers.Credential{APIKey: p.APIKey, BaseURL: p.BaseURL}
		timeouts[name] = time.Duration(p.TimeoutSec) * time.Second
	}
	registry := providers.Build(creds, logger)
	if len(registry) == 0 {
		logger.Warn("No search providers configured, every search will fail")
	}

	policies := cfg.Policies()
	keeper := quota.New(usageStore, policies)
	circuit := breaker.New()

	engine := router.New(registry, keeper, circuit, usageStore, logger).
		WithTimeouts(timeouts)
	aggSvc := aggregate.New(router.DefaultStack(), engine, keeper, circuit, logger).
		WithTimeouts(timeouts)
	statsSvc := statsuc.New(usageStore, keeper, circuit, engine.Registered())
	healthSvc := healthuc.New(pinger, len(registry))

	// Optional ops HTTP endpoint alongside the stdio protocol.
	var opsSrv *http.Server
	if cfg.Ops.Port > 0 {
		handler := ops.NewServer(healthSvc, statsSvc, logger).Handler()
		opsSrv = &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Ops.Port),
			Handler:     handler,
			ReadTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("Starting ops HTTP server", zap.String("addr", opsSrv.Addr))
			if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Ops HTTP server error", zap.Error(err))
			}
		}()
	}

	mcpSrv := mcpTransport.New(version.Version, engine, aggSvc, statsSvc, logger)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Serving MCP on stdio",
			zap.Strings("providers", engine.Registered()))
		serveErr <- mcpSrv.ServeStdio()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		// Stdio EOF means the client disconnected; that is a normal exit.
		if err != nil {
			logger.Error("MCP server stopped", zap.Error(err))
		}
	}

	if opsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during ops shutdown", zap.Error(err))
		}
	}

	logger.Info("Server stopped gracefully")
}
