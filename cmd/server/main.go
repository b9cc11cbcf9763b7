package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"votecheck/internal/election/handler"
	electionmetrics "votecheck/internal/election/metrics"
	"votecheck/internal/election/registry"
	"votecheck/internal/election/service"
	"votecheck/internal/platform/config"
	"votecheck/internal/platform/httpserver"
	"votecheck/internal/platform/logger"
	platformmetrics "votecheck/internal/platform/metrics"
	platformredis "votecheck/internal/platform/redis"
	"votecheck/internal/platform/tracing"
	ratelimitmetrics "votecheck/internal/ratelimit/metrics"
	ratelimit "votecheck/internal/ratelimit/middleware"
	"votecheck/internal/ratelimit/store/bucket"
	"votecheck/pkg/platform/middleware/metadata"
)

const serviceName = "votecheck"

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, serviceName)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	svc := buildService(cfg, log)
	limiter := buildRateLimiter(cfg, redisClient, log)
	h := handler.New(svc, log,
		limiter.RateLimit,
		chimiddleware.Timeout(cfg.Registry.Timeout+5*time.Second),
	)

	var health healthChecker
	if redisClient != nil {
		health = redisClient
	}
	clientIP, err := metadata.NewResolver(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	router := newRouter(h, health, platformmetrics.New(), clientIP)
	srv := httpserver.New(cfg.Addr, otelhttp.NewHandler(router, serviceName), cfg.Registry.Timeout)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting votecheck", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func buildService(cfg config.Server, log *slog.Logger) *service.Service {
	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	opts := []registry.Option{
		registry.WithHTTPClient(httpClient),
		registry.WithUserAgent(cfg.Registry.UserAgent),
		registry.WithTimeout(cfg.Registry.Timeout),
	}
	election := registry.NewClient(registry.SourceElection, cfg.Registry.ElectionURL, opts...)
	referendum := registry.NewClient(registry.SourceReferendum, cfg.Registry.ReferendumURL, opts...)
	if !referendum.Configured() {
		log.Warn("referendum registry not configured; its lookups will report unavailable")
	}

	return service.New(election, referendum,
		service.WithLogger(log),
		service.WithMetrics(electionmetrics.New()),
	)
}

// buildRateLimiter uses Redis when configured, with the in-memory store as
// fallback while Redis is failing.
func buildRateLimiter(cfg config.Server, redisClient *platformredis.Client, log *slog.Logger) *ratelimit.Middleware {
	memory := bucket.New()
	opts := []ratelimit.Option{
		ratelimit.WithDisabled(cfg.RateLimit.Limit == 0),
		ratelimit.WithMetrics(ratelimitmetrics.New()),
	}

	var store ratelimit.Store = memory
	if redisClient != nil {
		store = bucket.NewRedis(redisClient.Client)
		opts = append(opts, ratelimit.WithFallback(memory))
	}
	return ratelimit.New(store, cfg.RateLimit.Limit, cfg.RateLimit.Window, log, opts...)
}
