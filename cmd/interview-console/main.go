package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/interview-console/internal/availability"
	"github.com/terra-clan/interview-console/internal/config"
	"github.com/terra-clan/interview-console/internal/demo"
	"github.com/terra-clan/interview-console/internal/directory"
	"github.com/terra-clan/interview-console/internal/health"
	"github.com/terra-clan/interview-console/internal/interview"
	"github.com/terra-clan/interview-console/internal/metrics"
	"github.com/terra-clan/interview-console/internal/notify"
	"github.com/terra-clan/interview-console/internal/tracing"
	"github.com/terra-clan/interview-console/internal/web"
	"github.com/terra-clan/interview-console/pkg/client"
)

func main() {
	// Setup structured logging
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if l, err := cfg.LogLevel(); err == nil {
		level.Set(l)
	}
	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load display timezone", "error", err)
		os.Exit(1)
	}

	slog.Info("starting interview-console",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"backend", cfg.Backend.BaseURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, logger, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName, cfg.Telemetry.Environment)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// backend calls are traced and counted
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Telemetry.MetricsEnabled {
		transport = metrics.NewTransport(transport)
	}
	api := client.New(cfg.Backend.BaseURL,
		client.WithHTTPClient(&http.Client{Transport: tracing.Transport(transport)}),
		client.WithTimeout(cfg.Backend.Timeout),
		client.WithLogger(logger),
	)

	notifier := notify.NewNotifier(notify.Config{
		SuccessTTL: cfg.Toasts.SuccessTTL,
		ErrorTTL:   cfg.Toasts.ErrorTTL,
	}, logger)
	hub := notify.NewHub(notifier)
	if cfg.Telemetry.MetricsEnabled {
		notifier.AddSink(metrics.ToastSink{})
	}

	registry := health.NewRegistry(5 * time.Second)
	registry.Register("backend", health.CheckerFunc(api.Ping))

	// Redis relay is optional
	var relay *notify.RedisRelay
	if cfg.Redis.Address != "" {
		initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
		relay, err = notify.NewRedisRelay(initCtx, &redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Channel, notifier)
		initCancel()
		if err != nil {
			slog.Error("failed to create redis relay", "error", err)
			os.Exit(1)
		}
		registry.Register("redis", relay)
		relay.Start(ctx)
	}

	slog.Info("health checks registered", "checks", registry.List())

	dir := directory.NewController(api, directory.NewRoster(), notifier, logger)
	avail := availability.NewController(api, notifier, logger, loc)
	interviews := interview.NewController(api, notifier, logger, loc)
	seeder := demo.NewSeeder(api, dir, notifier, logger, avail, interviews)

	// Initial roster load; failures are retried on every page view
	if err := dir.LoadAll(ctx); err != nil {
		slog.Warn("initial user load failed", "error", err)
	}

	// Start toast sweeper
	notify.NewSweeper(notifier, cfg.Toasts.SweepInterval).Start(ctx)

	// Setup HTTP server
	server := web.NewServer(web.Deps{
		Directory:    dir,
		Availability: avail,
		Interviews:   interviews,
		Seeder:       seeder,
		Notifier:     notifier,
		Hub:          hub,
		Health:       registry,
		BackendURL:   api.BaseURL(),
		Metrics:      cfg.Telemetry.MetricsEnabled,
		Logger:       logger,
	})
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      tracing.Handler(server.Router(), cfg.Telemetry.ServiceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout*2 + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if relay != nil {
		if err := relay.Close(); err != nil {
			slog.Error("redis relay close error", "error", err)
		}
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown error", "error", err)
	}

	slog.Info("interview-console stopped")
}
