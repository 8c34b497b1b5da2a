package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/baxromumarov/country-explorer/internal/api"
	"github.com/baxromumarov/country-explorer/internal/config"
	"github.com/baxromumarov/country-explorer/internal/core"
	"github.com/baxromumarov/country-explorer/internal/countries"
	"github.com/baxromumarov/country-explorer/internal/httpx"
	"github.com/baxromumarov/country-explorer/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	client := httpx.NewClient(httpx.Options{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		RPS:       cfg.OutboundRPS,
		Burst:     cfg.OutboundBurst,
	})
	fetcher := countries.NewFetcher(client, cfg)
	metrics := observability.NewMetrics()

	countrySvc := core.NewCountryService(fetcher, metrics)
	contactSvc := core.NewContactService(metrics)

	srv := api.NewServer(countrySvc, contactSvc, metrics, api.Options{
		CORSOrigins: cfg.CORSOrigins,
		StaticDir:   cfg.StaticDir,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Port, "upstream", cfg.BaseURL, "api_key_configured", cfg.HasAPIKey())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
