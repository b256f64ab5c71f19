package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/procureflow/procureflow-backend/pkg/config"
	"github.com/procureflow/procureflow-backend/pkg/logger"
	"github.com/procureflow/procureflow-backend/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "inbox-poller"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "inbox-poller",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	inbox, err := newGmailMailbox(ctx, cfg.Poller.CredentialsPath, cfg.Poller.TokenPath, cfg.Poller.Query)
	if err != nil {
		logg.Error(ctx, "failed to open gmail mailbox", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	pollerMetrics := metrics.NewPollerMetrics(registry)
	go serveMetrics(ctx, logg, cfg.Poller.MetricsAddr, registry)

	backend := newBackendClient(cfg.Poller.BackendURL)
	service, err := NewService(ServiceParams{
		Config:  cfg.Poller,
		Logger:  logg,
		Mailbox: inbox,
		Vendors: backend,
		Forward: backend,
		Metrics: pollerMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create poller service", err)
		os.Exit(1)
	}

	startCtx := logg.WithFields(ctx, map[string]any{
		"backend":  cfg.Poller.BackendURL,
		"interval": cfg.Poller.Interval.String(),
	})
	logg.Info(startCtx, "starting inbox poller")

	service.Run(ctx)
	logg.Info(ctx, "inbox poller shutting down gracefully")
}

func serveMetrics(ctx context.Context, logg *logger.Logger, addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "metrics server stopped unexpectedly", err)
	}
}
