package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/procureflow/procureflow-backend/api/controllers"
	"github.com/procureflow/procureflow-backend/api/routes"
	"github.com/procureflow/procureflow-backend/internal/ai"
	"github.com/procureflow/procureflow-backend/internal/ai/gemini"
	"github.com/procureflow/procureflow-backend/internal/dispatch"
	"github.com/procureflow/procureflow-backend/internal/events"
	"github.com/procureflow/procureflow-backend/internal/inbound"
	"github.com/procureflow/procureflow-backend/internal/mailer"
	"github.com/procureflow/procureflow-backend/internal/proposals"
	"github.com/procureflow/procureflow-backend/internal/rfps"
	"github.com/procureflow/procureflow-backend/internal/vendors"
	"github.com/procureflow/procureflow-backend/pkg/config"
	"github.com/procureflow/procureflow-backend/pkg/db"
	"github.com/procureflow/procureflow-backend/pkg/logger"
	"github.com/procureflow/procureflow-backend/pkg/migrate"
	"github.com/procureflow/procureflow-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis is optional; without it inbound deliveries are not deduplicated.
	var redisClient *redis.Client
	var guard *inbound.DedupeGuard
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		guard, err = inbound.NewDedupeGuard(redisClient, cfg.Redis.DedupeTTL, "inbound-email")
		if err != nil {
			logg.Error(context.Background(), "failed to create dedupe guard", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured; inbound dedupe disabled")
	}

	assistant, err := buildAssistant(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ai assistant", err)
		os.Exit(1)
	}

	sender, err := mailer.NewSMTPSender(cfg.SMTP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	hub := events.NewHub(logg, []string{cfg.App.FrontendURL})

	vendorRepo := vendors.NewRepository(dbClient.DB())
	rfpRepo := rfps.NewRepository(dbClient.DB())
	dispatchRepo := dispatch.NewRepository(dbClient.DB())
	proposalRepo := proposals.NewRepository(dbClient.DB())

	vendorService, err := vendors.NewService(vendorRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor service", err)
		os.Exit(1)
	}
	rfpService, err := rfps.NewService(rfpRepo, assistant)
	if err != nil {
		logg.Error(context.Background(), "failed to create rfp service", err)
		os.Exit(1)
	}
	dispatchService, err := dispatch.NewService(rfpRepo, vendorRepo, dispatchRepo, sender, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch service", err)
		os.Exit(1)
	}
	proposalService, err := proposals.NewService(proposalRepo, rfpRepo, assistant, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create proposal service", err)
		os.Exit(1)
	}
	inboundService, err := inbound.NewService(inbound.ServiceParams{
		Vendors:    vendorRepo,
		RFPs:       rfpRepo,
		Dispatches: dispatchRepo,
		Proposals:  proposalRepo,
		Assistant:  assistant,
		Hub:        hub,
		Guard:      guard,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inbound service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	var redisPinger controllers.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Services{
			Vendors:   vendorService,
			RFPs:      rfpService,
			Dispatch:  dispatchService,
			Proposals: proposalService,
			Inbound:   inboundService,
			Hub:       hub,
			DB:        dbClient,
			Redis:     redisPinger,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildAssistant selects the mock collaborator when configured or when no
// API key is present, matching local development without Gemini access.
func buildAssistant(ctx context.Context, cfg *config.Config, logg *logger.Logger) (ai.Assistant, error) {
	if cfg.AI.UseMock || cfg.AI.APIKey == "" {
		logg.Warn(ctx, "using mock ai assistant")
		return ai.NewMockAssistant(), nil
	}
	generator, err := gemini.NewGenerator(ctx, cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		return nil, err
	}
	return ai.NewAssistant(generator, logg, cfg.AI.Timeout)
}
