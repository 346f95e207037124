package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/OmkarVetal12/synlawn/api/controllers"
	"github.com/OmkarVetal12/synlawn/api/routes"
	"github.com/OmkarVetal12/synlawn/internal/drafts"
	"github.com/OmkarVetal12/synlawn/internal/productitems"
	"github.com/OmkarVetal12/synlawn/internal/quotes"
	"github.com/OmkarVetal12/synlawn/internal/workflow"
	"github.com/OmkarVetal12/synlawn/pkg/config"
	"github.com/OmkarVetal12/synlawn/pkg/db"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
	"github.com/OmkarVetal12/synlawn/pkg/env"
	"github.com/OmkarVetal12/synlawn/pkg/instance"
	"github.com/OmkarVetal12/synlawn/pkg/logger"
	"github.com/OmkarVetal12/synlawn/pkg/metrics"
	"github.com/OmkarVetal12/synlawn/pkg/migrate"
	"github.com/OmkarVetal12/synlawn/pkg/outbox"
	"github.com/OmkarVetal12/synlawn/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	deps := routes.Deps{
		Config: cfg,
		Logger: logg,
		DB:     controllers.Dependency{Name: "database", Pinger: dbClient},
	}

	// Redis is optional; drafts fall back to process memory without it.
	var draftStore drafts.Store = drafts.NewMemoryStore()
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		draftStore = drafts.NewRedisStore(redisClient, cfg.Workflow.DraftTTL)
		deps.Redis = controllers.Dependency{Name: "redis", Pinger: redisClient}
		deps.Idempotency = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, drafts are kept in memory and confirm is not replayable")
	}

	publisher := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	items, err := productitems.NewService(dbClient, productitems.NewRepository(dbClient.DB()), publisher, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product item service", err)
		os.Exit(1)
	}
	quoteService, err := quotes.NewService(dbClient, quotes.NewRepository(dbClient.DB()), items, publisher, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create quote service", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registry := workflow.NewRegistry(workflow.RegistryConfig{
		Collaborators: map[enums.WorkflowMode]workflow.Collaborators{
			enums.WorkflowModeHold: {
				Demand:    quoteService.HoldSource(),
				Inventory: items.HoldChecker(),
				Hold:      items,
			},
			enums.WorkflowModeConsume: {
				Demand:    quoteService.ConsumeSource(),
				Inventory: items.ConsumeChecker(),
				Consume:   items,
			},
		},
		Drafts:        draftStore,
		Logger:        logg,
		Metrics:       metrics.NewWorkflowMetrics(promRegistry),
		IdleTTL:       cfg.Workflow.IdleTTL,
		RemoteTimeout: cfg.Workflow.RemoteTimeout,
	})
	deps.Workflows = registry
	deps.Quotes = quoteService
	deps.Consumptions = items
	deps.Gatherer = promRegistry

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go registry.Run(ctx, cfg.Workflow.SweepInterval)

	port := env.Get("PORT", cfg.App.Port)
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID("local"),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(deps),
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
		if err := registry.Close(shutdownCtx); err != nil {
			logg.Error(ctx, "failed to flush workflow drafts", err)
		}
	}
}
