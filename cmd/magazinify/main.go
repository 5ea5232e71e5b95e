// Package main is the entry point for the Magazinify API server. It loads
// configuration, connects to services, starts the job worker and cadence
// scheduler, and serves the HTTP API with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"magazinify/internal/ai"
	"magazinify/internal/auth"
	"magazinify/internal/billing"
	"magazinify/internal/cache"
	"magazinify/internal/config"
	"magazinify/internal/database"
	"magazinify/internal/httpapi"
	"magazinify/internal/jobs"
	"magazinify/internal/middleware"
	"magazinify/internal/pipeline"
	"magazinify/internal/scheduler"
	"magazinify/internal/storage"
	"magazinify/internal/store"
)

func main() {
	// Structured logger for the whole process.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	tokenStore := auth.NewTokenStore(valkeyClient)
	publishedCache := cache.NewPublishedCache(valkeyClient, cache.DefaultPublishedTTL)

	// Data stores.
	userStore := store.NewUserStore(db)
	tenantStore := store.NewTenantStore(db)
	magazineStore := store.NewMagazineStore(db)
	blueprintStore := store.NewBlueprintStore(db)
	issueStore := store.NewIssueStore(db)
	articleStore := store.NewArticleStore(db)
	adSlotStore := store.NewAdSlotStore(db)
	analyticsStore := store.NewAnalyticsStore(db)
	jobStore := store.NewJobStore(db)

	// S3-compatible object storage (optional; placeholders are used without it).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, generated imagery falls back to placeholders")
	}

	// AI provider registry.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"gemini":  {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL},
	})
	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	generator := pipeline.New(aiRegistry, storageClient, logger)

	// Background job worker.
	worker := jobs.New(jobs.Config{
		Jobs:       jobStore,
		Issues:     issueStore,
		Magazines:  magazineStore,
		Blueprints: blueprintStore,
		Tenants:    tenantStore,
		Articles:   articleStore,
		Generator:  generator,
		Cache:      publishedCache,
		Logger:     logger,
		Poll:       cfg.WorkerPollInterval,
	})
	worker.Start()

	// Cadence scheduler.
	sched := scheduler.New(scheduler.Config{
		Blueprints: blueprintStore,
		Magazines:  magazineStore,
		Tenants:    tenantStore,
		Issues:     issueStore,
		Jobs:       jobStore,
		Cache:      publishedCache,
		Logger:     logger,
		Interval:   cfg.SchedulerInterval,
	})
	sched.Start()

	// Rate limiter for the auth endpoints.
	limiter := middleware.NewRateLimiter(20, time.Minute)
	defer limiter.Stop()

	api := &httpapi.API{
		Users:      userStore,
		Tenants:    tenantStore,
		Magazines:  magazineStore,
		Blueprints: blueprintStore,
		Issues:     issueStore,
		Articles:   articleStore,
		AdSlots:    adSlotStore,
		Analytics:  analyticsStore,
		Jobs:       jobStore,
		Tokens:     tokenStore,
		Cache:      publishedCache,
		Worker:     worker,
		Webhook:    billing.NewWebhook(cfg.StripeWebhookSecret, tenantStore, logger),
		Limiter:    limiter,
		Logger:     logger,
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // publish and generate endpoints do real work
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: stop producing work, drain the worker, then close
	// the HTTP listener.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := worker.Stop(ctx); err != nil {
		slog.Warn("worker did not drain in time", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
