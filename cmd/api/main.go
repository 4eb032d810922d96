package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/spacerent-backend/api/routes"
	"github.com/angelmondragon/spacerent-backend/internal/commission"
	"github.com/angelmondragon/spacerent-backend/internal/commissionconfig"
	"github.com/angelmondragon/spacerent-backend/internal/payments"
	stripewebhook "github.com/angelmondragon/spacerent-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/spacerent-backend/pkg/config"
	"github.com/angelmondragon/spacerent-backend/pkg/db"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
	"github.com/angelmondragon/spacerent-backend/pkg/env"
	"github.com/angelmondragon/spacerent-backend/pkg/instance"
	"github.com/angelmondragon/spacerent-backend/pkg/logger"
	"github.com/angelmondragon/spacerent-backend/pkg/metrics"
	"github.com/angelmondragon/spacerent-backend/pkg/migrate"
	"github.com/angelmondragon/spacerent-backend/pkg/openpix"
	"github.com/angelmondragon/spacerent-backend/pkg/redis"
	"github.com/angelmondragon/spacerent-backend/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	commissionMetrics := metrics.NewCommissionMetrics(registry)

	defaultType, err := enums.ParseCommissionType(cfg.Commission.DefaultType)
	requireResource(ctx, logg, "commission defaults", err)
	defaults := commission.GlobalTerms{
		Type:  defaultType,
		Value: cfg.Commission.DefaultValueDecimal(),
	}

	configRepo := commissionconfig.NewRepository(dbClient.DB())
	commissionService, err := commissionconfig.NewService(commissionconfig.ServiceParams{
		Repo:              configRepo,
		TransactionRunner: dbClient,
		Cache:             redisClient,
		CacheTTL:          cfg.Commission.CacheTTL,
		Defaults:          &defaults,
		Logger:            logg,
	})
	requireResource(ctx, logg, "commission config service", err)

	loader, err := commissionconfig.NewLoader(configRepo, dbClient, defaults)
	requireResource(ctx, logg, "commission snapshot loader", err)

	paymentParams := payments.ServiceParams{
		Repo:    payments.NewRepository(dbClient.DB()),
		Loader:  loader,
		Metrics: commissionMetrics,
		Logger:  logg,
	}

	if cfg.OpenPix.AppID != "" {
		pixClient, err := openpix.NewClient(cfg.OpenPix.AppID,
			openpix.WithBaseURL(cfg.OpenPix.BaseURL),
			openpix.WithTimeout(cfg.OpenPix.Timeout),
		)
		requireResource(ctx, logg, "openpix client", err)
		paymentParams.Pix = pixClient
	} else {
		logg.Warn(ctx, "openpix app id not configured; pix charges disabled")
	}

	var (
		stripeClient *stripe.Client
		webhookSvc   *stripewebhook.Service
		webhookGuard *stripewebhook.IdempotencyGuard
	)
	if cfg.Stripe.APIKey != "" {
		stripeClient, err = stripe.NewClient(ctx, cfg.Stripe, logg)
		requireResource(ctx, logg, "stripe client", err)
		paymentParams.Stripe = payments.NewStripeGateway(stripeClient)
		paymentParams.Currency = stripeClient.Currency()
	} else {
		logg.Warn(ctx, "stripe api key not configured; card payments and webhooks disabled")
	}

	paymentsService, err := payments.NewService(paymentParams)
	requireResource(ctx, logg, "payments service", err)

	if stripeClient != nil {
		webhookSvc, err = stripewebhook.NewService(stripewebhook.ServiceParams{Renewals: paymentsService, Logger: logg})
		requireResource(ctx, logg, "stripe webhook service", err)
		webhookGuard, err = stripewebhook.NewIdempotencyGuard(redisClient, cfg.Eventing.WebhookIdempotencyTTL, "stripe-webhook")
		requireResource(ctx, logg, "stripe webhook guard", err)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			redisClient,
			registry,
			paymentsService,
			commissionService,
			stripeClient,
			webhookSvc,
			webhookGuard,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "api server shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
