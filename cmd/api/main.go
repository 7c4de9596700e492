package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/minshop/minshop-backend/api/routes"
	"github.com/minshop/minshop-backend/internal/auth"
	"github.com/minshop/minshop-backend/internal/cart"
	"github.com/minshop/minshop-backend/internal/feedback"
	"github.com/minshop/minshop-backend/internal/orders"
	"github.com/minshop/minshop-backend/internal/products"
	"github.com/minshop/minshop-backend/internal/reviews"
	"github.com/minshop/minshop-backend/internal/users"
	"github.com/minshop/minshop-backend/pkg/config"
	"github.com/minshop/minshop-backend/pkg/db"
	"github.com/minshop/minshop-backend/pkg/idempotency"
	"github.com/minshop/minshop-backend/pkg/logger"
	"github.com/minshop/minshop-backend/pkg/metrics"
	"github.com/minshop/minshop-backend/pkg/store"
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

	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStoreMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	dbClient, err := db.New(context.Background(), cfg.Data, logg, store.WithObserver(storeMetrics))
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap storage", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(dbClient.Users, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	usersService, err := users.NewService(dbClient.Users)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}
	productsService, err := products.NewService(dbClient.Products)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}
	reviewsService, err := reviews.NewService(dbClient.Reviews, dbClient.Products)
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(dbClient.Users, dbClient.Products)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(dbClient.Users, dbClient.Orders, cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	feedbackService, err := feedback.NewService(dbClient.Feedback)
	if err != nil {
		logg.Error(context.Background(), "failed to create feedback service", err)
		os.Exit(1)
	}

	// Finish any checkout interrupted between order persist and cart clear.
	if reconciled, err := ordersService.ReconcileCarts(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to reconcile carts", err)
		os.Exit(1)
	} else if reconciled > 0 {
		ctx := logg.WithField(context.Background(), "reconciled", reconciled)
		logg.Info(ctx, "finished interrupted checkouts")
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

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			HTTPMetrics: httpMetrics,
			Registry:    registry,
			Idempotency: idempotency.NewMemory(),
			Auth:        authService,
			Users:       usersService,
			Products:    productsService,
			Reviews:     reviewsService,
			Cart:        cartService,
			Orders:      ordersService,
			Feedback:    feedbackService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
