package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pramodsinghlodhi/masterprint-backend/api/routes"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/agents"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/assignments"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/deliveries"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/orders"
	"github.com/pramodsinghlodhi/masterprint-backend/internal/pricing"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/config"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/db"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/logger"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/metrics"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/migrate"
	"github.com/pramodsinghlodhi/masterprint-backend/pkg/redis"
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

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	lifecycleMetrics := metrics.NewLifecycleMetrics(promRegistry)

	ordersRepo := orders.NewRepository(dbClient.DB())
	agentsRepo := agents.NewRepository(dbClient.DB())
	pricingRepo := pricing.NewRepository(dbClient.DB())

	numberSource, err := orders.NewRedisNumberSource(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create order number source", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(ordersRepo, dbClient, numberSource)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	agentsService, err := agents.NewService(agentsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create agents service", err)
		os.Exit(1)
	}
	assignmentsService, err := assignments.NewService(ordersRepo, agentsRepo, dbClient, lifecycleMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create assignments service", err)
		os.Exit(1)
	}
	deliveriesService, err := deliveries.NewService(ordersRepo, agentsRepo, dbClient, lifecycleMetrics, cfg.Delivery.DefaultCommissionPct)
	if err != nil {
		logg.Error(context.Background(), "failed to create deliveries service", err)
		os.Exit(1)
	}
	pricingService, err := pricing.NewService(pricingRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
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

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promRegistry,
			ordersService,
			agentsService,
			assignmentsService,
			deliveriesService,
			pricingService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
