package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/tabish-uharvest/uharvest-vendingm-service/api/routes"
	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/catalog"
	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/dispatch"
	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/inventory"
	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/machines"
	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/orders"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/config"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/logger"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/metrics"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/migrate"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/pubsub"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		_ = multierr.Combine(redisClient.Close(), dbClient.Close())
		os.Exit(1)
	}

	closeClients := func() {
		if err := multierr.Combine(pubsubClient.Close(), redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing clients", err)
		}
	}

	publisher, err := dispatch.NewPublisher(pubsubClient.DispatchPublisher())
	if err != nil {
		logg.Error(context.Background(), "failed to build dispatch publisher", err)
		closeClients()
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	machinesRepo := machines.NewRepository(dbClient.DB())
	machinesSvc, err := machines.NewService(machinesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create machines service", err)
		closeClients()
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		machinesRepo,
		catalogRepo,
		inventory.NewLedger(),
		dbClient,
		redisClient,
		publisher,
		logg,
		orderMetrics,
		cfg.Orders.MachineLockTTL,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		closeClients()
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, pubsubClient, ordersSvc, machinesSvc, catalogRepo, registry),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			closeClients()
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error shutting down api server", err)
		}
	}

	closeClients()
	logg.Info(ctx, "api server shut down gracefully")
}
