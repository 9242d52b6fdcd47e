package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/api/routes"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/buybox"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/credits"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/inventory"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/marketplaces"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/repricing"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/config"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/logger"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/metrics"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/migrate"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/redis"
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

	amazonAdapter, err := marketplaces.NewAmazonAdapter(cfg.Amazon)
	if err != nil {
		logg.Error(context.Background(), "failed to create amazon adapter", err)
		os.Exit(1)
	}
	takealotAdapter, err := marketplaces.NewTakealotAdapter(cfg.Takealot)
	if err != nil {
		logg.Error(context.Background(), "failed to create takealot adapter", err)
		os.Exit(1)
	}
	registry, err := marketplaces.NewRegistry(amazonAdapter, takealotAdapter)
	if err != nil {
		logg.Error(context.Background(), "failed to create marketplace registry", err)
		os.Exit(1)
	}

	amazonMonitor, err := buybox.NewAmazonMonitor(amazonAdapter, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create amazon monitor", err)
		os.Exit(1)
	}
	takealotMonitor, err := buybox.NewTakealotMonitor(takealotAdapter, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create takealot monitor", err)
		os.Exit(1)
	}
	monitors, err := buybox.NewMonitorSet(amazonMonitor, takealotMonitor)
	if err != nil {
		logg.Error(context.Background(), "failed to create monitor set", err)
		os.Exit(1)
	}

	inventoryRepo := inventory.NewRepository(dbClient.DB())

	creditService, err := credits.NewService(credits.Params{
		Repo:     credits.NewRepository(dbClient.DB()),
		TxRunner: dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create credits service", err)
		os.Exit(1)
	}

	buyboxService, err := buybox.NewService(buybox.Params{
		Repo:      buybox.NewRepository(dbClient.DB()),
		Inventory: inventoryRepo,
		Monitors:  monitors,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create buybox service", err)
		os.Exit(1)
	}

	scheduler, err := repricing.NewScheduler(repricing.SchedulerParams{
		Rules:              repricing.NewRuleRepository(dbClient.DB()),
		Events:             repricing.NewEventRepository(dbClient.DB()),
		Histories:          buybox.NewRepository(dbClient.DB()),
		Inventory:          inventoryRepo,
		Credits:            creditService,
		Registry:           registry,
		Monitors:           monitors,
		Logger:             logg,
		Metrics:            metrics.NewRepricingMetrics(prometheus.DefaultRegisterer),
		CostPerPriceUpdate: cfg.Repricing.CostPerPriceUpdate,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create repricing scheduler", err)
		os.Exit(1)
	}

	repricingService, err := repricing.NewService(repricing.ServiceParams{
		Rules:     repricing.NewRuleRepository(dbClient.DB()),
		Events:    repricing.NewEventRepository(dbClient.DB()),
		Scheduler: scheduler,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create repricing service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, buyboxService, repricingService, creditService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
