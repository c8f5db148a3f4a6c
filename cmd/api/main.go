package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/finlyapp/finly-backend/api/controllers"
	"github.com/finlyapp/finly-backend/api/routes"
	"github.com/finlyapp/finly-backend/internal/notifications"
	"github.com/finlyapp/finly-backend/internal/session"
	"github.com/finlyapp/finly-backend/internal/signals"
	"github.com/finlyapp/finly-backend/internal/soundcue"
	"github.com/finlyapp/finly-backend/internal/welcome"
	"github.com/finlyapp/finly-backend/pkg/config"
	"github.com/finlyapp/finly-backend/pkg/db"
	"github.com/finlyapp/finly-backend/pkg/logger"
	"github.com/finlyapp/finly-backend/pkg/metrics"
	"github.com/finlyapp/finly-backend/pkg/migrate"
	"github.com/finlyapp/finly-backend/pkg/realtime"
	"github.com/finlyapp/finly-backend/pkg/redis"
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

	feed, err := realtime.NewRedisFeed(redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create change feed", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	notifierMetrics := metrics.NewNotifierMetrics(registry)

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), feed, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	queues, err := notifications.NewQueueManager(notifications.QueueManagerOptions{
		Service:  notificationsService,
		Profiles: signals.NewProfileProvider(dbClient.DB()),
		Sink:     soundcue.NewLogSink(logg),
		Logger:   logg,
		Metrics:  notifierMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create popup queues", err)
		os.Exit(1)
	}

	sessionFlags, err := session.NewRedisFlags(redisClient, cfg.Notifier.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session flags", err)
		os.Exit(1)
	}

	selector, err := welcome.NewSelector(welcome.SelectorOptions{
		Flags:         sessionFlags,
		Budgets:       signals.NewBudgetProvider(dbClient.DB()),
		Subscriptions: signals.NewSubscriptionsProvider(dbClient.DB()),
		Profile:       signals.NewProfileProvider(dbClient.DB()),
		Queue:         queues,
		Logger:        logg,
		Config: welcome.Config{
			SelectionDelay: cfg.Notifier.SelectionDelay,
			DisplayDelay:   cfg.Notifier.DisplayDelay,
			AlertRatio:     cfg.Notifier.BudgetAlertRatio,
		},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create welcome selector", err)
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
		Handler: routes.NewRouter(routes.RouterParams{
			Config: cfg,
			Logger: logg,
			Pingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			Notifications: notificationsService,
			SessionFlags:  sessionFlags,
			Welcome:       selector,
			Queues:        queues,
			Metrics:       registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
