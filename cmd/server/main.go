package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sheikh-saqib/bank-account-simulator/internal/config"
	"github.com/sheikh-saqib/bank-account-simulator/internal/events"
	"github.com/sheikh-saqib/bank-account-simulator/internal/events/kafka"
	interfaces "github.com/sheikh-saqib/bank-account-simulator/internal/interfaces"
	"github.com/sheikh-saqib/bank-account-simulator/internal/ledger"
	"github.com/sheikh-saqib/bank-account-simulator/internal/pricing"
	"github.com/sheikh-saqib/bank-account-simulator/internal/server"
	"github.com/sheikh-saqib/bank-account-simulator/internal/storage/memory"
	"github.com/sheikh-saqib/bank-account-simulator/internal/storage/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	pol, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		slog.Error("Invalid policy file", "path", cfg.PolicyFile, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var closers []func() error

	// Storage
	var store interfaces.LedgerStore
	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("Database connection failed", "error", err)
			os.Exit(1)
		}
		closers = append(closers, db.Close)

		pg := postgres.NewPostgresLedgerStore(db)
		if err := pg.Init(ctx); err != nil {
			slog.Error("Schema setup failed", "error", err)
			os.Exit(1)
		}
		store = pg
	default:
		store = memory.NewMemoryLedgerStore()
	}

	// Events
	var publisher interfaces.EventPublisher = events.NewLogPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		closers = append(closers, kp.Close)
		publisher = kp
	}

	// Prices
	var prices interfaces.PriceClient = pricing.NewHTTPClient(cfg.PriceAPIURL, cfg.PriceTimeout)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		closers = append(closers, rdb.Close)
		prices = pricing.NewCached(prices, pricing.NewRedisCache(rdb), cfg.PriceCacheTTL, logger)
	}

	ledgerService := ledger.NewLedger(store, ledger.Config{
		Policy:       pol,
		Publisher:    publisher,
		Prices:       prices,
		PriceTimeout: cfg.PriceTimeout,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewHandler(ledgerService, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Starting server",
			"env", cfg.Env,
			"port", cfg.Port,
			"store", cfg.Store,
			"kafka", len(cfg.KafkaBrokers) > 0,
			"price_cache", cfg.RedisAddr != "",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			slog.Error("Close failed", "error", err)
		}
	}
	slog.Info("Server exited")
}
