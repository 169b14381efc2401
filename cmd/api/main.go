package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cardledger/cardledger/internal/config"
	"github.com/cardledger/cardledger/internal/infra"
	"github.com/cardledger/cardledger/internal/journal"
	"github.com/cardledger/cardledger/internal/logging"
	"github.com/cardledger/cardledger/internal/notification"
	"github.com/cardledger/cardledger/internal/routes"
	"github.com/cardledger/cardledger/internal/server"
	"github.com/cardledger/cardledger/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := infra.EnsureSchema(ctx, db, migrations.FS); err != nil {
			logger.Error("ensure schema", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("DATABASE_URL not set, ledgers are kept in memory", slog.String("env", cfg.AppEnv))
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL, cfg.AppName)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	} else {
		logger.Warn("REDIS_URL not set, idempotency and rate limiting are disabled", slog.String("env", cfg.AppEnv))
	}

	var corrections journal.Journal = journal.Nop{}
	if cfg.JournalDir != "" {
		wal, err := journal.OpenWAL(cfg.JournalDir)
		if err != nil {
			logger.Error("open correction journal", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := wal.Close(); err != nil {
				logger.Warn("close correction journal", "error", err)
			}
		}()
		corrections = wal
	}

	var notifier notification.Notifier = notification.NewLoggerNotifier(logger)
	if len(cfg.KafkaBrokers) > 0 {
		writer, err := infra.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			logger.Error("build kafka writer", "error", err)
			os.Exit(1)
		}
		kafkaNotifier := notification.NewKafkaNotifier(writer)
		defer func() {
			if err := kafkaNotifier.Close(); err != nil {
				logger.Warn("close kafka writer", "error", err)
			}
		}()
		notifier = notification.Fanout{notifier, kafkaNotifier}
	}

	srv, err := server.New(routes.Deps{
		Cfg:      cfg,
		DB:       db,
		Cache:    cache,
		Logger:   logger,
		Journal:  corrections,
		Notifier: notifier,
	})
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly", slog.String("app", cfg.AppName))
}
