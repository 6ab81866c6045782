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

	"github.com/joho/godotenv"

	"tally/internal/amqp"
	"tally/internal/auth"
	"tally/internal/cache"
	"tally/internal/config"
	apphttp "tally/internal/http"
	applog "tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
	"tally/internal/summary"
)

func main() {
	// .env is for local development; containers set real env vars.
	_ = godotenv.Load()

	applog.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Error("failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		slog.Info("AMQP event stream enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		slog.Info("AMQP disabled, events will not be published")
	}

	summaries := cache.NewLRUCache[summary.Report](100, cfg.CacheTTL)
	plans := cache.NewLRUCache[services.SettlementPlan](200, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(summaries)
	cacheManager.Register(plans)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	authenticator := auth.NewPasswordAuthenticator(repo)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	ledger := services.NewLedgerService(repo, amqpClient, summaries)
	groups := services.NewGroupService(repo, amqpClient, plans)

	srv := apphttp.NewServer(":"+cfg.Port, authenticator, tokens, ledger, groups, repo.Ping)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		slog.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		cancel()
	}()

	slog.Info("starting tally server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("server stopped gracefully")
}
