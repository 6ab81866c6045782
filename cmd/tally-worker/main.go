package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tally/internal/amqp"
	"tally/internal/config"
	applog "tally/internal/log"
	"tally/internal/storage"
	"tally/internal/worker"
)

func main() {
	_ = godotenv.Load()

	applog.Setup()
	slog.Info("starting tally-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		slog.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archiver := worker.NewArchiver(repo)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeEvents(ctx, func(event *amqp.Event) error {
			return archiver.HandleEvent(ctx, event)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("worker stopped gracefully")
}
