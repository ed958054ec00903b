package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		applog.Default().Warn("Failed to load .env", "error", err)
	}

	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting fintrack-worker")

	cfg := cli.MustLoadConfig(logger.Logger, (*config.Config).Validate, (*config.Config).ValidateWorker)

	ctx, stop := cli.SignalContext(logger.Logger)
	defer stop()

	factory := backend.NewFactory(logger.Logger)

	mirrorCfg, err := backend.FromAppConfig(cfg, cfg.MirrorBackend)
	if err != nil {
		logger.Error("Invalid mirror backend configuration", "error", err)
		os.Exit(1)
	}
	mirror, err := factory.CreateStore(ctx, mirrorCfg)
	if err != nil {
		logger.Error("Failed to initialize mirror backend", "error", err, applog.FieldBackend, cfg.MirrorBackend)
		os.Exit(1)
	}
	defer mirror.Close()

	primaryCfg, err := backend.FromAppConfig(cfg, cfg.DataBackend)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	primary, err := factory.CreateStore(ctx, primaryCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer primary.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	mirrorWorker := worker.NewMirrorWorker(mirror.Store)
	cacheManager := cache.NewManager()
	cacheManager.Register(mirrorWorker.Cache())
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	digest := services.NewDigestProcessor(primary.Store, services.DigestProcessorConfig{
		Schedule: cfg.DigestSchedule,
		Location: time.Local,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := client.Consume(gctx, mirrorWorker.HandleMessage)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		if err := digest.Start(gctx); err != nil {
			return err
		}
		logger.Info("Daily digest scheduled", "schedule", cfg.DigestSchedule)
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return digest.Stop(shutdownCtx)
	})

	logger.Info("Worker running",
		"mirror", cfg.MirrorBackend,
		"primary", cfg.DataBackend,
		"queue", cfg.AMQPQueue)

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
