package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		// Environment may still be complete without the file.
		applog.Default().Warn("Failed to load .env", "error", err)
	}

	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.MustLoadConfig(logger.Logger)

	ctx, stop := cli.SignalContext(logger.Logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg, cfg.DataBackend)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateStore(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	var publisher services.Publisher
	if c := backend.NewPublisher(logger.Logger, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue); c != nil {
		publisher = c
	}

	svc := services.NewTransactionService(res.Store, publisher)
	// Closes the publisher and, for SQLite, the database handle.
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to release resources", "error", err)
		}
	}()

	srv, err := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:     logger,
		CacheTTL:   cfg.CacheTTL,
		ReadyCheck: readyCheck(res),
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", "error", err)
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.DataBackend,
		"amqp", publisher != nil,
		"cache_ttl", cfg.CacheTTL.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// readyCheck pings the store when it supports it.
func readyCheck(res *backend.Result) func(context.Context) error {
	if p, ok := res.Store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping
	}
	return nil
}
