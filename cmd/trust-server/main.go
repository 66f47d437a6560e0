package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Orac-G/agent-trust/internal/config"
	"github.com/Orac-G/agent-trust/internal/httpserver"
	"github.com/Orac-G/agent-trust/internal/kv"
	"github.com/Orac-G/agent-trust/internal/logger"
	"github.com/Orac-G/agent-trust/internal/metrics"
	"github.com/Orac-G/agent-trust/internal/payment"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "trust-server:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Missing .env is fine; env vars may come from the runtime.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	appLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Service:     cfg.Service.Name,
		Version:     cfg.Service.Version,
		Environment: cfg.Logging.Environment,
	})

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open kv store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			appLogger.Warn().Err(err).Msg("main.store_close_failed")
		}
	}()

	collector := metrics.New(prometheus.DefaultRegisterer)

	facilitator := payment.NewFacilitatorClient(cfg.Payment.FacilitatorURL, cfg.Payment.Timeout.Duration)
	gate := payment.NewGate(payment.Addresses{
		EVMAsset:     cfg.Payment.EVMAsset,
		EVMPayTo:     cfg.Payment.EVMPayTo,
		SolanaAsset:  cfg.Payment.SolanaAsset,
		SolanaPayTo:  cfg.Payment.SolanaPayTo,
		SolanaFeePay: cfg.Payment.SolanaFeePay,
	}, facilitator, collector)

	server := httpserver.New(cfg, store, gate, collector, appLogger)

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().
			Str("address", cfg.Server.Address).
			Str("kv_backend", cfg.KV.Backend).
			Msg("main.listening")
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		appLogger.Info().Str("signal", sig.String()).Msg("main.shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	switch cfg.KV.Backend {
	case "mongodb":
		return kv.NewMongoDBStore(ctx, cfg.KV.MongoDBURL, cfg.KV.MongoDBDatabase, cfg.KV.MongoDBCollection)
	case "postgres":
		return kv.NewPostgresStore(ctx, cfg.KV.PostgresURL)
	default:
		return kv.NewMemoryStore(), nil
	}
}
