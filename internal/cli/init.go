// Package cli provides common initialization shared by cmd/fintrack,
// cmd/fintrack-worker and cmd/fintrack-cli.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// Setup loads and validates the configuration and installs the default
// logger at the configured level. It exits the process on invalid settings.
func Setup() (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// SetupLogger builds the application logger and sets it as the slog default.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// OpenBackend creates the configured store. Returns the backend or exits
// the process on failure.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	be, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return be
}

// Gateway wraps store with the configured collection keys.
func Gateway(cfg *config.Config, store storage.KeyValueStore) *storage.Gateway {
	return storage.NewGateway(store, storage.WithKeys(cfg.TransactionsKey, cfg.BudgetsKey))
}

// OpenLedger loads the ledger from store and logs every load warning.
func OpenLedger(ctx context.Context, logger *log.Logger, cfg *config.Config, store storage.KeyValueStore, opts ...services.Option) (*services.LedgerService, error) {
	opts = append([]services.Option{services.WithLogger(logger)}, opts...)
	ledger, err := services.Open(ctx, Gateway(cfg, store), opts...)
	if err != nil {
		return nil, err
	}
	for _, w := range ledger.Warnings() {
		logger.WarnContext(ctx, "Ledger started with a quarantined payload",
			log.FieldKey, w.Key,
			"quarantine_key", w.QuarantineKey,
			log.FieldError, w.Err)
	}
	return ledger, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that is cancelled on SIGINT or SIGTERM, and a channel
// closed once cleanup has returned or timeout has elapsed.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
