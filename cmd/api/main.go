// Package main is the entry point for the Annoyance Journal API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/annoylog/backend/config"
	"github.com/annoylog/backend/internal/infra/db"
	"github.com/annoylog/backend/internal/infra/dependency"
	"github.com/annoylog/backend/internal/integration/billing"
	"github.com/annoylog/backend/internal/integration/email"
	"github.com/annoylog/backend/internal/integration/email/templates"
	"github.com/annoylog/backend/internal/integration/persistence"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Server.SlogLevel(),
	})))

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	slog.Info("Starting Annoyance Journal API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"local_store", cfg.LocalStore.Driver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := database.Migrate(); err != nil {
		return err
	}

	store, closeStore, err := dependency.NewLocalStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			slog.Error("Failed to close local store", "error", err)
		}
	}()

	if cfg.Billing.APIKey == "" {
		slog.Warn("BILLING_API_KEY not set, entitlement syncs will report degraded")
	}

	outbox := persistence.NewOutboundMailRepository(database.Conn())
	injector, err := dependency.NewInjector(cfg, database.Conn(), dependency.Externals{
		LocalStore: store,
		Billing:    billing.NewClient(cfg.Billing.BaseURL, cfg.Billing.APIKey, cfg.Billing.Timeout),
		Outbox:     outbox,
	})
	if err != nil {
		return err
	}

	if cfg.Email.WorkerEnabled {
		set, err := templates.Load()
		if err != nil {
			return fmt.Errorf("failed to load email templates: %w", err)
		}
		dispatcher := email.NewDispatcher(
			outbox,
			email.NewMailer(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail),
			set,
			injector.Metrics,
			email.DispatcherConfig{
				PollInterval: cfg.Email.PollInterval,
				BatchSize:    cfg.Email.BatchSize,
				Parallel:     cfg.Email.Parallel,
				Retention:    cfg.Email.Retention,
			},
		)
		go dispatcher.Run(ctx)
	}

	// Idle rate-limiter entries are swept every few minutes.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				injector.LoginRateLimiter.Cleanup()
				injector.GuestRateLimiter.Cleanup()
			}
		}
	}()

	engine := injector.Router.Setup(cfg.Server.Environment)

	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exited properly")
	return nil
}
