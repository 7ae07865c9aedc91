package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_cart/storefront/internal/analytics"
	"github.com/fjod/go_cart/storefront/internal/app"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/query"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel))

	if err := run(cfg); err != nil {
		slog.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slots, closeSlots, err := openSlots(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSlots()

	session := auth.NewSession(slots)
	if err := session.Restore(ctx); err != nil {
		slog.Warn("failed to restore session", "error", err)
	}

	client, err := backend.NewClient(backend.Options{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.RequestTimeout,
		Tokens:  session,
		OnUnauthorized: func(ctx context.Context) {
			if err := session.Logout(ctx); err != nil {
				slog.WarnContext(ctx, "failed to clear session after 401", "error", err)
			}
		},
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
	})
	if err != nil {
		return err
	}

	store := cart.NewStore()
	if cfg.CartPersist {
		persister := cart.NewPersister(slots, storage.CartSlot)
		if err := persister.Load(ctx, store); err != nil {
			slog.Warn("failed to restore cart", "error", err)
		}
		persister.Attach(store)
	}

	cache := query.NewClient(cfg.QueryTTL)
	var publisher *events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		source := uuid.NewString()
		publisher = events.NewPublisher(source, cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer publisher.Close()

		consumer := events.NewConsumer(cache, source, cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer consumer.Close()
		go consumer.Run(ctx)
		slog.Info("invalidation broadcast enabled", "topic", cfg.KafkaTopic, "source", source)
	}

	application := &app.App{
		Session: session,
		Cart:    store,
		Checkout: checkout.NewReconciler(store, client, events.NewBroadcaster(cache, publisher), session, checkout.Options{
			RequireIdentity: cfg.CheckoutRequireIdentity,
			SuccessMessage:  cfg.SaleSuccessMessage,
		}),
		Catalog:   catalog.NewService(client, cache),
		Analytics: analytics.NewService(client, cache),
		Accounts:  client,
		Sidebar:   app.NewSidebar(),
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      h.NewRouter(application, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("storefront starting", "addr", srv.Addr, "backend", cfg.BackendBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("server exited")
	return nil
}

// openSlots returns the durable slot store selected by STORAGE_DRIVER.
func openSlots(ctx context.Context, cfg *config.Config) (storage.SlotStore, func(), error) {
	switch cfg.StorageDriver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return storage.NewRedisStore(rdb, "storefront"), closer(rdb), nil
	case "sqlite", "":
		s, err := storage.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := s.RunMigrations(); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return s, closer(s), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close storage", "error", err)
		}
	}
}
