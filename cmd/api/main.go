package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"map_explorer/internal/events"
	"map_explorer/internal/explorer"
	"map_explorer/internal/explorer/session"
	apphttp "map_explorer/internal/http"
	"map_explorer/internal/http/router"
	"map_explorer/platform/config"
	"map_explorer/platform/logger"
	"map_explorer/platform/validator"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// redisHealth adapts a Redis client to apphttp.HealthChecker.
type redisHealth struct {
	client *redis.Client
}

func (r redisHealth) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var store session.Store
	var health apphttp.HealthChecker
	if cfg.IsRedisEnabled() {
		var client *redis.Client
		if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
			c, err := session.NewRedisClient(ctx, cfg.GetRedisURL())
			if err != nil {
				return err
			}
			client = c
			return nil
		}); err != nil {
			log.Error("failed to connect to redis", "error", err)
			panic("failed to connect to redis: " + err.Error())
		}
		defer func() { _ = client.Close() }()

		store = session.NewRedisStore(client, cfg.GetSessionTTL())
		health = redisHealth{client: client}
		log.Info("explorer sessions stored in redis", "ttl", cfg.GetSessionTTL().String())
	} else {
		memStore := session.NewMemoryStore(cfg.GetSessionTTL())
		g.Go(func() error { return memStore.Run(gctx, sweepInterval) })
		store = memStore
		log.Info("explorer sessions stored in memory", "ttl", cfg.GetSessionTTL().String())
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// ========================================================================
	// Domain Modules
	// ========================================================================

	explorerModule, err := explorer.NewModule(cfg, store, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize explorer module", "error", err)
		panic("failed to initialize explorer module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			explorerModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		app.CloseStreams()
		err := srv.Shutdown(shutdownCtx)

		if drainErr := app.Drain(shutdownCtx); drainErr != nil {
			log.Warn("upstream fetches still in flight at shutdown")
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
