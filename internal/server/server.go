// Package server boots the Mishil storefront: configuration, MongoDB, the
// cache and storage layers, the live order feed, then the HTTP listener with
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ganzorig/mishil/app/repositories"
	"github.com/ganzorig/mishil/app/routes"
	"github.com/ganzorig/mishil/config"
	"github.com/ganzorig/mishil/database/seeders"
	"github.com/ganzorig/mishil/pkg/cache"
	"github.com/ganzorig/mishil/pkg/live"
	"github.com/ganzorig/mishil/pkg/logger"
	"github.com/ganzorig/mishil/pkg/mongodb"
	"github.com/ganzorig/mishil/pkg/router"
	"github.com/ganzorig/mishil/pkg/storage"
)

const shutdownGrace = 10 * time.Second

var maintainOnce sync.Once

// Boot loads configuration and connects the external services. Safe to call
// from any command; the Mongo client is cached so repeat calls are cheap.
func Boot(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := mongodb.Connect(ctx); err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	if err := cache.Connect(); err != nil {
		// The cache is an optimisation; the store serves every read without it.
		logger.Warn("cache unavailable, continuing without it", "error", err)
	}
	storage.Connect()
	return nil
}

// Maintain ensures indexes and runs the seeders. In long-running mode it is
// part of startup; in serverless mode the first request of a fresh instance
// triggers it, so it runs once per process, not per deploy.
func Maintain(ctx context.Context) error {
	var err error
	maintainOnce.Do(func() {
		if err = mongodb.EnsureIndexes(ctx, repositories.Indexes()); err != nil {
			err = fmt.Errorf("ensure indexes: %w", err)
			return
		}
		err = seeders.RunAll(ctx)
	})
	return err
}

// Handler boots everything and returns the HTTP handler without listening.
// Serverless entry points call this once per cold start and hand the result
// to the platform's adapter.
func Handler() (http.Handler, error) {
	ctx := context.Background()
	if err := Boot(ctx); err != nil {
		return nil, err
	}
	if err := Maintain(ctx); err != nil {
		return nil, err
	}

	go live.Orders.Run()

	r := router.New()
	routes.RegisterAPI(r)
	return r.Handler(), nil
}

// Start runs the full server until SIGINT/SIGTERM.
func Start() error {
	ctx := context.Background()
	if err := Boot(ctx); err != nil {
		return err
	}
	if err := Maintain(ctx); err != nil {
		return err
	}

	go live.Orders.Run()

	r := router.New()
	routes.RegisterAPI(r)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mishil listening", "addr", srv.Addr, "env", config.AppEnv(), "mode", config.AppMode())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Error("cache close", "error", err)
	}
	if err := mongodb.Close(shutdownCtx); err != nil {
		logger.Error("mongodb close", "error", err)
	}
	return nil
}
