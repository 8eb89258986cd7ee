// Package server boots bazaar's dependencies and runs the HTTP server until
// SIGINT or SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/internal/kernel"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	flush, err := logger.AttachMongo()
	if err != nil {
		logger.Warn("mongo log sink disabled", "error", err.Error())
	}
	defer flush()

	if err := database.Connect(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := connectCache(ctx)
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	disk, err := storage.Open(ctx, config.StorageDefault())
	if err != nil {
		return err
	}

	k := kernel.New(kernel.OptionsFromConfig(database.DB, store, disk))
	defer k.Close()

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bazaar listening", "addr", srv.Addr, "env", config.AppEnv(), "disk", config.StorageDefault())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// connectCache uses Redis for the token denylist and falls back to an
// in-process store when Redis is unreachable. The fallback forgets
// revocations on restart and is not shared between replicas.
func connectCache(ctx context.Context) cache.Store {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	r, err := cache.NewRedis(pctx, config.RedisAddr(), config.RedisPassword(), "bazaar:")
	if err != nil {
		logger.Warn("redis unavailable, using in-memory token denylist", "addr", config.RedisAddr(), "error", err.Error())
		return cache.NewMemory()
	}
	return r
}
