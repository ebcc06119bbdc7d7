package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wecamp/internal/cache"
	"wecamp/internal/category"
	"wecamp/internal/events"
	"wecamp/internal/handlers"
	"wecamp/internal/middleware"
	"wecamp/internal/router"
	"wecamp/internal/storage"
	"wecamp/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Migrates the database, seeds an empty store in development and serves the category API until SIGINT or SIGTERM.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.Store,
	)

	repo, db, closeStore, err := openStore(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer closeStore()

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if _, err := category.Seed(ctx, repo); err != nil {
			return err
		}
	}

	hub := events.NewHub(slog.Default())
	defer hub.Close()

	// Background subscribers stop with runCtx. They are drained before the
	// clients they use are closed, and before the store closes.
	runCtx, cancelRun := context.WithCancel(ctx)
	var (
		wg      sync.WaitGroup
		closers []func()
	)
	defer func() {
		cancelRun()
		wg.Wait()
		for _, fn := range closers {
			fn()
		}
	}()
	goRun := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	// Valkey tree cache and cross-process event mirror (optional).
	var treeCache *cache.TreeCache
	if cfg.UseRedis() {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			return err
		}
		closers = append(closers, func() { client.Close() })

		treeCache = cache.NewTreeCache(client, cfg.TreeCacheTTL)
		treeCache.InvalidateAll(ctx)

		bridge := events.NewRedisBridge(client, hub, cfg.EventsChannel)
		goRun(func() {
			if err := bridge.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("event bridge stopped", "error", err)
			}
		})
	} else {
		slog.Warn("valkey not configured, tree cache and event mirror disabled")
	}

	// The cache is cleared before subscribers hear of a change. Writers in
	// other processes clear the shared cache before their event reaches
	// the bridge.
	var publisher events.Publisher = hub
	if treeCache != nil {
		publisher = cache.NewInvalidatingPublisher(treeCache, hub)
	}
	svc := category.NewService(repo, publisher)

	// Audit log of local changes (postgres only).
	var changeLog handlers.ChangeLog
	if db != nil {
		logStore := store.NewChangeLogStore(db)
		changeLog = logStore
		sub, cancel := hub.Subscribe(64)
		defer cancel()
		goRun(func() { logStore.Run(runCtx, sub, hub.Origin()) })
	}

	// CDN snapshots (optional).
	if cfg.UseS3() {
		client, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3BucketPublic, cfg.S3SnapshotPrefix, cfg.S3PublicURL,
		)
		if err != nil {
			return err
		}
		if client != nil {
			snapshots := storage.NewSnapshotPublisher(client, svc, 0)
			sub, cancel := hub.Subscribe(64)
			defer cancel()
			debounce := events.DebounceConfig{Interval: cfg.SnapshotQuiet, MaxWait: cfg.SnapshotMaxWait}
			goRun(func() { snapshots.Run(runCtx, sub, debounce) })
			slog.Info("snapshot publishing enabled",
				"endpoint", cfg.S3Endpoint,
				"bucket", cfg.S3BucketPublic,
			)
		}
	} else {
		slog.Warn("s3 storage not configured, snapshot publishing disabled")
	}

	if cfg.AdminTokenHash == "" {
		slog.Warn("WECAMP_ADMIN_TOKEN_HASH not set, admin API is open")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	defer limiter.Stop()

	r := router.New(router.Deps{
		Public:         handlers.NewPublic(svc, treeCache),
		Admin:          handlers.NewAdmin(svc, changeLog),
		Events:         handlers.NewStream(hub, cfg.SSEHeartbeat),
		AdminTokenHash: cfg.AdminTokenHash,
		Limiter:        limiter,
	})

	// The event stream clears its own write deadline.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Close event streams before draining so Shutdown does not wait on them.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}
