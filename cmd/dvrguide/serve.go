// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/dvrguide/internal/api"
	"github.com/ManuGH/dvrguide/internal/cache"
	"github.com/ManuGH/dvrguide/internal/config"
	"github.com/ManuGH/dvrguide/internal/control/read"
	"github.com/ManuGH/dvrguide/internal/health"
	"github.com/ManuGH/dvrguide/internal/log"
	"github.com/ManuGH/dvrguide/internal/snapshot"
	"github.com/ManuGH/dvrguide/internal/telemetry"
	"github.com/ManuGH/dvrguide/internal/version"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the guide and DVR API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("daemon")

	tracerCfg := cfg.TracerConfig()
	tracerCfg.ServiceVersion = version.Version
	tp, err := telemetry.NewProvider(ctx, tracerCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	if err := health.PerformStartupChecks(cfg); err != nil {
		return err
	}
	store := snapshot.NewStore(cfg.Snapshot.Dir)
	// A failed first load is not fatal: /healthz reports starting and the
	// watcher retries on the next change.
	if _, err := store.Reload(ctx); err != nil {
		logger.Warn().Err(err).Str(log.FieldEvent, "snapshot.initial_load_failed").Msg("serving without snapshot")
	}

	g, gctx := errgroup.WithContext(ctx)

	logos := read.NewLogoResolver(gctx, store, read.LogoResolverConfig{Interval: cfg.Logos.FlushInterval})
	defer logos.Close()
	store.OnReload(func(*snapshot.Data) { logos.Invalidate() })

	views, err := newViewCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	if views != nil {
		defer func() { _ = views.Close() }()
	}

	srv, err := api.New(cfg, api.Deps{Snapshot: store, Logos: logos, Cache: views})
	if err != nil {
		return err
	}

	logger.Info().
		Str(log.FieldEvent, "daemon.start").
		Str("version", version.Version).
		Str("listen", cfg.Listen).
		Str("snapshot_dir", cfg.Snapshot.Dir).
		Bool("watch", cfg.Snapshot.Watch).
		Bool("telemetry", tp.Enabled()).
		Dur("view_cache_ttl", cfg.Cache.TTL).
		Msg("starting dvrguide")

	g.Go(func() error { return srv.ListenAndServe(gctx) })
	if cfg.Snapshot.Watch {
		g.Go(func() error { return store.Watch(gctx, cfg.Snapshot.Debounce) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Str(log.FieldEvent, "daemon.stop").Msg("dvrguide stopped")
	return nil
}

// newViewCache returns nil when view caching is off. A configured Redis
// address must answer at startup.
func newViewCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	if cfg.TTL <= 0 {
		return nil, nil
	}
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache(time.Minute), nil
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("view cache: %w", err)
	}
	return rc, nil
}
