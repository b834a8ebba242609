// Package app wires the filescout components from a configuration.
//
// Both the MCP server and the CLI commands open one App: it owns the SQLite
// store, the result cache, the owner resolver, the settings service and the
// search engine, and closes them in reverse order.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dshills/filescout-mcp/internal/cache"
	"github.com/dshills/filescout-mcp/internal/config"
	"github.com/dshills/filescout-mcp/internal/matcher"
	"github.com/dshills/filescout-mcp/internal/owner"
	"github.com/dshills/filescout-mcp/internal/searcher"
	"github.com/dshills/filescout-mcp/internal/searchlog"
	"github.com/dshills/filescout-mcp/internal/settings"
	"github.com/dshills/filescout-mcp/internal/storage"
	"github.com/dshills/filescout-mcp/internal/walker"
)

// App holds the long-lived components
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Storage  *storage.SQLiteStorage
	Cache    *cache.Cache
	Settings *settings.Service
	Engine   *searcher.Engine
	Logs     *searchlog.Writer
}

// NewLogger returns a text logger writing to w at the configured level.
// Servers pass stderr since stdout carries the protocol.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
}

// Open validates cfg and builds every component
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	if err := matcher.WriteDefaultThresholds(cfg.ThresholdsPath); err != nil {
		logger.Warn("could not create thresholds file", "path", cfg.ThresholdsPath, "error", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	slots := settings.New(store, logger)
	if err := slots.Ensure(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to seed settings slots: %w", err)
	}

	if cfg.History.Keep > 0 {
		removed, err := store.PruneRuns(ctx, cfg.History.Keep)
		if err != nil {
			logger.Warn("could not prune search history", "error", err)
		} else if removed > 0 {
			logger.Debug("pruned search history", "removed", removed)
		}
	}

	owners, err := owner.New(owner.Config{DevBuild: cfg.DevBuild, Logger: logger})
	if err != nil {
		// Owner filtering degrades to "no entry matches"
		logger.Warn("owner lookup unavailable", "error", err)
		owners = nil
	}

	resultCache := cache.Open(cfg.Cache.Path, cfg.Cache.Capacity)
	logs := searchlog.NewWriter(cfg.LogDir)

	engine := searcher.New(searcher.Config{
		Cache:          resultCache,
		Owners:         owners,
		ThresholdsPath: cfg.ThresholdsPath,
		ActivityLog:    logs,
		History:        store,
		Logger:         logger,
		Walker: walker.New(walker.Config{
			MaxConcurrentScans: cfg.Search.MaxConcurrentScans,
			YieldEvery:         cfg.Search.YieldEvery,
			Logger:             logger,
		}),
		ChannelCapacity: cfg.Search.ChannelCapacity,
		PollInterval:    cfg.Search.PollInterval,
		MaxContentBytes: cfg.Search.MaxContentBytes,
	})

	logger.Debug("filescout opened",
		"db", cfg.DBPath,
		"cache", cfg.Cache.Path,
		"sqlite", storage.BuildMode)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Storage:  store,
		Cache:    resultCache,
		Settings: slots,
		Engine:   engine,
		Logs:     logs,
	}, nil
}

// Close cancels running searches, waits for them to finish and closes the
// store
func (a *App) Close() error {
	if err := a.Engine.Close(); err != nil {
		a.Logger.Warn("engine close failed", "error", err)
	}
	return a.Storage.Close()
}
