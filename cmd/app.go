package main

import (
	"context"
	"fmt"
	"io"

	"github.com/takak2166/teum/internal/config"
	"github.com/takak2166/teum/internal/entries"
	"github.com/takak2166/teum/internal/likes"
	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/notion"
	"github.com/takak2166/teum/internal/storage"
)

// keyPrefix namespaces every persisted key
const keyPrefix = "teum:"

type app struct {
	cfg     *config.Config
	source  notion.Source
	session *entries.Session
	likes   *likes.Store
	closer  io.Closer
}

// loadConfig loads configuration and initializes the logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, closer, err := storage.Open(cfg.StoreDriver, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	ns := storage.WithPrefix(store, keyPrefix)

	source, err := notion.NewSource(cfg.Notion)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to initialize Notion source: %w", err)
	}

	session := entries.New(notion.NewTable(source, cfg.TableID), ns,
		entries.WithMetaTTL(cfg.MetaCacheTTL),
		entries.WithChunkSize(cfg.FetchChunkSize),
	)

	logger.Debug("Application initialized", logger.Fields{
		"backend":      cfg.Backend,
		"store_driver": cfg.StoreDriver,
		"store_path":   cfg.StorePath,
	})

	return &app{
		cfg:     cfg,
		source:  source,
		session: session,
		likes:   likes.New(ns),
		closer:  closer,
	}, nil
}

func (a *app) Close() {
	if err := a.closer.Close(); err != nil {
		logger.Error("Failed to close store", err)
	}
}

// loadEntries restores the cached list, fetching it when the cache is stale or refresh is set
func (a *app) loadEntries(ctx context.Context, refresh bool) error {
	if !refresh && a.session.Open(ctx) {
		return nil
	}
	return a.session.Refresh(ctx)
}

// openEntries starts from the cached list when it is fresh and refreshes it in the
// background; otherwise it refreshes synchronously. The channel yields the refresh result.
func (a *app) openEntries(ctx context.Context) (<-chan error, error) {
	if a.session.Open(ctx) {
		return a.session.Start(ctx), nil
	}
	done := make(chan error, 1)
	err := a.session.Refresh(ctx)
	done <- err
	close(done)
	return done, err
}
