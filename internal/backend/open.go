// Package backend selects and opens the configured service.Store.
package backend

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"tasklist/internal/backend/filestore"
	"tasklist/internal/backend/googletasks"
	"tasklist/internal/backend/sqlstore"
	"tasklist/internal/config"
	"tasklist/internal/service"
)

// Open returns the store named by cfg.Backend. The store may implement
// io.Closer and service.Watcher; callers should check.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("backend", cfg.Backend)

	switch cfg.Backend {
	case config.BackendFile:
		logger.Debug("opening store", "path", cfg.FilePath())
		return filestore.New(cfg.FilePath(), filestore.WithLogger(logger)), nil

	case config.BackendSQLite:
		logger.Debug("opening store", "dsn", cfg.SQLiteDSN())
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("create config directory: %w", err)
		}
		return openSQL(ctx, sqlstore.DriverSQLite, cfg.SQLiteDSN(), logger)

	case config.BackendMySQL:
		logger.Debug("opening store")
		return openSQL(ctx, sqlstore.DriverMySQL, cfg.SQL.DSN, logger)

	case config.BackendGoogleTasks:
		if !cfg.HasToken() {
			return nil, service.ErrNotLoggedIn
		}
		logger.Debug("opening store", "list", cfg.GoogleTasks.List)
		client, err := googletasks.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

func openSQL(ctx context.Context, driver, dsn string, logger *log.Logger) (service.Store, error) {
	store, err := sqlstore.Open(ctx, driver, dsn, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}
