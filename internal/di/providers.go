// Package di wires the application components together.
package di

import (
	"fmt"
	"log/slog"

	"github.com/yourusername/article-registry/internal/article"
	"github.com/yourusername/article-registry/internal/backup"
	"github.com/yourusername/article-registry/internal/config"
	"github.com/yourusername/article-registry/internal/server"
	"github.com/yourusername/article-registry/internal/storage"
)

func provideStore(cfg *config.Config, logger *slog.Logger) (storage.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendJSON:
		return storage.NewJSONStoreWithLogger(cfg.Storage.Path, logger), func() {}, nil
	case config.BackendSQLite:
		store, err := storage.NewSQLiteStore(cfg.Storage.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close database", "error", err)
			}
		}
		return store, cleanup, nil
	case config.BackendMemory:
		return storage.NewMemoryStore(storage.EmptyDocument()), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func provideService(store storage.Store, cfg *config.Config, logger *slog.Logger) *article.Service {
	opts := []article.Option{article.WithLogger(logger)}
	if cfg.Storage.SerializeWrites {
		opts = append(opts, article.WithSerializedWrites())
	}
	return article.NewService(store, opts...)
}

func provideServerConfig(cfg *config.Config) server.Config {
	return server.Config{
		Addr:              cfg.Server.Addr,
		BasePath:          cfg.Server.BasePath,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout(),
		ShutdownTimeout:   cfg.ShutdownTimeout(),
	}
}

func provideScheduler(cfg *config.Config, store storage.Store, logger *slog.Logger) *backup.Scheduler {
	if !cfg.Backup.Enabled {
		return nil
	}
	snapshotter := backup.NewSnapshotter(store, cfg.Backup.Dir, cfg.BackupKeep(), logger)
	return backup.NewScheduler(snapshotter, cfg.Backup.Schedule, logger)
}
