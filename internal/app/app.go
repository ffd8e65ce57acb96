// Package app manages the lifecycle of the HTTP server and backup scheduler.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourusername/article-registry/internal/backup"
	"github.com/yourusername/article-registry/internal/config"
)

// Server is the HTTP front of the application.
type Server interface {
	ListenAndServe(ctx context.Context) error
}

// App runs the server and, when configured, the backup scheduler.
type App struct {
	server      Server
	scheduler   *backup.Scheduler
	logger      *slog.Logger
	stopTimeout time.Duration
}

// New constructs an App. scheduler may be nil when backups are disabled.
func New(server Server, scheduler *backup.Scheduler, logger *slog.Logger, cfg *config.Config) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		server:      server,
		scheduler:   scheduler,
		logger:      logger.With("component", "app"),
		stopTimeout: cfg.ShutdownTimeout(),
	}
}

// Run serves until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a.scheduler != nil {
		if err := a.scheduler.Start(); err != nil {
			return err
		}
		defer a.scheduler.Stop(a.stopTimeout)
	}

	a.logger.InfoContext(ctx, "Application starting", "backups", a.scheduler != nil)
	err := a.server.ListenAndServe(ctx)
	a.logger.Info("Application stopped")
	return err
}
