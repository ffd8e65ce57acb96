//go:build wireinject

package di

import (
	"log/slog"

	"github.com/google/wire"

	"github.com/yourusername/article-registry/internal/app"
	"github.com/yourusername/article-registry/internal/article"
	"github.com/yourusername/article-registry/internal/config"
	"github.com/yourusername/article-registry/internal/server"
	"github.com/yourusername/article-registry/internal/storage"
)

// InitializeApp wires the application components together.
func InitializeApp(cfg *config.Config, logger *slog.Logger) (*app.App, func(), error) {
	wire.Build(
		provideStore,
		provideService,
		wire.Bind(new(server.RecordService), new(*article.Service)),
		provideServerConfig,
		server.New,
		wire.Bind(new(app.Server), new(*server.Server)),
		provideScheduler,
		app.New,
	)
	return nil, nil, nil
}

// InitializeStore builds only the configured store.
func InitializeStore(cfg *config.Config, logger *slog.Logger) (storage.Store, func(), error) {
	wire.Build(provideStore)
	return nil, nil, nil
}
