package di

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/article-registry/internal/config"
	"github.com/yourusername/article-registry/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeStoreBackends(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		path    string
		want    any
	}{
		{backend: config.BackendJSON, path: filepath.Join(dir, "a.json"), want: &storage.JSONStore{}},
		{backend: config.BackendSQLite, path: filepath.Join(dir, "a.db"), want: &storage.SQLiteStore{}},
		{backend: config.BackendMemory, want: &storage.MemoryStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &config.Config{Storage: config.StorageConfig{Backend: tt.backend, Path: tt.path}}
			store, cleanup, err := InitializeStore(cfg, quietLogger())
			require.NoError(t, err)
			defer cleanup()

			assert.IsType(t, tt.want, store)
			assert.Empty(t, store.Load(context.Background()).Articles)
		})
	}
}

func TestInitializeStoreUnknownBackend(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "tape"}}
	_, _, err := InitializeStore(cfg, quietLogger())
	assert.Error(t, err)
}

func TestInitializeApp(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.Backend = config.BackendMemory
	cfg.Backup.Enabled = true

	a, cleanup, err := InitializeApp(cfg, quietLogger())
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, a)
}

func TestProvideScheduler(t *testing.T) {
	cfg := &config.Config{}
	assert.Nil(t, provideScheduler(cfg, storage.NewMemoryStore(storage.Document{}), quietLogger()))

	cfg.Backup = config.BackupConfig{Enabled: true, Schedule: "@daily", Dir: t.TempDir()}
	assert.NotNil(t, provideScheduler(cfg, storage.NewMemoryStore(storage.Document{}), quietLogger()))
}
