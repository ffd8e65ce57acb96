package backup

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/article-registry/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns successive instants one second apart.
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(time.Second)
		return t
	}
}

func TestSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	store := storage.NewMemoryStore(storage.Document{Articles: []storage.Article{{ID: 1, Authors: "A"}}})

	s := NewSnapshotter(store, dir, 0, quietLogger())
	s.now = fixedClock(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC))

	path, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "articles-20260304-050607.000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := storage.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, store.Load(context.Background()), doc)
	assert.Equal(t, 0, store.Replaces(), "snapshots never write to the store")
}

func TestSnapshotPrunesOldest(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewMemoryStore(storage.Document{})

	s := NewSnapshotter(store, dir, 2, quietLogger())
	s.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	var written []string
	for i := 0; i < 4; i++ {
		path, err := s.Snapshot(context.Background())
		require.NoError(t, err)
		written = append(written, path)
	}

	// Unrelated files are left alone.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))

	paths, err := s.Snapshots()
	require.NoError(t, err)
	assert.Equal(t, written[2:], paths)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}

func TestSnapshotKeepAll(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshotter(storage.NewMemoryStore(storage.Document{}), dir, 0, quietLogger())
	s.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		_, err := s.Snapshot(context.Background())
		require.NoError(t, err)
	}

	paths, err := s.Snapshots()
	require.NoError(t, err)
	assert.Len(t, paths, 3)
}

func TestSnapshotSameInstant(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewMemoryStore(storage.Document{})
	at := time.Date(2026, 1, 1, 0, 0, 0, 500*int(time.Millisecond), time.UTC)

	s := NewSnapshotter(store, dir, 3, quietLogger())
	s.now = func() time.Time { return at }

	var written []string
	for i := 0; i < 3; i++ {
		path, err := s.Snapshot(context.Background())
		require.NoError(t, err)
		written = append(written, path)
	}

	assert.Equal(t, []string{
		filepath.Join(dir, "articles-20260101-000000.500.json"),
		filepath.Join(dir, "articles-20260101-000000.501.json"),
		filepath.Join(dir, "articles-20260101-000000.502.json"),
	}, written)

	paths, err := s.Snapshots()
	require.NoError(t, err)
	assert.Equal(t, written, paths, "every snapshot is kept and counted once")
}

func TestSnapshotSubSecond(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	instants := []time.Time{start.Add(100 * time.Millisecond), start.Add(900 * time.Millisecond)}

	s := NewSnapshotter(storage.NewMemoryStore(storage.Document{}), dir, 0, quietLogger())
	s.now = func() time.Time {
		next := instants[0]
		instants = instants[1:]
		return next
	}

	first, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	second, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	paths, err := s.Snapshots()
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, paths)
}

func TestSnapshotsMissingDir(t *testing.T) {
	s := NewSnapshotter(storage.NewMemoryStore(storage.Document{}), filepath.Join(t.TempDir(), "none"), 1, quietLogger())

	paths, err := s.Snapshots()
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestSnapshotUnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	s := NewSnapshotter(storage.NewMemoryStore(storage.Document{}), filepath.Join(blocker, "backups"), 1, quietLogger())
	_, err := s.Snapshot(context.Background())
	assert.Error(t, err)
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewSnapshotter(storage.NewMemoryStore(storage.Document{}), t.TempDir(), 1, quietLogger())
	sched := NewScheduler(s, "not a schedule", quietLogger())

	assert.Error(t, sched.Start())
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewSnapshotter(storage.NewMemoryStore(storage.Document{}), t.TempDir(), 1, quietLogger())
	sched := NewScheduler(s, "@hourly", quietLogger())

	require.NoError(t, sched.Start())
	sched.Stop(time.Second)
}
