// Package backup writes periodic snapshots of the article document.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yourusername/article-registry/internal/storage"
)

const (
	filePrefix = "articles-"
	fileSuffix = ".json"
	timeLayout = "20060102-150405.000"

	// timeStep separates snapshots taken within the same millisecond.
	timeStep = time.Millisecond
)

// Snapshotter copies the current document into timestamped files.
type Snapshotter struct {
	store  storage.Store
	dir    string
	keep   int
	logger *slog.Logger
	now    func() time.Time
}

// NewSnapshotter creates a snapshotter writing to dir and retaining the
// newest keep files. A keep of 0 retains every snapshot.
func NewSnapshotter(store storage.Store, dir string, keep int, logger *slog.Logger) *Snapshotter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Snapshotter{
		store:  store,
		dir:    dir,
		keep:   keep,
		logger: logger.With("component", "backup"),
		now:    time.Now,
	}
}

// Snapshot writes the current document and prunes old snapshots. It returns
// the path of the new file.
func (s *Snapshotter) Snapshot(ctx context.Context) (string, error) {
	doc := s.store.Load(ctx)

	data, err := storage.Encode(doc)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	// #nosec G301 -- 0755 is appropriate for the backup directory
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	path, err := s.create(s.now().UTC(), data)
	if err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "Snapshot written", "path", path, "articles", len(doc.Articles))

	if err := s.prune(); err != nil {
		s.logger.WarnContext(ctx, "Failed to prune old snapshots", "error", err)
	}
	return path, nil
}

// create writes data to a new snapshot file named after at. A name that is
// already taken moves the timestamp forward so the file order stays the
// time order and no snapshot is overwritten.
func (s *Snapshotter) create(at time.Time, data []byte) (string, error) {
	for {
		path := filepath.Join(s.dir, filePrefix+at.Format(timeLayout)+fileSuffix)
		// #nosec G304 -- path is built from the configured backup directory
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if errors.Is(err, os.ErrExist) {
			at = at.Add(timeStep)
			continue
		}
		if err != nil {
			return "", err
		}

		if _, err := file.Write(data); err != nil {
			_ = file.Close()
			_ = os.Remove(path)
			return "", err
		}
		if err := file.Close(); err != nil {
			_ = os.Remove(path)
			return "", err
		}
		return path, nil
	}
}

// Snapshots lists existing snapshot files, oldest first.
func (s *Snapshotter) Snapshots() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		names = append(names, name)
	}
	// The timestamp layout sorts lexically in time order.
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(s.dir, name)
	}
	return paths, nil
}

func (s *Snapshotter) prune() error {
	if s.keep <= 0 {
		return nil
	}
	paths, err := s.Snapshots()
	if err != nil {
		return err
	}
	if len(paths) <= s.keep {
		return nil
	}
	for _, path := range paths[:len(paths)-s.keep] {
		if err := os.Remove(path); err != nil {
			return err
		}
	}
	return nil
}

// Scheduler runs a Snapshotter on a cron schedule.
type Scheduler struct {
	cron        *cron.Cron
	snapshotter *Snapshotter
	schedule    string
	logger      *slog.Logger
}

// NewScheduler creates a scheduler for schedule, a standard cron expression
// or descriptor such as @daily.
func NewScheduler(snapshotter *Snapshotter, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:        cron.New(),
		snapshotter: snapshotter,
		schedule:    schedule,
		logger:      logger.With("component", "backup.scheduler"),
	}
}

// Start registers the snapshot job and starts the cron runner.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := s.snapshotter.Snapshot(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Scheduled snapshot failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule backups %q: %w", s.schedule, err)
	}

	s.logger.Info("Starting backup scheduler", "cron", s.schedule)
	s.cron.Start()
	return nil
}

// Stop stops the runner and waits up to timeout for a running job.
func (s *Scheduler) Stop(timeout time.Duration) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(timeout):
		s.logger.Warn("Backup job still running after stop timeout")
	}
	s.logger.Info("Backup scheduler stopped")
}
