package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

const documentName = "articles"

const createDocumentsTable = `CREATE TABLE IF NOT EXISTS documents (
	name TEXT PRIMARY KEY,
	body TEXT NOT NULL
)`

// SQLiteStore keeps the article document as a single row in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// #nosec G301 -- 0755 is appropriate for the data directory
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(createDocumentsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		path:   path,
		logger: logger.With("component", "storage.sqlite", "path", path),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the document row.
func (s *SQLiteStore) Load(ctx context.Context) Document {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, documentName).Scan(&body)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Failed to read document, using empty document", "error", err)
		}
		return EmptyDocument()
	}

	doc, err := Decode([]byte(body))
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to parse document, using empty document", "error", err)
		return EmptyDocument()
	}
	return doc
}

// Replace upserts the document row.
func (s *SQLiteStore) Replace(ctx context.Context, doc Document) error {
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (name, body) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body`,
		documentName, string(data))
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	s.logger.DebugContext(ctx, "Document replaced", "articles", len(doc.Articles))
	return nil
}

var _ Store = (*SQLiteStore)(nil)
