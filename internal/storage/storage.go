// Package storage provides persistence for the article document.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Document is the persisted collection of article records.
type Document struct {
	Articles []Article `json:"articles"`
}

// Article is a single bibliographic record as stored on disk.
//
// Optional fields distinguish absent from empty: a nil pointer or nil slice
// is left out of the encoding, while "" and [] are kept as submitted.
type Article struct {
	ID         int      `json:"id"`
	Authors    string   `json:"authors"`
	Title      *string  `json:"title,omitempty"`
	DOI        *string  `json:"doi,omitempty"`
	Keywords   []string `json:"keywords,omitzero"`
	Models     []string `json:"models,omitzero"`
	Techniques []string `json:"techniques,omitzero"`
	Results    []string `json:"results,omitzero"`
	Notes      *string  `json:"notes,omitempty"`
}

// String returns a pointer to s, for filling optional text fields.
func String(s string) *string {
	return &s
}

// StringValue returns the value behind p, or "" when p is nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Store is the load/replace abstraction over the backing document.
//
// Load never fails: an absent or unreadable document is reported as empty.
// Replace overwrites the whole document; when it returns an error the
// previously stored document is still the current one.
type Store interface {
	Load(ctx context.Context) Document
	Replace(ctx context.Context, doc Document) error
}

// EmptyDocument returns a document with no articles.
func EmptyDocument() Document {
	return Document{Articles: []Article{}}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{Articles: make([]Article, len(d.Articles))}
	for i, a := range d.Articles {
		out.Articles[i] = a.Clone()
	}
	return out
}

// Clone returns a deep copy of the article.
func (a Article) Clone() Article {
	a.Title = cloneString(a.Title)
	a.DOI = cloneString(a.DOI)
	a.Notes = cloneString(a.Notes)
	a.Keywords = cloneStrings(a.Keywords)
	a.Models = cloneStrings(a.Models)
	a.Techniques = cloneStrings(a.Techniques)
	a.Results = cloneStrings(a.Results)
	return a
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	return String(*p)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Decode parses a serialized document. A null or missing articles field
// decodes to an empty slice.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	if doc.Articles == nil {
		doc.Articles = []Article{}
	}
	return doc, nil
}

// Encode serializes a document as pretty-printed JSON.
func Encode(doc Document) ([]byte, error) {
	if doc.Articles == nil {
		doc.Articles = []Article{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// JSONStore manages the article document as a JSON file.
type JSONStore struct {
	filepath string
	logger   *slog.Logger
}

// NewJSONStore creates a new JSON store at the specified file path.
func NewJSONStore(filepath string) *JSONStore {
	return NewJSONStoreWithLogger(filepath, slog.Default())
}

// NewJSONStoreWithLogger creates a new JSON store with a custom logger.
func NewJSONStoreWithLogger(filepath string, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONStore{
		filepath: filepath,
		logger:   logger.With("component", "storage.json", "path", filepath),
	}
}

// Path returns the backing file path.
func (s *JSONStore) Path() string {
	return s.filepath
}

// Load reads the document from the JSON file.
func (s *JSONStore) Load(ctx context.Context) Document {
	// #nosec G304 -- path comes from the service configuration
	data, err := os.ReadFile(s.filepath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.WarnContext(ctx, "Failed to read document, using empty document", "error", err)
		}
		return EmptyDocument()
	}

	doc, err := Decode(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to parse document, using empty document", "error", err)
		return EmptyDocument()
	}

	return doc
}

// Replace writes the document to the JSON file, replacing its content.
// The data is written to a temporary file first and renamed into place.
func (s *JSONStore) Replace(ctx context.Context, doc Document) error {
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(s.filepath)
	// #nosec G301 -- 0755 is appropriate for the data directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.filepath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.filepath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	s.logger.DebugContext(ctx, "Document replaced", "articles", len(doc.Articles), "bytes", len(data))
	return nil
}

var _ Store = (*JSONStore)(nil)
