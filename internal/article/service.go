// Package article implements the record operations over the article document.
package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yourusername/article-registry/internal/storage"
)

// Article is one bibliographic record.
type Article = storage.Article

var (
	// ErrNotFound indicates the target id is not in the document.
	ErrNotFound = errors.New("article not found")

	// ErrBadRequest indicates the request carries no usable id.
	ErrBadRequest = errors.New("bad request")

	// ErrStorage indicates the document could not be written.
	ErrStorage = errors.New("storage failure")
)

// Service implements List, Create, Update and Delete over a Store.
//
// Each operation loads the document, computes the new one and replaces it.
// Without WithSerializedWrites two concurrent mutations may interleave their
// load and replace, and one of them is lost.
type Service struct {
	store  storage.Store
	logger *slog.Logger
	writes *sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSerializedWrites runs mutating operations one at a time within the process.
func WithSerializedWrites() Option {
	return func(s *Service) {
		s.writes = &sync.Mutex{}
	}
}

// NewService creates a record service over store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "article.service")
	return s
}

// List returns the whole document as stored.
func (s *Service) List(ctx context.Context) storage.Document {
	return s.store.Load(ctx)
}

// Create appends a new article with the next id and returns it.
// Any id carried by fields is ignored.
func (s *Service) Create(ctx context.Context, fields Article) (Article, error) {
	defer s.lock()()

	doc := s.store.Load(ctx)

	created := fields.Clone()
	created.ID = NextID(doc.Articles)
	doc.Articles = append(doc.Articles, created)

	if err := s.store.Replace(ctx, doc); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save new article", "id", created.ID, "error", err)
		return Article{}, fmt.Errorf("%w: create article %d: %v", ErrStorage, created.ID, err)
	}

	s.logger.InfoContext(ctx, "Article created", "id", created.ID, "articles", len(doc.Articles))
	return created, nil
}

// Update replaces the article with the same id, keeping its position.
func (s *Service) Update(ctx context.Context, a Article) (Article, error) {
	defer s.lock()()

	doc := s.store.Load(ctx)

	idx := indexOf(doc.Articles, a.ID)
	if idx < 0 {
		s.logger.InfoContext(ctx, "Article to update not found", "id", a.ID)
		return Article{}, fmt.Errorf("%w: id %d", ErrNotFound, a.ID)
	}

	updated := a.Clone()
	doc.Articles[idx] = updated

	if err := s.store.Replace(ctx, doc); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save updated article", "id", a.ID, "error", err)
		return Article{}, fmt.Errorf("%w: update article %d: %v", ErrStorage, a.ID, err)
	}

	s.logger.InfoContext(ctx, "Article updated", "id", a.ID)
	return updated, nil
}

// Delete removes the article with the given id. Ids below 1 are rejected
// before the document is read.
func (s *Service) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: missing article id", ErrBadRequest)
	}

	defer s.lock()()

	doc := s.store.Load(ctx)

	kept := make([]Article, 0, len(doc.Articles))
	for _, a := range doc.Articles {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(doc.Articles) {
		s.logger.InfoContext(ctx, "Article to delete not found", "id", id)
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	if err := s.store.Replace(ctx, storage.Document{Articles: kept}); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save document after delete", "id", id, "error", err)
		return fmt.Errorf("%w: delete article %d: %v", ErrStorage, id, err)
	}

	s.logger.InfoContext(ctx, "Article deleted", "id", id, "articles", len(kept))
	return nil
}

// NextID returns one more than the largest id in articles, or 1 when empty.
func NextID(articles []Article) int {
	maxID := 0
	for _, a := range articles {
		if a.ID > maxID {
			maxID = a.ID
		}
	}
	return maxID + 1
}

func indexOf(articles []Article, id int) int {
	for i, a := range articles {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// lock acquires the write mutex when writes are serialized and returns the
// matching unlock.
func (s *Service) lock() func() {
	if s.writes == nil {
		return func() {}
	}
	s.writes.Lock()
	return s.writes.Unlock
}
