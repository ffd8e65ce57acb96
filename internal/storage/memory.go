package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu       sync.Mutex
	doc      Document
	failWith error
	loads    int
	replaces int
}

// NewMemoryStore creates a memory store seeded with a copy of doc.
func NewMemoryStore(doc Document) *MemoryStore {
	if doc.Articles == nil {
		doc.Articles = []Article{}
	}
	return &MemoryStore{doc: doc.Clone()}
}

// Load returns a copy of the stored document.
func (s *MemoryStore) Load(_ context.Context) Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.doc.Clone()
}

// Replace stores a copy of doc, or returns the configured failure.
func (s *MemoryStore) Replace(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaces++
	if s.failWith != nil {
		return s.failWith
	}
	s.doc = doc.Clone()
	if s.doc.Articles == nil {
		s.doc.Articles = []Article{}
	}
	return nil
}

// FailReplaces makes every following Replace return err. A nil err clears it.
func (s *MemoryStore) FailReplaces(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Loads reports how many times Load was called.
func (s *MemoryStore) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

// Replaces reports how many times Replace was called.
func (s *MemoryStore) Replaces() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaces
}

var _ Store = (*MemoryStore)(nil)
