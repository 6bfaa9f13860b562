package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
)

// IndexSession owns the single live handle onto the vector index. All
// reads and writes go through it, so the repair flow has exactly one
// place to close before wiping the backing directory.
type IndexSession struct {
	mu      sync.Mutex
	factory driven.VectorStoreFactory
	dir     string
	store   driven.VectorStore
}

// NewIndexSession creates a session over the index at dir. No handle is
// opened until first use.
func NewIndexSession(factory driven.VectorStoreFactory, dir string) *IndexSession {
	return &IndexSession{factory: factory, dir: dir}
}

// open returns the live handle, opening one if needed. Callers hold mu.
// An absent index returns domain.ErrNotFound untouched.
func (s *IndexSession) open() (driven.VectorStore, error) {
	if s.store != nil {
		return s.store, nil
	}
	store, err := s.factory.Open(s.dir)
	if err != nil {
		return nil, err
	}
	s.store = store
	return store, nil
}

// AddOrCreate appends chunks to the index, creating it first when none
// exists yet.
func (s *IndexSession) AddOrCreate(ctx context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.open()
	if errors.Is(err, domain.ErrNotFound) {
		created, cerr := s.factory.Create(ctx, chunks, s.dir)
		if cerr != nil {
			return cerr
		}
		s.store = created
		return nil
	}
	if err != nil {
		return err
	}
	return store.Add(ctx, chunks)
}

// Search runs a similarity search. An absent index returns no results
// rather than an error: an empty library is a valid state.
func (s *IndexSession) Search(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.open()
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return store.Search(ctx, query, k)
}

// Count returns the number of indexed chunks, zero when no index exists.
func (s *IndexSession) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.open()
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return store.Count(ctx)
}

// Verify opens the index to run its handshake. An absent index is fine;
// a handshake failure is returned to the caller.
func (s *IndexSession) Verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.open()
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// CloseHandle closes the live handle if one is open. The session stays
// usable: the next operation opens a fresh handle.
func (s *IndexSession) CloseHandle() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	if err != nil {
		return fmt.Errorf("closing index handle: %w", err)
	}
	return nil
}

// Dir returns the index directory.
func (s *IndexSession) Dir() string {
	return s.dir
}
