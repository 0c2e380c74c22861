// Package memstore provides an in-memory checkpoint backend for testing.
package memstore

import (
	"context"
	"sync"

	"github.com/discochess/bookminer/internal/checkpoint"
	"github.com/discochess/bookminer/internal/codec"
	"github.com/discochess/bookminer/internal/state"
)

// Compile-time check that Store implements checkpoint.Store.
var _ checkpoint.Store = (*Store)(nil)

// Store is an in-memory checkpoint backend.
// Documents round-trip through the same encoding as the disk store so tests
// exercise serialization too.
type Store struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{}
}

// Load decodes the last saved document.
func (s *Store) Load(ctx context.Context) (*state.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, checkpoint.ErrNotFound
	}
	return checkpoint.Decode(s.data, codec.Noop{})
}

// Save encodes and retains the document.
func (s *Store) Save(ctx context.Context, doc *state.Document) error {
	data, err := checkpoint.Encode(doc, codec.Noop{})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}

// Saves returns how many times Save completed (for test assertions).
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// SetRaw replaces the stored bytes directly (for corrupt-checkpoint tests).
func (s *Store) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
}
