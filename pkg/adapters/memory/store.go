// Package memory provides an in-process SnapshotStore, the default for
// single-binary deployments and tests.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/patchbay/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Snapshot),
	}
}

// Save persists the snapshot in memory. The stored copy is independent of
// the caller's, matching what a serializing backend would do.
func (s *Store) Save(ctx context.Context, deskID string, snap *domain.Snapshot) error {
	copied := snap.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[deskID] = copied
	return nil
}

// Load retrieves the snapshot from memory. The caller gets its own copy
// and cannot mutate the stored one by pointer.
func (s *Store) Load(ctx context.Context, deskID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[deskID]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap.Clone(), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, deskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, deskID)
	return nil
}

// List returns the saved desk ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	desks := make([]string, 0, len(s.data))
	for id := range s.data {
		desks = append(desks, id)
	}
	return desks, nil
}
