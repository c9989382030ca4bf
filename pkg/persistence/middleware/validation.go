package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/schema"
)

type validationMiddleware struct {
	next ports.SnapshotStore
}

// NewValidationMiddleware creates a middleware that refuses malformed
// snapshots at the persistence boundary. Save rejects snapshots whose
// field lengths disagree with their declared dimensions; Load rejects
// stored snapshots that fail the same check, so a desk never hydrates
// from a corrupt show file.
//
// When stacked with encryption, validation goes on the outside: the
// encrypted envelope is not a well-shaped snapshot.
func NewValidationMiddleware() Middleware {
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &validationMiddleware{next: next}
	}
}

func (m *validationMiddleware) Save(ctx context.Context, deskID string, snap *domain.Snapshot) error {
	if err := schema.Validate(snap, snap.NumInputs, snap.NumOutputs); err != nil {
		return fmt.Errorf("refusing to save desk %q: %w", deskID, err)
	}
	return m.next.Save(ctx, deskID, snap)
}

func (m *validationMiddleware) Load(ctx context.Context, deskID string) (*domain.Snapshot, error) {
	snap, err := m.next.Load(ctx, deskID)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(snap, snap.NumInputs, snap.NumOutputs); err != nil {
		return nil, fmt.Errorf("stored snapshot for desk %q is corrupt: %w", deskID, err)
	}
	return snap, nil
}

func (m *validationMiddleware) Delete(ctx context.Context, deskID string) error {
	return m.next.Delete(ctx, deskID)
}

func (m *validationMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
