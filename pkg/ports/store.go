package ports

import (
	"context"

	"github.com/aretw0/patchbay/pkg/domain"
)

// SnapshotStore defines the interface for persisting desk state.
// It backs show recall: a desk saved at soundcheck is restored for the
// performance, possibly by another process.
type SnapshotStore interface {
	// Save persists the snapshot for a given desk ID, overwriting any
	// previous snapshot for that desk.
	Save(ctx context.Context, deskID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given desk ID.
	// Returns domain.ErrSnapshotNotFound if none was saved.
	Load(ctx context.Context, deskID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given desk ID. Deleting a desk
	// that was never saved is a no-op.
	Delete(ctx context.Context, deskID string) error

	// List returns the desk IDs with a saved snapshot.
	List(ctx context.Context) ([]string, error)
}
