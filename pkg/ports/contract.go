package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a
// SnapshotStore implementation adheres to the defined interface contract.
// Every store adapter's test suite calls this against a real instance.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	deskID := "contract-test-desk-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot(4, 2)
		snap.Name = "soundcheck"
		snap.MainLevel = -3
		snap.InputLevels[2] = -12
		level := -6.0
		snap.Crosspoints[0][1] = &level
		snap.OutputMutes[1] = true
		snap.Gangs = []domain.Gang{
			{ID: 1, Members: []domain.GangMember{domain.InputMember(0), domain.InputMember(2)}},
		}

		err := store.Save(ctx, deskID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, deskID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "soundcheck", loaded.Name)
		assert.Equal(t, -3.0, loaded.MainLevel)
		assert.Equal(t, -12.0, loaded.InputLevels[2])
		require.NotNil(t, loaded.Crosspoints[0][1], "connected crosspoint survives persistence")
		assert.Equal(t, -6.0, *loaded.Crosspoints[0][1])
		assert.Nil(t, loaded.Crosspoints[1][0], "disconnected crosspoint survives persistence")
		assert.True(t, loaded.OutputMutes[1])
		require.Len(t, loaded.Gangs, 1)
		assert.Equal(t, snap.Gangs[0].Members, loaded.Gangs[0].Members)
	})

	t.Run("Load returns an independent copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, deskID)
		require.NoError(t, err)

		loaded.MainLevel = 12
		loaded.InputLevels[0] = 12

		again, err := store.Load(ctx, deskID)
		require.NoError(t, err)
		assert.Equal(t, -3.0, again.MainLevel, "mutating a loaded snapshot must not leak into the store")
		assert.Equal(t, 0.0, again.InputLevels[0])
	})

	t.Run("Overwrite", func(t *testing.T) {
		next := domain.NewSnapshot(4, 2)
		next.Name = "act one"
		require.NoError(t, store.Save(ctx, deskID, next))

		loaded, err := store.Load(ctx, deskID)
		require.NoError(t, err)
		assert.Equal(t, "act one", loaded.Name, "Save replaces the previous snapshot")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+deskID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, deskID, domain.NewSnapshot(4, 2))
		require.NoError(t, err)

		err = store.Delete(ctx, deskID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, deskID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		err = store.Delete(ctx, deskID)
		assert.NoError(t, err, "deleting an absent desk is a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := deskID + "-1"
		id2 := deskID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewSnapshot(2, 2)))
		require.NoError(t, store.Save(ctx, id2, domain.NewSnapshot(2, 2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		desks, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, desks, id1)
		assert.Contains(t, desks, id2)
	})
}
