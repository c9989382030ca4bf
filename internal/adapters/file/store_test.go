package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/patchbay/internal/adapters/file"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, file.New(t.TempDir()))
}

func TestStore_WritesOneYAMLFilePerDesk(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	snap := domain.NewSnapshot(2, 2)
	snap.Name = "foh"
	require.NoError(t, store.Save(ctx, "main", snap))

	data, err := os.ReadFile(filepath.Join(dir, "main.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: foh")
	assert.Contains(t, string(data), "numInputs: 2")
}

func TestStore_ListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", domain.NewSnapshot(1, 1)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("cue 12"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0755))

	desks, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, desks)
}

func TestStore_DefaultPath(t *testing.T) {
	store := file.New("")
	assert.Equal(t, filepath.Join(".patchbay", "desks"), store.BasePath)
}
