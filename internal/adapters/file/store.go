// Package file persists desk snapshots as YAML files, one per desk, so a
// show directory can be inspected and versioned with ordinary tools.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/schema"
)

const ext = ".yaml"

// Store implements ports.SnapshotStore on the local filesystem.
type Store struct {
	BasePath string
}

// New creates a new Store rooted at basePath.
// If basePath is empty, it defaults to ".patchbay/desks".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".patchbay", "desks")
	}
	return &Store{BasePath: basePath}
}

// Save writes the snapshot atomically: to a temp file in the same
// directory first, fsynced, then renamed over the destination. A crash
// mid-save leaves the previous snapshot intact, never a partial file.
func (s *Store) Save(ctx context.Context, deskID string, snap *domain.Snapshot) error {
	if deskID == "" {
		return fmt.Errorf("deskID cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure desk directory: %w", err)
	}

	data, err := schema.EncodeYAML(snap)
	if err != nil {
		return err
	}

	destPath := filepath.Join(s.BasePath, deskID+ext)

	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+deskID+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // gone already if the rename happened
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename replaces the destination on POSIX but fails on Windows if
	// it exists, so clear it first. The delete+rename window is acceptable
	// against the partial-file alternative.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing desk file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}

	return nil
}

// Load reads and decodes the snapshot for a desk.
func (s *Store) Load(ctx context.Context, deskID string) (*domain.Snapshot, error) {
	if deskID == "" {
		return nil, fmt.Errorf("deskID cannot be empty")
	}

	data, err := os.ReadFile(filepath.Join(s.BasePath, deskID+ext))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read desk file: %w", err)
	}

	return schema.DecodeYAML(data)
}

// Delete removes the desk file.
func (s *Store) Delete(ctx context.Context, deskID string) error {
	if deskID == "" {
		return fmt.Errorf("deskID cannot be empty")
	}

	err := os.Remove(filepath.Join(s.BasePath, deskID+ext))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete desk file: %w", err)
	}
	return nil
}

// List returns every desk id with a snapshot file.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list desks: %w", err)
	}

	var desks []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && filepath.Ext(name) == ext && !strings.HasPrefix(name, "tmp-") {
			desks = append(desks, strings.TrimSuffix(name, ext))
		}
	}
	return desks, nil
}
