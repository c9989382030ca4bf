package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/persistence/middleware"
)

func TestValidationMiddleware_AllowsWellFormed(t *testing.T) {
	underlyingStore := NewMockStore()
	store := middleware.NewValidationMiddleware()(underlyingStore)
	ctx := context.Background()

	if err := store.Save(ctx, "main-desk", showSnapshot()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "main-desk")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Name != "foh" {
		t.Errorf("Expected name 'foh', got %q", loaded.Name)
	}
}

func TestValidationMiddleware_RejectsRaggedSave(t *testing.T) {
	underlyingStore := NewMockStore()
	store := middleware.NewValidationMiddleware()(underlyingStore)
	ctx := context.Background()

	snap := domain.NewSnapshot(2, 2)
	snap.InputLevels = snap.InputLevels[:1] // length disagrees with numInputs

	if err := store.Save(ctx, "ragged-desk", snap); err == nil {
		t.Fatal("Expected save of ragged snapshot to fail")
	}

	// Nothing should have reached the backend.
	if _, err := underlyingStore.Load(ctx, "ragged-desk"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Errorf("Expected backend untouched, got %v", err)
	}
}

func TestValidationMiddleware_RejectsCorruptLoad(t *testing.T) {
	underlyingStore := NewMockStore()
	ctx := context.Background()

	// Corrupt snapshot lands in the backend behind the middleware's back.
	snap := domain.NewSnapshot(4, 4)
	snap.Crosspoints = snap.Crosspoints[:2]
	if err := underlyingStore.Save(ctx, "corrupt-desk", snap); err != nil {
		t.Fatal(err)
	}

	_, err := middleware.NewValidationMiddleware()(underlyingStore).Load(ctx, "corrupt-desk")
	if err == nil {
		t.Error("Expected load of corrupt snapshot to fail")
	}
}

func TestValidationMiddleware_PassesThroughNotFound(t *testing.T) {
	store := middleware.NewValidationMiddleware()(NewMockStore())

	_, err := store.Load(context.Background(), "missing-desk")
	if !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Errorf("Expected ErrSnapshotNotFound, got %v", err)
	}
}
