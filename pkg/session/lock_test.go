package session

import (
	"context"
	"fmt"
	"testing"
)

// Lock entries are reference counted; after a full open/delete churn the
// maps must be empty or the manager leaks memory over a long show.
func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nil)
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("desk-%d", i)
		if _, err := mgr.Open(ctx, id, 2, 2); err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if err := mgr.Delete(ctx, id); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}

	if n := len(mgr.locks); n != 0 {
		t.Errorf("memory leak detected: %d lock entries remaining after churn", n)
	}
	if n := len(mgr.desks); n != 0 {
		t.Errorf("memory leak detected: %d desks remaining after delete", n)
	}
}
