// Package middleware provides decorators for snapshot stores: wrappers
// that add validation or encryption at rest around any
// ports.SnapshotStore without the backend knowing.
package middleware

import "github.com/aretw0/patchbay/pkg/ports"

// Middleware allows wrapping a SnapshotStore to add behavior.
type Middleware func(ports.SnapshotStore) ports.SnapshotStore
