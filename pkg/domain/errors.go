package domain

import "errors"

// ErrInvalidDimensions is returned when a matrix is built with a
// non-positive input or output count.
var ErrInvalidDimensions = errors.New("matrix dimensions must be positive")

// ErrIndexOutOfRange is returned by strict surfaces (command processor,
// HTTP, MCP) when an input or output index falls outside the matrix
// dimensions. The matrix itself silently ignores such indices.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrGangNotFound is returned when a gang ID is not registered.
var ErrGangNotFound = errors.New("gang not found")

// ErrSnapshotNotFound is returned when a desk ID cannot be found in a
// snapshot store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrDeskNotFound is returned when a desk ID is not registered with the
// session manager.
var ErrDeskNotFound = errors.New("desk not found")

// ErrDeskExists is returned when creating a desk under an ID that is
// already taken.
var ErrDeskExists = errors.New("desk already exists")
