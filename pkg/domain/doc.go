/*
Package domain contains the core domain models of the patchbay routing
matrix.

It defines the level arithmetic (dB clamping and conversion), the
crosspoint sum type, gang membership, change events, snapshots, and the
sentinel errors shared across the module. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Crosspoint: the gain control between one input and one output, either
    disconnected or connected at a dB level.
  - Gang: a set of control points that move together, offset-preserving.
  - Event: one accepted mutation, fanned out synchronously to observers.
  - Snapshot: a deep, self-contained copy of a matrix's full state.
  - Route: one (input, output) pair currently carrying signal.
*/
package domain
