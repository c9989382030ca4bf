/*
Package ports defines the driven ports (interfaces) for the patchbay core.

These interfaces decouple the routing engine from external implementations,
allowing desks to be persisted and coordinated through interchangeable
backends.

# Key Interfaces

  - SnapshotStore: persists and loads desk state snapshots by desk id.
  - DistributedLocker: provides distributed locking for multi-replica
    deployments sharing one snapshot backend.

RunSnapshotStoreContract is the behavioral contract every store adapter
must pass; adapter test suites call it against a real instance.
*/
package ports
