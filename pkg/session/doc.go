/*
Package session manages the live desks of a show.

A Matrix on its own is single-threaded; this package provides the external
serialization the core requires. Every access runs under a per-desk mutex
(reference-counted, so idle desks cost nothing), optionally combined with
a distributed lock for multi-replica deployments, plus save/restore wiring
to a snapshot store.
*/
package session
