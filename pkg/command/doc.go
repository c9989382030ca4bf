/*
Package command is the string-keyed control surface over a desk: a
registry of named commands executed against a Matrix, with JSON envelope
requests and responses.

The envelope is flat: {"command": "setCrosspoint", "input": 0, "output":
1, "level": -6}. Responses are {"success": true, "data": ...} or
{"success": false, "error": "...", "code": "..."} with machine-readable
codes. Unlike the core, this boundary validates: out-of-range indices and
malformed snapshots are rejected with typed codes instead of being
silently ignored.

The processor itself is desk-agnostic and safe for concurrent use; the
desk passed to Execute must already be under its session lock.
*/
package command
