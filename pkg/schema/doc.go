// Package schema is the wire layer for matrix snapshots: JSON, YAML and
// msgpack codecs plus strict shape validation.
//
// The core matrix is tolerant: SetState zero-fills and truncates whatever
// it is handed. Boundary surfaces (HTTP, commands, MCP) are not: they run
// Validate first and reject any snapshot whose dimensions or field lengths
// disagree with the target matrix, so malformed payloads fail loudly at
// the edge instead of being silently padded inside.
package schema
