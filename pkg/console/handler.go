package console

import "context"

// IOHandler defines the strategy for interacting with the operator.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// ReadEnvelope reads the next raw command envelope, trimmed of
	// surrounding whitespace. io.EOF ends the session.
	ReadEnvelope(ctx context.Context) (string, error)

	// WriteResponse presents one response envelope.
	WriteResponse(ctx context.Context, resp []byte) error

	// SystemOutput presents a meta-message to the operator (e.g. status
	// updates, confirmation prompts). This is distinct from response
	// envelopes.
	SystemOutput(ctx context.Context, msg string) error
}
