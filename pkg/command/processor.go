package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/schema"
)

// ErrUnknownCommand is returned when no handler is registered for a name.
var ErrUnknownCommand = errors.New("unknown command")

// Machine-readable error codes carried in failure envelopes.
const (
	CodeUnknownCommand  = "unknownCommand"
	CodeInvalidArgs     = "invalidArgs"
	CodeIndexOutOfRange = "indexOutOfRange"
	CodeGangNotFound    = "gangNotFound"
	CodeInvalidSnapshot = "invalidSnapshot"
	CodeInternal        = "internal"
)

// Handler executes one command against a desk.
// Arguments arrive as the raw envelope fields minus "command".
type Handler func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error)

// LatencyObserver receives the duration of every executed command;
// pkg/observability feeds these into a histogram.
type LatencyObserver func(command string, elapsed time.Duration)

// Response is the JSON envelope every command returns.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// OK wraps a payload in a success envelope.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Fail builds a failure envelope with a machine-readable code.
func Fail(msg, code string) Response {
	return Response{Success: false, Error: msg, Code: code}
}

// ArgsError wraps an argument decoding failure so it maps to the
// invalidArgs code.
type ArgsError struct {
	Err error
}

func (e *ArgsError) Error() string { return "invalid arguments: " + e.Err.Error() }
func (e *ArgsError) Unwrap() error { return e.Err }

func argsErrorf(format string, a ...any) error {
	return &ArgsError{Err: fmt.Errorf(format, a...)}
}

// Processor manages the available commands.
type Processor struct {
	mu       sync.RWMutex
	handlers map[string]Handler

	logger  *slog.Logger
	latency LatencyObserver
}

// Option configures the Processor.
type Option func(*Processor)

// WithLogger sets a structured logger for executed commands.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithLatencyObserver registers a callback timing every execution.
func WithLatencyObserver(fn LatencyObserver) Option {
	return func(p *Processor) {
		p.latency = fn
	}
}

// NewProcessor creates a processor with the built-in command set
// registered.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		handlers: make(map[string]Handler),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	registerBuiltins(p)
	return p
}

// Register adds a command to the processor.
// If a command with the same name exists, it is overwritten.
func (p *Processor) Register(name string, fn Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[name] = fn
}

// Commands returns the registered command names, for discovery surfaces.
func (p *Processor) Commands() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.handlers))
	for name := range p.handlers {
		names = append(names, name)
	}
	return names
}

// Execute looks up a command by name and runs it against the desk.
func (p *Processor) Execute(ctx context.Context, desk *patchbay.Matrix, name string, args map[string]any) (any, error) {
	p.mu.RLock()
	fn, ok := p.handlers[name]
	p.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	start := time.Now()
	result, err := fn(ctx, desk, args)
	elapsed := time.Since(start)

	if p.latency != nil {
		p.latency(name, elapsed)
	}
	p.logger.Debug("command executed",
		"command", name,
		"duration", elapsed,
		"err", err,
	)

	return result, err
}

// Process handles one raw JSON envelope end to end and always returns an
// envelope: transport problems become failure responses, never Go errors.
func (p *Processor) Process(ctx context.Context, desk *patchbay.Matrix, raw []byte) []byte {
	var envelope map[string]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return marshalResponse(Fail("malformed request: "+err.Error(), CodeInvalidArgs))
	}

	name, _ := envelope["command"].(string)
	if name == "" {
		return marshalResponse(Fail("missing command", CodeInvalidArgs))
	}
	delete(envelope, "command")

	result, err := p.Execute(ctx, desk, name, envelope)
	if err != nil {
		return marshalResponse(Fail(err.Error(), CodeFor(err)))
	}
	return marshalResponse(OK(result))
}

func marshalResponse(resp Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		// Only reachable with an unmarshalable Data payload from a
		// custom handler.
		return []byte(`{"success":false,"error":"unencodable response","code":"internal"}`)
	}
	return data
}

// CodeFor maps an Execute error to its stable envelope code. Front ends
// that call Execute directly use it to build their own failure payloads.
func CodeFor(err error) string {
	var argsErr *ArgsError
	var valErr *schema.ValidationError
	var aggErr *schema.AggregateError

	switch {
	case errors.Is(err, ErrUnknownCommand):
		return CodeUnknownCommand
	case errors.As(err, &argsErr):
		return CodeInvalidArgs
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return CodeIndexOutOfRange
	case errors.Is(err, domain.ErrGangNotFound):
		return CodeGangNotFound
	case errors.As(err, &valErr), errors.As(err, &aggErr):
		return CodeInvalidSnapshot
	default:
		return CodeInternal
	}
}
