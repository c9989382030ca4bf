package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/command"
)

// Console handles the envelope loop of one desk using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode
// (Text vs JSON) and an optional CommandInterceptor for execution policy.
type Console struct {
	// Handler is the strategy for IO. If nil, a TextHandler on
	// Stdin/Stdout is used.
	Handler IOHandler

	// Interceptor is a middleware for command execution policy.
	// If nil, every command is allowed.
	Interceptor CommandInterceptor

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	proc *command.Processor
}

// New creates a Console. Without options it reads text from Stdin,
// writes to Stdout and allows every command.
func New(opts ...Option) *Console {
	c := &Console{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the envelope loop against the desk until the stream ends,
// the operator types "exit" or "quit", or ctx is cancelled. Command
// failures ride inside response envelopes and never stop the loop.
func (c *Console) Run(ctx context.Context, desk *patchbay.Matrix) error {
	handler := c.resolveHandler()
	proc := c.proc
	if proc == nil {
		proc = command.NewProcessor(command.WithLogger(c.Logger))
	}

	for {
		raw, err := handler.ReadEnvelope(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		switch raw {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if c.Interceptor != nil {
			allowed, denial, err := c.Interceptor(ctx, commandName(raw), []byte(raw))
			if err != nil {
				return fmt.Errorf("interceptor error: %w", err)
			}
			if !allowed {
				c.Logger.Debug("command blocked", "command", commandName(raw))
				if err := writeResponse(ctx, handler, denial); err != nil {
					return err
				}
				continue
			}
		}

		out := proc.Process(ctx, desk, []byte(raw))
		if err := handler.WriteResponse(ctx, out); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

// resolveHandler ensures a valid IOHandler is set. Memoized so repeated
// Run() calls keep one input pump.
func (c *Console) resolveHandler() IOHandler {
	if c.Handler == nil {
		c.Handler = NewTextHandler(nil, nil)
	}
	return c.Handler
}

// commandName peeks at the envelope's command without consuming it; the
// processor does the authoritative parse. Malformed envelopes yield ""
// and flow through to the processor for its canonical error response.
func commandName(raw string) string {
	var envelope struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return ""
	}
	return envelope.Command
}

func writeResponse(ctx context.Context, handler IOHandler, resp command.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if err := handler.WriteResponse(ctx, data); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}
