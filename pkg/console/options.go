package console

import (
	"log/slog"

	"github.com/aretw0/patchbay/pkg/command"
)

// Option defines a functional option for configuring the Console.
type Option func(*Console)

// WithHandler configures a custom IOHandler.
func WithHandler(handler IOHandler) Option {
	return func(c *Console) {
		c.Handler = handler
	}
}

// WithInterceptor configures the command execution middleware.
func WithInterceptor(interceptor CommandInterceptor) Option {
	return func(c *Console) {
		c.Interceptor = interceptor
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithProcessor swaps the command processor, e.g. one carrying extra
// commands or a latency observer.
func WithProcessor(proc *command.Processor) Option {
	return func(c *Console) {
		c.proc = proc
	}
}
