package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/patchbay/pkg/command"
)

// CodeDenied marks a response envelope produced by console policy rather
// than by the command layer.
const CodeDenied = "denied"

// DestructiveCommands are the commands that rewrite or wipe the whole
// desk. ConfirmationMiddleware guards these by default.
var DestructiveCommands = []string{"setState", "clear", "silent"}

// CommandInterceptor is a middleware that can intercept or block a command
// before it reaches the desk. It returns true if execution should proceed,
// or false with a Response describing the denial. The raw envelope is
// provided for interceptors that need to inspect arguments.
type CommandInterceptor func(ctx context.Context, name string, raw []byte) (bool, command.Response, error)

// MultiInterceptor chains multiple interceptors. The first denial wins.
func MultiInterceptor(interceptors ...CommandInterceptor) CommandInterceptor {
	return func(ctx context.Context, name string, raw []byte) (bool, command.Response, error) {
		for _, interceptor := range interceptors {
			allowed, result, err := interceptor(ctx, name, raw)
			if err != nil {
				return false, command.Response{}, err // System Error
			}
			if !allowed {
				return false, result, nil // Blocked by policy
			}
		}
		return true, command.Response{}, nil // All allowed
	}
}

// ConfirmationMiddleware prompts the operator via the provided Handler
// before allowing the named commands; with none named it guards
// DestructiveCommands. The confirmation answer is read from the same
// stream as envelopes.
func ConfirmationMiddleware(handler IOHandler, commands ...string) CommandInterceptor {
	if len(commands) == 0 {
		commands = DestructiveCommands
	}
	guarded := make(map[string]bool, len(commands))
	for _, name := range commands {
		guarded[name] = true
	}

	return func(ctx context.Context, name string, raw []byte) (bool, command.Response, error) {
		if !guarded[name] {
			return true, command.Response{}, nil
		}

		prompt := fmt.Sprintf("Command %q rewrites the desk. Allow execution? [y/N]", name)
		if err := handler.SystemOutput(ctx, prompt); err != nil {
			return false, command.Response{}, err
		}

		input, err := handler.ReadEnvelope(ctx)
		if err != nil {
			return false, command.Response{}, err
		}

		input = strings.TrimSpace(strings.ToLower(input))
		if input == "y" || input == "yes" {
			return true, command.Response{}, nil
		}

		return false, command.Fail("operator denied execution by policy", CodeDenied), nil
	}
}

// BlockMiddleware denies the named commands outright, for consoles fed by
// untrusted cue systems.
func BlockMiddleware(commands ...string) CommandInterceptor {
	blocked := make(map[string]bool, len(commands))
	for _, name := range commands {
		blocked[name] = true
	}

	return func(ctx context.Context, name string, raw []byte) (bool, command.Response, error) {
		if blocked[name] {
			return false, command.Fail(fmt.Sprintf("command %q blocked by policy", name), CodeDenied), nil
		}
		return true, command.Response{}, nil
	}
}

// AutoApproveMiddleware allows everything.
func AutoApproveMiddleware() CommandInterceptor {
	return func(ctx context.Context, name string, raw []byte) (bool, command.Response, error) {
		return true, command.Response{}, nil
	}
}
