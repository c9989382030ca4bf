package cli

import (
	"os"

	"golang.org/x/term"

	"github.com/aretw0/patchbay/internal/presentation/tui"
)

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// RenderMarkdown pretty-prints a markdown document when stdout is a
// terminal and plain is false. Piped output stays raw markdown so the
// boards remain scriptable.
func RenderMarkdown(doc string, plain bool) string {
	if plain || !IsTerminal() {
		return doc
	}
	render := tui.NewRenderer()
	out, err := render(doc)
	if err != nil {
		return doc
	}
	return out
}
