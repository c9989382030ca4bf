package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a markdown renderer backed by glamour, detecting
// light or dark terminal backgrounds automatically. When the terminal
// cannot be probed the renderer passes markdown through untouched.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return r.Render
}
