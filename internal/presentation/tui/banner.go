package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the patchbay wordmark with a teal-to-violet fade.
func PrintBanner() {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{` ___    _    _____   ___  _  _  ___    _   __   __`, "#2dd4bf"},
		{`| _ \  /_\  |_   _| / __|| || || _ )  /_\  \ \ / /`, "#38bdf8"},
		{`|  _/ / _ \   | |  | (__ | __ || _ \ / _ \  \ V / `, "#818cf8"},
		{`|_|  /_/ \_\  |_|   \___||_||_||___//_/ \_\  |_|  `, "#c084fc"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Println()
}
