// Package render renders analysis report markdown for the terminal.
package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer wraps a glamour renderer and falls back to the raw markdown when
// styling fails.
type Renderer struct {
	term *glamour.TermRenderer
}

// New wraps at width columns; zero disables wrapping.
func New(style string, width int) Renderer {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return Renderer{}
	}
	return Renderer{term: r}
}

func (r Renderer) Render(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}
	if r.term == nil {
		return markdown
	}
	out, err := r.term.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
