package topics

import (
	"github.com/charmbracelet/glamour"
)

// Renderer formats topic content for display
type Renderer interface {
	Render(content, ext string) string
}

// PlainRenderer returns content unchanged
type PlainRenderer struct{}

func (PlainRenderer) Render(content, ext string) string { return content }

// GlamourRenderer renders markdown topics with glamour and leaves other
// formats alone. Rendering errors fall back to the raw content.
type GlamourRenderer struct {
	// Style is a glamour style name or path; empty or "auto" detects the terminal
	Style string
	// Width wraps text; 0 keeps glamour's default
	Width int
}

func (r GlamourRenderer) Render(content, ext string) string {
	if ext != ".md" {
		return content
	}

	var options []glamour.TermRendererOption
	if r.Style != "" && r.Style != "auto" {
		options = append(options, glamour.WithStylePath(r.Style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
