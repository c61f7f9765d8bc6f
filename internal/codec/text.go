package codec

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sitedirectory/internal/domain"
)

var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorHighlight = lipgloss.Color("#F59E0B")
)

// TextCodec renders the tree as an indented outline for terminals
type TextCodec struct {
	hubStyle       lipgloss.Style
	highlightStyle lipgloss.Style
	siteStyle      lipgloss.Style
	mutedStyle     lipgloss.Style
}

// NewTextCodec creates a text codec. Colors are dropped automatically when
// the output is not a terminal.
func NewTextCodec() *TextCodec {
	return &TextCodec{
		hubStyle:       lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		highlightStyle: lipgloss.NewStyle().Bold(true).Foreground(colorHighlight),
		siteStyle:      lipgloss.NewStyle(),
		mutedStyle:     lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// Format returns the codec format identifier
func (c *TextCodec) Format() string {
	return "text"
}

// ContentType returns the MIME type of the output
func (c *TextCodec) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Export writes one line per hub followed by its sites as tree branches
func (c *TextCodec) Export(tree *domain.DirectoryTree, w io.Writer) error {
	var b strings.Builder

	stats := tree.Stats()
	b.WriteString(c.mutedStyle.Render(fmt.Sprintf("%s: %d hubs, %d sites", tree.Scope, stats.Hubs, stats.AssociatedSites)))
	b.WriteString("\n")

	for _, hub := range tree.Hubs {
		style := c.hubStyle
		marker := ""
		if hub.Highlighted {
			style = c.highlightStyle
			marker = " *"
		}
		b.WriteString(style.Render(hub.Record.Title + marker))
		b.WriteString(" ")
		b.WriteString(c.mutedStyle.Render(hub.Record.URL))
		b.WriteString("\n")

		for i, site := range hub.AssociatedSites {
			branch := "├── "
			if i == len(hub.AssociatedSites)-1 {
				branch = "└── "
			}
			b.WriteString(c.mutedStyle.Render(branch))
			b.WriteString(c.siteStyle.Render(site.Title))
			b.WriteString(" ")
			b.WriteString(c.mutedStyle.Render(site.URL))
			b.WriteString("\n")
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write text: %w", err)
	}
	return nil
}
