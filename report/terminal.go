package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown lays the report out as one markdown document.
func (r *Report) Markdown() string {
	var sb strings.Builder
	sb.WriteString("### Function Call Log\n\n")
	if r.Summary.Invoked {
		sb.WriteString("✅ " + r.Summary.Message + "\n\n")
		for _, l := range r.Summary.Lines {
			sb.WriteString("- `" + l + "`\n")
		}
	} else {
		sb.WriteString("❌ " + r.Summary.Message + "\n")
	}
	sb.WriteString("\n---\n\n")
	for _, s := range r.Sections {
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", s.Title, s.Text)
	}
	return sb.String()
}

// RenderTerminal styles the report for a terminal of the given width.
func RenderTerminal(r *Report, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	return tr.Render(r.Markdown())
}
