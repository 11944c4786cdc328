package narrative

import (
	"context"
	"fmt"
	"io"

	domain "gonarrate/domain/narrative"

	"github.com/charmbracelet/glamour"
)

// TerminalWriter renders a document as styled terminal text
type TerminalWriter struct {
	width int
	style string
}

// NewTerminalWriter creates a terminal writer wrapping at width columns.
// An empty style picks one from the terminal background.
func NewTerminalWriter(width int, style string) *TerminalWriter {
	if width <= 0 {
		width = 80
	}
	return &TerminalWriter{width: width, style: style}
}

// Write renders doc into out
func (w *TerminalWriter) Write(ctx context.Context, out io.Writer, doc *domain.Document) error {
	styleOpt := glamour.WithAutoStyle()
	if w.style != "" {
		styleOpt = glamour.WithStandardStyle(w.style)
	}
	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(w.width))
	if err != nil {
		return fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	text, err := renderer.Render(Markdown(doc))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(out, text)
	return err
}
