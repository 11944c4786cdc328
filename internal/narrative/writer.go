package narrative

import (
	"context"
	"fmt"
	"io"

	domain "gonarrate/domain/narrative"
	"gonarrate/ports"
)

// Writer serializes a rendered document
type Writer interface {
	Write(ctx context.Context, out io.Writer, doc *domain.Document) error
}

// Output formats accepted by NewWriter
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatTerminal = "terminal"
)

// NewWriter picks a writer by format name
func NewWriter(format string, charts ports.ChartRenderer, scripts ...string) (Writer, error) {
	switch format {
	case FormatHTML:
		return NewHTMLWriter(charts, scripts...), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(), nil
	case FormatTerminal:
		return NewTerminalWriter(0, ""), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
