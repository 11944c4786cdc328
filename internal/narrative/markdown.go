package narrative

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gonarrate/domain/chart"
	domain "gonarrate/domain/narrative"
)

// MarkdownWriter renders a document as plain Markdown. Charts become a short
// summary table since Markdown has no chart primitive.
type MarkdownWriter struct{}

// NewMarkdownWriter creates a Markdown writer
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

// Write renders doc into out
func (w *MarkdownWriter) Write(ctx context.Context, out io.Writer, doc *domain.Document) error {
	_, err := io.WriteString(out, Markdown(doc))
	return err
}

// Markdown renders doc as a Markdown string
func Markdown(doc *domain.Document) string {
	parts := []string{"# " + doc.Title}
	if doc.Subtitle != "" {
		parts = append(parts, "_"+doc.Subtitle+"_")
	}
	for _, block := range doc.Blocks {
		switch block.Kind {
		case domain.BlockHeading:
			parts = append(parts, strings.Repeat("#", headingLevel(block.Level))+" "+block.Markdown)
		case domain.BlockImage:
			parts = append(parts, fmt.Sprintf("![%s](%s)", block.Image.Caption, block.Image.Src))
		case domain.BlockChart:
			parts = append(parts, chartSummary(*block.Chart))
		default:
			parts = append(parts, strings.TrimRight(block.Markdown, "\n"))
		}
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func chartSummary(data chart.Data) string {
	var b strings.Builder
	if data.Spec.Title != "" {
		fmt.Fprintf(&b, "**%s**\n\n", data.Spec.Title)
	}
	if len(data.Bins) > 0 {
		fmt.Fprintf(&b, "| %s | count |\n|---|---:|\n", data.Spec.X.Label())
		for _, bin := range data.Bins {
			fmt.Fprintf(&b, "| %s to %s | %d |\n", FormatFixed(bin.Lower, 2), FormatFixed(bin.Upper, 2), bin.Count)
		}
		return strings.TrimRight(b.String(), "\n")
	}
	fmt.Fprintf(&b, "%s points of %s against %s.", FormatThousands(len(data.Points)), data.Spec.Y.Label(), data.Spec.X.Label())
	if fit := data.Fit; fit != nil {
		fmt.Fprintf(&b, " Fitted line: y = %s x + %s (r² = %s).",
			FormatFixed(fit.Slope, 3), FormatFixed(fit.Intercept, 3), FormatFixed(fit.RSquared, 3))
	}
	return b.String()
}
