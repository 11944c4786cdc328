package narrative

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	domain "gonarrate/domain/narrative"
	"gonarrate/ports"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFiles, "templates/*.tmpl"))

// HTMLWriter renders a document as a standalone HTML page
type HTMLWriter struct {
	charts  ports.ChartRenderer
	scripts []string
}

// NewHTMLWriter creates an HTML writer. scripts are emitted as <script src>
// tags in the head, e.g. the echarts runtime.
func NewHTMLWriter(charts ports.ChartRenderer, scripts ...string) *HTMLWriter {
	return &HTMLWriter{charts: charts, scripts: scripts}
}

type htmlSection struct {
	Kind  domain.BlockKind
	ID    string
	HTML  template.HTML
	Image *domain.Image
}

type htmlPage struct {
	ID       string
	Title    string
	Subtitle string
	Scripts  []string
	Sections []htmlSection
}

// Write renders doc into out. The page is built in memory first so a chart
// failure never leaves a truncated page behind.
func (w *HTMLWriter) Write(ctx context.Context, out io.Writer, doc *domain.Document) error {
	page := htmlPage{
		ID:       doc.ID.String(),
		Title:    doc.Title,
		Subtitle: doc.Subtitle,
		Scripts:  w.scripts,
		Sections: make([]htmlSection, 0, len(doc.Blocks)),
	}
	for i, block := range doc.Blocks {
		section, err := w.section(ctx, i, block)
		if err != nil {
			return fmt.Errorf("block %d (%s): %w", i, block.Kind, err)
		}
		page.Sections = append(page.Sections, section)
	}

	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "page", page); err != nil {
		return fmt.Errorf("failed to execute page template: %w", err)
	}
	_, err := buf.WriteTo(out)
	return err
}

func (w *HTMLWriter) section(ctx context.Context, i int, block domain.RenderedBlock) (htmlSection, error) {
	section := htmlSection{Kind: block.Kind, ID: fmt.Sprintf("chart-%d", i)}

	switch block.Kind {
	case domain.BlockHeading:
		section.HTML = MarkdownToHTML(strings.Repeat("#", headingLevel(block.Level)) + " " + block.Markdown)
	case domain.BlockImage:
		section.Image = block.Image
	case domain.BlockChart:
		if w.charts == nil {
			return section, fmt.Errorf("no chart renderer configured")
		}
		artifact, err := w.charts.RenderChart(ctx, section.ID, *block.Chart)
		if err != nil {
			return section, err
		}
		embedded, err := embedArtifact(artifact, block.Chart.Spec.Title)
		if err != nil {
			return section, err
		}
		section.HTML = embedded
	default:
		section.HTML = MarkdownToHTML(block.Markdown)
	}
	return section, nil
}

// MarkdownToHTML converts markdown to sanitized HTML; raw HTML in the source
// is dropped
func MarkdownToHTML(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.SkipHTML})
	return template.HTML(markdown.ToHTML([]byte(md), p, r))
}

func embedArtifact(a *ports.ChartArtifact, title string) (template.HTML, error) {
	switch a.MediaType {
	case "text/html", "image/svg+xml":
		return template.HTML(a.Body), nil
	case "image/png":
		return template.HTML(fmt.Sprintf(`<img src="data:image/png;base64,%s" alt="%s">`,
			base64.StdEncoding.EncodeToString(a.Body), html.EscapeString(title))), nil
	}
	return "", fmt.Errorf("cannot embed chart of type %s", a.MediaType)
}

func headingLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}
