// Package narrative turns a page definition and the loaded datasets into a
// renderer-agnostic Document, and writes documents as HTML, Markdown or
// terminal text.
package narrative

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"gonarrate/domain/core"
	"gonarrate/domain/dataset"
	domain "gonarrate/domain/narrative"
	"gonarrate/internal"
	"gonarrate/internal/analysis"
)

// Loader supplies the datasets a page declares
type Loader interface {
	Load(ctx context.Context, names ...string) (map[string]*dataset.Dataset, error)
}

// TextReader reads narrative files verbatim
type TextReader interface {
	ReadText(ctx context.Context, path string) (string, error)
}

// Config holds renderer configuration
type Config struct {
	ImageBaseURL string // Prefix for relative image paths
}

// DefaultConfig returns the layout used by the HTTP server
func DefaultConfig() Config {
	return Config{ImageBaseURL: "/static/images"}
}

// Renderer performs one synchronous forward pass per call: load, compute
// metrics, then emit blocks in declaration order
type Renderer struct {
	loader Loader
	texts  TextReader
	config Config
	logger *internal.Logger
	now    func() time.Time
}

// NewRenderer creates a renderer over the given loader
func NewRenderer(loader Loader, texts TextReader, config Config, logger *internal.Logger) *Renderer {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &Renderer{
		loader: loader,
		texts:  texts,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Render produces the document for page. Any load, metric or block failure
// aborts the pass and no document is returned.
func (r *Renderer) Render(ctx context.Context, page *domain.Page) (*domain.Document, error) {
	start := r.now()

	datasets, err := r.loader.Load(ctx, page.DatasetIDs()...)
	if err != nil {
		return nil, err
	}

	values, err := ComputeMetrics(datasets, page.Metrics)
	if err != nil {
		return nil, err
	}

	title, err := Substitute(page.Title, values)
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}
	subtitle, err := Substitute(page.Subtitle, values)
	if err != nil {
		return nil, fmt.Errorf("subtitle: %w", err)
	}

	doc := &domain.Document{
		ID:         core.NewRenderID(),
		Title:      title,
		Subtitle:   subtitle,
		Values:     values,
		Blocks:     make([]domain.RenderedBlock, 0, len(page.Blocks)),
		RenderedAt: start,
	}
	for i, block := range page.Blocks {
		rb, err := r.renderBlock(ctx, block, datasets, values)
		if err != nil {
			return nil, fmt.Errorf("block %d (%s): %w", i, block.Kind, err)
		}
		doc.Blocks = append(doc.Blocks, rb)
	}

	r.logger.Debug("[Renderer] Rendered %q: %d blocks, %d values in %v", doc.Title, len(doc.Blocks), len(values), r.now().Sub(start))
	return doc, nil
}

func (r *Renderer) renderBlock(ctx context.Context, block domain.Block, datasets map[string]*dataset.Dataset, values map[string]string) (domain.RenderedBlock, error) {
	rb := domain.RenderedBlock{Kind: block.Kind, Level: block.Level}

	switch block.Kind {
	case domain.BlockHeading, domain.BlockText:
		text, err := Substitute(block.Text, values)
		if err != nil {
			return rb, err
		}
		rb.Markdown = text

	case domain.BlockQuote:
		text, err := Substitute(block.Text, values)
		if err != nil {
			return rb, err
		}
		rb.Markdown = quote(text)

	case domain.BlockNarrative:
		if r.texts == nil {
			return rb, fmt.Errorf("no text reader configured for %s", block.Path)
		}
		text, err := r.texts.ReadText(ctx, block.Path)
		if err != nil {
			return rb, err
		}
		rb.Markdown = text

	case domain.BlockImage:
		caption, err := Substitute(block.Caption, values)
		if err != nil {
			return rb, err
		}
		rb.Image = &domain.Image{Src: r.imageURL(block.Path), Caption: caption}

	case domain.BlockChart:
		d, ok := datasets[block.Dataset]
		if !ok {
			return rb, core.NewDataUnavailableError(block.Dataset, nil)
		}
		if block.Below != nil {
			filtered, err := analysis.FilterBelow(d, block.Below.Column, block.Below.Value)
			if err != nil {
				return rb, err
			}
			d = filtered
		}
		data, err := analysis.ChartData(d, *block.Chart)
		if err != nil {
			return rb, err
		}
		rb.Chart = &data

	default:
		return rb, fmt.Errorf("unknown block kind %q", block.Kind)
	}
	return rb, nil
}

func (r *Renderer) imageURL(p string) string {
	if strings.HasPrefix(p, "/") || strings.Contains(p, "://") || r.config.ImageBaseURL == "" {
		return p
	}
	return path.Join(r.config.ImageBaseURL, p)
}

func quote(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}
