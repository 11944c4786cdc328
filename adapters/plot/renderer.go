// Package plot renders chart data as static PNG or SVG images with gonum/plot.
package plot

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonarrate/domain/chart"
	"gonarrate/ports"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Config holds image output settings
type Config struct {
	Format   string  // png or svg
	WidthIn  float64 // Image width in inches
	HeightIn float64 // Image height in inches
}

// DefaultConfig returns a 6x4 inch PNG
func DefaultConfig() Config {
	return Config{Format: "png", WidthIn: 6, HeightIn: 4}
}

// Renderer implements ports.ChartRenderer with static images
type Renderer struct {
	config Config
}

// NewRenderer creates an image renderer
func NewRenderer(config Config) *Renderer {
	return &Renderer{config: config}
}

var _ ports.ChartRenderer = (*Renderer)(nil)

var (
	fillColor = color.RGBA{R: 0x54, G: 0x70, B: 0xc6, A: 0xff}
	fitColor  = color.RGBA{R: 0xee, G: 0x66, B: 0x66, A: 0xff}
)

// MediaType returns the content type of the configured format
func (r *Renderer) MediaType() string {
	if r.config.Format == "svg" {
		return "image/svg+xml"
	}
	return "image/png"
}

// RenderChart draws data into an image of the configured format
func (r *Renderer) RenderChart(ctx context.Context, id string, data chart.Data) (*ports.ChartArtifact, error) {
	p, err := r.build(data)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", id, err)
	}

	w := vg.Length(r.config.WidthIn) * vg.Inch
	h := vg.Length(r.config.HeightIn) * vg.Inch
	wt, err := p.WriterTo(w, h, r.config.Format)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", id, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart %s: failed to encode %s: %w", id, r.config.Format, err)
	}
	return &ports.ChartArtifact{MediaType: r.MediaType(), Body: buf.Bytes()}, nil
}

// Export renders data and writes it to dir/id.<format>, returning the path
func (r *Renderer) Export(ctx context.Context, dir, id string, data chart.Data) (string, error) {
	artifact, err := r.RenderChart(ctx, id, data)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create chart directory: %w", err)
	}
	path := filepath.Join(dir, id+"."+r.config.Format)
	if err := os.WriteFile(path, artifact.Body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write chart: %w", err)
	}
	return path, nil
}

func (r *Renderer) build(data chart.Data) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = data.Spec.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = data.Spec.X.Label()
	applyDomain(&p.X, data.Spec.X.Domain)

	switch data.Spec.Mark {
	case chart.MarkBar, chart.MarkHistogram:
		p.Y.Label.Text = "Count"
		hist := &plotter.Histogram{
			Bins:      make([]plotter.HistogramBin, len(data.Bins)),
			FillColor: fillColor,
			LineStyle: plotter.DefaultLineStyle,
		}
		for i, bin := range data.Bins {
			hist.Bins[i] = plotter.HistogramBin{Min: bin.Lower, Max: bin.Upper, Weight: float64(bin.Count)}
		}
		if len(data.Bins) > 0 {
			hist.Width = data.Bins[0].Upper - data.Bins[0].Lower
		}
		p.Add(hist)

	case chart.MarkPoint:
		p.Y.Label.Text = data.Spec.Y.Label()
		applyDomain(&p.Y, data.Spec.Y.Domain)
		xys := make(plotter.XYs, len(data.Points))
		for i, pt := range data.Points {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to create scatter: %w", err)
		}
		scatter.GlyphStyle.Color = fillColor
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)

		if fit := data.Fit; fit != nil {
			line := plotter.NewFunction(fit.At)
			line.XMin, line.XMax = fit.XMin, fit.XMax
			line.Color = fitColor
			line.Width = vg.Points(2)
			p.Add(line)
			p.Legend.Add(fmt.Sprintf("fit r² = %.3f", fit.RSquared), line)
		}

	default:
		return nil, fmt.Errorf("unsupported mark %q", data.Spec.Mark)
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

func applyDomain(axis *plot.Axis, domain *chart.Domain) {
	if domain == nil {
		return
	}
	axis.Min, axis.Max = domain.Min, domain.Max
}
