package narrative

import (
	"fmt"
	"time"

	"gonarrate/domain/chart"
	"gonarrate/domain/core"
)

// BlockKind identifies one entry of a page's block sequence
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockText      BlockKind = "text"
	BlockQuote     BlockKind = "quote"
	BlockNarrative BlockKind = "narrative"
	BlockImage     BlockKind = "image"
	BlockChart     BlockKind = "chart"
)

// MetricKind names the scalar a metric computes
type MetricKind string

const (
	MetricCount       MetricKind = "count"
	MetricMean        MetricKind = "mean"
	MetricMedian      MetricKind = "median"
	MetricStdDev      MetricKind = "std_dev"
	MetricCountBelow  MetricKind = "count_below"
	MetricCorrelation MetricKind = "correlation"
	MetricSlope       MetricKind = "slope"
	MetricIntercept   MetricKind = "intercept"
	MetricRSquared    MetricKind = "r_squared"
)

// DatasetRef binds a logical dataset identifier to a storage reference
type DatasetRef struct {
	ID     string `yaml:"id" json:"id"`
	Source string `yaml:"source" json:"source"`
}

// Threshold restricts a chart to rows where Column < Value
type Threshold struct {
	Column string  `yaml:"column" json:"column"`
	Value  float64 `yaml:"value" json:"value"`
}

// Metric is a named scalar substituted into text blocks as {Name}
type Metric struct {
	Name      string     `yaml:"name" json:"name"`
	Kind      MetricKind `yaml:"kind" json:"kind"`
	Dataset   string     `yaml:"dataset" json:"dataset"`
	Column    string     `yaml:"column,omitempty" json:"column,omitempty"`
	Y         string     `yaml:"y,omitempty" json:"y,omitempty"`
	Threshold float64    `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Decimals  *int       `yaml:"decimals,omitempty" json:"decimals,omitempty"`
}

// Block is one declared element of the page
type Block struct {
	Kind    BlockKind   `yaml:"kind" json:"kind"`
	Level   int         `yaml:"level,omitempty" json:"level,omitempty"`
	Text    string      `yaml:"text,omitempty" json:"text,omitempty"`
	Path    string      `yaml:"path,omitempty" json:"path,omitempty"`
	Caption string      `yaml:"caption,omitempty" json:"caption,omitempty"`
	Dataset string      `yaml:"dataset,omitempty" json:"dataset,omitempty"`
	Below   *Threshold  `yaml:"below,omitempty" json:"below,omitempty"`
	Chart   *chart.Spec `yaml:"chart,omitempty" json:"chart,omitempty"`
}

// Page is a complete document definition
type Page struct {
	Title    string       `yaml:"title" json:"title"`
	Subtitle string       `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Datasets []DatasetRef `yaml:"datasets" json:"datasets"`
	Metrics  []Metric     `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	Blocks   []Block      `yaml:"blocks" json:"blocks"`
}

// Validate checks the structural rules a renderer relies on
func (p *Page) Validate() error {
	known := make(map[string]bool, len(p.Datasets))
	for _, ref := range p.Datasets {
		if _, err := core.ParseDatasetID(ref.ID); err != nil {
			return core.NewInvalidPageError(err.Error())
		}
		if known[ref.ID] {
			return core.NewInvalidPageError(fmt.Sprintf("dataset %q declared twice", ref.ID))
		}
		if ref.Source == "" {
			return core.NewInvalidPageError(fmt.Sprintf("dataset %q has no source", ref.ID))
		}
		known[ref.ID] = true
	}

	names := make(map[string]bool, len(p.Metrics))
	for _, m := range p.Metrics {
		if m.Name == "" {
			return core.NewInvalidPageError("metric without a name")
		}
		if names[m.Name] {
			return core.NewInvalidPageError(fmt.Sprintf("metric %q declared twice", m.Name))
		}
		names[m.Name] = true
		if !known[m.Dataset] {
			return core.NewInvalidPageError(fmt.Sprintf("metric %q uses undeclared dataset %q", m.Name, m.Dataset))
		}
		switch m.Kind {
		case MetricCount:
		case MetricMean, MetricMedian, MetricStdDev, MetricCountBelow:
			if m.Column == "" {
				return core.NewInvalidPageError(fmt.Sprintf("metric %q needs a column", m.Name))
			}
		case MetricCorrelation, MetricSlope, MetricIntercept, MetricRSquared:
			if m.Column == "" || m.Y == "" {
				return core.NewInvalidPageError(fmt.Sprintf("metric %q needs column and y", m.Name))
			}
		default:
			return core.NewInvalidPageError(fmt.Sprintf("metric %q has unknown kind %q", m.Name, m.Kind))
		}
	}

	for i, b := range p.Blocks {
		switch b.Kind {
		case BlockHeading:
			if b.Level < 1 || b.Level > 6 {
				return core.NewInvalidPageError(fmt.Sprintf("block %d: heading level %d out of range", i, b.Level))
			}
		case BlockText, BlockQuote:
		case BlockNarrative:
			if b.Path == "" {
				return core.NewInvalidPageError(fmt.Sprintf("block %d: narrative needs a path", i))
			}
		case BlockImage:
			if b.Path == "" {
				return core.NewInvalidPageError(fmt.Sprintf("block %d: image needs a path", i))
			}
		case BlockChart:
			if b.Chart == nil {
				return core.NewInvalidPageError(fmt.Sprintf("block %d: chart spec missing", i))
			}
			if !known[b.Dataset] {
				return core.NewInvalidPageError(fmt.Sprintf("block %d: chart uses undeclared dataset %q", i, b.Dataset))
			}
			if err := b.Chart.Validate(); err != nil {
				return core.NewInvalidPageError(fmt.Sprintf("block %d: %v", i, err))
			}
		default:
			return core.NewInvalidPageError(fmt.Sprintf("block %d: unknown kind %q", i, b.Kind))
		}
	}
	return nil
}

// DatasetIDs lists declared dataset identifiers in declaration order
func (p *Page) DatasetIDs() []string {
	ids := make([]string, len(p.Datasets))
	for i, ref := range p.Datasets {
		ids[i] = ref.ID
	}
	return ids
}

// Image is a resolved static image reference
type Image struct {
	Src     string `json:"src"`
	Caption string `json:"caption,omitempty"`
}

// RenderedBlock is one emitted element of a Document. Exactly one of
// Markdown, Image or Chart carries the content.
type RenderedBlock struct {
	Kind     BlockKind   `json:"kind"`
	Level    int         `json:"level,omitempty"`
	Markdown string      `json:"markdown,omitempty"`
	Image    *Image      `json:"image,omitempty"`
	Chart    *chart.Data `json:"chart,omitempty"`
}

// Document is the output of one render pass
type Document struct {
	ID         core.RenderID     `json:"id"`
	Title      string            `json:"title"`
	Subtitle   string            `json:"subtitle,omitempty"`
	Values     map[string]string `json:"values"`
	Blocks     []RenderedBlock   `json:"blocks"`
	RenderedAt time.Time         `json:"rendered_at"`
}
