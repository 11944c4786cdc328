package chart

import "fmt"

// Mark is the visual primitive a chart draws
type Mark string

const (
	MarkBar       Mark = "bar"
	MarkHistogram Mark = "histogram"
	MarkPoint     Mark = "point"
)

// Domain bounds a scale. Clamp pins out-of-range values to the bounds
// instead of dropping them.
type Domain struct {
	Min   float64 `yaml:"min" json:"min"`
	Max   float64 `yaml:"max" json:"max"`
	Clamp bool    `yaml:"clamp" json:"clamp"`
}

// Encoding maps a dataset column to a visual channel
type Encoding struct {
	Field  string  `yaml:"field" json:"field"`
	Title  string  `yaml:"title,omitempty" json:"title,omitempty"`
	Domain *Domain `yaml:"domain,omitempty" json:"domain,omitempty"`
}

// Label returns the axis title, falling back to the field name
func (e Encoding) Label() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Field
}

// Spec is a renderer-agnostic chart description
type Spec struct {
	Title      string   `yaml:"title,omitempty" json:"title,omitempty"`
	Mark       Mark     `yaml:"mark" json:"mark"`
	X          Encoding `yaml:"x" json:"x"`
	Y          Encoding `yaml:"y,omitempty" json:"y,omitempty"`
	Bins       int      `yaml:"bins,omitempty" json:"bins,omitempty"`
	Regression bool     `yaml:"regression,omitempty" json:"regression,omitempty"`
	Width      int      `yaml:"width,omitempty" json:"width,omitempty"`
	Height     int      `yaml:"height,omitempty" json:"height,omitempty"`
}

// DefaultBins is used by histogram marks that do not set Bins
const DefaultBins = 20

// Validate checks the spec is drawable
func (s Spec) Validate() error {
	if s.X.Field == "" {
		return fmt.Errorf("chart %q: x field is required", s.Title)
	}
	if d := s.X.Domain; d != nil && d.Max <= d.Min {
		return fmt.Errorf("chart %q: x domain max %g must exceed min %g", s.Title, d.Max, d.Min)
	}
	if d := s.Y.Domain; d != nil && d.Max <= d.Min {
		return fmt.Errorf("chart %q: y domain max %g must exceed min %g", s.Title, d.Max, d.Min)
	}
	switch s.Mark {
	case MarkBar, MarkHistogram:
		if s.Regression {
			return fmt.Errorf("chart %q: regression overlay needs a point mark", s.Title)
		}
		if s.Bins < 0 {
			return fmt.Errorf("chart %q: bins must be positive", s.Title)
		}
	case MarkPoint:
		if s.Y.Field == "" {
			return fmt.Errorf("chart %q: point mark needs a y field", s.Title)
		}
	default:
		return fmt.Errorf("chart %q: unsupported mark %q", s.Title, s.Mark)
	}
	return nil
}

// BinCount returns the configured bin count or the default
func (s Spec) BinCount() int {
	if s.Bins > 0 {
		return s.Bins
	}
	return DefaultBins
}

// Bin is one histogram bucket covering [Lower, Upper)
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// XY is one scatter point
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line is the fitted overlay y = Intercept + Slope*x across [XMin, XMax]
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	XMin      float64 `json:"x_min"`
	XMax      float64 `json:"x_max"`
}

// At evaluates the fitted line
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// Data is everything a renderer needs to draw one chart; the calculator
// fills it so adapters never see a Dataset.
type Data struct {
	Spec   Spec  `json:"spec"`
	Bins   []Bin `json:"bins,omitempty"`
	Points []XY  `json:"points,omitempty"`
	Fit    *Line `json:"fit,omitempty"`
}
