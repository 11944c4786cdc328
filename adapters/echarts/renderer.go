// Package echarts renders chart data as embeddable go-echarts HTML fragments.
package echarts

import (
	"context"
	"fmt"

	"gonarrate/domain/chart"
	"gonarrate/ports"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ScriptURL is the echarts runtime the fragments expect on the page
const ScriptURL = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

// Renderer implements ports.ChartRenderer with interactive echarts fragments
type Renderer struct {
	height string
}

// NewRenderer creates a renderer; height is a CSS length such as "400px"
func NewRenderer(height string) *Renderer {
	if height == "" {
		height = "400px"
	}
	return &Renderer{height: height}
}

var _ ports.ChartRenderer = (*Renderer)(nil)

// RenderChart returns an HTML fragment (container div plus init script)
func (r *Renderer) RenderChart(ctx context.Context, id string, data chart.Data) (*ports.ChartArtifact, error) {
	var snippet string
	switch data.Spec.Mark {
	case chart.MarkBar, chart.MarkHistogram:
		bar := r.histogram(id, data)
		s := bar.RenderSnippet()
		snippet = s.Element + s.Script
	case chart.MarkPoint:
		scatter := r.scatter(id, data)
		s := scatter.RenderSnippet()
		snippet = s.Element + s.Script
	default:
		return nil, fmt.Errorf("echarts: unsupported mark %q", data.Spec.Mark)
	}
	return &ports.ChartArtifact{MediaType: "text/html", Body: []byte(snippet)}, nil
}

func (r *Renderer) globalOpts(id string, spec chart.Spec, yName string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: id,
			Width:   "100%",
			Height:  r.height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: spec.Title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithYAxisOpts(axisY(yName, spec.Y.Domain)),
		charts.WithGridOpts(opts.Grid{
			Left:   "10%",
			Right:  "10%",
			Bottom: "15%",
			Top:    "60",
		}),
	}
}

func (r *Renderer) histogram(id string, data chart.Data) *charts.Bar {
	bar := charts.NewBar()
	global := r.globalOpts(id, data.Spec, "Count")
	global = append(global, charts.WithXAxisOpts(opts.XAxis{
		Name: data.Spec.X.Label(),
		Type: "category",
		AxisLabel: &opts.AxisLabel{
			Rotate: 45,
		},
	}))
	bar.SetGlobalOptions(global...)

	labels := make([]string, len(data.Bins))
	values := make([]opts.BarData, len(data.Bins))
	for i, bin := range data.Bins {
		labels[i] = fmt.Sprintf("%.1f-%.1f", bin.Lower, bin.Upper)
		values[i] = opts.BarData{Value: bin.Count}
	}
	bar.SetXAxis(labels)
	bar.AddSeries("Count", values,
		charts.WithBarChartOpts(opts.BarChart{
			BarCategoryGap: "0%",
		}),
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color: "#5470c6",
		}),
	)
	return bar
}

func (r *Renderer) scatter(id string, data chart.Data) *charts.Scatter {
	scatter := charts.NewScatter()
	global := r.globalOpts(id, data.Spec, data.Spec.Y.Label())
	global = append(global, charts.WithXAxisOpts(axisX(data.Spec.X.Label(), data.Spec.X.Domain)))
	scatter.SetGlobalOptions(global...)

	points := make([]opts.ScatterData, len(data.Points))
	for i, p := range data.Points {
		points[i] = opts.ScatterData{Value: []interface{}{p.X, p.Y}, SymbolSize: 6}
	}
	scatter.AddSeries(data.Spec.Y.Label(), points,
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color: "#5470c6",
		}),
	)

	if fit := data.Fit; fit != nil {
		line := charts.NewLine()
		line.AddSeries(fmt.Sprintf("fit (r² %.3f)", fit.RSquared), []opts.LineData{
			{Value: []interface{}{fit.XMin, fit.At(fit.XMin)}},
			{Value: []interface{}{fit.XMax, fit.At(fit.XMax)}},
		},
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(false),
			}),
			charts.WithLineStyleOpts(opts.LineStyle{
				Color: "#ee6666",
				Width: 2,
			}),
		)
		scatter.Overlap(line)
	}
	return scatter
}

func axisX(name string, domain *chart.Domain) opts.XAxis {
	axis := opts.XAxis{Name: name, Type: "value"}
	if domain != nil {
		axis.Min = domain.Min
		axis.Max = domain.Max
	}
	return axis
}

func axisY(name string, domain *chart.Domain) opts.YAxis {
	axis := opts.YAxis{Name: name, Type: "value"}
	if domain != nil {
		axis.Min = domain.Min
		axis.Max = domain.Max
	}
	return axis
}
