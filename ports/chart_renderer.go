package ports

import (
	"context"

	"gonarrate/domain/chart"
)

// ChartArtifact is a rendered chart in some media type
type ChartArtifact struct {
	MediaType string
	Body      []byte
}

// ChartRenderer is the external charting collaborator: it consumes chart data
// and returns something a document writer can embed.
type ChartRenderer interface {
	RenderChart(ctx context.Context, id string, data chart.Data) (*ChartArtifact, error)
}
