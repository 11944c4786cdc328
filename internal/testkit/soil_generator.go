package testkit

import (
	"fmt"
	"math"
	"math/rand"
)

// SoilGeneratorConfig configures the synthetic soil-carbon generator
type SoilGeneratorConfig struct {
	SiteCount      int     `json:"site_count"`
	GridCellCount  int     `json:"grid_cell_count"`
	HighCarbonRate float64 `json:"high_carbon_rate"`
	PredictionBias float64 `json:"prediction_bias"`
	Noise          float64 `json:"noise"`
	Seed           int64   `json:"seed"`
}

// DefaultSoilConfig returns sensible defaults for soil data generation
func DefaultSoilConfig() SoilGeneratorConfig {
	return SoilGeneratorConfig{
		SiteCount:      240,
		GridCellCount:  400,
		HighCarbonRate: 0.12,
		PredictionBias: 12,
		Noise:          9,
		Seed:           42,
	}
}

// CarbonSample is one point measurement of soil organic carbon (g/kg)
type CarbonSample struct {
	Site  string  `parquet:"site"`
	Lat   float64 `parquet:"lat"`
	Lon   float64 `parquet:"lon"`
	Depth int32   `parquet:"depth"`
	Value float64 `parquet:"value"`
}

// CorrelationPair is an observed measurement against a raster prediction
type CorrelationPair struct {
	Site      string
	Observed  float64
	Predicted float64
}

// MergedCell compares two raster products over the same grid cell
type MergedCell struct {
	Cell      string
	OLM       float64
	SoilGrids float64
}

// SoilDataGenerator generates realistic soil-carbon measurements
type SoilDataGenerator struct {
	config SoilGeneratorConfig
	rng    *rand.Rand
}

// NewSoilDataGenerator creates a new soil data generator
func NewSoilDataGenerator(config SoilGeneratorConfig) *SoilDataGenerator {
	return &SoilDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateCarbon generates point measurements. Most sites are log-normally
// distributed around 25 g/kg; a configurable share are peat-like outliers
// well above 100 g/kg.
func (g *SoilDataGenerator) GenerateCarbon() []CarbonSample {
	samples := make([]CarbonSample, g.config.SiteCount)
	for i := range samples {
		value := math.Exp(3.2 + 0.55*g.rng.NormFloat64())
		if g.rng.Float64() < g.config.HighCarbonRate {
			value = 110 + g.rng.Float64()*290
		}
		samples[i] = CarbonSample{
			Site:  siteID(i),
			Lat:   round(8.0+g.rng.Float64()*3.2, 5),
			Lon:   round(-85.9+g.rng.Float64()*3.3, 5),
			Depth: int32(5 * (1 + g.rng.Intn(6))),
			Value: round(value, 2),
		}
	}
	return samples
}

// GenerateCorrelation pairs each measured site with a prediction. Buffered
// predictions average neighbouring cells and so carry less noise.
func (g *SoilDataGenerator) GenerateCorrelation(samples []CarbonSample, buffered bool) []CorrelationPair {
	noise := g.config.Noise
	if buffered {
		noise /= 2
	}
	pairs := make([]CorrelationPair, 0, len(samples))
	for _, s := range samples {
		if s.Value >= 100 {
			continue
		}
		predicted := g.config.PredictionBias + 0.6*s.Value + noise*g.rng.NormFloat64()
		pairs = append(pairs, CorrelationPair{
			Site:      s.Site,
			Observed:  s.Value,
			Predicted: round(math.Max(0, predicted), 2),
		})
	}
	return pairs
}

// GenerateMerged generates co-located cells of two raster products
func (g *SoilDataGenerator) GenerateMerged() []MergedCell {
	cells := make([]MergedCell, g.config.GridCellCount)
	for i := range cells {
		olm := math.Exp(3.0 + 0.5*g.rng.NormFloat64())
		soilgrids := 0.8*olm + 6 + g.config.Noise*g.rng.NormFloat64()
		cells[i] = MergedCell{
			Cell:      fmt.Sprintf("cell_%04d", i+1),
			OLM:       round(olm, 2),
			SoilGrids: round(math.Max(0, soilgrids), 2),
		}
	}
	return cells
}

func siteID(i int) string {
	return fmt.Sprintf("CR-%04d", i+1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
