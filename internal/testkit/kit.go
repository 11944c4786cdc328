package testkit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gonarrate/domain/chart"
	domain "gonarrate/domain/narrative"
	"gonarrate/internal/config"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// MergedSheet is the worksheet holding the merged raster comparison
const MergedSheet = "merged"

// OutlineText is the narrative file written next to the page manifest
const OutlineText = `This rough-cut page illustrates baseline and real-time environmental
measurements on possible concessions. The objective is to settle on the
measurements that are most useful for reporting and prioritization.

The data are not yet sufficient: they are not updated frequently enough and
they are not published at high enough spatial resolution to make economic
decisions. At the very least, the page highlights the data gaps.
`

// TestKit writes a complete, self-consistent content tree (datasets, page
// manifest and narrative file) into a directory
type TestKit struct {
	Dir      string
	DataDir  string
	PageFile string
	Page     *domain.Page

	Carbon   []CarbonSample
	Corr     []CorrelationPair
	Buffered []CorrelationPair
	Merged   []MergedCell
}

// NewTestKit creates fixtures in dir with the default generator settings
func NewTestKit(dir string) (*TestKit, error) {
	return NewTestKitWithConfig(dir, DefaultSoilConfig())
}

// NewTestKitWithConfig creates fixtures in dir
func NewTestKitWithConfig(dir string, cfg SoilGeneratorConfig) (*TestKit, error) {
	gen := NewSoilDataGenerator(cfg)
	carbon := gen.GenerateCarbon()

	k := &TestKit{
		Dir:      dir,
		DataDir:  filepath.Join(dir, "data"),
		PageFile: filepath.Join(dir, "pages", "appendix.yaml"),
		Page:     AppendixPage(),
		Carbon:   carbon,
		Corr:     gen.GenerateCorrelation(carbon, false),
		Buffered: gen.GenerateCorrelation(carbon, true),
		Merged:   gen.GenerateMerged(),
	}
	if err := k.write(); err != nil {
		return nil, err
	}
	return k, nil
}

// Config returns an application config pointing at the fixture tree
func (k *TestKit) Config() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8080", GinMode: "test"},
		Paths: config.PathConfig{
			PageFile:  k.PageFile,
			DataDir:   k.DataDir,
			StaticDir: filepath.Join(k.Dir, "static"),
		},
		Cache:    config.CacheConfig{Warm: true},
		Charts:   config.ChartConfig{Format: "png", OutputDir: filepath.Join(k.Dir, "static", "charts"), WidthIn: 4, HeightIn: 3},
		LogLevel: "ERROR",
	}
}

// CountBelow counts carbon samples strictly below threshold
func (k *TestKit) CountBelow(threshold float64) int {
	n := 0
	for _, s := range k.Carbon {
		if s.Value < threshold {
			n++
		}
	}
	return n
}

func (k *TestKit) write() error {
	for _, dir := range []string{k.DataDir, filepath.Dir(k.PageFile), filepath.Join(k.Dir, "static", "images")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := parquet.WriteFile(filepath.Join(k.DataDir, "ocarbon.parquet"), k.Carbon); err != nil {
		return fmt.Errorf("failed to write ocarbon: %w", err)
	}
	if err := writePairsCSV(filepath.Join(k.DataDir, "soilgrid_corr.csv"), k.Corr); err != nil {
		return err
	}
	if err := writePairsCSV(filepath.Join(k.DataDir, "soilgrid_corr_buffered.csv"), k.Buffered); err != nil {
		return err
	}
	if err := writeMergedXLSX(filepath.Join(k.DataDir, "olm_soilgrids_merged.xlsx"), k.Merged); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(filepath.Dir(k.PageFile), "outline.md"), []byte(OutlineText), 0o644); err != nil {
		return fmt.Errorf("failed to write outline: %w", err)
	}
	manifest, err := yaml.Marshal(k.Page)
	if err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}
	if err := os.WriteFile(k.PageFile, manifest, 0o644); err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}
	return nil
}

func writePairsCSV(path string, pairs []CorrelationPair) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"site", "observed", "predicted"}); err != nil {
		return err
	}
	for _, p := range pairs {
		row := []string{p.Site, formatFloat(p.Observed), formatFloat(p.Predicted)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeMergedXLSX(path string, cells []MergedCell) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(MergedSheet); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if err := f.SetSheetRow(MergedSheet, "A1", &[]interface{}{"cell", "olm", "soilgrids"}); err != nil {
		return err
	}
	for i, c := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(MergedSheet, cell, &[]interface{}{c.Cell, c.OLM, c.SoilGrids}); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func intPtr(v int) *int { return &v }

// AppendixPage is the demo page over the four soil-carbon datasets. It is
// the same page as pages/appendix.yaml.
func AppendixPage() *domain.Page {
	return &domain.Page{
		Title:    "On delivering Appendix 1",
		Subtitle: "An interactive outline",
		Datasets: []domain.DatasetRef{
			{ID: "ocarbon", Source: "ocarbon.parquet"},
			{ID: "soilgrid_corr", Source: "soilgrid_corr.csv"},
			{ID: "soilgrid_corr_buffered", Source: "soilgrid_corr_buffered.csv"},
			{ID: "olm_soilgrids_merged", Source: "olm_soilgrids_merged.xlsx#" + MergedSheet},
		},
		Metrics: []domain.Metric{
			{Name: "sites", Kind: domain.MetricCount, Dataset: "ocarbon"},
			{Name: "mean_oc", Kind: domain.MetricMean, Dataset: "ocarbon", Column: "value", Decimals: intPtr(1)},
			{Name: "median_oc", Kind: domain.MetricMedian, Dataset: "ocarbon", Column: "value", Decimals: intPtr(1)},
			{Name: "low_sites", Kind: domain.MetricCountBelow, Dataset: "ocarbon", Column: "value", Threshold: 100},
			{Name: "corr_r", Kind: domain.MetricCorrelation, Dataset: "soilgrid_corr", Column: "observed", Y: "predicted", Decimals: intPtr(2)},
			{Name: "corr_r2", Kind: domain.MetricRSquared, Dataset: "soilgrid_corr", Column: "observed", Y: "predicted", Decimals: intPtr(2)},
			{Name: "buffered_r2", Kind: domain.MetricRSquared, Dataset: "soilgrid_corr_buffered", Column: "observed", Y: "predicted", Decimals: intPtr(2)},
			{Name: "merged_slope", Kind: domain.MetricSlope, Dataset: "olm_soilgrids_merged", Column: "olm", Y: "soilgrids", Decimals: intPtr(2)},
		},
		Blocks: []domain.Block{
			{Kind: domain.BlockQuote, Text: "_Consistent and credible data are required to enable markets for ecosystem services. " +
				"This page shows the latest data for select areas in Costa Rica._"},
			{Kind: domain.BlockNarrative, Path: "outline.md"},
			{Kind: domain.BlockHeading, Level: 2, Text: "Soil organic carbon"},
			{Kind: domain.BlockText, Text: "The survey holds {sites} point measurements with a mean of {mean_oc} g/kg " +
				"and a median of {median_oc} g/kg. {low_sites} sites fall below 100 g/kg; their distribution is shown below."},
			{
				Kind:    domain.BlockChart,
				Dataset: "ocarbon",
				Below:   &domain.Threshold{Column: "value", Value: 100},
				Chart: &chart.Spec{
					Title: "Organic carbon below 100 g/kg",
					Mark:  chart.MarkBar,
					Bins:  20,
					X:     chart.Encoding{Field: "value", Title: "Organic carbon (g/kg)", Domain: &chart.Domain{Min: 0, Max: 100, Clamp: true}},
				},
			},
			{Kind: domain.BlockImage, Path: "ocarbon_sites.png", Caption: "Sampling sites ({sites} points)"},
			{Kind: domain.BlockHeading, Level: 2, Text: "Agreement with SoilGrids"},
			{Kind: domain.BlockText, Text: "Point measurements and SoilGrids predictions correlate at r = {corr_r} (r² = {corr_r2}). " +
				"Averaging predictions over a buffer around each site raises r² to {buffered_r2}."},
			{
				Kind:    domain.BlockChart,
				Dataset: "soilgrid_corr",
				Chart: &chart.Spec{
					Title:      "Observed vs predicted",
					Mark:       chart.MarkPoint,
					X:          chart.Encoding{Field: "observed", Title: "Observed (g/kg)"},
					Y:          chart.Encoding{Field: "predicted", Title: "SoilGrids (g/kg)"},
					Regression: true,
				},
			},
			{
				Kind:    domain.BlockChart,
				Dataset: "soilgrid_corr_buffered",
				Chart: &chart.Spec{
					Title:      "Observed vs buffered prediction",
					Mark:       chart.MarkPoint,
					X:          chart.Encoding{Field: "observed", Title: "Observed (g/kg)"},
					Y:          chart.Encoding{Field: "predicted", Title: "Buffered SoilGrids (g/kg)"},
					Regression: true,
				},
			},
			{Kind: domain.BlockHeading, Level: 2, Text: "OpenLandMap and SoilGrids"},
			{Kind: domain.BlockText, Text: "Across the merged grid, each g/kg in OpenLandMap corresponds to {merged_slope} g/kg in SoilGrids."},
			{
				Kind:    domain.BlockChart,
				Dataset: "olm_soilgrids_merged",
				Chart: &chart.Spec{
					Title:      "OpenLandMap vs SoilGrids",
					Mark:       chart.MarkPoint,
					X:          chart.Encoding{Field: "olm", Title: "OpenLandMap (g/kg)"},
					Y:          chart.Encoding{Field: "soilgrids", Title: "SoilGrids (g/kg)"},
					Regression: true,
				},
			},
		},
	}
}
