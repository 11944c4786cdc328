package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"gonarrate/adapters/postgres"
	"gonarrate/domain/chart"
	"gonarrate/domain/dataset"
	domain "gonarrate/domain/narrative"
	"gonarrate/internal/analysis"
	"gonarrate/internal/config"
	"gonarrate/internal/container"
	"gonarrate/internal/narrative"
	"gonarrate/internal/testkit"
	"gonarrate/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options overrides environment configuration from persistent flags
type options struct {
	pageFile string
	dataDir  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "gonarrate",
		Short:         "Render data-narrative pages and inspect their datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.pageFile, "page", "", "Page manifest (overrides PAGE_FILE)")
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Dataset directory (overrides DATA_DIR)")

	rootCmd.AddCommand(
		newRenderCmd(opts),
		newDatasetsCmd(opts),
		newRegressCmd(opts),
		newDescribeCmd(opts),
		newPublishCmd(opts),
		newExportChartsCmd(opts),
		newFixturesCmd(),
	)
	return rootCmd
}

// setup loads configuration, applies flag overrides and wires the container
func setup(ctx context.Context, opts *options) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.pageFile != "" {
		cfg.Paths.PageFile = opts.pageFile
	}
	if opts.dataDir != "" {
		cfg.Paths.DataDir = opts.dataDir
	}
	if cfg.LogLevel == "INFO" {
		// keep command output clean unless asked otherwise
		cfg.LogLevel = "WARN"
	}

	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func newRenderCmd(opts *options) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the page as html, markdown or terminal text",
		Long: `Render the configured page in one pass. Nothing is written when any
dataset, metric or block fails.

Example: gonarrate render --format markdown --out appendix.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			var writer narrative.Writer
			switch format {
			case narrative.FormatHTML:
				writer = c.HTMLWriter()
			default:
				writer, err = narrative.NewWriter(format, c.Charts)
				if err != nil {
					return err
				}
			}

			doc, err := c.Renderer.Render(ctx, c.Page)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return writer.Write(ctx, w, doc)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", narrative.FormatTerminal, "Output format: html, markdown or terminal")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output file (default stdout)")

	return cmd
}

// writeOutput goes through a temp file renamed into place, so a failed
// render never leaves a partial file at path
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".render-*")
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	// temp files start at 0600; keep the mode of a file being replaced
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set output mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func newDatasetsCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Load every declared dataset and print row and column counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			if err := c.Cache.Warm(ctx); err != nil {
				return err
			}
			entries := c.Cache.Entries()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATASET\tROWS\tCOLUMNS\tSOURCE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Name, narrative.FormatThousands(e.Rows), e.Columns, e.Ref)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

func newRegressCmd(opts *options) *cobra.Command {
	var below float64
	var belowColumn string

	cmd := &cobra.Command{
		Use:   "regress [dataset] [x] [y]",
		Short: "Fit y on x with ordinary least squares",
		Long: `Fit a linear regression of one numeric column on another.

Example: gonarrate regress soilgrid_corr observed predicted`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			d, err := c.Cache.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if belowColumn != "" {
				if d, err = analysis.FilterBelow(d, belowColumn, below); err != nil {
					return err
				}
			}
			fit, err := analysis.RegressColumns(d, args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s = %s + %s * %s (r² %s, n %s)\n",
				d.Name(), args[2],
				narrative.FormatFixed(fit.Intercept, 4), narrative.FormatFixed(fit.Slope, 4), args[1],
				narrative.FormatFixed(fit.RSquared, 4), narrative.FormatThousands(fit.N))
			return nil
		},
	}

	cmd.Flags().StringVar(&belowColumn, "below-column", "", "Only use rows where this column is below --below")
	cmd.Flags().Float64Var(&below, "below", 0, "Threshold for --below-column")

	return cmd
}

func newDescribeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [dataset] [column...]",
		Short: "Print descriptive statistics for numeric columns",
		Long: `Summarize one or more numeric columns of a dataset. With no columns,
every numeric column is described.

Example: gonarrate describe ocarbon value`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			d, err := c.Cache.Get(ctx, args[0])
			if err != nil {
				return err
			}
			columns := args[1:]
			if len(columns) == 0 {
				for _, col := range d.Columns() {
					if col.Kind == dataset.KindNumeric {
						columns = append(columns, col.Name)
					}
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "COLUMN\tN\tMISSING\tMEAN\tSTD\tMIN\tMEDIAN\tMAX\tOUTLIERS\t")
			for _, column := range columns {
				s, err := analysis.Summarize(d, column)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%d\t\n",
					s.Column, s.N, s.Missing,
					narrative.FormatGrouped(s.Mean, 2), narrative.FormatGrouped(s.StdDev, 2),
					narrative.FormatGrouped(s.Min, 2), narrative.FormatGrouped(s.Median, 2),
					narrative.FormatGrouped(s.Max, 2), s.Outliers)
			}
			return tw.Flush()
		},
	}
	return cmd
}

func newPublishCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [dataset] [table]",
		Short: "Copy a loaded dataset into a PostgreSQL table",
		Long: `Replace table with the rows of dataset so pages can reference it as
table:<name>. Requires DATABASE_URL.

Example: gonarrate publish ocarbon soil.ocarbon`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			if c.DB == nil {
				return fmt.Errorf("publish needs DATABASE_URL")
			}
			d, err := c.Cache.Get(ctx, args[0])
			if err != nil {
				return err
			}
			var publisher ports.DatasetPublisher = postgres.NewDatasetRepository(c.DB)
			n, err := publisher.Publish(ctx, args[1], d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s rows of %s published to %s\n", narrative.FormatThousands(n), args[0], args[1])
			return nil
		},
	}
	return cmd
}

func newExportChartsCmd(opts *options) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export-charts",
		Short: "Write every chart block of the page as a static image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			if dir == "" {
				dir = c.Config.Charts.OutputDir
			}
			doc, err := c.Renderer.Render(ctx, c.Page)
			if err != nil {
				return err
			}
			for i, block := range doc.Blocks {
				if block.Kind != domain.BlockChart {
					continue
				}
				path, err := c.Images.Export(ctx, dir, chartName(i, block.Chart), *block.Chart)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default CHART_DIR)")

	return cmd
}

func newFixturesCmd() *cobra.Command {
	var seed int64
	var sites int

	cmd := &cobra.Command{
		Use:   "fixtures [dir]",
		Short: "Generate a synthetic soil-carbon content tree",
		Long: `Generate datasets, a page manifest and narrative text under dir.

Example: gonarrate fixtures ./demo && gonarrate --page demo/pages/appendix.yaml --data-dir demo/data render`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultSoilConfig()
			cfg.Seed = seed
			cfg.SiteCount = sites
			kit, err := testkit.NewTestKitWithConfig(args[0], cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page: %s\ndata: %s\n", kit.PageFile, kit.DataDir)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic generation")
	cmd.Flags().IntVar(&sites, "sites", 240, "Number of carbon measurement sites")

	return cmd
}

func chartName(i int, data *chart.Data) string {
	return fmt.Sprintf("chart-%02d-%s", i, data.Spec.Mark)
}
