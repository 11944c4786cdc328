package container

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gonarrate/adapters/echarts"
	"gonarrate/adapters/excel"
	"gonarrate/adapters/parquet"
	"gonarrate/adapters/plot"
	"gonarrate/adapters/postgres"
	domain "gonarrate/domain/narrative"
	"gonarrate/internal"
	"gonarrate/internal/config"
	"gonarrate/internal/dataset"
	apperrors "gonarrate/internal/errors"
	"gonarrate/internal/narrative"
	"gonarrate/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB      *sqlx.DB
	Storage *dataset.LocalFileStorage

	// Page definition loaded at startup
	Page *domain.Page

	// Loader and renderer
	Sources  *dataset.Router
	Cache    *dataset.Cache
	Renderer *narrative.Renderer

	// Chart collaborators
	Charts ports.ChartRenderer
	Images *plot.Renderer

	// Image blocks whose file was absent from the static images directory at init
	MissingImages []string
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}

	return c, nil
}

// InitWithDatabase attaches the connection used by table-backed datasets
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	// Test database connection
	if err := db.Ping(); err != nil {
		return apperrors.DatabaseError("database connection test failed", err)
	}

	c.DB = db
	c.Logger.Info("Database attached for table datasets")
	return nil
}

// Init loads the page manifest and wires the loader, renderer and chart
// adapters. When DATABASE_URL is set and no connection was attached yet it
// connects first.
func (c *Container) Init(ctx context.Context) error {
	page, err := narrative.LoadPage(c.Config.Paths.PageFile)
	if err != nil {
		return apperrors.Wrapf(err, "failed to load page %s", c.Config.Paths.PageFile)
	}
	return c.InitWithPage(ctx, page)
}

// InitWithPage wires everything around an already parsed page
func (c *Container) InitWithPage(ctx context.Context, page *domain.Page) error {
	if c.DB == nil && c.Config.Database.URL != "" {
		db, err := postgres.Connect(ctx, c.Config.Database.URL)
		if err != nil {
			return apperrors.DatabaseError("database unavailable for table datasets", err)
		}
		if err := c.InitWithDatabase(db); err != nil {
			return err
		}
	}

	c.Page = page
	c.Storage = dataset.NewLocalFileStorageWithPath(c.Config.Paths.DataDir)
	c.Sources = dataset.NewRouter(c.Storage, c.routes()...)
	c.Cache = dataset.NewCache(c.Sources, narrative.Registry(page), c.Logger)

	texts := dataset.NewLocalFileStorageWithPath(filepath.Dir(c.Config.Paths.PageFile))
	c.Renderer = narrative.NewRenderer(c.Cache, texts, narrative.DefaultConfig(), c.Logger)

	c.Charts = echarts.NewRenderer("400px")
	c.Images = plot.NewRenderer(plot.Config{
		Format:   c.Config.Charts.Format,
		WidthIn:  c.Config.Charts.WidthIn,
		HeightIn: c.Config.Charts.HeightIn,
	})

	c.MissingImages = c.checkImages(ctx, page)
	c.Logger.Info("Container initialized: page %q, %d datasets, %d blocks", page.Title, len(page.Datasets), len(page.Blocks))
	return nil
}

// checkImages lists local image blocks with no file under the static images
// directory. Missing images only degrade the page, so they are logged.
func (c *Container) checkImages(ctx context.Context, page *domain.Page) []string {
	images := dataset.NewLocalFileStorageWithPath(filepath.Join(c.Config.Paths.StaticDir, "images"))
	var missing []string
	for _, block := range page.Blocks {
		if block.Kind != domain.BlockImage || strings.HasPrefix(block.Path, "/") || strings.Contains(block.Path, "://") {
			continue
		}
		ok, err := images.Exists(ctx, block.Path)
		if err != nil {
			c.Logger.Warn("[Images] %v", err)
			continue
		}
		if !ok {
			c.Logger.Warn("[Images] %s not found under %s", block.Path, images.BasePath())
			missing = append(missing, block.Path)
		}
	}
	return missing
}

func (c *Container) routes() []dataset.Route {
	var tables ports.DatasetSource
	if c.DB != nil {
		tables = postgres.NewDatasetRepository(c.DB)
	}
	return []dataset.Route{
		{Name: "postgres", Match: postgres.Supports, Source: tables},
		{Name: "parquet", Match: parquet.Supports, Source: parquet.NewReader(), Local: true},
		{Name: "excel", Match: excel.Supports, Source: excel.NewDataReader(excel.DefaultExcelConfig()), Local: true},
	}
}

// HTMLWriter returns the writer used for full-page HTML output
func (c *Container) HTMLWriter() *narrative.HTMLWriter {
	return narrative.NewHTMLWriter(c.Charts, echarts.ScriptURL)
}

// Warm loads every registered dataset when WARM_CACHE is enabled
func (c *Container) Warm(ctx context.Context) error {
	if !c.Config.Cache.Warm {
		return nil
	}
	return c.Cache.Warm(ctx)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	c.Logger.Sync()

	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
