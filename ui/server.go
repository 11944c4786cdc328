package ui

import (
	"bytes"
	"context"
	"net/http"
	"os"

	domain "gonarrate/domain/narrative"
	"gonarrate/internal"
	"gonarrate/internal/container"
	"gonarrate/internal/dataset"
	"gonarrate/internal/narrative"
	"gonarrate/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server is the public HTTP surface: the rendered page plus a small JSON API
// over the dataset cache
type Server struct {
	router    *gin.Engine
	cache     *dataset.Cache
	renderer  *narrative.Renderer
	writer    narrative.Writer
	page      *domain.Page
	staticDir  string
	adminToken string
	logger     *internal.Logger
}

// NewServer creates a web server over an initialized container
func NewServer(c *container.Container) *Server {
	gin.SetMode(c.Config.Server.GinMode)

	s := &Server{
		router:     gin.New(),
		cache:      c.Cache,
		renderer:   c.Renderer,
		writer:     c.HTMLWriter(),
		page:       c.Page,
		staticDir:  c.Config.Paths.StaticDir,
		adminToken: c.Config.Server.AdminToken,
		logger:     c.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.AccessLog(s.logger))

	if info, err := os.Stat(s.staticDir); err == nil && info.IsDir() {
		s.logger.Info("[Static] Serving %s at /static", s.staticDir)
		s.router.Static("/static", s.staticDir)
	} else {
		s.logger.Warn("[Static] %s not found, images will not be served", s.staticDir)
	}
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api/datasets")
	api.GET("", s.handleDatasets)
	api.GET("/:id/mean/:column", s.handleMean)
	api.GET("/:id/summary/:column", s.handleSummary)
	api.GET("/:id/regression", s.handleRegression)
	api.GET("/:id/rows", s.handleRows)
	api.GET("/:id/stale", s.handleStale)
	api.POST("/:id/invalidate", middleware.RequireAdmin(s.adminToken, s.logger), s.handleInvalidate)
}

// Handler exposes the router for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting gonarrate on http://%s", addr)
	return s.router.Run(addr)
}

// renderPage runs one full render pass into memory
func (s *Server) renderPage(ctx context.Context) ([]byte, error) {
	doc, err := s.renderer.Render(ctx, s.page)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.writer.Write(ctx, &buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
