package ui

import (
	"bytes"
	"fmt"
	"net/http"

	domain "gonarrate/domain/narrative"
	"gonarrate/internal"
	"gonarrate/internal/container"
	apperrors "gonarrate/internal/errors"
	"gonarrate/internal/narrative"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App is the read-only preview: the page with charts drawn as static images,
// so it works without any client-side script
type App struct {
	router   *chi.Mux
	renderer *narrative.Renderer
	writer   narrative.Writer
	page     *domain.Page
	logger   *internal.Logger
	config   Config
}

// Config holds UI application configuration
type Config struct {
	Port      string
	StaticDir string
}

// NewApp creates a new preview application over an initialized container
func NewApp(c *container.Container, config Config) (*App, error) {
	if c.Renderer == nil || c.Page == nil {
		return nil, fmt.Errorf("container is not initialized")
	}
	if config.StaticDir == "" {
		config.StaticDir = c.Config.Paths.StaticDir
	}

	app := &App{
		router:   chi.NewRouter(),
		renderer: c.Renderer,
		writer:   narrative.NewHTMLWriter(c.Images),
		page:     c.Page,
		logger:   c.Logger,
		config:   config,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	// Serve static files
	staticFS := http.FileServer(http.Dir(a.config.StaticDir))
	a.router.Handle("/static/*", http.StripPrefix("/static/", staticFS))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
}

// Handler exposes the router for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	port := a.config.Port
	if port == "" {
		port = "8081"
	}
	a.logger.Info("Starting gonarrate preview on :%s", port)
	return http.ListenAndServe(":"+port, a.router)
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	doc, err := a.renderer.Render(r.Context(), a.page)
	if err == nil {
		var buf bytes.Buffer
		if err = a.writer.Write(r.Context(), &buf, doc); err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = buf.WriteTo(w)
			return
		}
	}
	status := apperrors.HTTPStatus(err)
	a.logger.Error("[Preview] Render failed (%d): %v", status, err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(errorPage(status, err)))
}
