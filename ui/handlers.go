package ui

import (
	"html"
	"net/http"
	"strconv"

	"gonarrate/internal/analysis"
	apperrors "gonarrate/internal/errors"

	"github.com/gin-gonic/gin"
)

// handleIndex renders the whole page. Any failure yields an error page, never
// a partial document.
func (s *Server) handleIndex(c *gin.Context) {
	body, err := s.renderPage(c.Request.Context())
	if err != nil {
		status := apperrors.HTTPStatus(err)
		s.logger.Error("[Index] Render failed (%d): %v", status, err)
		c.Data(status, "text/html; charset=utf-8", []byte(errorPage(status, err)))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleDatasets lists registered datasets and their cache state
func (s *Server) handleDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"datasets": s.cache.Entries()})
}

func (s *Server) handleMean(c *gin.Context) {
	id, column := c.Param("id"), c.Param("column")
	if !s.cache.Registered(id) {
		s.respondError(c, apperrors.NotFound("dataset "+id))
		return
	}
	d, err := s.cache.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	mean, err := analysis.Mean(d, column)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset": id,
		"column":  column,
		"rows":    analysis.RowCount(d),
		"mean":    mean,
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	id, column := c.Param("id"), c.Param("column")
	if !s.cache.Registered(id) {
		s.respondError(c, apperrors.NotFound("dataset "+id))
		return
	}
	d, err := s.cache.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	summary, err := analysis.Summarize(d, column)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleRegression(c *gin.Context) {
	id := c.Param("id")
	x, y := c.Query("x"), c.Query("y")
	if x == "" || y == "" {
		s.respondError(c, apperrors.InvalidInput("query parameters x and y are required"))
		return
	}
	if !s.cache.Registered(id) {
		s.respondError(c, apperrors.NotFound("dataset "+id))
		return
	}
	d, err := s.cache.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	fit, err := analysis.RegressColumns(d, x, y)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset":    id,
		"x":          x,
		"y":          y,
		"regression": fit,
	})
}

// Row preview bounds for handleRows
const (
	defaultRowLimit = 20
	maxRowLimit     = 1000
)

// handleRows previews the first rows of a dataset as JSON records
func (s *Server) handleRows(c *gin.Context) {
	id := c.Param("id")
	if !s.cache.Registered(id) {
		s.respondError(c, apperrors.NotFound("dataset "+id))
		return
	}
	limit := defaultRowLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRowLimit {
			s.respondError(c, apperrors.InvalidInput("limit must be between 1 and "+strconv.Itoa(maxRowLimit)))
			return
		}
		limit = n
	}
	d, err := s.cache.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset": id,
		"rows":    d.RowCount(),
		"columns": d.Columns(),
		"records": d.Records(limit),
	})
}

func (s *Server) handleStale(c *gin.Context) {
	id := c.Param("id")
	if !s.cache.Registered(id) {
		s.respondError(c, apperrors.NotFound("dataset "+id))
		return
	}
	stale, err := s.cache.Stale(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataset": id, "stale": stale})
}

// handleInvalidate drops a cached dataset; the next request reloads it
func (s *Server) handleInvalidate(c *gin.Context) {
	id := c.Param("id")
	if !s.cache.Registered(id) {
		s.respondError(c, apperrors.NotFound("dataset "+id))
		return
	}
	dropped := s.cache.Invalidate(id)
	c.JSON(http.StatusOK, gin.H{"dataset": id, "invalidated": dropped})
}

// respondError writes the JSON error envelope
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  apperrors.GetCode(err),
	})
}

func errorPage(status int, err error) string {
	return "<!DOCTYPE html><html><head><title>" + http.StatusText(status) + "</title></head><body>" +
		"<h1>Page unavailable</h1><p>" + html.EscapeString(err.Error()) + "</p></body></html>"
}
