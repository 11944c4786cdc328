package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"gonarrate/internal"
	apperrors "gonarrate/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request identifier in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an identifier, reusing one supplied by
// the caller
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AdminTokenHeader carries the administration token
const AdminTokenHeader = "X-Admin-Token"

// AccessLog logs one line per request through the application logger
func AccessLog(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.With("request_id", c.GetString("request_id")).Info("[HTTP] %s %s %d %v",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// RequireAdmin admits requests presenting token in AdminTokenHeader or as a
// bearer credential. An empty token refuses every request.
func RequireAdmin(token string, logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(AdminTokenHeader)
		if presented == "" {
			presented = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1 {
			c.Next()
			return
		}

		msg := "admin token rejected"
		if token == "" {
			msg = "admin routes are disabled; set ADMIN_TOKEN to enable them"
		}
		logger.With("request_id", c.GetString("request_id")).Warn("[Admin] %s %s refused: %s",
			c.Request.Method, c.Request.URL.Path, msg)
		err := apperrors.Forbidden(msg)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": err.Code})
	}
}
