package middleware

import (
	"net/http"
	"time"

	"github.com/BistroPdv/bistro-api/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is a Gin middleware that catches unhandled errors.
// It ensures stack traces and database internals are NEVER exposed to clients.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// Log the internal error with full context (for debugging)
		err := c.Errors.Last()
		errorID := uuid.NewString()
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("error_id", errorID).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err.Err).
			Msg("unhandled error")

		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Envelope{
			StatusCode: http.StatusInternalServerError,
			Message:    "Erro interno do servidor",
			ErrorCode:  apierror.CodeInternal,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Path:       c.Request.URL.Path,
			Method:     c.Request.Method,
			ErrorID:    errorID,
		})
	}
}

// Recovery handles panics and converts them into 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				errorID := uuid.NewString()
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("error_id", errorID).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Envelope{
					StatusCode: http.StatusInternalServerError,
					Message:    "Erro interno do servidor",
					ErrorCode:  apierror.CodeInternal,
					Timestamp:  time.Now().UTC().Format(time.RFC3339),
					Path:       c.Request.URL.Path,
					Method:     c.Request.Method,
					ErrorID:    errorID,
				})
			}
		}()
		c.Next()
	}
}

// Logger logs each request with method, path, status, latency, and request_id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
