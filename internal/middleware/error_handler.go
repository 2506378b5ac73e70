package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rogame/backend/internal/apperr"
	"github.com/rogame/backend/pkg/logger"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandler is a middleware that catches panics and maps typed
// errors attached to the context onto HTTP responses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered", nil, map[string]interface{}{
					"panic":  err,
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "Internal server error",
					Message: "An unexpected error occurred",
					Code:    "INTERNAL_ERROR",
				})
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			logger.Error("Request error", err, map[string]interface{}{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			})

			if !c.Writer.Written() {
				c.JSON(StatusFor(err), ErrorResponse{
					Error: err.Error(),
					Code:  string(apperr.KindOf(err)),
				})
			}
		}
	}
}

// StatusFor maps an error's kind onto an HTTP status code.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidInput, apperr.KindSerialization:
		return http.StatusBadRequest
	case apperr.KindPathTraversal:
		return http.StatusForbidden
	case apperr.KindBackupError, apperr.KindConfigError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError attaches a typed error to the context for the
// ErrorHandler middleware to render.
func AbortWithError(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}
