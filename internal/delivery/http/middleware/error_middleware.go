package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-interview-backend/internal/delivery/http/response"
	"go-interview-backend/pkg/apperror"
	"go-interview-backend/pkg/logger"
)

// ErrorHandler turns errors attached to the gin context into the standard
// JSON error envelope. AppError carries its own status code and a message
// safe to show; anything else is logged server-side and reported as a
// generic 500 so internals never leak to clients.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("request failed",
					"path", c.FullPath(), "method", c.Request.Method, "error", err)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		logger.Log.Error("unhandled request error",
			"path", c.FullPath(), "method", c.Request.Method, "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
