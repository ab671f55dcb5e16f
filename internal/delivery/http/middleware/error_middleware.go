package middleware

import (
	"errors"
	"net/http"

	"freelance-marketplace-backend/internal/delivery/http/response"
	"freelance-marketplace-backend/pkg/apperror"
	"freelance-marketplace-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler translates errors appended to the gin context into the JSON
// envelope. Unknown errors are logged server-side and hidden from clients.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Err != nil {
				logger.Log.Error("request failed", "path", c.FullPath(), "error", appErr.Err)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}
		logger.Log.Error("unhandled error", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
