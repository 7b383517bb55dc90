package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetgrid/internal/errors"
	"budgetgrid/internal/logger"
)

// ErrorHandler returns a Gin middleware that renders errors left on the
// context as the error page. Handlers surface most failures themselves as
// flash notices; this is the safety net for anything that slips through, so
// no failure ever ends in a blank response. AppErrors render with their own
// status and message; unexpected errors are logged in full and render a
// generic message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// The last error is the most relevant in a middleware chain.
		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				logger.Get().Errorw("app error",
					"code", appErr.Code,
					"message", appErr.Message,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
				)
			}
			c.HTML(appErr.StatusCode, "error.tmpl", gin.H{
				"Code":    appErr.Code,
				"Message": appErr.Message,
			})
			return
		}

		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		c.HTML(http.StatusInternalServerError, "error.tmpl", gin.H{
			"Code":    apperrors.ErrInternalServer.Code,
			"Message": apperrors.ErrInternalServer.Message,
		})
	}
}
