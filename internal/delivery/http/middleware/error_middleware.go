package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"job-board-backend/internal/delivery/http/response"
	"job-board-backend/internal/domain"
	"job-board-backend/pkg/apperror"
	"job-board-backend/pkg/logger"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		reqID := c.GetString(string(domain.KeyRequestID))

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			// Upload and persistence failures keep their cause server-side only.
			if appErr.Err != nil || appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("request failed",
					"request_id", reqID,
					"kind", appErr.Kind,
					"path", c.FullPath(),
					"error", appErr.Err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message, response.ErrorBody{
				Kind:    string(appErr.Kind),
				Details: appErr.Details,
			})
			return
		}

		// SECURITY: never expose internal error details to clients.
		logger.Log.Error("unhandled error", "request_id", reqID, "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", response.ErrorBody{
			Kind: string(apperror.KindInternal),
		})
	}
}
