package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datacatalog/internal/core/apperror"
	appctx "datacatalog/internal/core/context"
	"datacatalog/internal/domain/idempotency"
	"datacatalog/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"method", c.Request.Method,
					"path", c.FullPath(),
					"cause", appErr.Err,
				)
			}

			body := gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			}
			failIdempotency(c, appErr.HTTPStatus, body)
			c.JSON(appErr.HTTPStatus, body)
			return
		}

		logger.Error(c.Request.Context(), "unhandled error",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)

		body := gin.H{
			"code":    apperror.CodeInternal,
			"message": "Internal server error",
			"details": map[string]any{
				"request_id": appctx.RequestID(c.Request.Context()),
			},
		}
		failIdempotency(c, http.StatusInternalServerError, body)
		c.JSON(http.StatusInternalServerError, body)
	}
}

// failIdempotency marks the key as failed with the exact response we return (best-effort).
func failIdempotency(c *gin.Context, status int, body gin.H) {
	key, store, ok := IdempotencyFromContext(c)
	if !ok {
		return
	}
	if err := store.FailKey(c.Request.Context(), key, status, "application/json", body); err != nil {
		logger.Warn(c.Request.Context(), "failed to store idempotent error response", "error", err)
	}
}

// IdempotencyFromContext returns the key acquired for this request, if any.
func IdempotencyFromContext(c *gin.Context) (string, idempotency.Store, bool) {
	key := c.GetString(idempotencyKeyCtx)
	if key == "" {
		return "", nil, false
	}
	v, ok := c.Get(idempotencyStoreCtx)
	if !ok {
		return "", nil, false
	}
	store, ok := v.(idempotency.Store)
	return key, store, ok && store != nil
}
