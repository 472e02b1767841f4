// Package middleware provides the gin middleware of the catalog API.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"datacatalog/internal/core/apperror"
	appctx "datacatalog/internal/core/context"
	"datacatalog/pkg/logger"
)

// Recovery turns a panic into a 500 response. It runs outermost, after
// ErrorHandler has already unwound, so it renders the body itself.
// The stack is logged, never returned.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				"panic", rec,
				"method", c.Request.Method,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    apperror.CodeInternal,
				"message": "Internal server error",
				"details": map[string]any{"request_id": appctx.RequestID(c.Request.Context())},
			})
		}()
		c.Next()
	}
}
