package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"datacatalog/internal/core/apperror"
	appctx "datacatalog/internal/core/context"
	"datacatalog/internal/domain/idempotency"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"
const maxIdempotencyBodyBytes = 1 << 20 // 1 MiB

const (
	idempotencyKeyCtx   = "idempotency_key"
	idempotencyStoreCtx = "idempotency_store"
)

// idempotentMethods are the write methods a key can cover.
var idempotentMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Idempotency middleware replays the stored response of a request that was
// already processed under the same X-Idempotency-Key. A key is bound to one
// method, concrete path and body. Requests without the header pass through.
func Idempotency(store idempotency.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !idempotentMethods[c.Request.Method] {
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		// Keys are per user; anonymous callers share the empty namespace.
		userID := appctx.GetUserID(c.Request.Context())

		limited := io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1)
		body, err := io.ReadAll(limited)
		if err != nil {
			_ = c.Error(apperror.NewValidation("unable to read request body"))
			c.Abort()
			return
		}
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		operation := c.Request.Method + " " + c.Request.URL.Path

		replay, err := store.AcquireKey(c.Request.Context(), key, userID, operation, requestHash)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				_ = c.Error(appErr)
				c.Abort()
				return
			}
			_ = c.Error(apperror.NewInternal(err).WithDetail("component", "idempotency"))
			c.Abort()
			return
		}

		if replay != nil {
			c.Header("Idempotent-Replayed", "true")
			if len(replay.Body) == 0 {
				c.Status(replay.StatusCode)
			} else {
				c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			}
			c.Abort()
			return
		}

		c.Set(idempotencyKeyCtx, key)
		c.Set(idempotencyStoreCtx, store)

		c.Next()
	}
}
