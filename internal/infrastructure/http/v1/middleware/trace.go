package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	appctx "datacatalog/internal/core/context"
	"datacatalog/pkg/logger"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace middleware attaches request and trace ids and the service logger to
// the request context. An active OpenTelemetry span wins over the
// X-Trace-ID header.
func Trace(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		tc := &appctx.TraceContext{RequestID: requestID}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			tc.TraceID = sc.TraceID().String()
			tc.SpanID = sc.SpanID().String()
		} else {
			tc.TraceID = c.GetHeader(HeaderTraceID)
			if tc.TraceID == "" {
				tc.TraceID = uuid.NewString()
			}
			tc.SpanID = uuid.NewString()[:16]
		}

		ctx = appctx.WithTrace(ctx, tc)
		if log != nil {
			ctx = logger.WithLogger(ctx, log)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, tc.TraceID)

		c.Next()
	}
}
