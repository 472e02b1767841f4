package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacatalog/internal/core/apperror"
	"datacatalog/pkg/logger"
)

func newEngine(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), Trace(logger.Nop()), ErrorHandler())
	r.GET("/x", handler)
	return r
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func serve(t *testing.T, r *gin.Engine, requestID string) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if requestID != "" {
		req.Header.Set(HeaderRequestID, requestID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body errorBody
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestErrorHandler_UnhandledErrorCarriesRequestID(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(errors.New("connection reset"))
		c.Abort()
	})

	w, body := serve(t, r, "req-42")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, body.Code)
	assert.Equal(t, "req-42", body.Details["request_id"])
	assert.NotContains(t, w.Body.String(), "connection reset")
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}

func TestErrorHandler_AppError(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("Product", "p1"))
		c.Abort()
	})

	w, body := serve(t, r, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeNotFound, body.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID), "generated when the client sends none")
}

func TestRecovery_PanicCarriesRequestID(t *testing.T) {
	r := newEngine(func(*gin.Context) { panic("boom") })

	w, body := serve(t, r, "req-7")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "req-7", body.Details["request_id"])
	assert.NotContains(t, w.Body.String(), "boom")
}
