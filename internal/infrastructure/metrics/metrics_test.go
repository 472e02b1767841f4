package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacatalog/internal/domain/audit"
)

func TestAuditObserver(t *testing.T) {
	m := New("datacatalog", nil)
	observe := m.AuditObserver()

	observe(audit.ActionCreate)
	observe(audit.ActionCreate)
	observe(audit.ActionLogin)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuditRecordsTotal.WithLabelValues("CREATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditRecordsTotal.WithLabelValues("LOGIN")))
}

func TestHandler(t *testing.T) {
	m := New("datacatalog", nil)
	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/products", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `datacatalog_http_requests_total{method="GET",path="/api/v1/products",status="200"} 1`)
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New("datacatalog", nil)
		New("datacatalog", nil)
	})
}
