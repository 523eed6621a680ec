package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(registry, Config{ServiceName: "test"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/api/customers/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/customers/42", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/customers/:id", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "rechargedesk_http_requests_total"))
}

func TestJobMetricsReuseRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewJobMetrics(registry, Config{})
	second := NewJobMetrics(registry, Config{})

	first.AddItems("reminders", "sale", OutcomeSent, 2)
	second.AddItems("reminders", "sale", OutcomeSent, 1)

	assert.Equal(t, 3.0, testutil.ToFloat64(second.Items("reminders", "sale", OutcomeSent)))
}

func TestClassifyJobError(t *testing.T) {
	assert.Equal(t, JobReasonDeadlineExceeded, ClassifyJobError(fmt.Errorf("run: %w", context.DeadlineExceeded)))
	assert.Equal(t, JobReasonUniqueViolation, ClassifyJobError(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, JobReasonDB, ClassifyJobError(&pgconn.PgError{Code: "40001"}))
	assert.Equal(t, JobReasonUnknown, ClassifyJobError(errors.New("boom")))
	assert.Equal(t, "", ClassifyJobError(nil))
}
