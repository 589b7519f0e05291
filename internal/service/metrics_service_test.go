package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceExposesEngineCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordBinding(KindAssignment, ModeAppend, OutcomeSuccess)
	m.RecordBinding(KindAssignment, ModeAppend, OutcomeCapacity)
	m.RecordCapacityRejection(2)
	m.ObserveReconciliation(4)
	m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, 5*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.bindingOps.WithLabelValues(KindAssignment, ModeAppend, OutcomeCapacity)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.capacityRejections.WithLabelValues("2")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.reconciliations))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "binding_operations_total"))
	assert.True(t, strings.Contains(body, "reconciled_assignments_bucket"))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordBinding(KindPreference, ModeReplace, OutcomeSuccess)
	m.RecordCapacityRejection(1)
	m.ObserveReconciliation(1)
	m.RecordCacheOperation(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
