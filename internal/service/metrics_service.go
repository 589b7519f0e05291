package service

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Binding outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeCapacity = "capacity_exceeded"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// MetricsService encapsulates Prometheus instrumentation for the engine.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	bindingOps         *prometheus.CounterVec
	capacityRejections *prometheus.CounterVec
	reconciliations    prometheus.Counter
	reconciledRows     prometheus.Histogram
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	txDuration         *prometheus.HistogramVec
}

// NewMetricsService registers the engine collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	bindingOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "binding_operations_total",
		Help: "Preference and assignment writes by mode and outcome",
	}, []string{"kind", "mode", "outcome"})

	capacityRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "capacity_rejections_total",
		Help: "Assignment writes rejected because a period was full",
	}, []string{"period"})

	reconciliations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "requirement_reconciliations_total",
		Help: "Requirement list changes fanned out to assignments",
	})

	reconciledRows := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reconciled_assignments",
		Help:    "Assignments rewritten per requirement change",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total occupancy cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total occupancy cache misses",
	})

	txDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_transaction_duration_seconds",
		Help:    "Duration of engine transactions",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, bindingOps, capacityRejections, reconciliations, reconciledRows, cacheHits, cacheMisses, txDuration, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		bindingOps:         bindingOps,
		capacityRejections: capacityRejections,
		reconciliations:    reconciliations,
		reconciledRows:     reconciledRows,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		txDuration:         txDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordBinding counts a preference or assignment write.
func (m *MetricsService) RecordBinding(kind, mode, outcome string) {
	if m == nil {
		return
	}
	m.bindingOps.WithLabelValues(kind, mode, outcome).Inc()
}

// RecordCapacityRejection counts a write refused because period was full.
func (m *MetricsService) RecordCapacityRejection(period int) {
	if m == nil {
		return
	}
	m.capacityRejections.WithLabelValues(strconv.Itoa(period)).Inc()
}

// ObserveReconciliation records one requirement fan-out touching n assignments.
func (m *MetricsService) ObserveReconciliation(n int) {
	if m == nil {
		return
	}
	m.reconciliations.Inc()
	m.reconciledRows.Observe(float64(n))
}

// RecordCacheOperation records an occupancy cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

// ObserveTransaction records how long an engine transaction took.
func (m *MetricsService) ObserveTransaction(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.txDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
