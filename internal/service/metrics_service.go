package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edulane/sims-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	gradeInitRuns   prometheus.Counter
	gradeInitRows   *prometheus.CounterVec
	loginAttempts   *prometheus.CounterVec
	loginThrottled  prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
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

	gradeInitRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grade_init_runs_total",
		Help: "Total grade initialization runs",
	})

	gradeInitRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grade_init_rows_total",
		Help: "Grade initialization row outcomes",
	}, []string{"outcome"})

	loginAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Total login attempts by result",
	}, []string{"result"})

	loginThrottled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_throttled_total",
		Help: "Login attempts rejected by the rate limiter",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, gradeInitRuns, gradeInitRows, loginAttempts, loginThrottled, dbQueryDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		gradeInitRuns:   gradeInitRuns,
		gradeInitRows:   gradeInitRows,
		loginAttempts:   loginAttempts,
		loginThrottled:  loginThrottled,
		dbQueryDuration: dbQueryDuration,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveGradeInit records a grade initialization outcome.
func (m *MetricsService) ObserveGradeInit(summary models.GradeInitSummary) {
	if m == nil {
		return
	}
	m.gradeInitRuns.Inc()
	m.gradeInitRows.WithLabelValues("created").Add(float64(summary.Created))
	m.gradeInitRows.WithLabelValues("skipped").Add(float64(summary.Skipped))
	m.gradeInitRows.WithLabelValues("failed").Add(float64(summary.Failed))
}

// RecordLoginAttempt records a login result.
func (m *MetricsService) RecordLoginAttempt(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}

// RecordLoginThrottled records a rate-limited login attempt.
func (m *MetricsService) RecordLoginThrottled() {
	if m == nil {
		return
	}
	m.loginThrottled.Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}
