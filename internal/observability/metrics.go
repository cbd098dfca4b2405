package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "event_service"

// Registration outcomes recorded by the registration engine.
const (
	OutcomeRegistered       = "registered"
	OutcomeNotFound         = "not_found"
	OutcomeDuplicate        = "duplicate"
	OutcomeCapacityExceeded = "capacity_exceeded"
	OutcomeError            = "error"
)

// Metrics owns the Prometheus registry and the service collectors.
type Metrics struct {
	Registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	errors        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	dbConns       *prometheus.GaugeVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"path", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Errors rendered to clients by code",
		}, []string{"path", "method", "code"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome",
		}, []string{"outcome"}),
		dbConns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections",
			Help:      "Postgres pool connections by state",
		}, []string{"state"}),
	}
	reg.MustRegister(
		m.requests, m.duration, m.errors, m.registrations, m.dbConns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordRegistration counts a registration attempt by outcome.
func (m *Metrics) RecordRegistration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

// CollectPool samples pgx pool statistics until ctx is done.
func (m *Metrics) CollectPool(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) error {
	if m == nil || pool == nil {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		stat := pool.Stat()
		m.dbConns.WithLabelValues("total").Set(float64(stat.TotalConns()))
		m.dbConns.WithLabelValues("acquired").Set(float64(stat.AcquiredConns()))
		m.dbConns.WithLabelValues("idle").Set(float64(stat.IdleConns()))
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
