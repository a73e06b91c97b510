package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/farmkeep/shell/internal/domain"
	"github.com/farmkeep/shell/internal/records"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "farmkeep"

// Metrics owns the shell's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	decisions         *prometheus.CounterVec
	bootstrapDuration prometheus.Histogram
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	herdHeads         prometheus.Gauge
	salesTotal        prometheus.Gauge
}

// New creates the collectors and registers them together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bootstrap",
				Name:      "decisions_total",
				Help:      "Launch decisions by source and destination.",
			},
			[]string{"source", "screen"},
		),
		bootstrapDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "bootstrap",
				Name:      "decision_duration_seconds",
				Help:      "Time from launch to a routing decision.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"method", "path"},
		),
		herdHeads: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "records",
				Name:      "animals_heads",
				Help:      "Total head count across animal records.",
			},
		),
		salesTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "records",
				Name:      "sales_amount",
				Help:      "Sum of all recorded sales.",
			},
		),
	}

	m.Registry.MustRegister(
		m.decisions,
		m.bootstrapDuration,
		m.httpRequests,
		m.httpDuration,
		m.herdHeads,
		m.salesTotal,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Decided records a launch decision.
func (m *Metrics) Decided(d domain.Decision, elapsed time.Duration) {
	screen := "web"
	if d.Native() {
		screen = "native"
	}
	m.decisions.WithLabelValues(string(d.Source), screen).Inc()
	m.bootstrapDuration.Observe(elapsed.Seconds())
}

// Middleware counts requests by route template. /metrics itself is skipped.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Herd is the animal record source observed by Track.
type Herd interface {
	TotalHeads() int
	Subscribe() (<-chan records.Change, func())
}

// Ledger is the sale record source observed by Track.
type Ledger interface {
	Total() float64
	Subscribe() (<-chan records.Change, func())
}

// Track keeps the record gauges current until ctx is done.
func (m *Metrics) Track(ctx context.Context, herd Herd, ledger Ledger) {
	animals, stopAnimals := herd.Subscribe()
	defer stopAnimals()
	sales, stopSales := ledger.Subscribe()
	defer stopSales()

	m.herdHeads.Set(float64(herd.TotalHeads()))
	m.salesTotal.Set(ledger.Total())

	for {
		select {
		case <-ctx.Done():
			return
		case <-animals:
			m.herdHeads.Set(float64(herd.TotalHeads()))
		case <-sales:
			m.salesTotal.Set(ledger.Total())
		}
	}
}
