package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vsinha/prodplan/pkg/application/dto"
	"github.com/vsinha/prodplan/pkg/application/services/orchestration"
)

// Metrics exports planning run telemetry to Prometheus
type Metrics struct {
	registry         *prometheus.Registry
	runs             *prometheus.CounterVec
	runDuration      prometheus.Histogram
	orderStatuses    *prometheus.CounterVec
	procurementItems prometheus.Gauge
	cacheLookups     *prometheus.CounterVec
}

var _ orchestration.Recorder = (*Metrics)(nil)

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prodplan",
			Name:      "planning_runs_total",
			Help:      "Planning runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "prodplan",
			Name:      "planning_run_duration_seconds",
			Help:      "Wall time of planning runs.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		orderStatuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prodplan",
			Name:      "planned_orders_total",
			Help:      "Planned orders by overall status.",
		}, []string{"status"}),
		procurementItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "prodplan",
			Name:      "procurement_items",
			Help:      "Procurement items in the latest successful run.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prodplan",
			Name:      "product_cache_lookups_total",
			Help:      "Product cache lookups by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.runs,
		m.runDuration,
		m.orderStatuses,
		m.procurementItems,
		m.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRun records a finished run
func (m *Metrics) ObserveRun(outcome string, duration time.Duration) {
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
}

// ObservePlan records per-order statuses and the procurement volume
func (m *Metrics) ObservePlan(result *dto.PlanResult) {
	for status, n := range result.CountByStatus() {
		m.orderStatuses.WithLabelValues(status.String()).Add(float64(n))
	}
	m.procurementItems.Set(float64(len(result.Procurement)))
}

// CacheHit counts a product cache hit
func (m *Metrics) CacheHit() { m.cacheLookups.WithLabelValues("hit").Inc() }

// CacheMiss counts a product cache miss
func (m *Metrics) CacheMiss() { m.cacheLookups.WithLabelValues("miss").Inc() }

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

