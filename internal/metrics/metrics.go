// Package metrics exposes scan and detection counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skinscout"

// Operation labels.
const (
	OpListings  = "listings"
	OpArbitrage = "arbitrage"
	OpAlerts    = "alerts"
	OpTrends    = "trends"
)

// Metrics holds every collector. A nil *Metrics records nothing.
type Metrics struct {
	ItemsScanned    *prometheus.CounterVec
	RecordsRejected *prometheus.CounterVec
	Opportunities   prometheus.Counter
	Alerts          prometheus.Counter
	ScanDuration    *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWith(reg, reg)
}

// NewWith registers the collectors on reg and serves them from g.
func NewWith(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ItemsScanned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_scanned_total",
			Help:      "Items processed per operation and outcome status.",
		}, []string{"operation", "status"}),

		RecordsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_rejected_total",
			Help:      "Malformed source records rejected by the normalizer.",
		}, []string{"kind"}),

		Opportunities: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_total",
			Help:      "Arbitrage opportunities reported after ranking.",
		}),

		Alerts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Price alerts triggered.",
		}),

		ScanDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of one batch pass per operation.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),

		gatherer: g,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ItemScanned(op, status string) {
	if m != nil {
		m.ItemsScanned.WithLabelValues(op, status).Inc()
	}
}

func (m *Metrics) Rejected(kind string, n int) {
	if m != nil && n > 0 {
		m.RecordsRejected.WithLabelValues(kind).Add(float64(n))
	}
}

func (m *Metrics) OpportunitiesFound(n int) {
	if m != nil && n > 0 {
		m.Opportunities.Add(float64(n))
	}
}

func (m *Metrics) AlertsTriggered(n int) {
	if m != nil && n > 0 {
		m.Alerts.Add(float64(n))
	}
}

// ObserveScan records the time elapsed since start for op.
func (m *Metrics) ObserveScan(op string, start time.Time) {
	if m != nil {
		m.ScanDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
