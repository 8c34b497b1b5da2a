package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the application. Each instance
// owns its registry so tests can create as many as they like. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Searches        *prometheus.CounterVec
	FetchErrors     *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	DetailLookups   *prometheus.CounterVec
	ContactMessages prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Searches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "country_explorer_searches_total",
			Help: "Searches by kind and outcome (found, empty, error).",
		}, []string{"kind", "outcome"}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "country_explorer_fetch_errors_total",
			Help: "Failed outbound lookups by error type.",
		}, []string{"type"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "country_explorer_fetch_duration_seconds",
			Help:    "Outbound lookup latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		DetailLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "country_explorer_detail_lookups_total",
			Help: "Exact-name detail lookups by outcome (found, absent).",
		}, []string{"outcome"}),
		ContactMessages: factory.NewCounter(prometheus.CounterOpts{
			Name: "country_explorer_contact_messages_total",
			Help: "Contact form submissions accepted.",
		}),
	}
}

func (m *Metrics) ObserveSearch(kind, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(kind, outcome).Inc()
	m.FetchDuration.WithLabelValues(kind).Observe(took.Seconds())
}

func (m *Metrics) IncFetchError(err error) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(ClassifyFetchError(err)).Inc()
}

func (m *Metrics) ObserveDetail(found bool, took time.Duration) {
	if m == nil {
		return
	}
	outcome := "absent"
	if found {
		outcome = "found"
	}
	m.DetailLookups.WithLabelValues(outcome).Inc()
	m.FetchDuration.WithLabelValues("detail").Observe(took.Seconds())
}

func (m *Metrics) IncContactMessage() {
	if m == nil {
		return
	}
	m.ContactMessages.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
