package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the service, each on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	RankRequests    *prometheus.CounterVec
	DuplicateChecks *prometheus.CounterVec
	ContactsCreated prometheus.Counter
	Jobs            *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RankRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_radar_rank_requests_total",
			Help: "Proximity queries by kind (nearest, radius) and outcome",
		}, []string{"kind", "outcome"}),
		DuplicateChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_radar_duplicate_checks_total",
			Help: "Duplicate checks by verdict reason, \"none\" when no match",
		}, []string{"reason"}),
		ContactsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "contact_radar_contacts_created_total",
			Help: "Contacts added to the directory",
		}),
		Jobs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_radar_jobs_total",
			Help: "Batch jobs finished by mode and status",
		}, []string{"mode", "status"}),
	}
}

func (m *Metrics) ObserveRank(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.RankRequests.WithLabelValues(kind, outcome).Inc()
}

// ObserveDuplicate counts a verdict; an empty reason means no match.
func (m *Metrics) ObserveDuplicate(reason string) {
	if reason == "" {
		reason = "none"
	}
	m.DuplicateChecks.WithLabelValues(reason).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
