package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for estudio mutations.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ItemsMutated       *prometheus.CounterVec
	Recomputes         prometheus.Counter
	RecomputeDuration  prometheus.Histogram
	TxConflicts        prometheus.Counter
	ConsentsRecorded   *prometheus.CounterVec
	AuthorizationFlips *prometheus.CounterVec
	SolicitudesCreated prometheus.Counter
	Invitations        prometheus.Counter
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return &Metrics{
		ItemsMutated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "estudios_items_mutated_total",
			Help: "Item writes by resulting estado",
		}, []string{"estado"}),
		Recomputes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "estudios_recomputes_total",
			Help: "Number of derived-field recomputations",
		}),
		RecomputeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "estudios_mutation_duration_seconds",
			Help:    "Duration of mutating transactions including recompute",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		TxConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "estudios_version_conflicts_total",
			Help: "Derived writes rejected by the version check",
		}),
		ConsentsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "estudios_consents_recorded_total",
			Help: "Consent decisions by tipo and outcome",
		}, []string{"tipo", "aceptado"}),
		AuthorizationFlips: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "estudios_authorization_changes_total",
			Help: "Authorization flag transitions",
		}, []string{"firmada"}),
		SolicitudesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "estudios_solicitudes_created_total",
			Help: "Total number of solicitudes created",
		}),
		Invitations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "estudios_candidato_invitations_total",
			Help: "Total number of candidate invitations sent",
		}),
	}
}

func (m *Metrics) IncItemMutated(estado string) {
	if m == nil {
		return
	}
	m.ItemsMutated.WithLabelValues(estado).Inc()
}

// ObserveMutation records a recompute and the transaction duration.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveMutation(start time.Time) {
	if m == nil {
		return
	}
	m.Recomputes.Inc()
	m.RecomputeDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncConflict() {
	if m == nil {
		return
	}
	m.TxConflicts.Inc()
}

func (m *Metrics) IncConsent(tipo string, aceptado bool) {
	if m == nil {
		return
	}
	m.ConsentsRecorded.WithLabelValues(tipo, boolLabel(aceptado)).Inc()
}

func (m *Metrics) IncAuthorizationChange(firmada bool) {
	if m == nil {
		return
	}
	m.AuthorizationFlips.WithLabelValues(boolLabel(firmada)).Inc()
}

func (m *Metrics) IncSolicitudCreated() {
	if m == nil {
		return
	}
	m.SolicitudesCreated.Inc()
}

func (m *Metrics) IncInvitation() {
	if m == nil {
		return
	}
	m.Invitations.Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
