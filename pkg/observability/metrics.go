// Package observability exposes Prometheus metrics for the mission pipeline:
// compiles, gate verdicts, approval transitions and evidence bundle
// lifecycles. Metrics are grouped in a Metrics struct registered against an
// injected registry, never a package-level default, so independent servers
// (and tests) do not collide.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the pipeline emits.
type Metrics struct {
	CompilesTotal      *prometheus.CounterVec
	CompileTasks       prometheus.Histogram
	GateChecksTotal    *prometheus.CounterVec
	GateBlockedTotal   *prometheus.CounterVec
	ApprovalsTotal     *prometheus.CounterVec
	BundlesTotal       *prometheus.CounterVec
	BudgetSpent        *prometheus.GaugeVec
	IterationsUsed     *prometheus.GaugeVec
	ManifestSaveErrors prometheus.Counter
}

// New registers the pipeline collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CompilesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brain",
			Subsystem: "compiler",
			Name:      "compiles_total",
			Help:      "Mission compiles by result.",
		}, []string{"result"}),
		CompileTasks: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "brain",
			Subsystem: "compiler",
			Name:      "plan_tasks",
			Help:      "Planned tasks per successful compile.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		GateChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brain",
			Subsystem: "gate",
			Name:      "checks_total",
			Help:      "Gate verdicts by gate name and outcome.",
		}, []string{"gate", "allowed"}),
		GateBlockedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brain",
			Subsystem: "gate",
			Name:      "blocked_total",
			Help:      "Blocked invocations by blocking requirement.",
		}, []string{"blocking_requirement"}),
		ApprovalsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brain",
			Subsystem: "mandate",
			Name:      "approval_transitions_total",
			Help:      "Mandate approval transitions by resulting state.",
		}, []string{"state"}),
		BundlesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brain",
			Subsystem: "evidence",
			Name:      "bundles_total",
			Help:      "Evidence bundles by terminal status.",
		}, []string{"status"}),
		BudgetSpent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "brain",
			Subsystem: "mandate",
			Name:      "budget_spent",
			Help:      "Current budget spend per mandate.",
		}, []string{"mandate_id"}),
		IterationsUsed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "brain",
			Subsystem: "mandate",
			Name:      "iterations_used",
			Help:      "Current iteration count per mandate.",
		}, []string{"mandate_id"}),
		ManifestSaveErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "brain",
			Subsystem: "evidence",
			Name:      "manifest_save_errors_total",
			Help:      "Failed evidence manifest writes.",
		}),
	}
}

// ObserveCompile records one compile outcome.
func (m *Metrics) ObserveCompile(success bool, tasks int) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.CompilesTotal.WithLabelValues(result).Inc()
	if success {
		m.CompileTasks.Observe(float64(tasks))
	}
}

// ObserveGate records one gate verdict.
func (m *Metrics) ObserveGate(gateName string, allowed bool, blockingRequirement string) {
	outcome := "true"
	if !allowed {
		outcome = "false"
	}
	m.GateChecksTotal.WithLabelValues(gateName, outcome).Inc()
	if !allowed && blockingRequirement != "" {
		m.GateBlockedTotal.WithLabelValues(blockingRequirement).Inc()
	}
}

// ObserveMandate updates the per-mandate spend gauges.
func (m *Metrics) ObserveMandate(mandateID string, budgetSpent float64, iterationsUsed int) {
	m.BudgetSpent.WithLabelValues(mandateID).Set(budgetSpent)
	m.IterationsUsed.WithLabelValues(mandateID).Set(float64(iterationsUsed))
}
