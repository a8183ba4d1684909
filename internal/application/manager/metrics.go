package manager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the view's Prometheus collectors
type Metrics struct {
	ruleRuns      *prometheus.CounterVec
	timerFires    *prometheus.CounterVec
	requests      *prometheus.CounterVec
	storageErrors *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ruleRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custmgr_rule_runs_total",
			Help: "Reactive rule evaluations by rule",
		}, []string{"rule"}),
		timerFires: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custmgr_timer_fires_total",
			Help: "Scheduled task callbacks delivered to the view loop by rule",
		}, []string{"rule"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custmgr_api_requests_total",
			Help: "Customer collection requests by operation and outcome",
		}, []string{"op", "outcome"}),
		storageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custmgr_storage_errors_total",
			Help: "Mirror read/write failures by mirror and kind",
		}, []string{"mirror", "kind"}),
	}
}

// IncrementRuleRun records a rule evaluation
func (m *Metrics) IncrementRuleRun(rule string) {
	m.ruleRuns.WithLabelValues(rule).Inc()
}

// IncrementTimerFire records a delivered timer callback
func (m *Metrics) IncrementTimerFire(rule string) {
	m.timerFires.WithLabelValues(rule).Inc()
}

// IncrementRequest records a collection request outcome
func (m *Metrics) IncrementRequest(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(op, outcome).Inc()
}

// IncrementStorageError records a mirror failure
func (m *Metrics) IncrementStorageError(mirror, kind string) {
	m.storageErrors.WithLabelValues(mirror, kind).Inc()
}
