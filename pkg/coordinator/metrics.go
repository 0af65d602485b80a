package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Queued      prometheus.Gauge
	Runners     prometheus.Gauge
	Assignments prometheus.Counter
	Results     *prometheus.CounterVec
}

// NewMetrics creates the coordinator collectors and registers them with
// reg unless reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jolt_coordinator_queued",
			Help: "The number of plan entries not yet handed out.",
		}),
		Runners: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jolt_coordinator_runners",
			Help: "The number of runners that have requested work.",
		}),
		Assignments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jolt_coordinator_assignments_total",
			Help: "The total number of plan entries handed out.",
		}),
		Results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jolt_coordinator_results_total",
			Help: "The total number of reported test results, by status.",
		}, []string{"status"}),
	}

	if reg != nil {
		reg.MustRegister(m.Queued, m.Runners, m.Assignments, m.Results)
	}

	return m
}
