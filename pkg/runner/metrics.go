package runner

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOk             = "ok"
	outcomeTransportError = "transport_error"
	outcomeProtocolError  = "protocol_error"
	outcomeError          = "error"
)

// Metrics counts requests, retries and units per runner.
type Metrics struct {
	Requests *prometheus.CounterVec
	Retries  *prometheus.CounterVec
	Units    *prometheus.CounterVec
}

// NewMetrics creates the runner collectors and registers them with reg
// unless reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jolt_runner_requests_total",
			Help: "The total number of requests for work, by outcome.",
		}, []string{"runner", "outcome"}),
		Retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jolt_runner_retries_total",
			Help: "The total number of retried requests for work.",
		}, []string{"runner"}),
		Units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jolt_runner_units_total",
			Help: "The total number of test units handed to the runner.",
		}, []string{"runner"}),
	}

	if reg != nil {
		reg.MustRegister(m.Requests, m.Retries, m.Units)
	}

	return m
}

func (m *Metrics) request(runner, outcome string) {
	m.Requests.WithLabelValues(runner, outcome).Inc()
}

func (m *Metrics) retry(runner string) {
	m.Retries.WithLabelValues(runner).Inc()
}

func (m *Metrics) unit(runner string) {
	m.Units.WithLabelValues(runner).Inc()
}
