package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the auth counters exported on /metrics
type Metrics struct {
	challenges prometheus.Counter
	verify     *prometheus.CounterVec
	sessions   *prometheus.CounterVec
}

// NewMetrics registers the auth counters with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		challenges: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "siggy",
			Subsystem: "auth",
			Name:      "challenges_issued_total",
			Help:      "Wallet login challenges issued.",
		}),
		verify: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siggy",
			Subsystem: "auth",
			Name:      "verify_total",
			Help:      "Wallet verify attempts by result.",
		}, []string{"result"}),
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siggy",
			Subsystem: "auth",
			Name:      "session_lookups_total",
			Help:      "Session cookie lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) challengeIssued() {
	m.challenges.Inc()
}

func (m *Metrics) verified(result string) {
	m.verify.WithLabelValues(result).Inc()
}

func (m *Metrics) sessionLookup(authenticated bool) {
	result := "anonymous"
	if authenticated {
		result = "authenticated"
	}
	m.sessions.WithLabelValues(result).Inc()
}
