package diag

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts diagnostic events per severity.
type Metrics struct {
	events *prometheus.CounterVec
}

// NewMetrics registers the diagnostic counter on reg. A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketshare",
		Name:      "diagnostic_events_total",
		Help:      "Diagnostic events raised by share and calibration calculations.",
	}, []string{"severity"})
	if reg != nil {
		if err := reg.Register(events); err != nil {
			return nil, err
		}
	}
	return &Metrics{events: events}, nil
}

func (m *Metrics) Record(sev Severity, _ string, _ ...any) {
	m.events.WithLabelValues(sev.String()).Inc()
}

// Collector exposes the underlying counter, mostly for tests.
func (m *Metrics) Collector() *prometheus.CounterVec {
	return m.events
}
