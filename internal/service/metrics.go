package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts gateway outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	links  *prometheus.CounterVec
	probes *prometheus.CounterVec
}

// NewMetrics creates the gateway counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		links: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkgate_links_total",
				Help: "Total number of signed links issued.",
			},
			[]string{"operation"},
		),
		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkgate_probes_total",
				Help: "Total number of existence probes by result.",
			},
			[]string{"result"},
		),
	}

	for _, c := range []prometheus.Collector{m.links, m.probes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeLink(op Operation) {
	if m == nil {
		return
	}
	m.links.WithLabelValues(op.String()).Inc()
}

func (m *Metrics) observeProbe(found bool) {
	if m == nil {
		return
	}
	result := "absent"
	if found {
		result = "present"
	}
	m.probes.WithLabelValues(result).Inc()
}
