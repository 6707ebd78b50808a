package batch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics are kept in a private registry and exported as a node_exporter textfile at the end of a batch.
type metrics struct {
	registry  *prometheus.Registry
	lattices  *prometheus.CounterVec
	solutions prometheus.Counter
	raw       prometheus.Counter
	canonical *prometheus.GaugeVec
	seconds   prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		lattices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hexpack",
			Name:      "lattices_total",
			Help:      "Lattices processed, by outcome.",
		}, []string{"status"}),
		solutions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hexpack",
			Name:      "solutions_total",
			Help:      "Exact covers reported by the solver.",
		}),
		raw: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hexpack",
			Name:      "placement_sets_total",
			Help:      "Distinct concrete placement sets canonicalized.",
		}),
		canonical: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hexpack",
			Name:      "canonical_results",
			Help:      "Distinct canonical results per lattice.",
		}, []string{"lattice"}),
		seconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hexpack",
			Name:      "lattice_seconds",
			Help:      "Wall time spent per lattice.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
	}
	m.registry.MustRegister(m.lattices, m.solutions, m.raw, m.canonical, m.seconds)
	return m
}

func (m *metrics) writeTextfile(pathname string) error {
	return prometheus.WriteToTextfile(pathname, m.registry)
}
