package health

import "github.com/prometheus/client_golang/prometheus"

// Metrics records probe outcomes and latencies.
type Metrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewMetrics creates the probe collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ima_health_probe_duration_seconds",
			Help:    "Time spent running a dependency health probe",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		}, []string{"probe", "outcome"}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ima_health_probe_total",
			Help: "Number of dependency health probe runs",
		}, []string{"probe", "outcome"}),
	}
	reg.MustRegister(m.duration, m.total)
	return m
}

func (m *Metrics) observe(r Result) {
	if m == nil {
		return
	}
	outcome := r.Outcome.String()
	m.duration.WithLabelValues(r.Name, outcome).Observe(r.Duration.Seconds())
	m.total.WithLabelValues(r.Name, outcome).Inc()
}
