package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds counters shared by every cache, labeled by cache name.
// A nil *Metrics records nothing.
type Metrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	sharedWaits   *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewMetrics creates the cache counters and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitsync",
			Subsystem: "cache",
			Name:      name,
			Help:      help,
		}, []string{"cache"})
	}
	m := &Metrics{
		hits:          counter("hits_total", "Reads served from a live entry."),
		misses:        counter("fetches_total", "Reads that started a fetch."),
		sharedWaits:   counter("shared_waits_total", "Reads that joined a fetch already in flight."),
		invalidations: counter("invalidations_total", "Invalidate calls."),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.sharedWaits, m.invalidations)
	}
	return m
}

func (m *Metrics) hit(name string) {
	if m != nil {
		m.hits.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) miss(name string) {
	if m != nil {
		m.misses.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) shared(name string) {
	if m != nil {
		m.sharedWaits.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) invalidate(name string) {
	if m != nil {
		m.invalidations.WithLabelValues(name).Inc()
	}
}
