package batch

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	kindSchema = "schema"
	kindArray  = "array"
)

// Metrics tracks descriptor lifetimes. A live gauge that does not return to
// zero after a query finishes points at a tree nobody released.
type Metrics struct {
	Allocated        *prometheus.CounterVec
	Released         *prometheus.CounterVec
	Live             *prometheus.GaugeVec
	UnsupportedTypes *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	allocated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cider_bridge_descriptors_allocated_total",
		Help: "Total descriptors allocated",
	}, []string{"kind"})

	released := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cider_bridge_descriptors_released_total",
		Help: "Total descriptors released through the release protocol",
	}, []string{"kind"})

	live := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cider_bridge_descriptors_live",
		Help: "Descriptors holding an ownership holder",
	}, []string{"kind"})

	unsupported := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cider_bridge_unsupported_types_total",
		Help: "Unsupported type tags seen by the schema builder and batch factory",
	}, []string{"op"})

	reg.MustRegister(allocated, released, live, unsupported)

	return &Metrics{
		Allocated:        allocated,
		Released:         released,
		Live:             live,
		UnsupportedTypes: unsupported,
	}
}

func (m *Metrics) allocated(kind string) {
	if m == nil {
		return
	}
	m.Allocated.WithLabelValues(kind).Inc()
}

func (m *Metrics) attached(kind string) {
	if m == nil {
		return
	}
	m.Live.WithLabelValues(kind).Inc()
}

func (m *Metrics) released(kind string) {
	if m == nil {
		return
	}
	m.Released.WithLabelValues(kind).Inc()
	m.Live.WithLabelValues(kind).Dec()
}

func (m *Metrics) unsupported(op string) {
	if m == nil {
		return
	}
	m.UnsupportedTypes.WithLabelValues(op).Inc()
}
