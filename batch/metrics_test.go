package batch

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	// Vec families only show up once a label set exists
	m.allocated(kindSchema)
	m.attached(kindSchema)
	m.released(kindSchema)
	m.unsupported("build_schema")

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, metricFamilies, 4)

	names := make(map[string]bool)
	for _, mf := range metricFamilies {
		names[mf.GetName()] = true
	}
	require.True(t, names["cider_bridge_descriptors_allocated_total"])
	require.True(t, names["cider_bridge_descriptors_released_total"])
	require.True(t, names["cider_bridge_descriptors_live"])
	require.True(t, names["cider_bridge_unsupported_types_total"])
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.allocated(kindArray)
		m.attached(kindArray)
		m.released(kindArray)
		m.unsupported("create_batch")
	})
}

func TestMetrics_AllocationCounts(t *testing.T) {
	alloc, m, _ := newTestAllocator(t)

	s, err := alloc.BuildSchema(threeLevelInfo())
	require.NoError(t, err)
	a, err := alloc.BuildArrayShape(s)
	require.NoError(t, err)

	require.Equal(t, float64(5), testutil.ToFloat64(m.Allocated.WithLabelValues(kindSchema)))
	require.Equal(t, float64(5), testutil.ToFloat64(m.Allocated.WithLabelValues(kindArray)))
	require.Equal(t, float64(5), testutil.ToFloat64(m.Live.WithLabelValues(kindArray)))

	a.Release()
	s.Release()
	require.Equal(t, float64(0), testutil.ToFloat64(m.Live.WithLabelValues(kindSchema)))
	require.Equal(t, float64(0), testutil.ToFloat64(m.Live.WithLabelValues(kindArray)))
}
