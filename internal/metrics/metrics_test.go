package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.Detonation("fuse")
	m.Detonation("chain")
	m.Detonation("chain")
	m.Segment()
	m.TileDestroyed("destructible")
	m.HandlerCall("destructible")
	m.Task("finished")
	m.SetLiveBombs(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.detonations.WithLabelValues("chain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.segments))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.liveBombs))
}

func TestMetrics_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Detonation("fuse")
		m.Segment()
		m.TileDestroyed("x")
		m.HandlerCall("x")
		m.Task("x")
		m.SetLiveBombs(1)
	})
}
