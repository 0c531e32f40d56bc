package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopRuntime(t *testing.T) {
	m := NopRuntime()
	require.NotNil(t, m)

	// Every operation must be safe to call.
	m.ActorStarted("sensor")
	m.ActorStopped("sensor", true)
	m.ActorStopped("sensor", false)
	m.MailboxDepth("sensor", 3)
	m.ControlBroadcast()
	m.RunDuration().ObserveDuration()

	NopCounter().Inc()
	NopCounter().Add(2)
	NopGauge().Set(1)
	NopGauge().Inc()
	NopGauge().Dec()
	NopGauge().Add(-1)
	NopHistogram().Observe(0.5)
	NopTimer().ObserveDuration()
}

func TestNewPrometheusRuntime(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusRuntime(reg)
	require.NotNil(t, m)

	m.ActorStarted("sensor")
	m.ActorStarted("uplink")
	m.ActorStopped("sensor", true)
	m.ActorStopped("uplink", false)
	m.MailboxDepth("sensor", 7)
	m.ControlBroadcast()

	timer := m.RunDuration()
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["edgekit_runtime_actors_running"])
	assert.True(t, names["edgekit_runtime_actors_stopped_total"])
	assert.True(t, names["edgekit_runtime_mailbox_depth"])
	assert.True(t, names["edgekit_runtime_control_broadcasts_total"])
	assert.True(t, names["edgekit_runtime_run_duration_seconds"])
}

func TestBoolToStr(t *testing.T) {
	assert.Equal(t, "true", boolToStr(true))
	assert.Equal(t, "false", boolToStr(false))
}

func TestPrometheusRuntimeDoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusRuntime(reg)
	assert.Panics(t, func() { NewPrometheusRuntime(reg) })
}
