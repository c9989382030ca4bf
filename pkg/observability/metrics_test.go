package observability_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/pkg/observability"
)

func TestMetrics_TracksDeskActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.New(reg)
	require.NoError(t, err)

	desk, err := patchbay.New(4, 2, patchbay.WithName("foh"))
	require.NoError(t, err)
	sub := desk.OnChange(metrics.Observer(desk))
	defer sub.Close()

	desk.SetUnity()
	desk.SetMainLevel(-6)
	desk.SetInputMute(0, true)

	// Unity patched two diagonal routes; muting input 0 silenced one.
	expectedGauges := `
# HELP patchbay_active_routes Crosspoints currently passing signal.
# TYPE patchbay_active_routes gauge
patchbay_active_routes{desk="foh"} 1
# HELP patchbay_master_level_db Current master level in dB.
# TYPE patchbay_master_level_db gauge
patchbay_master_level_db{desk="foh"} -6
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expectedGauges),
		"patchbay_active_routes", "patchbay_master_level_db"))

	expectedEvents := `
# HELP patchbay_events_total Accepted matrix mutations by event kind.
# TYPE patchbay_events_total counter
patchbay_events_total{desk="foh",kind="crosspoint"} 2
patchbay_events_total{desk="foh",kind="inputMute"} 1
patchbay_events_total{desk="foh",kind="main"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expectedEvents),
		"patchbay_events_total"))
}

func TestMetrics_MuteDropsActiveRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.New(reg)
	require.NoError(t, err)

	desk, err := patchbay.New(2, 2, patchbay.WithName("mon"))
	require.NoError(t, err)
	desk.OnChange(metrics.Observer(desk))

	desk.SetUnity()
	desk.SetOutputMute(0, true)
	desk.SetOutputMute(1, true)

	expected := `
# HELP patchbay_active_routes Crosspoints currently passing signal.
# TYPE patchbay_active_routes gauge
patchbay_active_routes{desk="mon"} 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"patchbay_active_routes"))
}

func TestMetrics_ObserveCommand(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.New(reg)
	require.NoError(t, err)

	metrics.ObserveCommand("setCrosspoint", 5*time.Millisecond)
	metrics.ObserveCommand("setCrosspoint", time.Millisecond)
	metrics.ObserveCommand("clear", time.Millisecond)

	n, err := testutil.GatherAndCount(reg, "patchbay_command_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one histogram series per command name")
}

func TestMetrics_Forget(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.New(reg)
	require.NoError(t, err)

	desk, err := patchbay.New(2, 2, patchbay.WithName("foh"))
	require.NoError(t, err)
	desk.OnChange(metrics.Observer(desk))
	desk.SetMainLevel(-3)

	metrics.Forget("foh")

	n, err := testutil.GatherAndCount(reg,
		"patchbay_active_routes", "patchbay_master_level_db", "patchbay_events_total")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNew_RejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := observability.New(reg)
	require.NoError(t, err)

	_, err = observability.New(reg)
	require.Error(t, err)
}
