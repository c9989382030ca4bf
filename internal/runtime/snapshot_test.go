package runtime_test

import (
	"testing"

	"github.com/aretw0/patchbay/internal/runtime"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// busyMatrix builds a matrix with every kind of state populated so the
// snapshot tests exercise more than the zero value.
func busyMatrix(t *testing.T) *runtime.Matrix {
	t.Helper()
	m, err := runtime.NewMatrix(3, 2, "foh", nil)
	require.NoError(t, err)
	m.SetMainLevel(-2)
	m.SetInputLevel(0, -6)
	m.SetInputLevel(2, 3)
	m.SetOutputLevel(1, -12)
	m.SetCrosspoint(0, 0, 0)
	m.SetCrosspoint(2, 1, -9)
	m.SetInputMute(1, true)
	m.SetOutputSolo(1, true)
	m.CreateGang(domain.InputMember(0), domain.InputMember(2))
	return m
}

func TestStateIsDeepCopy(t *testing.T) {
	m := busyMatrix(t)

	s := m.State()
	s.MainLevel = 12
	s.InputLevels[0] = 12
	*s.Crosspoints[2][1] = 12
	s.Gangs[0].Members[0].Input = 99
	s.InputMutes[1] = false

	assert.Equal(t, -2.0, m.MainLevel())
	assert.Equal(t, -6.0, m.InputLevel(0))
	level, connected := m.Crosspoint(2, 1).Level()
	require.True(t, connected)
	assert.Equal(t, -9.0, level)
	assert.True(t, m.InputMuted(1))
	assert.Equal(t, 0, m.Gangs()[0].Members[0].Input)
}

func TestSetStateRoundTripPreservesGains(t *testing.T) {
	src := busyMatrix(t)

	dst, err := runtime.NewMatrix(3, 2, "monitors", nil)
	require.NoError(t, err)
	dst.SetState(src.State())

	for i := 0; i < 3; i++ {
		for o := 0; o < 2; o++ {
			assert.Equal(t, src.CalculateGain(i, o), dst.CalculateGain(i, o), "gain at (%d,%d)", i, o)
		}
	}
	assert.Equal(t, src.ActiveRoutes(), dst.ActiveRoutes())
}

func TestSetStateDimensionsAreAuthoritative(t *testing.T) {
	m := newMatrix(t, 3, 2)
	m.SetInputLevel(2, -6)
	m.SetOutputMute(1, true)
	m.SetCrosspoint(2, 1, -3)

	// A 1x1 snapshot: missing inputs, outputs and crosspoints zero-fill.
	small := domain.NewSnapshot(1, 1)
	small.MainLevel = -99 // below the floor, re-clamped on application
	small.InputLevels[0] = -6

	m.SetState(small)

	assert.Equal(t, 3, m.NumInputs(), "matrix keeps its own dimensions")
	assert.Equal(t, 2, m.NumOutputs())
	assert.Equal(t, -60.0, m.MainLevel())
	assert.Equal(t, -6.0, m.InputLevel(0))
	assert.Equal(t, 0.0, m.InputLevel(2))
	assert.False(t, m.OutputMuted(1))
	assert.False(t, m.Crosspoint(2, 1).Connected())
}

func TestSetStateTruncatesOversizedSnapshot(t *testing.T) {
	m := newMatrix(t, 2, 2)

	big := domain.NewSnapshot(4, 4)
	big.InputLevels[1] = -6
	big.InputLevels[3] = 9 // beyond the matrix, dropped
	big.Crosspoints[0][0] = ptr(-3.0)
	big.Crosspoints[3][3] = ptr(0.0)

	m.SetState(big)

	assert.Equal(t, -6.0, m.InputLevel(1))
	level, connected := m.Crosspoint(0, 0).Level()
	require.True(t, connected)
	assert.Equal(t, -3.0, level)
	assert.Equal(t, 0.0, m.InputLevel(0))
}

func TestSetStateEmitsSingleEvent(t *testing.T) {
	m := busyMatrix(t)

	var events []domain.Event
	m.OnChange(func(ev domain.Event) { events = append(events, ev) })

	snap := domain.NewSnapshot(3, 2)
	snap.Name = "act two"
	snap.MainLevel = 99 // re-clamped before the event is built
	m.SetState(snap)

	require.Len(t, events, 1, "restoring is one event, not one per field")
	assert.Equal(t, domain.EventState, events[0].Kind)
	assert.Equal(t, -1, events[0].Input)
	assert.Equal(t, -1, events[0].Output)

	applied, ok := events[0].Value.(*domain.Snapshot)
	require.True(t, ok)
	assert.Equal(t, "act two", applied.Name)
	assert.Equal(t, 12.0, applied.MainLevel, "event carries the snapshot as applied")
}

func TestSetStateIgnoresNil(t *testing.T) {
	m := busyMatrix(t)

	var count int
	m.OnChange(func(domain.Event) { count++ })
	m.SetState(nil)

	assert.Zero(t, count)
	assert.Equal(t, -2.0, m.MainLevel())
}

func TestSetStateRestoresGangsAndCounter(t *testing.T) {
	m := newMatrix(t, 4, 4)

	snap := domain.NewSnapshot(4, 4)
	snap.Gangs = []domain.Gang{
		{ID: 3, Members: []domain.GangMember{domain.InputMember(0), domain.InputMember(1)}},
		{ID: 7, Members: []domain.GangMember{domain.OutputMember(2)}},
	}
	m.SetState(snap)

	require.Len(t, m.Gangs(), 2)
	assert.Equal(t, 8, m.CreateGang(domain.InputMember(3)), "counter resumes past the highest restored id")

	// The restored gang is live: moving input 0 drags input 1 along.
	m.SetInputLevel(0, -6)
	assert.Equal(t, -6.0, m.InputLevel(1))
}

func TestClearResetsEverything(t *testing.T) {
	m := busyMatrix(t)

	var events []domain.Event
	m.OnChange(func(ev domain.Event) { events = append(events, ev) })

	m.Clear()

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventClear, events[0].Kind)
	assert.Nil(t, events[0].Value)

	assert.Equal(t, "foh", m.Name(), "name survives a clear")
	assert.Equal(t, 3, m.NumInputs())
	assert.Equal(t, 0.0, m.MainLevel())
	assert.Equal(t, 0.0, m.InputLevel(0))
	assert.False(t, m.InputMuted(1))
	assert.False(t, m.OutputSoloed(1))
	assert.False(t, m.Crosspoint(0, 0).Connected())
	assert.Empty(t, m.Gangs())
	assert.Equal(t, 1, m.CreateGang(domain.InputMember(0)), "gang ids restart from 1")
}

func TestSetSilentDisconnectsCrosspointsOnly(t *testing.T) {
	m := busyMatrix(t)

	var events []domain.Event
	m.OnChange(func(ev domain.Event) { events = append(events, ev) })

	m.SetSilent()

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventSilent, events[0].Kind)
	assert.Nil(t, events[0].Value)

	assert.False(t, m.Crosspoint(0, 0).Connected())
	assert.False(t, m.Crosspoint(2, 1).Connected())
	assert.Equal(t, -6.0, m.InputLevel(0), "levels keep their values")
	assert.True(t, m.InputMuted(1), "flags keep their values")
	assert.Empty(t, m.ActiveRoutes())
}

func TestSetUnityConnectsDiagonal(t *testing.T) {
	m := newMatrix(t, 3, 2)

	var events []domain.Event
	m.OnChange(func(ev domain.Event) { events = append(events, ev) })

	m.SetUnity()

	require.Len(t, events, 2, "one crosspoint event per diagonal point")
	for k := 0; k < 2; k++ {
		level, connected := m.Crosspoint(k, k).Level()
		require.True(t, connected, "diagonal (%d,%d)", k, k)
		assert.Equal(t, 0.0, level)
		assert.Equal(t, 1.0, m.CalculateGain(k, k))
	}
	assert.False(t, m.Crosspoint(2, 1).Connected(), "off-diagonal untouched")
}

// SetUnity routes through the ordinary crosspoint setter, so a ganged
// diagonal point drags its gang along like any other change.
func TestSetUnityRespectsGangs(t *testing.T) {
	m := newMatrix(t, 2, 2)
	m.SetCrosspoint(0, 0, -10)
	m.SetCrosspoint(0, 1, -6)
	m.CreateGang(domain.CrosspointMember(0, 0), domain.CrosspointMember(0, 1))

	m.SetUnity() // moves (0,0) from -10 to 0: a +10 delta

	level, connected := m.Crosspoint(0, 0).Level()
	require.True(t, connected)
	assert.InDelta(t, 0.0, level, 1e-9)

	level, connected = m.Crosspoint(0, 1).Level()
	require.True(t, connected)
	assert.InDelta(t, 4.0, level, 1e-9, "ganged partner shifted by the same delta")
}
