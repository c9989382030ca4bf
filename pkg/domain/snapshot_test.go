package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshotZeroed(t *testing.T) {
	s := NewSnapshot(3, 2)
	assert.Len(t, s.InputLevels, 3)
	assert.Len(t, s.OutputLevels, 2)
	require.Len(t, s.Crosspoints, 3)
	for _, row := range s.Crosspoints {
		require.Len(t, row, 2)
		for _, cell := range row {
			assert.Nil(t, cell)
		}
	}
	assert.Zero(t, s.MainLevel)
	assert.Empty(t, s.Gangs)
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	s := NewSnapshot(2, 2)
	s.Name = "foh"
	s.InputLevels[0] = -3
	level := -12.0
	s.Crosspoints[1][0] = &level
	s.Gangs = []Gang{{ID: 1, Members: []GangMember{InputMember(0)}}}

	c := s.Clone()
	require.Equal(t, s, c)

	c.InputLevels[0] = 6
	*c.Crosspoints[1][0] = 0
	c.Gangs[0].Members[0] = OutputMember(1)

	assert.Equal(t, -3.0, s.InputLevels[0])
	assert.Equal(t, -12.0, *s.Crosspoints[1][0])
	assert.Equal(t, InputMember(0), s.Gangs[0].Members[0])
}

func TestSnapshotNormalizedZeroFillsAndTruncates(t *testing.T) {
	s := &Snapshot{
		Name:        "monitor",
		MainLevel:   99, // out of range on purpose
		InputLevels: []float64{-3, -90, 1, 2, 3},
		Crosspoints: [][]*float64{{ptr(20)}},
		InputMutes:  []bool{true},
	}

	n := s.Normalized(2, 3)
	assert.Equal(t, "monitor", n.Name)
	assert.Equal(t, MaxLevelDB, n.MainLevel)

	// Five input levels truncate to two, the second clamped to the floor.
	require.Len(t, n.InputLevels, 2)
	assert.Equal(t, []float64{-3, -60}, n.InputLevels)

	// Missing output levels zero-fill.
	assert.Equal(t, []float64{0, 0, 0}, n.OutputLevels)

	// The single provided crosspoint clamps; every other cell stays
	// disconnected.
	require.Len(t, n.Crosspoints, 2)
	require.Len(t, n.Crosspoints[0], 3)
	require.NotNil(t, n.Crosspoints[0][0])
	assert.Equal(t, MaxLevelDB, *n.Crosspoints[0][0])
	assert.Nil(t, n.Crosspoints[0][1])
	assert.Nil(t, n.Crosspoints[1][0])

	assert.Equal(t, []bool{true, false}, n.InputMutes)
	assert.Equal(t, []bool{false, false, false}, n.OutputMutes)
}

func ptr(f float64) *float64 { return &f }
