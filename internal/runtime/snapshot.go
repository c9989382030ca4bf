package runtime

import "github.com/aretw0/patchbay/pkg/domain"

// State captures a deep, independent copy of everything the matrix owns:
// levels, mutes, solos, crosspoints, and the gang registry.
func (m *Matrix) State() *domain.Snapshot {
	s := domain.NewSnapshot(m.numInputs, m.numOutputs)
	s.Name = m.name
	s.MainLevel = m.mainLevel
	copy(s.InputLevels, m.inputLevels)
	copy(s.OutputLevels, m.outputLevels)
	for i := range m.crosspoints {
		for o, xp := range m.crosspoints[i] {
			s.Crosspoints[i][o] = xp.LevelPtr()
		}
	}
	copy(s.InputMutes, m.inputMutes)
	copy(s.OutputMutes, m.outputMutes)
	copy(s.InputSolos, m.inputSolos)
	copy(s.OutputSolos, m.outputSolos)
	s.Gangs = m.Gangs()
	return s
}

// SetState replaces all state from snap. The matrix's own dimensions are
// authoritative: short arrays zero-fill, long ones truncate, and every
// level re-clamps on the way in. The gang id counter resumes past the
// highest restored id. Fires exactly one state event carrying the applied
// snapshot; a nil snap is ignored.
func (m *Matrix) SetState(snap *domain.Snapshot) {
	if snap == nil {
		return
	}
	applied := snap.Normalized(m.numInputs, m.numOutputs)
	m.name = applied.Name
	m.mainLevel = applied.MainLevel
	copy(m.inputLevels, applied.InputLevels)
	copy(m.outputLevels, applied.OutputLevels)
	for i := range m.crosspoints {
		for o := range m.crosspoints[i] {
			m.crosspoints[i][o] = domain.CrosspointFromPtr(applied.Crosspoints[i][o])
		}
	}
	copy(m.inputMutes, applied.InputMutes)
	copy(m.outputMutes, applied.OutputMutes)
	copy(m.inputSolos, applied.InputSolos)
	copy(m.outputSolos, applied.OutputSolos)
	m.gangs = domain.CloneGangs(applied.Gangs)
	m.nextGangID = 1
	for _, g := range m.gangs {
		if g.ID >= m.nextGangID {
			m.nextGangID = g.ID + 1
		}
	}
	m.notify(domain.Event{Kind: domain.EventState, Input: -1, Output: -1, Value: applied})
}

// Clear resets every control to its initial value and drops all gangs,
// firing one clear event. The desk name and dimensions are untouched.
func (m *Matrix) Clear() {
	m.mainLevel = 0
	for i := range m.inputLevels {
		m.inputLevels[i] = 0
		m.inputMutes[i] = false
		m.inputSolos[i] = false
	}
	for o := range m.outputLevels {
		m.outputLevels[o] = 0
		m.outputMutes[o] = false
		m.outputSolos[o] = false
	}
	for i := range m.crosspoints {
		for o := range m.crosspoints[i] {
			m.crosspoints[i][o] = domain.Disconnected()
		}
	}
	m.gangs = nil
	m.nextGangID = 1
	m.notify(domain.Event{Kind: domain.EventClear, Input: -1, Output: -1})
}

// SetSilent disconnects every crosspoint, leaving levels, mutes, solos and
// gangs alone, firing one silent event. After it, no route carries signal
// until something reconnects.
func (m *Matrix) SetSilent() {
	for i := range m.crosspoints {
		for o := range m.crosspoints[i] {
			m.crosspoints[i][o] = domain.Disconnected()
		}
	}
	m.notify(domain.Event{Kind: domain.EventSilent, Input: -1, Output: -1})
}

// SetUnity connects the diagonal at 0 dB through the normal crosspoint
// setter, so a ganged diagonal cell moves its gang like any other change.
// One crosspoint event fires per diagonal cell.
func (m *Matrix) SetUnity() {
	n := m.numInputs
	if m.numOutputs < n {
		n = m.numOutputs
	}
	for k := 0; k < n; k++ {
		m.SetCrosspoint(k, k, 0)
	}
}
