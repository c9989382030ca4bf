package runtime

import "github.com/aretw0/patchbay/pkg/domain"

// CreateGang registers members as a new gang and returns its id. Members
// are stored verbatim: duplicates and out-of-range indices are kept as
// given and only resolved (skipped) when a change is applied. Gang ids are
// assigned monotonically and never reused within a matrix lifetime, except
// after Clear, which resets the counter along with everything else.
func (m *Matrix) CreateGang(members ...domain.GangMember) int {
	id := m.nextGangID
	m.nextGangID++
	stored := make([]domain.GangMember, len(members))
	copy(stored, members)
	m.gangs = append(m.gangs, domain.Gang{ID: id, Members: stored})
	return id
}

// RemoveGang deletes a gang by id, reporting whether it existed.
func (m *Matrix) RemoveGang(id int) bool {
	for i, g := range m.gangs {
		if g.ID == id {
			m.gangs = append(m.gangs[:i], m.gangs[i+1:]...)
			return true
		}
	}
	return false
}

// Gangs returns a deep copy of the gang registry in creation order.
func (m *Matrix) Gangs() []domain.Gang {
	return domain.CloneGangs(m.gangs)
}

// findGang scans gangs in creation order and returns the id of the first
// one holding a member matching (kind, input, output). A point in several
// gangs resolves to the first; the rest are never consulted.
func (m *Matrix) findGang(kind domain.GangKind, input, output int) (int, bool) {
	for _, g := range m.gangs {
		for _, member := range g.Members {
			if memberMatches(member, kind, input, output) {
				return g.ID, true
			}
		}
	}
	return 0, false
}

func memberMatches(member domain.GangMember, kind domain.GangKind, input, output int) bool {
	if member.Kind != kind {
		return false
	}
	switch kind {
	case domain.GangInput:
		return member.Input == input
	case domain.GangOutput:
		return member.Output == output
	case domain.GangCrosspoint:
		return member.Input == input && member.Output == output
	}
	return false
}

func (m *Matrix) gang(id int) (domain.Gang, bool) {
	for _, g := range m.gangs {
		if g.ID == id {
			return g, true
		}
	}
	return domain.Gang{}, false
}

// applyGangedChange shifts every member of the gang by the delta between
// value and the source member's current level, each re-clamped
// independently, emitting one event per member written.
//
// A crosspoint member that is currently disconnected is skipped entirely:
// it stays disconnected and emits nothing. This holds for the source
// member too (its current level then reads as 0 dB for the delta), so
// ganged members can drift apart across disconnect/reconnect cycles.
// Members with out-of-range indices are skipped the same way.
func (m *Matrix) applyGangedChange(gangID int, value float64, kind domain.GangKind, input, output int) {
	g, ok := m.gang(gangID)
	if !ok {
		return
	}
	delta := value - m.memberLevel(kind, input, output)
	for _, member := range g.Members {
		switch member.Kind {
		case domain.GangInput:
			if m.validInput(member.Input) {
				m.storeInputLevel(member.Input, m.inputLevels[member.Input]+delta)
			}
		case domain.GangOutput:
			if m.validOutput(member.Output) {
				m.storeOutputLevel(member.Output, m.outputLevels[member.Output]+delta)
			}
		case domain.GangCrosspoint:
			if m.validInput(member.Input) && m.validOutput(member.Output) {
				if level, connected := m.crosspoints[member.Input][member.Output].Level(); connected {
					m.storeCrosspoint(member.Input, member.Output, domain.ConnectedAt(level+delta))
				}
			}
		}
	}
}

// memberLevel reads the current level of one control point. A disconnected
// crosspoint reads as 0 dB.
func (m *Matrix) memberLevel(kind domain.GangKind, input, output int) float64 {
	switch kind {
	case domain.GangInput:
		return m.inputLevels[input]
	case domain.GangOutput:
		return m.outputLevels[output]
	case domain.GangCrosspoint:
		level, connected := m.crosspoints[input][output].Level()
		if !connected {
			return 0
		}
		return level
	}
	return 0
}
