// Package runtime implements the routing core: level storage, gang
// propagation, gain resolution, change notification, and snapshots.
//
// The engine is synchronous and single-threaded. Every mutation, gang
// propagation, and gain computation runs to completion before the call
// returns. It performs no locking and no I/O; callers that share a matrix
// across goroutines must serialize access externally.
package runtime

import (
	"log/slog"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
)

// Matrix owns all routing state for one N-input × M-output desk.
type Matrix struct {
	name       string
	numInputs  int
	numOutputs int

	mainLevel    float64
	inputLevels  []float64
	outputLevels []float64
	crosspoints  [][]domain.Crosspoint
	inputMutes   []bool
	outputMutes  []bool
	inputSolos   []bool
	outputSolos  []bool

	gangs      []domain.Gang
	nextGangID int

	notifier notifier
	logger   *slog.Logger
}

// NewMatrix builds a zeroed matrix: all levels 0 dB, every crosspoint
// disconnected, nothing muted or soloed, no gangs.
func NewMatrix(numInputs, numOutputs int, name string, logger *slog.Logger) (*Matrix, error) {
	if numInputs <= 0 || numOutputs <= 0 {
		return nil, domain.ErrInvalidDimensions
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Matrix{
		name:         name,
		numInputs:    numInputs,
		numOutputs:   numOutputs,
		inputLevels:  make([]float64, numInputs),
		outputLevels: make([]float64, numOutputs),
		crosspoints:  make([][]domain.Crosspoint, numInputs),
		inputMutes:   make([]bool, numInputs),
		outputMutes:  make([]bool, numOutputs),
		inputSolos:   make([]bool, numInputs),
		outputSolos:  make([]bool, numOutputs),
		nextGangID:   1,
		logger:       logger,
	}
	for i := range m.crosspoints {
		m.crosspoints[i] = make([]domain.Crosspoint, numOutputs)
	}
	return m, nil
}

// Name returns the desk name.
func (m *Matrix) Name() string { return m.name }

// SetName renames the desk. Renaming emits no change event.
func (m *Matrix) SetName(name string) { m.name = name }

// NumInputs returns the fixed input count.
func (m *Matrix) NumInputs() int { return m.numInputs }

// NumOutputs returns the fixed output count.
func (m *Matrix) NumOutputs() int { return m.numOutputs }

func (m *Matrix) validInput(input int) bool {
	return input >= 0 && input < m.numInputs
}

func (m *Matrix) validOutput(output int) bool {
	return output >= 0 && output < m.numOutputs
}

// SetMainLevel sets the master level, clamped. The master fader is not
// gangable.
func (m *Matrix) SetMainLevel(db float64) {
	m.mainLevel = domain.ClampLevel(db)
	m.notify(domain.Event{Kind: domain.EventMain, Input: -1, Output: -1, Value: m.mainLevel})
}

// MainLevel returns the master level in dB.
func (m *Matrix) MainLevel() float64 { return m.mainLevel }

// SetInputLevel sets one input fader, clamped. If the fader belongs to a
// gang the change propagates to every member, preserving offsets.
// Out-of-range indices are ignored.
func (m *Matrix) SetInputLevel(input int, db float64) {
	if !m.validInput(input) {
		return
	}
	if id, ok := m.findGang(domain.GangInput, input, -1); ok {
		m.applyGangedChange(id, db, domain.GangInput, input, -1)
		return
	}
	m.storeInputLevel(input, db)
}

// InputLevel returns one input level, or 0 for out-of-range indices.
func (m *Matrix) InputLevel(input int) float64 {
	if !m.validInput(input) {
		return 0
	}
	return m.inputLevels[input]
}

// SetOutputLevel sets one output fader, clamped, routing through a gang
// when the fader belongs to one. Out-of-range indices are ignored.
func (m *Matrix) SetOutputLevel(output int, db float64) {
	if !m.validOutput(output) {
		return
	}
	if id, ok := m.findGang(domain.GangOutput, -1, output); ok {
		m.applyGangedChange(id, db, domain.GangOutput, -1, output)
		return
	}
	m.storeOutputLevel(output, db)
}

// OutputLevel returns one output level, or 0 for out-of-range indices.
func (m *Matrix) OutputLevel(output int) float64 {
	if !m.validOutput(output) {
		return 0
	}
	return m.outputLevels[output]
}

// SetCrosspoint connects input to output at db, clamped, routing through a
// gang when the crosspoint belongs to one. Out-of-range indices are
// ignored.
func (m *Matrix) SetCrosspoint(input, output int, db float64) {
	if !m.validInput(input) || !m.validOutput(output) {
		return
	}
	if id, ok := m.findGang(domain.GangCrosspoint, input, output); ok {
		m.applyGangedChange(id, db, domain.GangCrosspoint, input, output)
		return
	}
	m.storeCrosspoint(input, output, domain.ConnectedAt(db))
}

// ClearCrosspoint disconnects one crosspoint. Disconnection is not a dB
// change, so it never routes through gangs.
func (m *Matrix) ClearCrosspoint(input, output int) {
	if !m.validInput(input) || !m.validOutput(output) {
		return
	}
	m.storeCrosspoint(input, output, domain.Disconnected())
}

// Crosspoint returns the state of one crosspoint; out-of-range indices
// read as disconnected.
func (m *Matrix) Crosspoint(input, output int) domain.Crosspoint {
	if !m.validInput(input) || !m.validOutput(output) {
		return domain.Disconnected()
	}
	return m.crosspoints[input][output]
}

// SetInputMute sets one input mute flag. Mute wins over solo and levels.
func (m *Matrix) SetInputMute(input int, muted bool) {
	if !m.validInput(input) {
		return
	}
	m.inputMutes[input] = muted
	m.notify(domain.Event{Kind: domain.EventInputMute, Input: input, Output: -1, Value: muted})
}

// InputMuted reports one input mute flag.
func (m *Matrix) InputMuted(input int) bool {
	return m.validInput(input) && m.inputMutes[input]
}

// SetOutputMute sets one output mute flag.
func (m *Matrix) SetOutputMute(output int, muted bool) {
	if !m.validOutput(output) {
		return
	}
	m.outputMutes[output] = muted
	m.notify(domain.Event{Kind: domain.EventOutputMute, Input: -1, Output: output, Value: muted})
}

// OutputMuted reports one output mute flag.
func (m *Matrix) OutputMuted(output int) bool {
	return m.validOutput(output) && m.outputMutes[output]
}

// SetInputSolo sets one input solo flag. While any input is soloed, every
// non-soloed input contributes zero gain.
func (m *Matrix) SetInputSolo(input int, soloed bool) {
	if !m.validInput(input) {
		return
	}
	m.inputSolos[input] = soloed
	m.notify(domain.Event{Kind: domain.EventInputSolo, Input: input, Output: -1, Value: soloed})
}

// InputSoloed reports one input solo flag.
func (m *Matrix) InputSoloed(input int) bool {
	return m.validInput(input) && m.inputSolos[input]
}

// SetOutputSolo sets one output solo flag.
func (m *Matrix) SetOutputSolo(output int, soloed bool) {
	if !m.validOutput(output) {
		return
	}
	m.outputSolos[output] = soloed
	m.notify(domain.Event{Kind: domain.EventOutputSolo, Input: -1, Output: output, Value: soloed})
}

// OutputSoloed reports one output solo flag.
func (m *Matrix) OutputSoloed(output int) bool {
	return m.validOutput(output) && m.outputSolos[output]
}

// storeInputLevel clamps and writes one input level, emitting its event.
func (m *Matrix) storeInputLevel(input int, db float64) {
	m.inputLevels[input] = domain.ClampLevel(db)
	m.notify(domain.Event{Kind: domain.EventInput, Input: input, Output: -1, Value: m.inputLevels[input]})
}

// storeOutputLevel clamps and writes one output level, emitting its event.
func (m *Matrix) storeOutputLevel(output int, db float64) {
	m.outputLevels[output] = domain.ClampLevel(db)
	m.notify(domain.Event{Kind: domain.EventOutput, Input: -1, Output: output, Value: m.outputLevels[output]})
}

// storeCrosspoint writes one crosspoint, emitting its event. The event
// value is nil for a disconnection.
func (m *Matrix) storeCrosspoint(input, output int, xp domain.Crosspoint) {
	m.crosspoints[input][output] = xp
	m.notify(domain.Event{Kind: domain.EventCrosspoint, Input: input, Output: output, Value: xp.LevelPtr()})
}
