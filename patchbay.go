package patchbay

import (
	"log/slog"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/internal/runtime"
	"github.com/aretw0/patchbay/pkg/domain"
)

// Matrix is the high-level entry point for the patchbay library.
// It wraps the internal routing runtime and exposes the full control
// surface: levels, crosspoints, mutes, solos, gangs, gain resolution,
// change notification and snapshots.
//
// A Matrix is not safe for concurrent use. Callers serialize access
// themselves; pkg/session provides that serialization for shared
// deployments.
type Matrix struct {
	rt     *runtime.Matrix
	logger *slog.Logger

	name      string
	observers []domain.Observer
}

// Option defines a functional option for configuring the Matrix.
type Option func(*Matrix)

// WithName labels the matrix. The name travels with snapshots and shows
// up in rendered boards; it does not affect routing.
func WithName(name string) Option {
	return func(m *Matrix) {
		m.name = name
	}
}

// WithLogger sets a custom structured logger for the matrix. Without it
// the matrix stays silent.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matrix) {
		m.logger = logger
	}
}

// WithObserver registers a change observer before New returns, so the
// caller misses no mutation. Equivalent to calling OnChange right after
// construction, minus the race against other setup code.
func WithObserver(fn domain.Observer) Option {
	return func(m *Matrix) {
		m.observers = append(m.observers, fn)
	}
}

// New initializes an N-input by M-output routing matrix. Every level
// starts at 0 dB, every crosspoint disconnected, nothing muted or soloed,
// no gangs. Dimensions must both be positive.
func New(numInputs, numOutputs int, opts ...Option) (*Matrix, error) {
	m := &Matrix{}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = logging.NewNop()
	}

	rt, err := runtime.NewMatrix(numInputs, numOutputs, m.name, m.logger)
	if err != nil {
		return nil, err
	}
	m.rt = rt

	for _, fn := range m.observers {
		m.rt.OnChange(fn)
	}

	return m, nil
}

// Subscription is a handle to a registered observer. Close unregisters
// the observer; closing twice is harmless.
type Subscription struct {
	cancel func()
}

// Close removes the observer from the notification list.
func (s *Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// OnChange registers fn to run synchronously after every accepted
// mutation, in registration order. A panicking observer is recovered and
// logged; the remaining observers still run.
func (m *Matrix) OnChange(fn domain.Observer) *Subscription {
	return &Subscription{cancel: m.rt.OnChange(fn)}
}

// Name returns the matrix label.
func (m *Matrix) Name() string { return m.rt.Name() }

// SetName relabels the matrix without emitting a change event.
func (m *Matrix) SetName(name string) { m.rt.SetName(name) }

// NumInputs returns the input count fixed at construction.
func (m *Matrix) NumInputs() int { return m.rt.NumInputs() }

// NumOutputs returns the output count fixed at construction.
func (m *Matrix) NumOutputs() int { return m.rt.NumOutputs() }

// SetMainLevel sets the master level in dB, clamped to [-60, +12].
// The master fader is not gangable.
func (m *Matrix) SetMainLevel(db float64) { m.rt.SetMainLevel(db) }

// MainLevel returns the master level in dB.
func (m *Matrix) MainLevel() float64 { return m.rt.MainLevel() }

// SetInputLevel sets an input fader in dB, clamped to [-60, +12]. If the
// input belongs to a gang the change applies to every member as a relative
// shift. Out-of-range indices are ignored.
func (m *Matrix) SetInputLevel(input int, db float64) { m.rt.SetInputLevel(input, db) }

// InputLevel returns an input fader in dB; 0 for out-of-range indices.
func (m *Matrix) InputLevel(input int) float64 { return m.rt.InputLevel(input) }

// SetOutputLevel sets an output fader in dB, clamped to [-60, +12], ganged
// like SetInputLevel. Out-of-range indices are ignored.
func (m *Matrix) SetOutputLevel(output int, db float64) { m.rt.SetOutputLevel(output, db) }

// OutputLevel returns an output fader in dB; 0 for out-of-range indices.
func (m *Matrix) OutputLevel(output int) float64 { return m.rt.OutputLevel(output) }

// SetCrosspoint connects input to output at the given dB level, clamped to
// [-60, +12], ganged when the point belongs to a gang. Out-of-range
// indices are ignored.
func (m *Matrix) SetCrosspoint(input, output int, db float64) { m.rt.SetCrosspoint(input, output, db) }

// ClearCrosspoint disconnects input from output. Disconnection never
// routes through gangs.
func (m *Matrix) ClearCrosspoint(input, output int) { m.rt.ClearCrosspoint(input, output) }

// Crosspoint returns the state of one routing point. Out-of-range indices
// read as disconnected.
func (m *Matrix) Crosspoint(input, output int) domain.Crosspoint { return m.rt.Crosspoint(input, output) }

// SetInputMute mutes or unmutes an input channel.
func (m *Matrix) SetInputMute(input int, muted bool) { m.rt.SetInputMute(input, muted) }

// InputMuted reports whether an input channel is muted.
func (m *Matrix) InputMuted(input int) bool { return m.rt.InputMuted(input) }

// SetOutputMute mutes or unmutes an output bus.
func (m *Matrix) SetOutputMute(output int, muted bool) { m.rt.SetOutputMute(output, muted) }

// OutputMuted reports whether an output bus is muted.
func (m *Matrix) OutputMuted(output int) bool { return m.rt.OutputMuted(output) }

// SetInputSolo solos or unsolos an input channel. While any input is
// soloed, unsoloed inputs resolve to zero gain.
func (m *Matrix) SetInputSolo(input int, soloed bool) { m.rt.SetInputSolo(input, soloed) }

// InputSoloed reports whether an input channel is soloed.
func (m *Matrix) InputSoloed(input int) bool { return m.rt.InputSoloed(input) }

// SetOutputSolo solos or unsolos an output bus.
func (m *Matrix) SetOutputSolo(output int, soloed bool) { m.rt.SetOutputSolo(output, soloed) }

// OutputSoloed reports whether an output bus is soloed.
func (m *Matrix) OutputSoloed(output int) bool { return m.rt.OutputSoloed(output) }

// CreateGang links control points so that a change to any member shifts
// all of them by the same dB delta. Members are stored as given and
// validated only when a change is applied. Returns the gang id.
func (m *Matrix) CreateGang(members ...domain.GangMember) int { return m.rt.CreateGang(members...) }

// RemoveGang deletes a gang by id, reporting whether it existed.
func (m *Matrix) RemoveGang(id int) bool { return m.rt.RemoveGang(id) }

// Gangs returns a deep copy of the gang registry in creation order.
func (m *Matrix) Gangs() []domain.Gang { return m.rt.Gangs() }

// CalculateGain resolves the effective linear gain from input to output,
// honoring mutes, solo exclusivity, disconnection and the four level
// stages. Pure with respect to matrix state.
func (m *Matrix) CalculateGain(input, output int) float64 { return m.rt.CalculateGain(input, output) }

// ActiveRoutes lists every input/output pair with gain above zero, in
// row-major order (inputs outer, outputs inner).
func (m *Matrix) ActiveRoutes() []domain.Route { return m.rt.ActiveRoutes() }

// State returns a deep, independent snapshot of the whole matrix,
// gangs included.
func (m *Matrix) State() *domain.Snapshot { return m.rt.State() }

// SetState replaces the entire matrix state from a snapshot. The matrix
// keeps its own dimensions: missing fields zero-fill, long fields
// truncate, levels re-clamp. Emits exactly one state event.
func (m *Matrix) SetState(snap *domain.Snapshot) { m.rt.SetState(snap) }

// Clear resets levels, crosspoints, mutes, solos and gangs to the initial
// state, keeping the name and dimensions. Emits one clear event.
func (m *Matrix) Clear() { m.rt.Clear() }

// SetSilent disconnects every crosspoint, leaving levels and flags alone.
// Emits one silent event.
func (m *Matrix) SetSilent() { m.rt.SetSilent() }

// SetUnity connects the diagonal min(N, M) crosspoints at 0 dB through the
// normal setter, so ganged points behave as in any other change.
func (m *Matrix) SetUnity() { m.rt.SetUnity() }
