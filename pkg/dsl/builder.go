package dsl

import (
	"fmt"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/pkg/domain"
)

// Builder accumulates a desk definition. Calls are recorded in order and
// replayed through the matrix facade at Build time, so levels clamp and
// ganged moves resolve exactly as they would on a live desk. Out-of-range
// indexes follow matrix semantics: they are ignored.
type Builder struct {
	inputs  int
	outputs int
	steps   []func(*patchbay.Matrix)
}

// New creates a desk builder with the given dimensions.
func New(numInputs, numOutputs int) *Builder {
	return &Builder{
		inputs:  numInputs,
		outputs: numOutputs,
	}
}

// Name sets the desk name.
func (b *Builder) Name(name string) *Builder {
	return b.step(func(m *patchbay.Matrix) { m.SetName(name) })
}

// Main sets the master level in dB.
func (b *Builder) Main(db float64) *Builder {
	return b.step(func(m *patchbay.Matrix) { m.SetMainLevel(db) })
}

// Input returns the fluent configurator of one input strip.
func (b *Builder) Input(input int) *InputBuilder {
	return &InputBuilder{builder: b, input: input}
}

// Output returns the fluent configurator of one output strip.
func (b *Builder) Output(output int) *OutputBuilder {
	return &OutputBuilder{builder: b, output: output}
}

// Patch connects an input to an output at the given level in dB.
func (b *Builder) Patch(input, output int, db float64) *Builder {
	return b.step(func(m *patchbay.Matrix) { m.SetCrosspoint(input, output, db) })
}

// Unity connects the diagonal at 0 dB, the classic line check patch.
func (b *Builder) Unity() *Builder {
	return b.step(func(m *patchbay.Matrix) { m.SetUnity() })
}

// Gang groups control points so they move together from then on. Gangs
// act on the moves recorded after them, mirroring live desk behavior.
func (b *Builder) Gang(members ...domain.GangMember) *Builder {
	return b.step(func(m *patchbay.Matrix) { m.CreateGang(members...) })
}

// Build compiles the definition into a live matrix.
func (b *Builder) Build() (*patchbay.Matrix, error) {
	desk, err := patchbay.New(b.inputs, b.outputs)
	if err != nil {
		return nil, fmt.Errorf("failed to build desk: %w", err)
	}
	for _, step := range b.steps {
		step(desk)
	}
	return desk, nil
}

// Snapshot compiles the definition and returns its wire state.
func (b *Builder) Snapshot() (*domain.Snapshot, error) {
	desk, err := b.Build()
	if err != nil {
		return nil, err
	}
	return desk.State(), nil
}

func (b *Builder) step(fn func(*patchbay.Matrix)) *Builder {
	b.steps = append(b.steps, fn)
	return b
}
