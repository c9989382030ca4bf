package dsl

import "github.com/aretw0/patchbay"

// InputBuilder provides a fluent API for configuring one input strip.
type InputBuilder struct {
	builder *Builder
	input   int
}

// Level sets the strip's fader level in dB.
func (n *InputBuilder) Level(db float64) *InputBuilder {
	input := n.input
	n.builder.step(func(m *patchbay.Matrix) { m.SetInputLevel(input, db) })
	return n
}

// Mute cuts the strip.
func (n *InputBuilder) Mute() *InputBuilder {
	input := n.input
	n.builder.step(func(m *patchbay.Matrix) { m.SetInputMute(input, true) })
	return n
}

// Solo isolates the strip against the other inputs.
func (n *InputBuilder) Solo() *InputBuilder {
	input := n.input
	n.builder.step(func(m *patchbay.Matrix) { m.SetInputSolo(input, true) })
	return n
}

// Patch routes this input to an output at the given level in dB.
func (n *InputBuilder) Patch(output int, db float64) *InputBuilder {
	input := n.input
	n.builder.step(func(m *patchbay.Matrix) { m.SetCrosspoint(input, output, db) })
	return n
}

// OutputBuilder provides a fluent API for configuring one output strip.
type OutputBuilder struct {
	builder *Builder
	output  int
}

// Level sets the strip's fader level in dB.
func (n *OutputBuilder) Level(db float64) *OutputBuilder {
	output := n.output
	n.builder.step(func(m *patchbay.Matrix) { m.SetOutputLevel(output, db) })
	return n
}

// Mute cuts the strip.
func (n *OutputBuilder) Mute() *OutputBuilder {
	output := n.output
	n.builder.step(func(m *patchbay.Matrix) { m.SetOutputMute(output, true) })
	return n
}

// Solo isolates the strip against the other outputs.
func (n *OutputBuilder) Solo() *OutputBuilder {
	output := n.output
	n.builder.step(func(m *patchbay.Matrix) { m.SetOutputSolo(output, true) })
	return n
}
