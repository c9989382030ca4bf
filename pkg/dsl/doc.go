/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing patchbay desks.

It allows developers to define desk setups using a type-safe, fluent builder pattern
instead of relying on external JSON or YAML snapshot files. This is particularly useful
for generating show files, seeding tests and leveraging IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/aretw0/patchbay/pkg/dsl"
		"github.com/aretw0/patchbay/pkg/domain"
	)

	func main() {
		b := dsl.New(8, 4).
			Name("foh").
			Main(-3)

		b.Input(0).Level(-6).Patch(0, 0)
		b.Input(1).Mute()
		b.Output(3).Solo()

		b.Gang(domain.InputMember(0), domain.InputMember(1))

		// The resulting desk is a live *patchbay.Matrix
		desk, err := b.Build()
		// ... or b.Snapshot() for the wire form
	}
*/
package dsl
