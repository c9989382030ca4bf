/*
Package patchbay is the routing core of a live-show audio control application: an N-input by M-output gain matrix with per-input, per-output, per-crosspoint and master levels, ganged controls, mute/solo exclusivity, change notification and flat state snapshots.

It computes control decisions, not audio. The effective gain of every input/output pair is resolved from the four level stages and the mute/solo flags; feeding that gain to an actual signal path is the host's job.

# Concept

Patchbay treats the desk as a single mutable Matrix. Every setter clamps into the working range [-60, +12] dB and notifies registered observers synchronously, so renderers, meters and persistence stay in lockstep with the console state. Crosspoints are a real sum type (disconnected or connected-at-level), never a numeric sentinel, and gangs apply relative dB shifts across linked controls.

# Key Features

  - Deterministic Resolution: mutes, then solo exclusivity, then disconnection, then the product of the level stages.
  - Ganged Controls: linked faders and crosspoints move by a shared delta, each re-clamped independently.
  - Change Notification: ordered synchronous observers with per-observer panic isolation.
  - Snapshots: deep-copied state in and out, tolerant of dimension drift, with stores under pkg/adapters and internal/adapters.

# Usage

Construct a matrix, route some signal, and watch it change.

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/patchbay"
	)

	func main() {
		desk, err := patchbay.New(8, 4, patchbay.WithName("foh"))
		if err != nil {
			log.Fatal(err)
		}

		// Bring up a vocal chain: input 0 to output 0 at -3 dB.
		desk.SetCrosspoint(0, 0, -3)
		desk.SetInputLevel(0, -6)

		for _, r := range desk.ActiveRoutes() {
			fmt.Printf("in %d -> out %d at %.1f dB\n", r.Input, r.Output, r.GainDB)
		}
	}

A Matrix is single-threaded on purpose. Wrap it in pkg/session for anything shared.
*/
package patchbay
