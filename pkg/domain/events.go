package domain

// EventKind labels one accepted mutation.
type EventKind string

const (
	EventMain       EventKind = "main"
	EventInput      EventKind = "input"
	EventOutput     EventKind = "output"
	EventCrosspoint EventKind = "crosspoint"
	EventInputMute  EventKind = "inputMute"
	EventOutputMute EventKind = "outputMute"
	EventInputSolo  EventKind = "inputSolo"
	EventOutputSolo EventKind = "outputSolo"
	EventState      EventKind = "state"
	EventClear      EventKind = "clear"
	EventSilent     EventKind = "silent"
)

// Event describes one accepted mutation. Input and Output are -1 when the
// event does not address that axis.
//
// Value depends on Kind: level events carry the new dB value as float64,
// crosspoint events carry *float64 (nil when disconnected), mute and solo
// events carry bool, state events carry the applied *Snapshot, clear and
// silent events carry nil.
type Event struct {
	Kind   EventKind `json:"kind"`
	Input  int       `json:"input"`
	Output int       `json:"output"`
	Value  any       `json:"value,omitempty"`
}

// Observer receives every accepted mutation synchronously, in registration
// order. A mutation that touches several controls (a ganged change) emits
// one event per control touched.
//
// Observers run inside the mutating call. An observer that panics is
// isolated: the panic is logged and delivery continues with the next
// observer.
type Observer func(Event)
