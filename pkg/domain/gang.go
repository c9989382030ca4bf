package domain

// GangKind identifies which control surface a gang member points at.
type GangKind string

const (
	GangInput      GangKind = "input"
	GangOutput     GangKind = "output"
	GangCrosspoint GangKind = "crosspoint"
)

// GangMember addresses one control point inside a gang. Input is meaningful
// for GangInput and GangCrosspoint members, Output for GangOutput and
// GangCrosspoint members; the unused field is zero.
type GangMember struct {
	Kind   GangKind `json:"kind" yaml:"kind" msgpack:"kind"`
	Input  int      `json:"input" yaml:"input" msgpack:"input"`
	Output int      `json:"output" yaml:"output" msgpack:"output"`
}

// InputMember addresses an input level fader.
func InputMember(input int) GangMember {
	return GangMember{Kind: GangInput, Input: input}
}

// OutputMember addresses an output level fader.
func OutputMember(output int) GangMember {
	return GangMember{Kind: GangOutput, Output: output}
}

// CrosspointMember addresses the gain control between input and output.
func CrosspointMember(input, output int) GangMember {
	return GangMember{Kind: GangCrosspoint, Input: input, Output: output}
}

// Gang groups control points that move together, preserving their relative
// offsets when any member changes. Membership is advisory, not exclusive:
// the same point may appear in several gangs, and setters act on the first
// gang found in creation order.
type Gang struct {
	ID      int          `json:"id" yaml:"id" msgpack:"id"`
	Members []GangMember `json:"members" yaml:"members" msgpack:"members"`
}

// Clone returns a gang with its own member slice.
func (g Gang) Clone() Gang {
	members := make([]GangMember, len(g.Members))
	copy(members, g.Members)
	return Gang{ID: g.ID, Members: members}
}

// CloneGangs deep-copies a gang list.
func CloneGangs(gangs []Gang) []Gang {
	if gangs == nil {
		return nil
	}
	out := make([]Gang, len(gangs))
	for i, g := range gangs {
		out[i] = g.Clone()
	}
	return out
}
