package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/patchbay/pkg/domain"
)

// Board renders a desk snapshot as a markdown document: the crosspoint
// grid with per-channel levels and flags, plus the gang list. Cells on
// an active route are bold. The snapshot must be well shaped (Matrix
// state output, or validated input).
func Board(snap *domain.Snapshot, routes []domain.Route) string {
	active := make(map[[2]int]bool, len(routes))
	for _, r := range routes {
		active[[2]int{r.Input, r.Output}] = true
	}

	var sb strings.Builder
	name := snap.Name
	if name == "" {
		name = "untitled desk"
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)
	fmt.Fprintf(&sb, "%d in / %d out, main %s\n\n", snap.NumInputs, snap.NumOutputs, formatDB(snap.MainLevel))

	sb.WriteString("| |")
	for o := 0; o < snap.NumOutputs; o++ {
		fmt.Fprintf(&sb, " %s |", channelLabel("out", o, snap.OutputLevels, snap.OutputMutes, snap.OutputSolos))
	}
	sb.WriteString("\n|---|")
	sb.WriteString(strings.Repeat("---|", snap.NumOutputs))
	sb.WriteString("\n")

	for i := 0; i < snap.NumInputs; i++ {
		fmt.Fprintf(&sb, "| %s |", channelLabel("in", i, snap.InputLevels, snap.InputMutes, snap.InputSolos))
		for o := 0; o < snap.NumOutputs; o++ {
			cell := "·"
			if lvl := snap.Crosspoints[i][o]; lvl != nil {
				cell = formatDB(*lvl)
				if active[[2]int{i, o}] {
					cell = "**" + cell + "**"
				}
			}
			fmt.Fprintf(&sb, " %s |", cell)
		}
		sb.WriteString("\n")
	}

	if len(snap.Gangs) > 0 {
		sb.WriteString("\n## Gangs\n\n")
		for _, g := range snap.Gangs {
			fmt.Fprintf(&sb, "- gang %d: %s\n", g.ID, describeMembers(g.Members))
		}
	}

	return sb.String()
}

func channelLabel(prefix string, idx int, levels []float64, mutes, solos []bool) string {
	label := fmt.Sprintf("**%s %d** %s", prefix, idx, formatDB(levels[idx]))
	if mutes[idx] {
		label += " MUTE"
	}
	if solos[idx] {
		label += " SOLO"
	}
	return label
}

func describeMembers(members []domain.GangMember) string {
	parts := make([]string, len(members))
	for i, m := range members {
		switch m.Kind {
		case domain.GangInput:
			parts[i] = fmt.Sprintf("in %d", m.Input)
		case domain.GangOutput:
			parts[i] = fmt.Sprintf("out %d", m.Output)
		default:
			parts[i] = fmt.Sprintf("xp %d/%d", m.Input, m.Output)
		}
	}
	return strings.Join(parts, ", ")
}

func formatDB(db float64) string {
	return fmt.Sprintf("%.1f dB", db)
}
