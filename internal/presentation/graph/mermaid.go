package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/patchbay/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of the desk's routing:
// inputs on the left, outputs on the right, one edge per connected
// crosspoint. Edges on an active route are solid and labelled with the
// resolved gain; connected points that pass no signal (muted, or losing
// a solo election) are dotted and labelled with the stored crosspoint
// level.
func GenerateMermaid(snap *domain.Snapshot, routes []domain.Route) string {
	activeGain := make(map[[2]int]float64, len(routes))
	for _, r := range routes {
		activeGain[[2]int{r.Input, r.Output}] = r.GainDB
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")
	fmt.Fprintf(&sb, "    %%%% desk %q, main %.1f dB\n", snap.Name, snap.MainLevel)

	for i := 0; i < snap.NumInputs; i++ {
		fmt.Fprintf(&sb, "    in%d([\"in %d %s\"])\n",
			i, i, nodeSuffix(snap.InputLevels[i], snap.InputMutes[i], snap.InputSolos[i]))
	}
	for o := 0; o < snap.NumOutputs; o++ {
		fmt.Fprintf(&sb, "    out%d[[\"out %d %s\"]]\n",
			o, o, nodeSuffix(snap.OutputLevels[o], snap.OutputMutes[o], snap.OutputSolos[o]))
	}

	for i := 0; i < snap.NumInputs; i++ {
		for o := 0; o < snap.NumOutputs; o++ {
			lvl := snap.Crosspoints[i][o]
			if lvl == nil {
				continue
			}
			if gainDB, ok := activeGain[[2]int{i, o}]; ok {
				fmt.Fprintf(&sb, "    in%d -- \"%.1f dB\" --> out%d\n", i, gainDB, o)
			} else {
				fmt.Fprintf(&sb, "    in%d -. \"%.1f dB\" .-> out%d\n", i, *lvl, o)
			}
		}
	}

	sb.WriteString("\n    %% Channel Flag Styles\n")
	// Force black text (color:#000) for high contrast regardless of theme
	sb.WriteString("    classDef muted fill:#eceff1,stroke:#90a4ae,color:#000;\n")
	sb.WriteString("    classDef soloed fill:#fff8e1,stroke:#f9a825,stroke-width:2px,color:#000;\n")
	for i := 0; i < snap.NumInputs; i++ {
		writeClass(&sb, fmt.Sprintf("in%d", i), snap.InputMutes[i], snap.InputSolos[i])
	}
	for o := 0; o < snap.NumOutputs; o++ {
		writeClass(&sb, fmt.Sprintf("out%d", o), snap.OutputMutes[o], snap.OutputSolos[o])
	}

	return sb.String()
}

func nodeSuffix(level float64, muted, soloed bool) string {
	s := fmt.Sprintf("%.1f dB", level)
	if muted {
		s += " 🔇"
	}
	if soloed {
		s += " S"
	}
	return s
}

func writeClass(sb *strings.Builder, id string, muted, soloed bool) {
	if muted {
		fmt.Fprintf(sb, "    class %s muted;\n", id)
	}
	if soloed {
		fmt.Fprintf(sb, "    class %s soloed;\n", id)
	}
}
