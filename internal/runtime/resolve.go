package runtime

import "github.com/aretw0/patchbay/pkg/domain"

// CalculateGain resolves the effective linear gain for one (input, output)
// pair as a pure function of current state. Mutes win over everything,
// then solo exclusivity on each axis, then connection state; only when all
// of those pass do the four level stages multiply:
//
//	gain = lin(main) * lin(inputLevel) * lin(outputLevel) * lin(crosspoint)
//
// With every stage at the +12 dB ceiling the product reaches about 251;
// that headroom is intentional. Out-of-range indices resolve to 0.
func (m *Matrix) CalculateGain(input, output int) float64 {
	if !m.validInput(input) || !m.validOutput(output) {
		return 0
	}
	if m.inputMutes[input] || m.outputMutes[output] {
		return 0
	}
	if m.anyInputSolo() && !m.inputSolos[input] {
		return 0
	}
	if m.anyOutputSolo() && !m.outputSolos[output] {
		return 0
	}
	xpLevel, connected := m.crosspoints[input][output].Level()
	if !connected {
		return 0
	}
	return domain.DBToLinear(m.mainLevel) *
		domain.DBToLinear(m.inputLevels[input]) *
		domain.DBToLinear(m.outputLevels[output]) *
		domain.DBToLinear(xpLevel)
}

func (m *Matrix) anyInputSolo() bool {
	for _, soloed := range m.inputSolos {
		if soloed {
			return true
		}
	}
	return false
}

func (m *Matrix) anyOutputSolo() bool {
	for _, soloed := range m.outputSolos {
		if soloed {
			return true
		}
	}
	return false
}

// ActiveRoutes lists every pair currently carrying signal, row-major:
// inputs outer, outputs inner.
func (m *Matrix) ActiveRoutes() []domain.Route {
	var routes []domain.Route
	for input := 0; input < m.numInputs; input++ {
		for output := 0; output < m.numOutputs; output++ {
			if gain := m.CalculateGain(input, output); gain > 0 {
				routes = append(routes, domain.Route{
					Input:  input,
					Output: output,
					Gain:   gain,
					GainDB: domain.GainToDB(gain),
				})
			}
		}
	}
	return routes
}
