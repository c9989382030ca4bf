package domain

// Snapshot is a deep, self-contained copy of a matrix's full state.
// Crosspoint cells use nil for disconnected. NumInputs and NumOutputs
// record the dimensions the snapshot was taken at; restoring never resizes
// the target matrix, whose own dimensions stay authoritative.
type Snapshot struct {
	Name         string       `json:"name" yaml:"name" msgpack:"name"`
	NumInputs    int          `json:"numInputs" yaml:"numInputs" msgpack:"numInputs"`
	NumOutputs   int          `json:"numOutputs" yaml:"numOutputs" msgpack:"numOutputs"`
	MainLevel    float64      `json:"mainLevel" yaml:"mainLevel" msgpack:"mainLevel"`
	InputLevels  []float64    `json:"inputLevels" yaml:"inputLevels" msgpack:"inputLevels"`
	OutputLevels []float64    `json:"outputLevels" yaml:"outputLevels" msgpack:"outputLevels"`
	Crosspoints  [][]*float64 `json:"crosspoints" yaml:"crosspoints" msgpack:"crosspoints"`
	InputMutes   []bool       `json:"inputMutes" yaml:"inputMutes" msgpack:"inputMutes"`
	OutputMutes  []bool       `json:"outputMutes" yaml:"outputMutes" msgpack:"outputMutes"`
	InputSolos   []bool       `json:"inputSolos" yaml:"inputSolos" msgpack:"inputSolos"`
	OutputSolos  []bool       `json:"outputSolos" yaml:"outputSolos" msgpack:"outputSolos"`
	Gangs        []Gang       `json:"gangs,omitempty" yaml:"gangs,omitempty" msgpack:"gangs"`
}

// NewSnapshot allocates a zeroed snapshot for the given dimensions: all
// levels 0 dB, every crosspoint disconnected, nothing muted or soloed,
// no gangs.
func NewSnapshot(numInputs, numOutputs int) *Snapshot {
	s := &Snapshot{
		NumInputs:    numInputs,
		NumOutputs:   numOutputs,
		InputLevels:  make([]float64, numInputs),
		OutputLevels: make([]float64, numOutputs),
		Crosspoints:  make([][]*float64, numInputs),
		InputMutes:   make([]bool, numInputs),
		OutputMutes:  make([]bool, numOutputs),
		InputSolos:   make([]bool, numInputs),
		OutputSolos:  make([]bool, numOutputs),
	}
	for i := range s.Crosspoints {
		s.Crosspoints[i] = make([]*float64, numOutputs)
	}
	return s
}

// Clone returns a deep copy sharing no memory with the receiver.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Name:         s.Name,
		NumInputs:    s.NumInputs,
		NumOutputs:   s.NumOutputs,
		MainLevel:    s.MainLevel,
		InputLevels:  append([]float64(nil), s.InputLevels...),
		OutputLevels: append([]float64(nil), s.OutputLevels...),
		InputMutes:   append([]bool(nil), s.InputMutes...),
		OutputMutes:  append([]bool(nil), s.OutputMutes...),
		InputSolos:   append([]bool(nil), s.InputSolos...),
		OutputSolos:  append([]bool(nil), s.OutputSolos...),
		Gangs:        CloneGangs(s.Gangs),
	}
	if s.Crosspoints != nil {
		out.Crosspoints = make([][]*float64, len(s.Crosspoints))
		for i, row := range s.Crosspoints {
			out.Crosspoints[i] = make([]*float64, len(row))
			for o, cell := range row {
				if cell != nil {
					level := *cell
					out.Crosspoints[i][o] = &level
				}
			}
		}
	}
	return out
}

// Normalized reshapes the snapshot to the given dimensions: short arrays
// zero-fill, long ones truncate, and every level is clamped into range.
// Missing crosspoint cells come back disconnected. The receiver is left
// untouched.
func (s *Snapshot) Normalized(numInputs, numOutputs int) *Snapshot {
	out := NewSnapshot(numInputs, numOutputs)
	out.Name = s.Name
	out.MainLevel = ClampLevel(s.MainLevel)
	for i := 0; i < numInputs && i < len(s.InputLevels); i++ {
		out.InputLevels[i] = ClampLevel(s.InputLevels[i])
	}
	for o := 0; o < numOutputs && o < len(s.OutputLevels); o++ {
		out.OutputLevels[o] = ClampLevel(s.OutputLevels[o])
	}
	for i := 0; i < numInputs && i < len(s.Crosspoints); i++ {
		row := s.Crosspoints[i]
		for o := 0; o < numOutputs && o < len(row); o++ {
			if row[o] != nil {
				level := ClampLevel(*row[o])
				out.Crosspoints[i][o] = &level
			}
		}
	}
	copyFlags(out.InputMutes, s.InputMutes)
	copyFlags(out.OutputMutes, s.OutputMutes)
	copyFlags(out.InputSolos, s.InputSolos)
	copyFlags(out.OutputSolos, s.OutputSolos)
	out.Gangs = CloneGangs(s.Gangs)
	return out
}

func copyFlags(dst, src []bool) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] = src[i]
	}
}
