package domain

// Route is one (input, output) pair currently carrying signal: its
// resolved linear gain is greater than zero. GainDB is the dB equivalent
// of Gain and is always finite for an active route.
type Route struct {
	Input  int     `json:"input"`
	Output int     `json:"output"`
	Gain   float64 `json:"gain"`
	GainDB float64 `json:"gainDb"`
}
