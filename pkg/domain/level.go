package domain

import "math"

// Level bounds for every gain stage, in decibels. Anything at or below
// MinLevelDB is treated as silence.
const (
	MinLevelDB = -60.0
	MaxLevelDB = 12.0
)

// ClampLevel forces db into [MinLevelDB, MaxLevelDB]. Setters clamp rather
// than reject, so no mutation can store an out-of-range level.
func ClampLevel(db float64) float64 {
	if db < MinLevelDB {
		return MinLevelDB
	}
	if db > MaxLevelDB {
		return MaxLevelDB
	}
	return db
}

// DBToLinear converts a decibel level to linear gain. Levels at or below
// MinLevelDB map to exactly zero, not a small positive gain.
func DBToLinear(db float64) float64 {
	if db <= MinLevelDB {
		return 0
	}
	return math.Pow(10, db/20)
}

// GainToDB converts linear gain to decibels. Non-positive gain maps to
// negative infinity.
func GainToDB(gain float64) float64 {
	if gain <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(gain)
}
