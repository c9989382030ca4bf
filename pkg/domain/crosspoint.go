package domain

// Crosspoint is the gain control between one input and one output. It is
// either disconnected, contributing zero gain, or connected at a level in
// the usual dB range. Disconnected is a distinct state, not a level:
// a crosspoint connected at MinLevelDB is still connected.
//
// The zero value is disconnected.
type Crosspoint struct {
	connected bool
	level     float64
}

// Disconnected returns a crosspoint carrying no signal.
func Disconnected() Crosspoint { return Crosspoint{} }

// ConnectedAt returns a crosspoint connected at db, clamped to the level
// range.
func ConnectedAt(db float64) Crosspoint {
	return Crosspoint{connected: true, level: ClampLevel(db)}
}

// Connected reports whether the crosspoint carries signal at all.
func (c Crosspoint) Connected() bool { return c.connected }

// Level returns the connected level in dB. The second return is false when
// the crosspoint is disconnected, in which case the level is meaningless.
func (c Crosspoint) Level() (float64, bool) {
	return c.level, c.connected
}

// LevelPtr returns the wire form of the crosspoint: nil when disconnected,
// otherwise a pointer to its dB level.
func (c Crosspoint) LevelPtr() *float64 {
	if !c.connected {
		return nil
	}
	level := c.level
	return &level
}

// CrosspointFromPtr rebuilds a crosspoint from its wire form.
func CrosspointFromPtr(db *float64) Crosspoint {
	if db == nil {
		return Disconnected()
	}
	return ConnectedAt(*db)
}
