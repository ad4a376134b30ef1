package types

// Signal is the per-bar directional position state derived from comparing
// the fast moving average against the slow one.
type Signal int

const (
	// SignalShort indicates the fast average is below the slow average.
	SignalShort Signal = -1
	// SignalFlat indicates equal averages or an undefined comparison.
	SignalFlat Signal = 0
	// SignalLong indicates the fast average is above the slow average.
	SignalLong Signal = 1
)

func (s Signal) String() string {
	switch s {
	case SignalLong:
		return "long"
	case SignalShort:
		return "short"
	default:
		return "flat"
	}
}

// Direction is the side of a simulated trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Inverse returns the opposite direction.
func (d Direction) Inverse() Direction {
	if d == DirectionLong {
		return DirectionShort
	}

	return DirectionLong
}
