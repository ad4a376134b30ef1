// Package detector derives directional position signals from a pair of
// moving averages and identifies the crossover events between them.
package detector

import (
	"github.com/rxtech-lab/ma-crossover/internal/indicator"
	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/rxtech-lab/ma-crossover/pkg/errors"
)

// Row is one retained bar together with its warmed-up average values and
// the signal derived from them.
type Row struct {
	Bar    types.MarketData
	Fast   float64
	Slow   float64
	Signal types.Signal
}

// FilterWarmup drops bars where either moving average is still undefined and
// computes the per-bar signal for the remainder. The warm-up rows are removed
// entirely, not merely flagged, so downstream indices refer to the retained
// series only.
func FilterWarmup(bars []types.MarketData, pairs []indicator.Pair) ([]Row, error) {
	if len(bars) != len(pairs) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "bar count %d does not match moving average pair count %d", len(bars), len(pairs))
	}

	rows := make([]Row, 0, len(bars))

	for i := range bars {
		if pairs[i].Fast.IsNone() || pairs[i].Slow.IsNone() {
			continue
		}

		fast := pairs[i].Fast.Unwrap()
		slow := pairs[i].Slow.Unwrap()

		rows = append(rows, Row{
			Bar:    bars[i],
			Fast:   fast,
			Slow:   slow,
			Signal: signalOf(fast, slow),
		})
	}

	return rows, nil
}

// signalOf is a pure pointwise function of the two average values.
func signalOf(fast, slow float64) types.Signal {
	switch {
	case fast > slow:
		return types.SignalLong
	case fast < slow:
		return types.SignalShort
	default:
		return types.SignalFlat
	}
}

// Detect reports the crossover events in the retained series. An event fires
// at index i when the signal changes between adjacent bars and the new signal
// is long or short; a transition into flat is not itself a tradeable event.
// The first and the last row never produce events: the first has no prior
// state to compare against and a trailing crossover has no next-bar open to
// enter on.
func Detect(rows []Row) []types.CrossoverEvent {
	var events []types.CrossoverEvent

	for i := 1; i < len(rows)-1; i++ {
		prev := rows[i-1].Signal
		curr := rows[i].Signal

		if prev == curr || curr == types.SignalFlat {
			continue
		}

		direction := types.DirectionLong
		if curr == types.SignalShort {
			direction = types.DirectionShort
		}

		events = append(events, types.CrossoverEvent{
			DetectedAt:    rows[i].Bar.Time,
			DetectedIndex: i,
			Type:          direction,
			FastValue:     rows[i].Fast,
			SlowValue:     rows[i].Slow,
			EntryTime:     rows[i+1].Bar.Time,
			EntryIndex:    i + 1,
			EntryOpen:     rows[i+1].Bar.Open,
			PrevClose:     rows[i].Bar.Close,
		})
	}

	return events
}
