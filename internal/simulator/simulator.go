// Package simulator replays crossover events against the bar series to
// determine stop-loss/take-profit exits, producing the trade ledger and the
// equity curve.
package simulator

import (
	"time"

	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/shopspring/decimal"
)

// Params configures one simulation pass.
type Params struct {
	// StopLossPoints is the adverse price distance that closes a position.
	StopLossPoints float64
	// TakeProfitPoints is the favorable price distance that closes a position.
	TakeProfitPoints float64
	// Inverse flips the direction of every trade.
	Inverse bool
	// StartingBalance is the initial account balance the equity curve grows from.
	StartingBalance float64
	// ContractMultiplier converts price points into account currency.
	ContractMultiplier float64
}

// barIndex provides O(1) timestamp lookup over a chronologically ordered
// bar series.
type barIndex struct {
	bars   []types.MarketData
	byTime map[int64]int
}

func newBarIndex(bars []types.MarketData) *barIndex {
	index := &barIndex{
		bars:   bars,
		byTime: make(map[int64]int, len(bars)),
	}
	for i, bar := range bars {
		index.byTime[bar.Time.UnixNano()] = i
	}

	return index
}

func (ix *barIndex) lookup(t time.Time) (int, bool) {
	i, ok := ix.byTime[t.UnixNano()]

	return i, ok
}

// Simulate replays the crossover events in chronological order against the
// bar series and returns the realized trades and the equity curve.
//
// Each event is evaluated independently against the full series: the
// simulator does not enforce mutual exclusion of concurrent open positions,
// so overlapping trades are possible. Adding exclusion would change the PnL
// results for signal-dense series.
//
// An event whose entry timestamp is not found in the series (e.g. due to an
// independent re-fetch misalignment) is skipped silently. An event whose
// forward scan reaches the end of the series without hitting either
// threshold is discarded, never force-closed.
func Simulate(bars []types.MarketData, events []types.CrossoverEvent, params Params) ([]types.Trade, types.EquityCurve) {
	index := newBarIndex(bars)
	balance := decimal.NewFromFloat(params.StartingBalance)

	var trades []types.Trade

	var curve types.EquityCurve

	for _, event := range events {
		entryIndex, ok := index.lookup(event.EntryTime)
		if !ok {
			continue
		}

		direction := event.Type
		if params.Inverse {
			direction = direction.Inverse()
		}

		sign := 1.0
		if direction == types.DirectionShort {
			sign = -1.0
		}

		entryPrice := bars[entryIndex].Open

		var (
			exitBar    *types.MarketData
			exitPrice  float64
			exitReason types.ExitReason
		)

		// Scan forward strictly after the entry bar. Take-profit is checked
		// before stop-loss within the same bar.
		for i := entryIndex + 1; i < len(bars); i++ {
			move := (bars[i].Close - entryPrice) * sign

			if move >= params.TakeProfitPoints {
				exitBar = &bars[i]
				exitPrice = entryPrice + sign*params.TakeProfitPoints
				exitReason = types.ExitReasonTakeProfit

				break
			}

			if move <= -params.StopLossPoints {
				exitBar = &bars[i]
				exitPrice = entryPrice - sign*params.StopLossPoints
				exitReason = types.ExitReasonStopLoss

				break
			}
		}

		if exitBar == nil {
			continue
		}

		pnl := (exitPrice - entryPrice) * sign * params.ContractMultiplier
		balance = balance.Add(decimal.NewFromFloat(pnl))
		runningBalance, _ := balance.Float64()

		trades = append(trades, types.Trade{
			EntryTime:  bars[entryIndex].Time,
			ExitTime:   exitBar.Time,
			EntryPrice: entryPrice,
			ExitPrice:  exitPrice,
			Direction:  direction,
			ExitReason: exitReason,
			PnL:        pnl,
		})
		curve = append(curve, runningBalance)
	}

	return trades, curve
}
