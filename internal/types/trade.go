package types

import "time"

// ExitReason tells which threshold closed a simulated trade.
type ExitReason string

const (
	ExitReasonTakeProfit ExitReason = "TP"
	ExitReasonStopLoss   ExitReason = "SL"
)

// Trade is a realized simulated trade. Only trades that hit a stop-loss or
// take-profit threshold before the end of the series are recorded; positions
// still open at series end are discarded.
type Trade struct {
	EntryTime  time.Time  `json:"entry_time" csv:"entry_time"`
	ExitTime   time.Time  `json:"exit_time" csv:"exit_time"`
	EntryPrice float64    `json:"entry_price" csv:"entry_price"`
	ExitPrice  float64    `json:"exit_price" csv:"exit_price"`
	Direction  Direction  `json:"type" csv:"type"`
	ExitReason ExitReason `json:"result" csv:"result"`
	// PnL is (exit - entry) * contract multiplier for long trades, with the
	// sign inverted for short trades.
	PnL float64 `json:"pnl" csv:"pnl"`
}

// EquityCurve is the running account balance, one value appended per
// realized trade. The starting balance is not part of the sequence.
type EquityCurve []float64
