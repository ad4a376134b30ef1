package types

// Result is the structured output of one backtest run, consumed by the
// presentation adapters (HTTP API, CLI). All per-bar arrays are aligned and
// have one entry per retained bar.
type Result struct {
	Datetime     []string         `json:"datetime"`
	Open         []float64        `json:"open"`
	Close        []float64        `json:"close"`
	FastMA       []float64        `json:"fast_ma"`
	SlowMA       []float64        `json:"slow_ma"`
	Signal       []int            `json:"signal"`
	Crossovers   []CrossoverEvent `json:"crossovers"`
	MAKind       string           `json:"ma_kind"`
	Interval     string           `json:"interval"`
	Trades       []Trade          `json:"trades"`
	EquityCurve  []float64        `json:"equity_curve"`
	FinalBalance float64          `json:"final_balance"`
}

// ErrorResult is the error envelope surfaced to adapters. No partial results
// are returned alongside an error.
type ErrorResult struct {
	Error string `json:"error"`
}
