// Package datasource supplies ordered price bars to the backtest engine.
package datasource

import (
	"context"
	"time"

	"github.com/rxtech-lab/ma-crossover/internal/types"
)

// BarSource supplies ordered price bars for a symbol over a date range at a
// given sampling interval. Implementations return an ErrCodeNoData error
// when the range yields nothing and an ErrCodeMissingFields error when the
// open or close price columns are absent from the underlying data.
type BarSource interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time, interval types.Interval) ([]types.MarketData, error)
}
