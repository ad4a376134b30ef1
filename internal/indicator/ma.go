package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/rxtech-lab/ma-crossover/pkg/errors"
)

// Kind selects the moving average flavor.
type Kind string

const (
	KindSMA Kind = "sma"
	KindEMA Kind = "ema"
)

// Validate returns an error when the kind is not sma or ema.
func (k Kind) Validate() error {
	switch k {
	case KindSMA, KindEMA:
		return nil
	default:
		return errors.Newf(errors.ErrCodeInvalidKind, "invalid ma_kind %q. Must be one of: [sma ema]", string(k))
	}
}

// Pair holds the fast and slow moving average values computed for one bar.
// A value is None while the average has not warmed up yet (the first
// window-1 bars of a simple average). Exponential averages are defined from
// the first bar onward.
type Pair struct {
	Fast optional.Option[float64]
	Slow optional.Option[float64]
}

// Compute calculates the fast and slow moving averages over the close price
// of the given bars. The output has exactly one Pair per input bar, aligned
// by index.
func Compute(bars []types.MarketData, fastWindow, slowWindow int, kind Kind) ([]Pair, error) {
	if fastWindow < 1 || slowWindow < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidWindow, "moving average windows must be positive, got fast=%d slow=%d", fastWindow, slowWindow)
	}

	if err := kind.Validate(); err != nil {
		return nil, err
	}

	if len(bars) < max(fastWindow, slowWindow) {
		return nil, errors.Newf(errors.ErrCodeInsufficientData, "not enough data for the selected MA windows. Only %d data points available", len(bars))
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	var fast, slow []optional.Option[float64]

	if kind == KindEMA {
		fast = exponentialSeries(closes, fastWindow)
		slow = exponentialSeries(closes, slowWindow)
	} else {
		fast = simpleSeries(closes, fastWindow)
		slow = simpleSeries(closes, slowWindow)
	}

	pairs := make([]Pair, len(bars))
	for i := range bars {
		pairs[i] = Pair{Fast: fast[i], Slow: slow[i]}
	}

	return pairs, nil
}

// simpleSeries computes a trailing simple moving average per index using a
// rolling sum. The first window-1 entries are None.
func simpleSeries(closes []float64, window int) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(closes))
	sum := 0.0

	for i, close := range closes {
		sum += close
		if i >= window {
			sum -= closes[i-window]
		}

		if i >= window-1 {
			out[i] = optional.Some(sum / float64(window))
		} else {
			out[i] = optional.None[float64]()
		}
	}

	return out
}

// exponentialSeries computes a recursive exponential moving average seeded
// with the first close value.
// Use alpha = 2/(span+1) to match pandas ewm implementation with adjust=False.
func exponentialSeries(closes []float64, window int) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(closes))
	if len(closes) == 0 {
		return out
	}

	alpha := 2.0 / float64(window+1)

	ema := closes[0]
	out[0] = optional.Some(ema)

	for i := 1; i < len(closes); i++ {
		ema = (closes[i] * alpha) + (ema * (1 - alpha))
		out[i] = optional.Some(ema)
	}

	return out
}
