// Package backtest wires the moving average engine, the crossover detector
// and the trade simulator into the single canonical pipeline shared by the
// CLI and the HTTP API.
package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/ma-crossover/internal/datasource"
	"github.com/rxtech-lab/ma-crossover/internal/detector"
	"github.com/rxtech-lab/ma-crossover/internal/indicator"
	"github.com/rxtech-lab/ma-crossover/internal/logger"
	"github.com/rxtech-lab/ma-crossover/internal/simulator"
	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/rxtech-lab/ma-crossover/pkg/errors"
	"go.uber.org/zap"
)

// Request describes one backtest invocation. Start and End bound the bars
// included in the result; the engine fetches additional lookback before
// Start so the averages are warmed up at the first reported bar.
type Request struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Config Config
}

// Engine runs the crossover backtest pipeline. Each run is independent and
// stateless aside from its inputs; the pipeline is a single-threaded batch
// pass over one bounded in-memory bar series.
type Engine struct {
	source datasource.BarSource
	log    *logger.Logger
}

// NewEngine creates an Engine reading bars from the given source.
func NewEngine(source datasource.BarSource, log *logger.Logger) *Engine {
	return &Engine{
		source: source,
		log:    log,
	}
}

// Run executes the pipeline: fetch with warm-up lookback, compute the two
// moving averages, drop warm-up rows, detect crossovers and simulate trades.
// Errors are returned as-is for the adapter to surface; no partial results
// accompany an error.
func (e *Engine) Run(ctx context.Context, req Request) (*types.Result, error) {
	config := req.Config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()

	// Extend the fetch start so the largest window is warmed up by the
	// requested start (one interval of history per window bar).
	lookback := time.Duration(config.MaxWindow()) * config.Interval.Duration()
	dataStart := req.Start.Add(-lookback)

	e.log.Info("starting backtest run",
		zap.String("run_id", runID),
		zap.String("symbol", req.Symbol),
		zap.Time("start", req.Start),
		zap.Time("end", req.End),
		zap.String("interval", string(config.Interval)),
		zap.String("ma_kind", string(config.MAKind)),
	)

	bars, err := e.source.Fetch(ctx, req.Symbol, dataStart, req.End, config.Interval)
	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		return nil, errors.New(errors.ErrCodeNoData, "no data found for given period")
	}

	pairs, err := indicator.Compute(bars, config.FastWindow, config.SlowWindow, config.MAKind)
	if err != nil {
		return nil, err
	}

	rows, err := detector.FilterWarmup(bars, pairs)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyAfterWarmup, "not enough valid data after calculating moving averages")
	}

	// Keep only bars from the requested start onward; the extra lookback
	// exists purely to warm the averages up.
	retained := make([]detector.Row, 0, len(rows))

	for _, row := range rows {
		if !row.Bar.Time.Before(req.Start) {
			retained = append(retained, row)
		}
	}

	events := detector.Detect(retained)

	retainedBars := make([]types.MarketData, len(retained))
	for i, row := range retained {
		retainedBars[i] = row.Bar
	}

	trades, curve := simulator.Simulate(retainedBars, events, simulator.Params{
		StopLossPoints:     config.StopLossPoints,
		TakeProfitPoints:   config.TakeProfitPoints,
		Inverse:            config.Inverse,
		StartingBalance:    config.StartingBalance,
		ContractMultiplier: config.ContractMultiplier,
	})

	e.log.Info("backtest run finished",
		zap.String("run_id", runID),
		zap.Int("bars", len(retained)),
		zap.Int("crossovers", len(events)),
		zap.Int("trades", len(trades)),
	)

	return buildResult(retained, events, trades, curve, config), nil
}

// buildResult flattens the retained rows and simulation output into the
// structured result consumed by the presentation adapters.
func buildResult(rows []detector.Row, events []types.CrossoverEvent, trades []types.Trade, curve types.EquityCurve, config Config) *types.Result {
	result := &types.Result{
		Datetime:     make([]string, len(rows)),
		Open:         make([]float64, len(rows)),
		Close:        make([]float64, len(rows)),
		FastMA:       make([]float64, len(rows)),
		SlowMA:       make([]float64, len(rows)),
		Signal:       make([]int, len(rows)),
		Crossovers:   events,
		MAKind:       string(config.MAKind),
		Interval:     string(config.Interval),
		Trades:       trades,
		EquityCurve:  curve,
		FinalBalance: config.StartingBalance,
	}

	for i, row := range rows {
		result.Datetime[i] = row.Bar.Time.Format(time.RFC3339)
		result.Open[i] = row.Bar.Open
		result.Close[i] = row.Bar.Close
		result.FastMA[i] = row.Fast
		result.SlowMA[i] = row.Slow
		result.Signal[i] = int(row.Signal)
	}

	if len(curve) > 0 {
		result.FinalBalance = curve[len(curve)-1]
	}

	return result
}
