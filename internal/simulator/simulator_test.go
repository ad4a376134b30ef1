package simulator

import (
	"testing"
	"time"

	"github.com/rxtech-lab/ma-crossover/internal/detector"
	"github.com/rxtech-lab/ma-crossover/internal/indicator"
	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/stretchr/testify/suite"
)

type SimulatorTestSuite struct {
	suite.Suite
}

func TestSimulatorSuite(t *testing.T) {
	suite.Run(t, new(SimulatorTestSuite))
}

func simBars(prices ...[2]float64) []types.MarketData {
	base := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	bars := make([]types.MarketData, len(prices))

	for i, price := range prices {
		bars[i] = types.MarketData{
			Time:  base.Add(time.Duration(i) * time.Hour),
			Open:  price[0],
			Close: price[1],
		}
	}

	return bars
}

// scenario returns the retained bars and the detected crossover events for a
// fast=1/slow=2 SMA series whose first long event hits take-profit and whose
// remaining events run off the end of the series.
func (suite *SimulatorTestSuite) scenario() ([]types.MarketData, []types.CrossoverEvent) {
	bars := simBars(
		[2]float64{100, 100},
		[2]float64{100, 100},
		[2]float64{101, 105},
		[2]float64{103, 103},
		[2]float64{104, 160},
		[2]float64{159, 150},
	)

	pairs, err := indicator.Compute(bars, 1, 2, indicator.KindSMA)
	suite.Require().NoError(err)

	rows, err := detector.FilterWarmup(bars, pairs)
	suite.Require().NoError(err)

	retained := make([]types.MarketData, len(rows))
	for i, row := range rows {
		retained[i] = row.Bar
	}

	return retained, detector.Detect(rows)
}

func defaultParams() Params {
	return Params{
		StopLossPoints:     50,
		TakeProfitPoints:   50,
		Inverse:            false,
		StartingBalance:    10000,
		ContractMultiplier: 1,
	}
}

func (suite *SimulatorTestSuite) TestTakeProfitExit() {
	bars, events := suite.scenario()
	suite.Require().Len(events, 3)

	trades, curve := Simulate(bars, events, defaultParams())

	// The long event entered at open 103 exits on the 160 close (move 57);
	// the other two events never hit a threshold and are discarded.
	suite.Require().Len(trades, 1)

	trade := trades[0]
	suite.Equal(types.DirectionLong, trade.Direction)
	suite.Equal(types.ExitReasonTakeProfit, trade.ExitReason)
	suite.InDelta(103.0, trade.EntryPrice, 1e-9)
	suite.InDelta(153.0, trade.ExitPrice, 1e-9)
	suite.InDelta(50.0, trade.PnL, 1e-9)

	suite.Equal(types.EquityCurve{10050.0}, curve)
}

func (suite *SimulatorTestSuite) TestPnLIsAlwaysExactlyAtThreshold() {
	bars, events := suite.scenario()

	params := defaultParams()
	params.ContractMultiplier = 20

	trades, _ := Simulate(bars, events, params)

	for _, trade := range trades {
		expectedWin := params.TakeProfitPoints * params.ContractMultiplier
		expectedLoss := params.StopLossPoints * params.ContractMultiplier

		if trade.ExitReason == types.ExitReasonTakeProfit {
			suite.InDelta(expectedWin, trade.PnL, 1e-9)
		} else {
			suite.InDelta(-expectedLoss, trade.PnL, 1e-9)
		}
	}
}

func (suite *SimulatorTestSuite) TestInverseFlipsDirectionAndPnL() {
	bars, events := suite.scenario()

	params := defaultParams()
	params.Inverse = true

	trades, curve := Simulate(bars, events, params)

	// The same entry now runs short into the rising close and stops out at
	// the same exit price, with the PnL sign inverted.
	suite.Require().Len(trades, 1)

	trade := trades[0]
	suite.Equal(types.DirectionShort, trade.Direction)
	suite.Equal(types.ExitReasonStopLoss, trade.ExitReason)
	suite.InDelta(153.0, trade.ExitPrice, 1e-9)
	suite.InDelta(-50.0, trade.PnL, 1e-9)

	suite.Equal(types.EquityCurve{9950.0}, curve)
}

func (suite *SimulatorTestSuite) TestStopLossExit() {
	bars := simBars(
		[2]float64{100, 100},
		[2]float64{100, 40},
	)

	events := []types.CrossoverEvent{{
		Type:      types.DirectionLong,
		EntryTime: bars[0].Time,
	}}

	trades, curve := Simulate(bars, events, defaultParams())

	suite.Require().Len(trades, 1)
	suite.Equal(types.ExitReasonStopLoss, trades[0].ExitReason)
	suite.InDelta(50.0, trades[0].ExitPrice, 1e-9)
	suite.InDelta(-50.0, trades[0].PnL, 1e-9)
	suite.Equal(types.EquityCurve{9950.0}, curve)
}

func (suite *SimulatorTestSuite) TestMissingEntryTimestampIsSkippedSilently() {
	bars, events := suite.scenario()

	// Shift every entry timestamp off the grid, as if the series had been
	// re-fetched with a different alignment.
	for i := range events {
		events[i].EntryTime = events[i].EntryTime.Add(time.Minute)
	}

	trades, curve := Simulate(bars, events, defaultParams())

	suite.Empty(trades)
	suite.Empty(curve)
}

func (suite *SimulatorTestSuite) TestOpenPositionAtSeriesEndIsDiscarded() {
	bars := simBars(
		[2]float64{100, 100},
		[2]float64{100, 110},
		[2]float64{110, 95},
	)

	events := []types.CrossoverEvent{{
		Type:      types.DirectionLong,
		EntryTime: bars[0].Time,
	}}

	// Moves of +10 and -5 never reach either threshold.
	trades, curve := Simulate(bars, events, defaultParams())

	suite.Empty(trades)
	suite.Empty(curve)
}

func (suite *SimulatorTestSuite) TestNoEventsYieldsEmptyOutputs() {
	bars, _ := suite.scenario()

	trades, curve := Simulate(bars, nil, defaultParams())

	suite.Empty(trades)
	suite.Empty(curve)
}

func (suite *SimulatorTestSuite) TestIdempotence() {
	bars, events := suite.scenario()

	trades1, curve1 := Simulate(bars, events, defaultParams())
	trades2, curve2 := Simulate(bars, events, defaultParams())

	suite.Equal(trades1, trades2)
	suite.Equal(curve1, curve2)
}

func (suite *SimulatorTestSuite) TestEquityCurveAccumulates() {
	// Two long events that both stop out on the following bar.
	bars := simBars(
		[2]float64{100, 100},
		[2]float64{100, 40},
		[2]float64{100, 40},
	)

	events := []types.CrossoverEvent{
		{Type: types.DirectionLong, EntryTime: bars[0].Time},
		{Type: types.DirectionLong, EntryTime: bars[1].Time},
	}

	params := defaultParams()
	params.ContractMultiplier = 2

	trades, curve := Simulate(bars, events, params)

	suite.Require().Len(trades, 2)
	suite.Equal(types.EquityCurve{9900.0, 9800.0}, curve)
}
