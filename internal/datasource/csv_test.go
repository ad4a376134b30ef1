package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/ma-crossover/internal/logger"
	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/rxtech-lab/ma-crossover/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CSVSourceTestSuite struct {
	suite.Suite
}

func TestCSVSourceSuite(t *testing.T) {
	suite.Run(t, new(CSVSourceTestSuite))
}

func (suite *CSVSourceTestSuite) writeFile(content string) string {
	path := filepath.Join(suite.T().TempDir(), "bars.csv")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o644))

	return path
}

func (suite *CSVSourceTestSuite) newSource(content string) *CSVSource {
	return NewCSVSource(suite.writeFile(content), logger.NewNopLogger())
}

const sampleCSV = `id,symbol,time,open,high,low,close,volume
1,NQ,2024-04-01T11:00:00Z,102,103,101,102.5,900
2,NQ,2024-04-01T09:00:00Z,100,101,99,100.5,1000
3,NQ,2024-04-01T10:00:00Z,101,102,100,101.5,1100
4,ES,2024-04-01T09:00:00Z,5000,5001,4999,5000.5,500
`

func (suite *CSVSourceTestSuite) TestFetchFiltersAndSorts() {
	source := suite.newSource(sampleCSV)

	start := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	bars, err := source.Fetch(context.Background(), "NQ", start, end, types.IntervalOneHour)
	suite.Require().NoError(err)

	// The ES row is excluded and the rows come back in time order even
	// though the file is shuffled.
	suite.Require().Len(bars, 3)
	suite.True(bars[0].Time.Before(bars[1].Time))
	suite.True(bars[1].Time.Before(bars[2].Time))
	suite.InDelta(100.5, bars[0].Close, 1e-9)
	suite.InDelta(102.5, bars[2].Close, 1e-9)
}

func (suite *CSVSourceTestSuite) TestFetchRangeIsInclusive() {
	source := suite.newSource(sampleCSV)

	edge := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)

	bars, err := source.Fetch(context.Background(), "NQ", edge, edge, types.IntervalOneHour)
	suite.Require().NoError(err)
	suite.Len(bars, 1)
	suite.Equal(edge, bars[0].Time.UTC())
}

func (suite *CSVSourceTestSuite) TestFetchNoData() {
	source := suite.newSource(sampleCSV)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := source.Fetch(context.Background(), "NQ", start, end, types.IntervalOneHour)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNoData))
}

func (suite *CSVSourceTestSuite) TestFetchMissingColumns() {
	source := suite.newSource("time,open,volume\n2024-04-01T09:00:00Z,100,1000\n")

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	_, err := source.Fetch(context.Background(), "", start, end, types.IntervalOneHour)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingFields))
	suite.Contains(err.Error(), "close")
}

func (suite *CSVSourceTestSuite) TestFetchMissingFile() {
	source := NewCSVSource(filepath.Join(suite.T().TempDir(), "absent.csv"), logger.NewNopLogger())

	_, err := source.Fetch(context.Background(), "", time.Time{}, time.Now(), types.IntervalOneHour)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))
}

func (suite *CSVSourceTestSuite) TestFetchEmptySymbolMatchesAll() {
	source := suite.newSource(sampleCSV)

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	bars, err := source.Fetch(context.Background(), "", start, end, types.IntervalOneHour)
	suite.Require().NoError(err)
	suite.Len(bars, 4)
}

func (suite *CSVSourceTestSuite) TestFetchCancelledContext() {
	source := suite.newSource(sampleCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.Fetch(ctx, "NQ", time.Time{}, time.Now(), types.IntervalOneHour)
	suite.ErrorIs(err, context.Canceled)
}
