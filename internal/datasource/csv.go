package datasource

import (
	"context"
	stdcsv "encoding/csv"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/ma-crossover/internal/logger"
	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/rxtech-lab/ma-crossover/pkg/errors"
	"go.uber.org/zap"
)

// CSVSource reads bars from a CSV file with a header row. The whole file is
// loaded into an in-memory cache on first use and filtered per fetch.
type CSVSource struct {
	FilePath string

	log   *logger.Logger
	cache []types.MarketData
}

// NewCSVSource creates a CSVSource for the given file path.
func NewCSVSource(filePath string, log *logger.Logger) *CSVSource {
	return &CSVSource{
		FilePath: filePath,
		log:      log,
		cache:    nil,
	}
}

// Fetch implements BarSource. The interval parameter is not used: a CSV file
// is already sampled at a fixed interval by whoever produced it.
func (s *CSVSource) Fetch(ctx context.Context, symbol string, start, end time.Time, _ types.Interval) ([]types.MarketData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	var bars []types.MarketData

	for _, bar := range s.cache {
		if symbol != "" && bar.Symbol != "" && bar.Symbol != symbol {
			continue
		}

		if bar.Time.Before(start) || bar.Time.After(end) {
			continue
		}

		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, errors.New(errors.ErrCodeNoData, "no data found for given period")
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})

	return bars, nil
}

// load populates the cache, verifying the required price columns first.
func (s *CSVSource) load() error {
	if s.cache != nil {
		return nil
	}

	content, err := os.ReadFile(s.FilePath)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open CSV file %s", s.FilePath)
	}

	if err := checkRequiredColumns(content); err != nil {
		return err
	}

	if err := gocsv.UnmarshalBytes(content, &s.cache); err != nil {
		return errors.Wrap(errors.ErrCodeDataParseFailed, "failed to unmarshal CSV", err)
	}

	s.log.Debug("loaded market data from CSV",
		zap.String("path", s.FilePath),
		zap.Int("rows", len(s.cache)),
	)

	return nil
}

// checkRequiredColumns verifies the header contains the price columns the
// pipeline depends on.
func checkRequiredColumns(content []byte) error {
	reader := stdcsv.NewReader(strings.NewReader(string(content)))

	header, err := reader.Read()
	if err != nil {
		return errors.Wrap(errors.ErrCodeDataParseFailed, "failed to read CSV header", err)
	}

	present := make(map[string]bool, len(header))
	for _, column := range header {
		present[strings.ToLower(strings.TrimSpace(column))] = true
	}

	var missing []string

	for _, required := range []string{"time", "open", "close"} {
		if !present[required] {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return errors.Newf(errors.ErrCodeMissingFields, "missing columns in data: %v", missing)
	}

	return nil
}
