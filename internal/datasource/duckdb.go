package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/ma-crossover/internal/logger"
	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/rxtech-lab/ma-crossover/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBSource reads bars from a DuckDB view over a Parquet or CSV file.
type DuckDBSource struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewDuckDBSource opens an in-memory DuckDB instance and creates the
// market_data view over the given data file.
func NewDuckDBSource(dataPath string, log *logger.Logger) (*DuckDBSource, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB", err)
	}

	source := &DuckDBSource{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	if err := source.initialize(dataPath); err != nil {
		db.Close()

		return nil, err
	}

	return source, nil
}

// initialize creates the market_data view and verifies the price columns.
func (d *DuckDBSource) initialize(dataPath string) error {
	d.log.Debug("initializing DuckDB data source", zap.String("path", dataPath))

	// Raw SQL as squirrel does not support CREATE VIEW.
	reader := "read_parquet"
	if strings.HasSuffix(strings.ToLower(dataPath), ".csv") {
		reader = "read_csv_auto"
	}

	query := fmt.Sprintf(`
		CREATE OR REPLACE VIEW market_data AS
		SELECT * FROM %s('%s');
	`, reader, dataPath)

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to create view over %s", dataPath)
	}

	rows, err := d.db.Query("SELECT * FROM market_data LIMIT 0")
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to inspect market_data view", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to read view columns", err)
	}

	if err := rows.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to inspect market_data view", err)
	}

	lowered := make([]string, len(columns))
	for i, column := range columns {
		lowered[i] = strings.ToLower(column)
	}

	var missing []string

	for _, required := range []string{"time", "open", "close"} {
		if !slices.Contains(lowered, required) {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return errors.Newf(errors.ErrCodeMissingFields, "missing columns in data: %v", missing)
	}

	return nil
}

// Fetch implements BarSource. The interval parameter is not used: stored
// data is already sampled at a fixed interval by the download pipeline.
func (d *DuckDBSource) Fetch(ctx context.Context, symbol string, start, end time.Time, _ types.Interval) ([]types.MarketData, error) {
	builder := d.sq.
		Select("time", "symbol", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(squirrel.GtOrEq{"time": start}).
		Where(squirrel.LtOrEq{"time": end}).
		OrderBy("time ASC")

	if symbol != "" {
		builder = builder.Where(squirrel.Eq{"symbol": symbol})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	var bars []types.MarketData

	for rows.Next() {
		var bar types.MarketData
		if err := rows.Scan(&bar.Time, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to scan market data row", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate market data rows", err)
	}

	if len(bars) == 0 {
		return nil, errors.New(errors.ErrCodeNoData, "no data found for given period")
	}

	return bars, nil
}

// Close releases the underlying database handle.
func (d *DuckDBSource) Close() error {
	return d.db.Close()
}
