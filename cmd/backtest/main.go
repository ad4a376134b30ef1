package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rxtech-lab/ma-crossover/internal/backtest"
	"github.com/rxtech-lab/ma-crossover/internal/datasource"
	"github.com/rxtech-lab/ma-crossover/internal/logger"
	"github.com/urfave/cli/v3"
)

// runAction is the core logic executed by the CLI command. It builds the
// data source, runs the backtest pipeline and prints the result as JSON.
func runAction(ctx context.Context, cmd *cli.Command) error {
	dataPath := cmd.String("data")
	symbol := cmd.String("symbol")
	startDate := cmd.Timestamp("start")
	endDate := cmd.Timestamp("end")

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	config := backtest.DefaultConfig()

	if configPath := cmd.String("config"); configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		config, err = backtest.ParseConfig(content)
		if err != nil {
			return err
		}
	}

	source, closeSource, err := newBarSource(dataPath, appLogger)
	if err != nil {
		return err
	}
	defer closeSource()

	engine := backtest.NewEngine(source, appLogger)

	result, err := engine.Run(ctx, backtest.Request{
		Symbol: symbol,
		Start:  startDate,
		End:    endDate,
		Config: config,
	})
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if outputPath := cmd.String("output"); outputPath != "" {
		return os.WriteFile(outputPath, output, 0o644)
	}

	fmt.Println(string(output))

	return nil
}

// newBarSource picks the data source implementation from the file extension:
// CSV files are read directly, everything else goes through DuckDB.
func newBarSource(dataPath string, appLogger *logger.Logger) (datasource.BarSource, func(), error) {
	if strings.EqualFold(filepath.Ext(dataPath), ".csv") {
		return datasource.NewCSVSource(dataPath, appLogger), func() {}, nil
	}

	source, err := datasource.NewDuckDBSource(dataPath, appLogger)
	if err != nil {
		return nil, nil, err
	}

	return source, func() { source.Close() }, nil
}

// schemaAction prints the JSON schema of the backtest configuration.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	schema, err := backtest.DefaultConfig().GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run the MA crossover backtest over a local bar file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the bar data file (.csv, .parquet or DuckDB readable)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "symbol",
				Usage: "Instrument symbol to backtest",
				Value: "NQ",
			},
			&cli.TimestampFlag{
				Name:     "start",
				Aliases:  []string{"s"},
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:     "end",
				Aliases:  []string{"e"},
				Usage:    "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:    time.Now(),
				Required: false,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML strategy config. Defaults apply when omitted.",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the result JSON to this file instead of stdout",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the strategy configuration",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
