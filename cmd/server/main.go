package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/ma-crossover/internal/backtest"
	"github.com/rxtech-lab/ma-crossover/internal/datasource"
	"github.com/rxtech-lab/ma-crossover/internal/logger"
	"github.com/rxtech-lab/ma-crossover/internal/server"
	"github.com/urfave/cli/v3"
)

// serveAction starts the backtest HTTP API over a local bar file.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	dataPath := cmd.String("data")
	addr := cmd.String("addr")
	symbol := cmd.String("symbol")

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	var source datasource.BarSource

	if strings.EqualFold(filepath.Ext(dataPath), ".csv") {
		source = datasource.NewCSVSource(dataPath, appLogger)
	} else {
		duckSource, err := datasource.NewDuckDBSource(dataPath, appLogger)
		if err != nil {
			return err
		}
		defer duckSource.Close()

		source = duckSource
	}

	engine := backtest.NewEngine(source, appLogger)

	return server.New(engine, appLogger, symbol).ListenAndServe(addr)
}

func main() {
	cmd := &cli.Command{
		Name:  "server",
		Usage: "Serve the MA crossover backtest HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the bar data file (.csv, .parquet or DuckDB readable)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address",
				Value: ":8080",
			},
			&cli.StringFlag{
				Name:  "symbol",
				Usage: "Default instrument symbol for requests without one",
				Value: "NQ",
			},
		},
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
