// Package writer persists downloaded market data.
package writer

import "github.com/rxtech-lab/ma-crossover/internal/types"

// MarketDataWriter stores downloaded bars. It could be a file, a database, etc.
type MarketDataWriter interface {
	// Initialize prepares the writer for a new download.
	Initialize() error
	// Write persists a single bar.
	Write(data types.MarketData) error
	// Finalize flushes everything and returns the path of the written output.
	Finalize() (string, error)
	// Close releases any underlying resources.
	Close() error
}
