// Package marketdata downloads historical bars from external providers and
// stores them for the backtest data sources to read.
package marketdata

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/rxtech-lab/ma-crossover/pkg/errors"
	"github.com/rxtech-lab/ma-crossover/pkg/marketdata/provider"
	"github.com/rxtech-lab/ma-crossover/pkg/marketdata/writer"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  provider.ProviderType `validate:"required,oneof=polygon binance"`
	DataPath      string                `validate:"required"`
	PolygonApiKey string                `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker    string         `validate:"required"`
	StartDate time.Time      `validate:"required"`
	EndDate   time.Time      `validate:"required,gtfield=StartDate"`
	Interval  types.Interval `validate:"required"`
}

// Client is the market data client responsible for downloading data from
// providers and storing it using writers.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	var providerConfig any
	if config.ProviderType == provider.ProviderPolygon {
		providerConfig = config.PolygonApiKey
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, providerConfig)
	if err != nil {
		return nil, err
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
	}, nil
}

// Download initiates a market data download with the given parameters and
// returns the path of the written data file. The context can be used to
// cancel the download operation.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	if err := params.Interval.Validate(); err != nil {
		return "", err
	}

	multiplier, timespan, err := TimespanFor(params.Interval)
	if err != nil {
		return "", err
	}

	marketWriter := writer.NewDuckDBWriter(c.config.DataPath)
	c.provider.ConfigWriter(marketWriter)

	return c.provider.Download(ctx, params.Ticker, params.StartDate, params.EndDate, multiplier, timespan, c.onProgress)
}
