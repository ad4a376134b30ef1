package backtest

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/ma-crossover/internal/indicator"
	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/rxtech-lab/ma-crossover/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the strategy parameters for one backtest run.
type Config struct {
	FastWindow         int            `yaml:"fast_window" json:"fast_window" validate:"min=1" jsonschema:"title=Fast Window,description=Window of the fast moving average,minimum=1,default=20"`
	SlowWindow         int            `yaml:"slow_window" json:"slow_window" validate:"min=1" jsonschema:"title=Slow Window,description=Window of the slow moving average,minimum=1,default=50"`
	MAKind             indicator.Kind `yaml:"ma_kind" json:"ma_kind" jsonschema:"title=Moving Average Kind,description=Type of moving average"`
	Interval           types.Interval `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Bar sampling interval"`
	Inverse            bool           `yaml:"inverse" json:"inverse" jsonschema:"title=Inverse,description=Flip the direction of every trade,default=false"`
	StopLossPoints     float64        `yaml:"stop_loss_points" json:"stop_loss_points" validate:"gt=0" jsonschema:"title=Stop Loss,description=Adverse price distance in points that closes a position,default=50"`
	TakeProfitPoints   float64        `yaml:"take_profit_points" json:"take_profit_points" validate:"gt=0" jsonschema:"title=Take Profit,description=Favorable price distance in points that closes a position,default=100"`
	StartingBalance    float64        `yaml:"starting_balance" json:"starting_balance" validate:"gt=0" jsonschema:"title=Starting Balance,description=Initial account balance in USD,default=10000"`
	ContractMultiplier float64        `yaml:"contract_multiplier" json:"contract_multiplier" validate:"gt=0" jsonschema:"title=Contract Multiplier,description=Converts price points into account currency,default=20"`
}

// DefaultConfig returns a Config with the recognized defaults.
func DefaultConfig() Config {
	return Config{
		FastWindow:         20,
		SlowWindow:         50,
		MAKind:             indicator.KindSMA,
		Interval:           types.IntervalOneHour,
		Inverse:            false,
		StopLossPoints:     50,
		TakeProfitPoints:   100,
		StartingBalance:    10000,
		ContractMultiplier: 20,
	}
}

// ParseConfig parses a YAML document into a Config, starting from the
// defaults so omitted fields keep their recognized values.
func ParseConfig(content []byte) (Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(content, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	return config, nil
}

// Validate checks the config, returning coded errors for the interval and
// moving average kind and wrapping struct-level validation failures.
func (c Config) Validate() error {
	if err := c.Interval.Validate(); err != nil {
		return err
	}

	if err := c.MAKind.Validate(); err != nil {
		return err
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest configuration", err)
	}

	return nil
}

// MaxWindow returns the larger of the two moving average windows. It bounds
// both the minimum series length and the warm-up lookback.
func (c Config) MaxWindow() int {
	return max(c.FastWindow, c.SlowWindow)
}

// GenerateSchema generates a JSON schema for the Config.
func (c Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if strings.Contains(t.String(), "indicator.Kind") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: []any{string(indicator.KindSMA), string(indicator.KindEMA)},
				}
			}

			if strings.Contains(t.String(), "types.Interval") {
				enum := make([]any, 0, len(types.AllIntervals))
				for _, interval := range types.AllIntervals {
					enum = append(enum, string(interval))
				}

				return &jsonschema.Schema{
					Type: "string",
					Enum: enum,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(&c)
	schema.Title = "ma-crossover-backtest-config"
	schema.Description = "Configuration schema for the MA crossover backtest"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates an indented JSON schema string for the Config.
func (c Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
