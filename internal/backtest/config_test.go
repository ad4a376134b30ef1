package backtest

import (
	"encoding/json"
	"testing"

	"github.com/rxtech-lab/ma-crossover/internal/indicator"
	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/ma-crossover/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultConfigIsValid() {
	config := DefaultConfig()

	suite.NoError(config.Validate())
	suite.Equal(20, config.FastWindow)
	suite.Equal(50, config.SlowWindow)
	suite.Equal(indicator.KindSMA, config.MAKind)
	suite.Equal(types.IntervalOneHour, config.Interval)
	suite.InDelta(50.0, config.StopLossPoints, 1e-9)
	suite.InDelta(100.0, config.TakeProfitPoints, 1e-9)
}

func (suite *ConfigTestSuite) TestParseConfig() {
	content := []byte(`
fast_window: 5
slow_window: 13
ma_kind: ema
interval: 15m
inverse: true
stop_loss_points: 30
`)

	config, err := ParseConfig(content)
	suite.Require().NoError(err)

	suite.Equal(5, config.FastWindow)
	suite.Equal(13, config.SlowWindow)
	suite.Equal(indicator.KindEMA, config.MAKind)
	suite.Equal(types.IntervalFifteenMinutes, config.Interval)
	suite.True(config.Inverse)
	suite.InDelta(30.0, config.StopLossPoints, 1e-9)

	// Omitted fields keep their defaults.
	suite.InDelta(100.0, config.TakeProfitPoints, 1e-9)
	suite.InDelta(10000.0, config.StartingBalance, 1e-9)
	suite.InDelta(20.0, config.ContractMultiplier, 1e-9)
}

func (suite *ConfigTestSuite) TestParseConfigInvalidYAML() {
	_, err := ParseConfig([]byte("fast_window: [not a number"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestValidateRejectsUnknownInterval() {
	config := DefaultConfig()
	config.Interval = "4h"

	err := config.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidInterval))
}

func (suite *ConfigTestSuite) TestValidateRejectsUnknownKind() {
	config := DefaultConfig()
	config.MAKind = "hull"

	err := config.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidKind))
}

func (suite *ConfigTestSuite) TestValidateRejectsNonPositiveThresholds() {
	config := DefaultConfig()
	config.StopLossPoints = 0

	err := config.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	config = DefaultConfig()
	config.TakeProfitPoints = -1

	err = config.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestMaxWindow() {
	config := DefaultConfig()
	suite.Equal(50, config.MaxWindow())

	config.FastWindow = 100
	suite.Equal(100, config.MaxWindow())
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	schemaJSON, err := DefaultConfig().GenerateSchemaJSON()
	suite.Require().NoError(err)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schemaJSON), &schema))

	properties, ok := schema["properties"].(map[string]any)
	suite.Require().True(ok)

	for _, field := range []string{
		"fast_window", "slow_window", "ma_kind", "interval", "inverse",
		"stop_loss_points", "take_profit_points", "starting_balance",
		"contract_multiplier",
	} {
		suite.Contains(properties, field)
	}

	maKind, ok := properties["ma_kind"].(map[string]any)
	suite.Require().True(ok)
	suite.ElementsMatch([]any{"sma", "ema"}, maKind["enum"])
}
