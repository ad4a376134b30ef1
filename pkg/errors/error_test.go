package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNew() {
	err := New(ErrCodeNoData, "no data found for given period")

	suite.Equal(ErrCodeNoData, err.Code)
	suite.Equal("[200] no data found for given period", err.Error())
	suite.Nil(err.Unwrap())
}

func (suite *ErrorTestSuite) TestNewf() {
	err := Newf(ErrCodeInvalidInterval, "invalid interval %q", "5m")

	suite.Equal(`[102] invalid interval "5m"`, err.Error())
}

func (suite *ErrorTestSuite) TestWrapKeepsCause() {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCodeQueryFailed, "failed to execute query", cause)

	suite.Equal("[204] failed to execute query: connection refused", err.Error())
	suite.ErrorIs(err, cause)
}

func (suite *ErrorTestSuite) TestWrapf() {
	cause := fmt.Errorf("permission denied")
	err := Wrapf(ErrCodeDataSourceUnavailable, cause, "failed to open %s", "bars.csv")

	suite.Equal("[205] failed to open bars.csv: permission denied", err.Error())
	suite.ErrorIs(err, cause)
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeNoData, GetCode(New(ErrCodeNoData, "no data")))
	suite.Equal(ErrCodeUnknown, GetCode(fmt.Errorf("plain error")))
}

func (suite *ErrorTestSuite) TestGetCodeThroughWrapping() {
	inner := New(ErrCodeMissingFields, "missing columns")
	outer := fmt.Errorf("loading data: %w", inner)

	suite.Equal(ErrCodeMissingFields, GetCode(outer))
	suite.True(HasCode(outer, ErrCodeMissingFields))
	suite.False(HasCode(outer, ErrCodeNoData))
}

func (suite *ErrorTestSuite) TestAs() {
	var target *Error

	err := fmt.Errorf("wrapped: %w", New(ErrCodeInvalidParameter, "bad input"))
	suite.True(As(err, &target))
	suite.Equal(ErrCodeInvalidParameter, target.Code)
}
