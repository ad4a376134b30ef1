package marketdata

import (
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/rxtech-lab/ma-crossover/pkg/errors"
)

// TimespanFor maps a sampling interval to the multiplier/timespan pair used
// by the download providers.
func TimespanFor(interval types.Interval) (int, models.Timespan, error) {
	switch interval {
	case types.IntervalFifteenMinutes:
		return 15, models.Minute, nil
	case types.IntervalThirtyMinutes:
		return 30, models.Minute, nil
	case types.IntervalOneHour:
		return 1, models.Hour, nil
	default:
		return 0, "", errors.Newf(errors.ErrCodeInvalidTimespan, "no provider timespan for interval %q", string(interval))
	}
}
