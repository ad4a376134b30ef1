package types

import (
	"time"

	"github.com/rxtech-lab/ma-crossover/pkg/errors"
)

// Interval is the sampling interval of a bar series.
type Interval string

const (
	IntervalFifteenMinutes Interval = "15m"
	IntervalThirtyMinutes  Interval = "30m"
	IntervalOneHour        Interval = "1h"
)

// AllIntervals lists the recognized sampling intervals.
var AllIntervals = []Interval{IntervalFifteenMinutes, IntervalThirtyMinutes, IntervalOneHour}

// Validate returns an ErrCodeInvalidInterval error listing the allowed set
// when the interval is not recognized.
func (i Interval) Validate() error {
	for _, valid := range AllIntervals {
		if i == valid {
			return nil
		}
	}

	return errors.Newf(errors.ErrCodeInvalidInterval, "invalid interval %q. Must be one of: %v", string(i), AllIntervals)
}

// Duration returns the wall-clock length of one bar at this interval.
func (i Interval) Duration() time.Duration {
	switch i {
	case IntervalFifteenMinutes:
		return 15 * time.Minute
	case IntervalThirtyMinutes:
		return 30 * time.Minute
	case IntervalOneHour:
		return time.Hour
	default:
		return time.Hour
	}
}
