package types

import "time"

// CrossoverEvent records a change in relative order between the two moving
// averages. Entry follows next-bar-open semantics: the trading decision made
// at the detection bar is entered on the open of the following bar.
type CrossoverEvent struct {
	// DetectedAt is the time of the bar where the signal changed.
	DetectedAt time.Time `json:"detected_at"`
	// DetectedIndex is the index of the detection bar within the retained series.
	DetectedIndex int `json:"detected_at_index"`
	// Type is the direction implied by the new signal value.
	Type Direction `json:"type"`
	// FastValue is the fast moving average at the detection bar.
	FastValue float64 `json:"fast_ma"`
	// SlowValue is the slow moving average at the detection bar.
	SlowValue float64 `json:"slow_ma"`
	// EntryTime is the time of the bar whose open is the entry price.
	EntryTime time.Time `json:"entry_time"`
	// EntryIndex is always DetectedIndex+1.
	EntryIndex int `json:"entry_bar_index"`
	// EntryOpen is the open price of the entry bar.
	EntryOpen float64 `json:"entry_open"`
	// PrevClose is the close of the detection bar.
	PrevClose float64 `json:"prev_close"`
}
