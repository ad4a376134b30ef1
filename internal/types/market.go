package types

import "time"

// MarketData represents a single price bar sampled over an interval.
// Bars within a series are expected to be ordered by strictly increasing
// time with no duplicate timestamps, and are never mutated once fetched.
type MarketData struct {
	Id     string    `csv:"id" json:"id,omitempty"`
	Symbol string    `csv:"symbol" json:"symbol,omitempty"`
	Time   time.Time `csv:"time" json:"time"`
	Open   float64   `csv:"open" json:"open"`
	High   float64   `csv:"high" json:"high"`
	Low    float64   `csv:"low" json:"low"`
	Close  float64   `csv:"close" json:"close"`
	Volume float64   `csv:"volume" json:"volume"`
}
