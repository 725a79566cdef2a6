package market

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one OHLCV bar. Candles are immutable values; nothing in this
// package modifies a candle after construction.
type Candle struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

// Series is an ascending run of candles for a single symbol and interval.
// A candle is considered closed once a strictly later candle exists in the
// series; the final entry may still be forming.
type Series []Candle

// Validate checks that timestamps are strictly ascending, which also rules
// out duplicates.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Time.After(s[i-1].Time) {
			return fmt.Errorf("series not ascending at index %d: %s >= %s",
				i,
				s[i-1].Time.UTC().Format(time.RFC3339),
				s[i].Time.UTC().Format(time.RFC3339))
		}
	}
	return nil
}

// Last returns the newest candle, if any.
func (s Series) Last() (Candle, bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[len(s)-1], true
}

// Closes returns the close of every candle in series order.
func (s Series) Closes() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}
