// Package indicators provides the technical analysis primitives behind the
// breakout strategy: a trend line, a volatility estimate and rolling
// breakout levels.
//
// All functions are pure: they never modify their inputs and return the
// same output for the same input. Values that cannot be computed yet
// (insufficient history) are represented with decimal.NullDecimal, never
// with zero.
package indicators

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/breakout/market"
)

// Frame is the per-bar indicator snapshot, aligned index-for-index with the
// candle series it was computed from.
type Frame struct {
	Trend      decimal.Decimal     // EMA of close; defined from the first bar
	Volatility decimal.NullDecimal // ATR
	Resistance decimal.NullDecimal // max high of the prior lookback bars
	Support    decimal.NullDecimal // min low of the prior lookback bars
}

// Compute derives one Frame per candle.
func Compute(s market.Series, emaLength, atrLength, lookback int) []Frame {
	if len(s) == 0 {
		return nil
	}

	trend := EMA(s.Closes(), emaLength)
	vol := ATR(s, atrLength)
	res, sup := BreakoutLevels(s, lookback)

	frames := make([]Frame, len(s))
	for i := range frames {
		frames[i] = Frame{
			Trend:      trend[i],
			Volatility: vol[i],
			Resistance: res[i],
			Support:    sup[i],
		}
	}
	return frames
}
