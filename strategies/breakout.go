package strategies

import (
	"github.com/rustyeddy/breakout/indicators"
	"github.com/rustyeddy/breakout/market"
)

// Breakout fires when the close of a newly closed bar escapes the recent
// range in the direction of the trend:
//
//	long  <=> close > resistance and close > trend
//	short <=> close < support    and close < trend
//
// A side with an undefined breakout level (insufficient history) never
// fires. The long condition is checked first, so under a degenerate
// configuration where both sides qualify the long entry wins.
type Breakout struct {
	EnableLong  bool
	EnableShort bool
}

func (b Breakout) Evaluate(c market.Candle, f indicators.Frame) Signal {
	if b.EnableLong && f.Resistance.Valid &&
		c.Close.GreaterThan(f.Resistance.Decimal) &&
		c.Close.GreaterThan(f.Trend) {
		return Long
	}
	if b.EnableShort && f.Support.Valid &&
		c.Close.LessThan(f.Support.Decimal) &&
		c.Close.LessThan(f.Trend) {
		return Short
	}
	return None
}
