package indicators

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/breakout/market"
)

// BreakoutLevels computes rolling extremes of the prior lookback bars:
// resistance[i] is the max high and support[i] the min low of
// candles[i-lookback .. i-1]. Bar i itself is strictly excluded, so the
// levels carry no lookahead. Entries are invalid until lookback prior bars
// exist.
func BreakoutLevels(candles []market.Candle, lookback int) (resistance, support []decimal.NullDecimal) {
	resistance = make([]decimal.NullDecimal, len(candles))
	support = make([]decimal.NullDecimal, len(candles))
	if lookback <= 0 {
		return resistance, support
	}

	for i := range candles {
		if i < lookback {
			continue
		}
		hi := candles[i-lookback].High
		lo := candles[i-lookback].Low
		for j := i - lookback + 1; j < i; j++ {
			hi = decimal.Max(hi, candles[j].High)
			lo = decimal.Min(lo, candles[j].Low)
		}
		resistance[i] = decimal.NullDecimal{Decimal: hi, Valid: true}
		support[i] = decimal.NullDecimal{Decimal: lo, Valid: true}
	}
	return resistance, support
}
