package indicators

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/breakout/market"
)

// ATR computes the Average True Range as a simple rolling mean of true
// range over length bars. The first bar has no previous close, so its true
// range degrades to high-low. Entries are invalid until length true ranges
// exist.
func ATR(candles []market.Candle, length int) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(candles))
	if length <= 0 || len(candles) == 0 {
		return out
	}

	trs := make([]decimal.Decimal, len(candles))
	for i, c := range candles {
		hl := c.High.Sub(c.Low)
		if i == 0 {
			trs[0] = hl
			continue
		}
		prevClose := candles[i-1].Close
		trs[i] = decimal.Max(hl,
			c.High.Sub(prevClose).Abs(),
			c.Low.Sub(prevClose).Abs())
	}

	n := decimal.NewFromInt(int64(length))
	sum := decimal.Zero
	for i, tr := range trs {
		sum = sum.Add(tr)
		if i >= length {
			sum = sum.Sub(trs[i-length])
		}
		if i >= length-1 {
			out[i] = decimal.NullDecimal{Decimal: sum.Div(n), Valid: true}
		}
	}
	return out
}
