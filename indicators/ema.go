package indicators

import "github.com/shopspring/decimal"

// EMA computes an exponential moving average with smoothing factor
// 2/(length+1), seeded with the first close:
//
//	ema[i] = close[i]*k + ema[i-1]*(1-k)
//
// One value is produced per input; warm-up values are kept, not dropped.
// Returns nil when there is no input or length is not positive.
func EMA(closes []decimal.Decimal, length int) []decimal.Decimal {
	if length <= 0 || len(closes) == 0 {
		return nil
	}

	k := decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(length) + 1))
	ik := decimal.NewFromInt(1).Sub(k)

	out := make([]decimal.Decimal, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = closes[i].Mul(k).Add(out[i-1].Mul(ik))
	}
	return out
}
