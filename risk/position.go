// Package risk converts account equity and a volatility estimate into a
// position size with symmetric protective levels.
package risk

import "github.com/shopspring/decimal"

// Inputs describe one sizing decision. RiskPct is a percentage of equity
// (1 = 1%), Volatility is the stop distance in price units.
type Inputs struct {
	Equity     decimal.Decimal
	RiskPct    decimal.Decimal
	Volatility decimal.Decimal
	EntryPrice decimal.Decimal
	RewardRisk decimal.Decimal // target distance as a multiple of the stop distance
}

// Result carries the computed quantity plus stop/target pairs for both
// directions; the caller picks the pair for the side that signalled.
// A zero Quantity means "do not trade".
type Result struct {
	Quantity    decimal.Decimal
	LongStop    decimal.Decimal
	LongTarget  decimal.Decimal
	ShortStop   decimal.Decimal
	ShortTarget decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Calculate sizes a position so that a stop-out loses RiskPct percent of
// equity. A non-positive volatility or entry price cannot be sized and
// yields the zero Result.
func Calculate(in Inputs) Result {
	if !in.Volatility.IsPositive() || !in.EntryPrice.IsPositive() {
		return Result{}
	}

	riskAmount := in.Equity.Mul(in.RiskPct).Div(hundred)
	notional := riskAmount.Div(in.Volatility)
	qty := notional.Div(in.EntryPrice)
	if qty.IsNegative() {
		qty = decimal.Zero
	}

	targetDist := in.Volatility.Mul(in.RewardRisk)
	return Result{
		Quantity:    qty,
		LongStop:    in.EntryPrice.Sub(in.Volatility),
		LongTarget:  in.EntryPrice.Add(targetDist),
		ShortStop:   in.EntryPrice.Add(in.Volatility),
		ShortTarget: in.EntryPrice.Sub(targetDist),
	}
}

// ApplyMinimum bumps a positive quantity below the venue's minimum order
// size up to that minimum. A quantity of exactly zero is never bumped; it
// means the sizer declined the trade.
func ApplyMinimum(qty, min decimal.Decimal) decimal.Decimal {
	if qty.IsPositive() && qty.LessThan(min) {
		return min
	}
	return qty
}
