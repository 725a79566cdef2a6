// Package strategies holds bar-close signal evaluators.
package strategies

import (
	"github.com/rustyeddy/breakout/indicators"
	"github.com/rustyeddy/breakout/market"
)

// Signal is the directional decision for one closed bar.
type Signal int

const (
	None Signal = iota
	Long
	Short
)

func (s Signal) String() string {
	switch s {
	case Long:
		return "Long"
	case Short:
		return "Short"
	default:
		return "None"
	}
}

// Side maps a directional signal to a position side. Only meaningful for
// Long and Short.
func (s Signal) Side() market.Side {
	if s == Short {
		return market.Short
	}
	return market.Long
}

// Strategy decides a direction for a single closed candle given its
// indicator frame. Implementations must be deterministic; at most one
// directional signal is returned per call.
type Strategy interface {
	Evaluate(c market.Candle, f indicators.Frame) Signal
}
