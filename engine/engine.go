// Package engine orchestrates one trading decision per closed bar: fetch
// candles, evaluate the breakout signal, size the position, submit the
// order and record it in the ledger.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/indicators"
	"github.com/rustyeddy/breakout/journal"
	"github.com/rustyeddy/breakout/market"
	"github.com/rustyeddy/breakout/report"
	"github.com/rustyeddy/breakout/risk"
	"github.com/rustyeddy/breakout/strategies"
)

// Config is the engine's immutable runtime configuration.
type Config struct {
	Symbol         string
	Interval       market.Interval
	KlineLimit     int
	EMALength      int
	ATRLength      int
	Lookback       int
	RiskPct        decimal.Decimal
	RewardRisk     decimal.Decimal
	MinQty         decimal.Decimal
	TakerFeeRate   decimal.Decimal
	FallbackEquity decimal.Decimal
	PollInterval   time.Duration
	ReportPath     string
}

// Engine drives the poll loop. It is single-threaded by design: one
// decision pipeline, no concurrent ticks, and the ledger is written only
// from here.
type Engine struct {
	cfg     Config
	data    broker.MarketData
	account broker.AccountSource
	orders  broker.OrderPlacer
	ledger  journal.Journal
	strat   strategies.Strategy
	logger  zerolog.Logger

	// lastEvaluated is the timestamp of the newest bar a decision has been
	// made for. A bar is decided at most once; a tick that fails before
	// the decision completes leaves it untouched so the bar is retried.
	lastEvaluated time.Time
}

func New(cfg Config, data broker.MarketData, account broker.AccountSource,
	orders broker.OrderPlacer, ledger journal.Journal,
	strat strategies.Strategy, logger zerolog.Logger) *Engine {

	return &Engine{
		cfg:     cfg,
		data:    data,
		account: account,
		orders:  orders,
		ledger:  ledger,
		strat:   strat,
		logger:  logger.With().Str("component", "engine").Logger(),
	}
}

// RunTick executes one poll cycle. The report is regenerated even when the
// decision path fails; a report failure never affects trading state.
func (e *Engine) RunTick(ctx context.Context) error {
	err := e.decide(ctx)
	e.renderReport(ctx)
	return err
}

func (e *Engine) decide(ctx context.Context) error {
	series, err := e.data.GetKlines(ctx, e.cfg.Symbol, e.cfg.Interval, e.cfg.KlineLimit)
	if err != nil {
		return err
	}
	last, ok := series.Last()
	if !ok {
		return &broker.DataError{Err: errors.New("empty candle series")}
	}
	if err := series.Validate(); err != nil {
		return &broker.DataError{Err: err}
	}

	// Bar closure is inferred from the timestamp changing between polls;
	// the venue offers no trustworthy is-closed flag.
	if last.Time.Equal(e.lastEvaluated) {
		return nil
	}

	frames := indicators.Compute(series, e.cfg.EMALength, e.cfg.ATRLength, e.cfg.Lookback)
	frame := frames[len(frames)-1]

	sig := e.strat.Evaluate(last, frame)
	if sig == strategies.None {
		e.lastEvaluated = last.Time
		return nil
	}

	if !frame.Volatility.Valid {
		// A breakout without a volatility estimate cannot be sized.
		e.logger.Warn().Time("bar", last.Time).Msg("signal with undefined volatility, skipping")
		e.lastEvaluated = last.Time
		return nil
	}

	equity := e.equity(ctx)
	sized := risk.Calculate(risk.Inputs{
		Equity:     equity,
		RiskPct:    e.cfg.RiskPct,
		Volatility: frame.Volatility.Decimal,
		EntryPrice: last.Close,
		RewardRisk: e.cfg.RewardRisk,
	})

	qty := risk.ApplyMinimum(sized.Quantity, e.cfg.MinQty)
	if qty.IsZero() {
		e.logger.Info().Time("bar", last.Time).Stringer("signal", sig).Msg("sizer declined the trade")
		e.lastEvaluated = last.Time
		return nil
	}

	side := sig.Side()
	stop, target := sized.LongStop, sized.LongTarget
	if side == market.Short {
		stop, target = sized.ShortStop, sized.ShortTarget
	}

	e.logger.Info().
		Time("bar", last.Time).
		Str("side", side.String()).
		Str("entry", last.Close.String()).
		Str("qty", qty.String()).
		Str("stop", stop.String()).
		Str("target", target.String()).
		Msg("breakout signal")

	fill, err := e.orders.PlaceMarketOrder(ctx, broker.OrderRequest{
		Symbol:   e.cfg.Symbol,
		Side:     side,
		Quantity: qty,
	})
	if err != nil {
		// The watermark is not advanced: the same bar is re-evaluated on
		// the next poll (at-least-once on failure, exactly-once on
		// success).
		return err
	}

	if err := e.orders.SetTradingStop(ctx, e.cfg.Symbol, stop, target); err != nil {
		e.logger.Warn().Err(err).Str("order_id", fill.OrderID).
			Msg("position is live without stop or target")
	}

	// The order is live: this bar is consumed even if the ledger write
	// below fails, otherwise the next poll would submit a duplicate.
	e.lastEvaluated = last.Time

	fee := e.cfg.TakerFeeRate.Mul(qty).Mul(last.Close)
	tradeID, err := e.ledger.Create(ctx, journal.TradeRecord{
		OpenedAt:   time.Now().UTC(),
		Symbol:     e.cfg.Symbol,
		Side:       side,
		Entry:      last.Close,
		Quantity:   qty,
		StopLoss:   stop,
		TakeProfit: target,
		Fee:        fee,
		Metadata:   fill.Raw,
	})
	if err != nil {
		e.logger.Error().Err(err).Str("order_id", fill.OrderID).
			Msg("order filled but ledger write failed, audit trail is broken")
		return fmt.Errorf("ledger write after fill %s: %w", fill.OrderID, err)
	}

	e.logger.Info().Str("trade_id", tradeID).Str("order_id", fill.OrderID).Msg("trade recorded")
	return nil
}

// equity returns the account equity, or the configured fallback when the
// venue cannot say. The fallback path is loud: sizing against stale
// capital is a known risk.
func (e *Engine) equity(ctx context.Context) decimal.Decimal {
	nd, err := e.account.GetEquity(ctx)
	if err == nil && nd.Valid {
		return nd.Decimal
	}

	ev := e.logger.Warn()
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Str("fallback_equity", e.cfg.FallbackEquity.String()).
		Msg("account equity unavailable, sizing against configured fallback")
	return e.cfg.FallbackEquity
}

func (e *Engine) renderReport(ctx context.Context) {
	if e.cfg.ReportPath == "" {
		return
	}
	recs, err := e.ledger.ListAll(ctx)
	if err == nil {
		err = report.Render(recs, e.cfg.ReportPath)
	}
	if err != nil {
		e.logger.Warn().Err(err).Msg("report regeneration failed")
	}
}

// Run polls until ctx is cancelled. Tick errors are logged and the loop
// keeps going; a failed bar is re-evaluated on the next poll.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := e.RunTick(ctx); err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Error().Err(err).Msg("tick failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
