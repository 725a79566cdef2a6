// Package config loads and validates the bot configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/breakout/market"
)

// Config is the complete bot configuration.
type Config struct {
	Trading TradingConfig `json:"trading" yaml:"trading"`
	Fees    FeesConfig    `json:"fees" yaml:"fees"`
	Account AccountConfig `json:"account" yaml:"account"`
	Bybit   BybitConfig   `json:"bybit" yaml:"bybit"`
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
}

// TradingConfig contains the market, indicator and sizing parameters.
type TradingConfig struct {
	Symbol      string  `json:"symbol" yaml:"symbol"`
	Category    string  `json:"category" yaml:"category"`
	Interval    string  `json:"interval" yaml:"interval"`
	EMALength   int     `json:"ema_length" yaml:"ema_length"`
	ATRLength   int     `json:"atr_length" yaml:"atr_length"`
	Lookback    int     `json:"lookback" yaml:"lookback"`
	RiskPct     float64 `json:"risk_pct" yaml:"risk_pct"`
	RewardRisk  float64 `json:"rr_ratio" yaml:"rr_ratio"`
	EnableLong  bool    `json:"enable_long" yaml:"enable_long"`
	EnableShort bool    `json:"enable_short" yaml:"enable_short"`
	MinQty      float64 `json:"min_qty" yaml:"min_qty"`
}

// FeesConfig contains the fee rates used for cost estimates.
type FeesConfig struct {
	TakerRate float64 `json:"taker_rate" yaml:"taker_rate"`
}

// AccountConfig contains account level parameters.
type AccountConfig struct {
	// FallbackEquity is used for sizing when the venue cannot report
	// equity. Zero disables trading on that path.
	FallbackEquity float64 `json:"fallback_equity" yaml:"fallback_equity"`
}

// BybitConfig contains venue connection parameters. Credentials in the
// file are overridden by BYBIT_API_KEY and BYBIT_API_SECRET when set, so
// keys can stay out of the config file entirely.
type BybitConfig struct {
	Testnet   bool   `json:"testnet" yaml:"testnet"`
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty" yaml:"api_secret,omitempty"`
}

// EngineConfig contains the poll loop and persistence parameters.
type EngineConfig struct {
	PollSeconds int    `json:"poll_seconds" yaml:"poll_seconds"`
	KlineLimit  int    `json:"kline_limit" yaml:"kline_limit"`
	DBPath      string `json:"db_path" yaml:"db_path"`
	ReportPath  string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON), applies
// environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if v := os.Getenv("BYBIT_API_KEY"); v != "" {
		cfg.Bybit.APIKey = v
	}
	if v := os.Getenv("BYBIT_API_SECRET"); v != "" {
		cfg.Bybit.APISecret = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol is required")
	}
	switch c.Trading.Category {
	case "", "linear", "inverse":
	default:
		return fmt.Errorf("trading.category must be linear or inverse")
	}
	if _, err := market.ParseInterval(c.Trading.Interval); err != nil {
		return fmt.Errorf("trading.interval: %w", err)
	}
	if c.Trading.EMALength <= 0 {
		return fmt.Errorf("trading.ema_length must be positive")
	}
	if c.Trading.ATRLength <= 0 {
		return fmt.Errorf("trading.atr_length must be positive")
	}
	if c.Trading.Lookback <= 0 {
		return fmt.Errorf("trading.lookback must be positive")
	}
	if c.Trading.RiskPct <= 0 || c.Trading.RiskPct > 100 {
		return fmt.Errorf("trading.risk_pct must be between 0 and 100")
	}
	if c.Trading.RewardRisk <= 0 {
		return fmt.Errorf("trading.rr_ratio must be positive")
	}
	if !c.Trading.EnableLong && !c.Trading.EnableShort {
		return fmt.Errorf("at least one of trading.enable_long and trading.enable_short must be set")
	}
	if c.Trading.MinQty < 0 {
		return fmt.Errorf("trading.min_qty must not be negative")
	}
	if c.Fees.TakerRate < 0 {
		return fmt.Errorf("fees.taker_rate must not be negative")
	}
	if c.Account.FallbackEquity < 0 {
		return fmt.Errorf("account.fallback_equity must not be negative")
	}
	if c.Engine.PollSeconds <= 0 {
		return fmt.Errorf("engine.poll_seconds must be positive")
	}
	if c.Engine.KlineLimit <= c.Trading.Lookback || c.Engine.KlineLimit <= c.Trading.ATRLength {
		return fmt.Errorf("engine.kline_limit must exceed trading.lookback and trading.atr_length")
	}
	if c.Engine.DBPath == "" {
		return fmt.Errorf("engine.db_path is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults. Credentials are
// intentionally empty.
func Default() *Config {
	return &Config{
		Trading: TradingConfig{
			Symbol:      "BTCUSDT",
			Category:    "linear",
			Interval:    "60",
			EMALength:   200,
			ATRLength:   14,
			Lookback:    20,
			RiskPct:     1.0,
			RewardRisk:  2.0,
			EnableLong:  true,
			EnableShort: true,
			MinQty:      0.001,
		},
		Fees: FeesConfig{
			TakerRate: 0.00055,
		},
		Account: AccountConfig{
			FallbackEquity: 1000,
		},
		Bybit: BybitConfig{
			Testnet: true,
		},
		Engine: EngineConfig{
			PollSeconds: 30,
			KlineLimit:  400,
			DBPath:      "./breakout.sqlite",
			ReportPath:  "./report.html",
		},
	}
}
