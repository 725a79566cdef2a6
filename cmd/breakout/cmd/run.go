package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/breakout/broker/bybit"
	"github.com/rustyeddy/breakout/config"
	"github.com/rustyeddy/breakout/engine"
	"github.com/rustyeddy/breakout/journal"
	"github.com/rustyeddy/breakout/market"
	"github.com/rustyeddy/breakout/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot against a config file",
	Long: `Run the breakout bot using settings from a configuration file.

Credentials come from BYBIT_API_KEY and BYBIT_API_SECRET (a .env file in
the working directory is loaded if present), or from the config file.

Example:
  breakout run -f examples/configs/btc.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runJSONLogs   bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().BoolVar(&runJSONLogs, "json-logs", false, "emit JSON logs instead of console output")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if !runJSONLogs {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ledger, err := journal.NewSQLite(cfg.Engine.DBPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	client := bybit.New(bybit.Options{
		APIKey:    cfg.Bybit.APIKey,
		APISecret: cfg.Bybit.APISecret,
		Testnet:   cfg.Bybit.Testnet,
		Category:  cfg.Trading.Category,
		Logger:    logger,
	})

	interval, err := market.ParseInterval(cfg.Trading.Interval)
	if err != nil {
		return fmt.Errorf("interval: %w", err)
	}

	strat := strategies.Breakout{
		EnableLong:  cfg.Trading.EnableLong,
		EnableShort: cfg.Trading.EnableShort,
	}

	eng := engine.New(engine.Config{
		Symbol:         cfg.Trading.Symbol,
		Interval:       interval,
		KlineLimit:     cfg.Engine.KlineLimit,
		EMALength:      cfg.Trading.EMALength,
		ATRLength:      cfg.Trading.ATRLength,
		Lookback:       cfg.Trading.Lookback,
		RiskPct:        decimal.NewFromFloat(cfg.Trading.RiskPct),
		RewardRisk:     decimal.NewFromFloat(cfg.Trading.RewardRisk),
		MinQty:         decimal.NewFromFloat(cfg.Trading.MinQty),
		TakerFeeRate:   decimal.NewFromFloat(cfg.Fees.TakerRate),
		FallbackEquity: decimal.NewFromFloat(cfg.Account.FallbackEquity),
		PollInterval:   time.Duration(cfg.Engine.PollSeconds) * time.Second,
		ReportPath:     cfg.Engine.ReportPath,
	}, client, client, client, ledger, strat, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("symbol", cfg.Trading.Symbol).
		Str("interval", cfg.Trading.Interval).
		Bool("testnet", cfg.Bybit.Testnet).
		Msg("starting breakout bot")

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
