package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "breakout",
	Short: "An automated breakout trading bot for Bybit USDT perpetuals",
	Long: `Breakout is an automated trading bot for a single derivatives market.

It polls candlesticks, evaluates a Donchian-style breakout signal with an
EMA trend filter and ATR volatility sizing, submits market orders with a
stop loss and take profit attached, and keeps a durable trade ledger.

Subcommands:
  run      - Run the bot against a config file
  journal  - Query and export the trade ledger
  report   - Render the HTML trade report
  version  - Print the version number`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
