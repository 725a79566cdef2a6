package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/breakout/journal"
	"github.com/rustyeddy/breakout/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the HTML trade report from the ledger",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

var (
	reportDBPath string
	reportOut    string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportDBPath, "db", "d", "./breakout.sqlite", "path to SQLite ledger DB")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "./report.html", "output HTML file")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListAll(context.Background())
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	if err := report.Render(recs, reportOut); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	fmt.Printf("wrote %s (%d trades)\n", reportOut, len(recs))
	return nil
}
