package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/breakout/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query and export the trade ledger",
	Long: `Query and display trade records from the SQLite ledger.

Subcommands:
  list    - List all trades in creation order
  trade   - Get details of a specific trade by ID
  export  - Export all trades as CSV

Examples:
  breakout journal list
  breakout journal trade <trade-id>
  breakout journal export > trades.csv`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all trades in creation order",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all trades as CSV to stdout",
	Args:  cobra.NoArgs,
	RunE:  runJournalExport,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalExportCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./breakout.sqlite", "path to SQLite ledger DB")
}

func openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalList(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListAll(context.Background())
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	if len(recs) == 0 {
		fmt.Println("no trades recorded")
		return nil
	}

	fmt.Printf("%-28s %-22s %-10s %-6s %12s %12s %-10s\n",
		"ID", "OPENED", "SYMBOL", "SIDE", "ENTRY", "QTY", "STATUS")
	for _, r := range recs {
		fmt.Printf("%-28s %-22s %-10s %-6s %12s %12s %-10s\n",
			r.ID,
			r.OpenedAt.UTC().Format(time.RFC3339),
			r.Symbol,
			r.Side,
			r.Entry.String(),
			r.Quantity.String(),
			r.Status,
		)
	}
	fmt.Printf("\n%d trade(s)\n", len(recs))
	return nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Printf("ID:          %s\n", rec.ID)
	fmt.Printf("Opened:      %s\n", rec.OpenedAt.UTC().Format(time.RFC3339))
	fmt.Printf("Symbol:      %s\n", rec.Symbol)
	fmt.Printf("Side:        %s\n", rec.Side)
	fmt.Printf("Entry:       %s\n", rec.Entry.String())
	fmt.Printf("Quantity:    %s\n", rec.Quantity.String())
	fmt.Printf("Stop Loss:   %s\n", rec.StopLoss.String())
	fmt.Printf("Take Profit: %s\n", rec.TakeProfit.String())
	if rec.ExitPrice.Valid {
		fmt.Printf("Exit:        %s\n", rec.ExitPrice.Decimal.String())
	}
	if rec.PnL.Valid {
		fmt.Printf("PnL:         %s\n", rec.PnL.Decimal.String())
	}
	fmt.Printf("Fee:         %s\n", rec.Fee.String())
	fmt.Printf("Status:      %s\n", rec.Status)
	if len(rec.Metadata) > 0 {
		fmt.Printf("Metadata:    %s\n", string(rec.Metadata))
	}
	return nil
}

func runJournalExport(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListAll(context.Background())
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}
	return journal.ExportCSV(os.Stdout, recs)
}
