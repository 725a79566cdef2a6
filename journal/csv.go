package journal

import (
	"encoding/csv"
	"io"
	"time"
)

// ExportCSV writes the given records as CSV for external audit tooling.
func ExportCSV(w io.Writer, recs []TradeRecord) error {
	cw := csv.NewWriter(w)

	header := []string{
		"id", "opened_at", "symbol", "side", "entry", "qty",
		"stop_loss", "take_profit", "exit_price", "pnl", "fee", "status",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range recs {
		exit, pnl := "", ""
		if r.ExitPrice.Valid {
			exit = r.ExitPrice.Decimal.String()
		}
		if r.PnL.Valid {
			pnl = r.PnL.Decimal.String()
		}
		row := []string{
			r.ID,
			r.OpenedAt.UTC().Format(time.RFC3339),
			r.Symbol,
			r.Side.String(),
			r.Entry.String(),
			r.Quantity.String(),
			r.StopLoss.String(),
			r.TakeProfit.String(),
			exit,
			pnl,
			r.Fee.String(),
			string(r.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
