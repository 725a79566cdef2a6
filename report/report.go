// Package report renders the ledger as a standalone HTML page. Rendering
// is fire-and-forget: callers log failures and move on.
package report

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/breakout/journal"
)

// Render writes an HTML summary of the trade records to path. The file is
// written to a temp sibling and renamed so readers never see a partial
// report.
func Render(recs []journal.TradeRecord, path string) error {
	var (
		open     int
		realized = decimal.Zero
		fees     = decimal.Zero
	)
	for _, r := range recs {
		if r.Status == journal.StatusOpen {
			open++
		}
		if r.PnL.Valid {
			realized = realized.Add(r.PnL.Decimal)
		}
		fees = fees.Add(r.Fee)
	}

	var b bytes.Buffer
	b.WriteString("<!doctype html><html><head><meta charset='utf-8'><title>Trade Report</title>")
	b.WriteString("<style>body{font-family:system-ui,sans-serif;padding:16px}table{border-collapse:collapse}td,th{border:1px solid #999;padding:4px 8px;text-align:right}td:first-child,th:first-child{text-align:left}</style>")
	b.WriteString("</head><body>")
	fmt.Fprintf(&b, "<h2>Trade Report</h2><p>Generated %s</p>", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "<p>Trades: <b>%d</b> | Open: <b>%d</b> | Realized PnL: <b>%s</b> | Fees: <b>%s</b></p>",
		len(recs), open, realized.String(), fees.String())

	b.WriteString("<table><tr><th>id</th><th>opened</th><th>symbol</th><th>side</th><th>entry</th><th>qty</th><th>stop</th><th>target</th><th>exit</th><th>pnl</th><th>fee</th><th>status</th></tr>")
	for _, r := range recs {
		exit, pnl := "-", "-"
		if r.ExitPrice.Valid {
			exit = r.ExitPrice.Decimal.String()
		}
		if r.PnL.Valid {
			pnl = r.PnL.Decimal.String()
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(r.ID),
			r.OpenedAt.UTC().Format(time.RFC3339),
			html.EscapeString(r.Symbol),
			r.Side,
			r.Entry.String(),
			r.Quantity.String(),
			r.StopLoss.String(),
			r.TakeProfit.String(),
			exit,
			pnl,
			r.Fee.String(),
			r.Status,
		)
	}
	b.WriteString("</table></body></html>")

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
