// Package renderer turns the engine's reports into markdown strings. It
// holds no state and performs no computation beyond formatting; every number
// it prints was produced by the tradebook package.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/misterh06/tradebook"
)

// DashboardMarkdown renders the open positions with their derived metrics.
func DashboardMarkdown(open []tradebook.Position, strategies tradebook.StrategyIndex) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Open Positions")
	if len(open) == 0 {
		doc.PlainText("No open position.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
			md.AlignLeft,
		},
		Header: []string{"Date", "Asset", "Quantity", "Avg Entry", "Cost", "Type", "Strategy"},
		Rows:   [][]string{},
	}
	for _, p := range open {
		m := tradebook.ComputeMetrics(p)
		table.Rows = append(table.Rows, []string{
			p.CreatedAt.Format("2006-01-02"),
			p.Asset,
			m.CurrentQuantity.String(),
			m.AverageEntryPrice.String(),
			m.TotalCost.String(),
			string(p.Side),
			strategies.Title(p.StrategyID),
		})
	}
	doc.Table(table)
	return doc.String()
}

// BalancesMarkdown renders the per-currency cash balances, hiding the
// near-zero residues the report classifies as invisible.
func BalancesMarkdown(r *tradebook.BalanceReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Account Balances")
	visible := r.Visible()
	if len(visible) == 0 {
		doc.PlainText("No balance to show.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Currency", "Balance"},
		Rows:      [][]string{},
	}
	for _, b := range visible {
		table.Rows = append(table.Rows, []string{b.Currency, b.Balance.String()})
	}
	doc.Table(table)
	return doc.String()
}

func signed(m tradebook.Money) string { return m.SignedString() }

func pct(p tradebook.Percent) string { return p.String() }

func itoa(n int) string { return fmt.Sprintf("%d", n) }
