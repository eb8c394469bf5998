package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/misterh06/tradebook"
)

// HistoryMarkdown renders one page of closed positions with its range
// footer ("Showing 21-40 of 57").
func HistoryMarkdown(pg *tradebook.Pager, strategies tradebook.StrategyIndex) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Trade History")
	page := pg.Page()
	if len(page) == 0 {
		doc.PlainText("No closed position yet.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Opened", "Asset", "Type", "Quantity", "Net P&L", "Strategy"},
		Rows:   [][]string{},
	}
	for _, p := range page {
		m := tradebook.ComputeMetrics(p)
		table.Rows = append(table.Rows, []string{
			p.CreatedAt.Format("2006-01-02"),
			p.Asset,
			string(p.Side),
			m.TotalQuantity.String(),
			signed(p.PnL()),
			strategies.Title(p.StrategyID),
		})
	}
	doc.Table(table)

	first, last, total := pg.RangeInfo()
	doc.PlainText(fmt.Sprintf("Showing %d-%d of %d (page %d/%d)",
		first, last, total, pg.CurrentPage(), pg.TotalPages()))
	return doc.String()
}
