package renderer

import (
	"bytes"
	"fmt"
	"math"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/misterh06/tradebook"
)

// StatsMarkdown renders the full statistics bundle: headline numbers,
// per-currency P&L, side and asset breakdowns, strategy attribution and the
// monthly table for the cursor's year.
func StatsMarkdown(r *tradebook.StatsReport, year *tradebook.YearCursor) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Statistics")
	if r.TotalTrades == 0 {
		doc.PlainText("No closed position yet.")
		return doc.String()
	}

	doc.H2("Summary")
	doc.BulletList(
		fmt.Sprintf("Closed trades: %d", r.TotalTrades),
		fmt.Sprintf("Wins: %d", r.Wins),
		fmt.Sprintf("Win rate: %s", pct(r.WinRate)),
		fmt.Sprintf("Profit factor: %s", ratio(r.ProfitFactor())),
		fmt.Sprintf("Reward/risk: %s", ratio(r.RewardRisk())),
	)

	doc.H2("Net P&L by currency")
	pnlTable := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Currency", "Net P&L"},
		Rows:      [][]string{},
	}
	for _, b := range r.PnLByCurrency {
		pnlTable.Rows = append(pnlTable.Rows, []string{b.Currency, signed(b.Balance)})
	}
	doc.Table(pnlTable)

	doc.H2("By direction")
	sideTable := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Direction", "Trades", "Wins", "Win rate"},
		Rows: [][]string{
			{string(r.Long.Side), itoa(r.Long.Total), itoa(r.Long.Wins), pct(r.Long.WinRate)},
			{string(r.Short.Side), itoa(r.Short.Total), itoa(r.Short.Wins), pct(r.Short.WinRate)},
		},
	}
	doc.Table(sideTable)

	doc.H2("By asset")
	assetTable := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Asset", "Trades", "Wins", "Win rate"},
		Rows:      [][]string{},
	}
	for _, a := range r.ByAsset {
		assetTable.Rows = append(assetTable.Rows, []string{a.Asset, itoa(a.Total), itoa(a.Wins), pct(a.WinRate)})
	}
	doc.Table(assetTable)

	doc.H2("By strategy")
	stratTable := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Strategy", "Net P&L"},
		Rows:      [][]string{},
	}
	for _, s := range r.ByStrategy {
		stratTable.Rows = append(stratTable.Rows, []string{s.Label, s.TotalPnL.StringFixed(2)})
	}
	doc.Table(stratTable)

	monthly := r.Monthly(year.Year())
	doc.H2(fmt.Sprintf("Monthly %d", monthly.Year))
	monthTable := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Month", "Trades", "Net P&L", "Win rate"},
		Rows:      [][]string{},
	}
	for i := 0; i < 12; i++ {
		if monthly.Trades[i] == 0 {
			continue
		}
		monthTable.Rows = append(monthTable.Rows, []string{
			time.Month(i + 1).String(),
			itoa(monthly.Trades[i]),
			monthly.PnL[i].StringFixed(2),
			pct(monthly.WinRate[i]),
		})
	}
	doc.Table(monthTable)

	return doc.String()
}

// ratio prints a profit-factor style value; an infinite ratio means there
// was no losing side at all.
func ratio(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", v)
}
