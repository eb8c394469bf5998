package renderer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/misterh06/tradebook"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(on time.Time, qty, price float64) tradebook.Execution {
	return tradebook.NewExecution(on, decimal.NewFromFloat(qty), decimal.NewFromFloat(price))
}

func closedPosition(asset string, opened, closed time.Time, qty, in, out float64) tradebook.Position {
	p := tradebook.NewPosition(asset, tradebook.Long, "USD", "", "", entry(opened, qty, in))
	if err := p.ApplyExit(entry(closed, qty, out)); err != nil {
		panic(err)
	}
	return p
}

func testLogger() zerolog.Logger { return zerolog.New(nil).Level(zerolog.Disabled) }

func TestDashboardMarkdown(t *testing.T) {
	open := []tradebook.Position{
		tradebook.NewPosition("AAPL", tradebook.Long, "USD", "s1", "", entry(day(2025, time.March, 3), 10, 150)),
	}
	idx := tradebook.NewStrategyIndex([]tradebook.Strategy{{ID: "s1", Title: "Breakout"}})

	got := DashboardMarkdown(open, idx)
	for _, want := range []string{"Open Positions", "AAPL", "Breakout", "10"} {
		if !strings.Contains(got, want) {
			t.Errorf("dashboard missing %q:\n%s", want, got)
		}
	}
}

func TestDashboardMarkdown_Empty(t *testing.T) {
	got := DashboardMarkdown(nil, tradebook.NewStrategyIndex(nil))
	if !strings.Contains(got, "No open position") {
		t.Errorf("empty dashboard = %q", got)
	}
}

func TestHistoryMarkdown_RangeFooter(t *testing.T) {
	ctx := context.Background()
	store := tradebook.NewMemStore()
	base := day(2025, time.January, 1)
	for i := 0; i < 25; i++ {
		p := closedPosition("AAPL", base.Add(time.Duration(i)*time.Hour), base.Add(time.Duration(i)*time.Hour+time.Minute), 10, 100, 110)
		if _, err := store.InsertPosition(ctx, p); err != nil {
			t.Fatalf("InsertPosition() error = %v", err)
		}
	}
	pg := tradebook.NewPager(store)
	if err := pg.FirstPage(ctx); err != nil {
		t.Fatalf("FirstPage() error = %v", err)
	}
	if err := pg.NextPage(ctx); err != nil {
		t.Fatalf("NextPage() error = %v", err)
	}

	got := HistoryMarkdown(pg, tradebook.NewStrategyIndex(nil))
	if !strings.Contains(got, "Showing 21-25 of 25 (page 2/2)") {
		t.Errorf("history missing range footer:\n%s", got)
	}
}

func TestStatsMarkdown(t *testing.T) {
	closed := []tradebook.Position{
		closedPosition("AAPL", day(2025, time.March, 1), day(2025, time.March, 10), 10, 100, 110),
		closedPosition("AAPL", day(2025, time.March, 1), day(2025, time.March, 20), 10, 100, 90),
	}
	r := tradebook.NewStatsReport(closed, nil, testLogger())
	year := tradebook.NewYearCursor(r, 2025)

	got := StatsMarkdown(r, year)
	for _, want := range []string{"Statistics", "Closed trades: 2", "Win rate: 50.00%", "Monthly 2025", "March"} {
		if !strings.Contains(got, want) {
			t.Errorf("stats missing %q:\n%s", want, got)
		}
	}
}

func TestStatsMarkdown_Empty(t *testing.T) {
	r := tradebook.NewStatsReport(nil, nil, testLogger())
	got := StatsMarkdown(r, tradebook.NewYearCursor(r, 2025))
	if !strings.Contains(got, "No closed position yet") {
		t.Errorf("empty stats = %q", got)
	}
}

func TestBalancesMarkdown(t *testing.T) {
	entries := []tradebook.AccountEntry{
		tradebook.NewDeposit(day(2025, time.January, 5), tradebook.M(1000, "USD")),
	}
	r := tradebook.NewBalanceReport(entries, nil, testLogger())
	got := BalancesMarkdown(r)
	if !strings.Contains(got, "USD") {
		t.Errorf("balances missing USD:\n%s", got)
	}
}
