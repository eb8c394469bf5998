package tradebook

import (
	"math"
	"testing"
	"time"
)

// closedTrade builds a closed single-entry single-exit position whose net
// P&L is entirely controlled by the exit price.
func closedTrade(asset string, side Side, currency, strategyID string, opened, closed time.Time, qty, entry, exit float64) Position {
	p := NewPosition(asset, side, currency, strategyID, "", exec(opened, qty, entry))
	if err := p.ApplyExit(exec(closed, qty, exit)); err != nil {
		panic(err)
	}
	return p
}

func TestNewStatsReport_WinRate(t *testing.T) {
	mar := day(2025, time.March, 10)
	opened := day(2025, time.March, 1)
	closed := []Position{
		closedTrade("AAPL", Long, "USD", "", opened, mar, 10, 100, 110), // gain
		closedTrade("AAPL", Long, "USD", "", opened, mar, 10, 100, 90),  // loss
		closedTrade("MSFT", Long, "USD", "", opened, mar, 10, 100, 101), // gain
	}
	r := NewStatsReport(closed, nil, testLogger())

	if r.TotalTrades != 3 {
		t.Fatalf("TotalTrades = %d, want 3", r.TotalTrades)
	}
	if r.Wins != 2 {
		t.Errorf("Wins = %d, want 2", r.Wins)
	}
	if want := Percent(100 * 2.0 / 3.0); !r.WinRate.Equal(want) {
		t.Errorf("WinRate = %s, want %s", r.WinRate, want)
	}
}

func TestNewStatsReport_ZeroPnLIsWin(t *testing.T) {
	// a trade whose gross gain exactly covers the fees nets zero: a win
	p := NewPosition("AAPL", Long, "USD", "", "", exec(day(2025, time.March, 1), 1, 100))
	if err := p.ApplyExit(exec(day(2025, time.March, 2), 1, 100.72)); err != nil {
		t.Fatalf("ApplyExit() error = %v", err)
	}
	if !p.PnL().IsZero() {
		t.Fatalf("PnL = %s, want 0", p.PnL().Amount())
	}
	r := NewStatsReport([]Position{p}, nil, testLogger())
	if r.Wins != 1 {
		t.Errorf("Wins = %d, want 1 (zero P&L counts as win)", r.Wins)
	}
}

func TestNewStatsReport_Breakdowns(t *testing.T) {
	opened := day(2025, time.March, 1)
	mar := day(2025, time.March, 10)
	jun := day(2025, time.June, 10)
	strategies := []Strategy{{ID: "s1", Title: "Breakout"}}
	closed := []Position{
		closedTrade("AAPL", Long, "USD", "s1", opened, mar, 10, 100, 110),
		closedTrade("AAPL", Short, "USD", "gone", opened, jun, 10, 100, 90),
		closedTrade("SAP", Long, "EUR", "", opened, jun, 5, 50, 40),
	}
	r := NewStatsReport(closed, strategies, testLogger())

	if r.Long.Total != 2 || r.Short.Total != 1 {
		t.Errorf("side totals = %d long, %d short, want 2/1", r.Long.Total, r.Short.Total)
	}
	if r.Short.Wins != 1 {
		t.Errorf("Short.Wins = %d, want 1 (short gains when price drops)", r.Short.Wins)
	}

	if len(r.PnLByCurrency) != 2 {
		t.Fatalf("PnLByCurrency count = %d, want 2", len(r.PnLByCurrency))
	}
	// sorted by currency code
	if r.PnLByCurrency[0].Currency != "EUR" || r.PnLByCurrency[1].Currency != "USD" {
		t.Errorf("currencies = %s, %s, want EUR, USD", r.PnLByCurrency[0].Currency, r.PnLByCurrency[1].Currency)
	}

	if len(r.ByAsset) != 2 {
		t.Fatalf("ByAsset count = %d, want 2", len(r.ByAsset))
	}

	if len(r.ByStrategy) != 2 {
		t.Fatalf("ByStrategy count = %d, want 2", len(r.ByStrategy))
	}
	labels := map[string]string{}
	for _, s := range r.ByStrategy {
		labels[s.StrategyID] = s.Label
	}
	if labels["s1"] != "Breakout" {
		t.Errorf("label for s1 = %q, want Breakout", labels["s1"])
	}
	if labels["gone"] != UnknownStrategyLabel {
		t.Errorf("label for dangling id = %q, want %q", labels["gone"], UnknownStrategyLabel)
	}

	if len(r.Scatter) != 3 {
		t.Fatalf("Scatter count = %d, want 3", len(r.Scatter))
	}
	if r.Scatter[0].X != 10 {
		t.Errorf("Scatter[0].X = %v, want total entry quantity 10", r.Scatter[0].X)
	}
}

func TestNewStatsReport_SkipsMalformed(t *testing.T) {
	good := closedTrade("AAPL", Long, "USD", "", day(2025, time.March, 1), day(2025, time.March, 10), 10, 100, 110)
	bad := Position{Asset: "BROKEN", Side: Long, Currency: "USD"} // no entries
	r := NewStatsReport([]Position{good, bad}, nil, testLogger())
	if r.TotalTrades != 1 {
		t.Errorf("TotalTrades = %d, want 1 (malformed skipped)", r.TotalTrades)
	}
}

func TestProfitFactor(t *testing.T) {
	opened := day(2025, time.March, 1)
	mar := day(2025, time.March, 10)

	t.Run("no losses is infinite", func(t *testing.T) {
		r := NewStatsReport([]Position{
			closedTrade("AAPL", Long, "USD", "", opened, mar, 10, 100, 110),
		}, nil, testLogger())
		if !math.IsInf(r.ProfitFactor(), 1) {
			t.Errorf("ProfitFactor = %v, want +Inf", r.ProfitFactor())
		}
		if !math.IsInf(r.RewardRisk(), 1) {
			t.Errorf("RewardRisk = %v, want +Inf", r.RewardRisk())
		}
	})

	t.Run("gains over losses", func(t *testing.T) {
		// fees make exact round numbers awkward, so assert a range
		r := NewStatsReport([]Position{
			closedTrade("AAPL", Long, "USD", "", opened, mar, 10, 100, 120), // +199.28
			closedTrade("AAPL", Long, "USD", "", opened, mar, 10, 100, 90),  // -100.72
		}, nil, testLogger())
		pf := r.ProfitFactor()
		if pf < 1.9 || pf > 2.1 {
			t.Errorf("ProfitFactor = %v, want about 1.98", pf)
		}
	})
}

func TestMonthly(t *testing.T) {
	opened := day(2025, time.March, 1)
	closed := []Position{
		closedTrade("AAPL", Long, "USD", "", opened, day(2025, time.March, 10), 10, 100, 110),
		closedTrade("AAPL", Long, "USD", "", opened, day(2025, time.March, 20), 10, 100, 90),
		closedTrade("AAPL", Long, "USD", "", opened, day(2025, time.June, 5), 10, 100, 110),
		closedTrade("AAPL", Long, "USD", "", opened, day(2024, time.June, 5), 10, 100, 110),
	}
	r := NewStatsReport(closed, nil, testLogger())

	m := r.Monthly(2025)
	if m.Trades[int(time.March)-1] != 2 {
		t.Errorf("March trades = %d, want 2", m.Trades[int(time.March)-1])
	}
	if m.Wins[int(time.March)-1] != 1 {
		t.Errorf("March wins = %d, want 1", m.Wins[int(time.March)-1])
	}
	if m.Trades[int(time.June)-1] != 1 {
		t.Errorf("June trades = %d, want 1 (2024 close excluded)", m.Trades[int(time.June)-1])
	}
	if m.Trades[int(time.January)-1] != 0 {
		t.Errorf("January trades = %d, want 0", m.Trades[int(time.January)-1])
	}
}

func TestYearCursor(t *testing.T) {
	opened := day(2024, time.March, 1)
	closed := []Position{
		closedTrade("AAPL", Long, "USD", "", opened, day(2024, time.June, 5), 10, 100, 110),
		closedTrade("AAPL", Long, "USD", "", opened, day(2026, time.June, 5), 10, 100, 110),
	}
	r := NewStatsReport(closed, nil, testLogger())

	min, max, ok := r.YearBounds()
	if !ok || min != 2024 || max != 2026 {
		t.Fatalf("YearBounds() = %d, %d, %v, want 2024, 2026, true", min, max, ok)
	}

	c := NewYearCursor(r, 2030)
	if c.Year() != 2026 {
		t.Errorf("Year() = %d, want clamped to 2026", c.Year())
	}
	if !c.NextDisabled() {
		t.Error("NextDisabled() = false at upper bound")
	}
	c.Prev()
	c.Prev()
	if c.Year() != 2024 {
		t.Errorf("Year() = %d, want 2024 after two Prev", c.Year())
	}
	if c.Prev(); c.Year() != 2024 {
		t.Errorf("Year() = %d, Prev must stop at lower bound", c.Year())
	}
	if !c.PrevDisabled() {
		t.Error("PrevDisabled() = false at lower bound")
	}
}

func TestCumulative(t *testing.T) {
	opened := day(2025, time.March, 1)
	closed := []Position{
		// deliberately out of closing order
		closedTrade("AAPL", Long, "USD", "", opened, day(2025, time.May, 1), 10, 100, 110), // +99.28
		closedTrade("AAPL", Long, "USD", "", opened, day(2025, time.April, 1), 10, 100, 90), // -100.72
	}
	r := NewStatsReport(closed, nil, testLogger())

	series := r.Cumulative["USD"]
	if len(series) != 2 {
		t.Fatalf("series length = %d, want 2", len(series))
	}
	if !series[0].Date.Equal(day(2025, time.April, 1)) {
		t.Errorf("series[0].Date = %v, want the earliest closing date", series[0].Date)
	}
	if series[0].Total.String() != "-100.72" {
		t.Errorf("series[0].Total = %s, want -100.72", series[0].Total)
	}
	if series[1].Total.String() != "-1.44" {
		t.Errorf("series[1].Total = %s, want -1.44", series[1].Total)
	}
}
