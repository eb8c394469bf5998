package tradebook

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestComputeMetrics(t *testing.T) {
	p := NewPosition("AAPL", Long, "USD", "", "", exec(day(2025, time.March, 3), 10, 150))
	if err := p.AddEntry(exec(day(2025, time.March, 5), 10, 160)); err != nil {
		t.Fatalf("AddEntry() error = %v", err)
	}
	if err := p.ApplyExit(exec(day(2025, time.March, 10), 4, 170)); err != nil {
		t.Fatalf("ApplyExit() error = %v", err)
	}

	m := ComputeMetrics(p)
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"TotalQuantity", m.TotalQuantity.String(), "20"},
		{"CurrentQuantity", m.CurrentQuantity.String(), "16"},
		{"TotalExitQuantity", m.TotalExitQuantity.String(), "4"},
		{"TotalCost", m.TotalCost.Amount().String(), "3100"},     // 10*150 + 10*160
		{"AverageEntryPrice", m.AverageEntryPrice.Amount().String(), "155"}, // 3100/20
		{"TotalExitValue", m.TotalExitValue.Amount().String(), "680"},
		{"TotalFees", m.TotalFees.Amount().String(), "1.08"}, // three default fees
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s = %s, want %s", tc.name, tc.got, tc.want)
		}
	}
}

func TestComputeMetrics_NoEntries(t *testing.T) {
	m := ComputeMetrics(Position{Currency: "USD"})
	if !m.AverageEntryPrice.IsZero() {
		t.Errorf("AverageEntryPrice = %s, want 0 with no entries", m.AverageEntryPrice.Amount())
	}
}

func TestPnL(t *testing.T) {
	t.Run("long round trip", func(t *testing.T) {
		// buy 10 @ 150, sell 10 @ 160, default fee on both legs
		p := NewPosition("AAPL", Long, "USD", "", "", exec(day(2025, time.March, 3), 10, 150))
		if err := p.ApplyExit(exec(day(2025, time.March, 10), 10, 160)); err != nil {
			t.Fatalf("ApplyExit() error = %v", err)
		}
		if got := p.PnL(); got.Amount().String() != "99.28" {
			t.Errorf("PnL = %s, want 99.28", got.Amount())
		}
		if !p.Realized() {
			t.Error("Realized() = false, want true")
		}
	})

	t.Run("short round trip", func(t *testing.T) {
		p := NewPosition("TSLA", Short, "USD", "", "", exec(day(2025, time.March, 3), 5, 200))
		if err := p.ApplyExit(exec(day(2025, time.March, 10), 5, 180)); err != nil {
			t.Fatalf("ApplyExit() error = %v", err)
		}
		// (1000 - 900) - 0.72
		if got := p.PnL(); got.Amount().String() != "99.28" {
			t.Errorf("PnL = %s, want 99.28", got.Amount())
		}
	})

	t.Run("losing long", func(t *testing.T) {
		p := NewPosition("AAPL", Long, "USD", "", "", exec(day(2025, time.March, 3), 10, 150))
		if err := p.ApplyExit(exec(day(2025, time.March, 10), 10, 140)); err != nil {
			t.Fatalf("ApplyExit() error = %v", err)
		}
		if got := p.PnL(); !got.IsNegative() {
			t.Errorf("PnL = %s, want negative", got.Amount())
		}
	})

	t.Run("no exits is negated fees", func(t *testing.T) {
		p := NewPosition("AAPL", Long, "USD", "", "", exec(day(2025, time.March, 3), 10, 150))
		if got := p.PnL(); got.Amount().String() != "-0.36" {
			t.Errorf("PnL = %s, want -0.36", got.Amount())
		}
		if p.Realized() {
			t.Error("Realized() = true, want false")
		}
	})
}

func TestClosingTime(t *testing.T) {
	p := NewPosition("AAPL", Long, "USD", "", "", exec(day(2025, time.March, 3), 10, 150))
	if _, ok := p.ClosingTime(); ok {
		t.Fatal("ClosingTime() ok = true with no exits")
	}

	// exits recorded out of order; the latest date must win
	p.Exits = append(p.Exits,
		NewExecution(day(2025, time.April, 20), decimal.NewFromInt(5), decimal.NewFromInt(160)),
		NewExecution(day(2025, time.April, 10), decimal.NewFromInt(5), decimal.NewFromInt(155)),
	)
	got, ok := p.ClosingTime()
	if !ok {
		t.Fatal("ClosingTime() ok = false, want true")
	}
	if want := day(2025, time.April, 20); !got.Equal(want) {
		t.Errorf("ClosingTime() = %v, want %v", got, want)
	}
}
