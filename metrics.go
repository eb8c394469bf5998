package tradebook

import (
	"time"

	"github.com/shopspring/decimal"
)

// Metrics is the derived view of a position's executions: entry and exit
// totals, the remaining quantity and the fee load. It is recomputed from the
// position on every call so it can never go stale.
type Metrics struct {
	CurrentQuantity   Quantity // total entries minus total exits
	AverageEntryPrice Money    // totalCost / totalQuantity, zero when no entries
	TotalCost         Money    // gross entry value, fee-exclusive
	TotalQuantity     Quantity
	TotalExitQuantity Quantity
	TotalExitValue    Money
	TotalFees         Money
}

// ComputeMetrics derives the metrics of a position. Pure function of the
// position's entries and exits.
func ComputeMetrics(p Position) Metrics {
	var totalQuantity, totalCost, fees decimal.Decimal
	for _, e := range p.Entries {
		totalQuantity = totalQuantity.Add(e.Quantity)
		totalCost = totalCost.Add(e.Value())
		fees = fees.Add(e.Fees)
	}

	var exitQuantity, exitValue decimal.Decimal
	for _, x := range p.Exits {
		exitQuantity = exitQuantity.Add(x.Quantity)
		exitValue = exitValue.Add(x.Value())
		fees = fees.Add(x.Fees)
	}

	average := decimal.Zero
	if !totalQuantity.IsZero() { // guards the divide by zero
		average = totalCost.Div(totalQuantity)
	}

	return Metrics{
		CurrentQuantity:   Q(totalQuantity.Sub(exitQuantity)),
		AverageEntryPrice: M(average, p.Currency),
		TotalCost:         M(totalCost, p.Currency),
		TotalQuantity:     Q(totalQuantity),
		TotalExitQuantity: Q(exitQuantity),
		TotalExitValue:    M(exitValue, p.Currency),
		TotalFees:         M(fees, p.Currency),
	}
}

// PnL returns the net realized profit or loss of the position, in the
// position's currency: gross P&L (direction-aware) minus all fees.
//
// With zero exits this is simply the negated fee total. That value is
// defined but not meaningful as realized P&L; callers should gate on
// Realized() before presenting it as such.
func (p Position) PnL() Money {
	m := ComputeMetrics(p)
	var gross Money
	if p.Side == Short {
		gross = m.TotalCost.Sub(m.TotalExitValue)
	} else {
		gross = m.TotalExitValue.Sub(m.TotalCost)
	}
	return gross.Sub(m.TotalFees)
}

// Realized reports whether at least one exit exists, i.e. whether PnL
// carries realized economics.
func (p Position) Realized() bool { return len(p.Exits) > 0 }

// ClosingTime returns the date of the most recent exit. Exits are not
// assumed sorted. The boolean is false when the position has no exits.
func (p Position) ClosingTime() (time.Time, bool) {
	if len(p.Exits) == 0 {
		return time.Time{}, false
	}
	latest := p.Exits[0].Date
	for _, x := range p.Exits[1:] {
		if x.Date.After(latest) {
			latest = x.Date
		}
	}
	return latest, true
}
