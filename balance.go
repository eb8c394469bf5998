package tradebook

import (
	"slices"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// displayEpsilon is the absolute balance under which a currency is treated
// as effectively zero for display. The underlying map keeps the exact value.
var displayEpsilon = decimal.NewFromFloat(0.001)

// CurrencyBalance is the net cash balance of one currency.
type CurrencyBalance struct {
	Currency string
	Balance  Money
}

// BalanceReport maps currency codes to net balances: account entries folded
// first, then the net P&L of every closed position with a defined currency.
type BalanceReport struct {
	balances map[string]decimal.Decimal
}

// NewBalanceReport folds account entries and closed positions into a
// per-currency balance map. Malformed records are skipped with a diagnostic
// so that one bad document cannot abort the whole aggregate.
func NewBalanceReport(entries []AccountEntry, closed []Position, log zerolog.Logger) *BalanceReport {
	r := &BalanceReport{balances: make(map[string]decimal.Decimal)}

	for _, e := range entries {
		switch v := e.(type) {
		case Deposit:
			if v.Amount.Currency() == "" {
				log.Warn().Time("date", v.When()).Msg("skipping deposit with no currency")
				continue
			}
			r.add(v.Amount)
		case Withdrawal:
			if v.Amount.Currency() == "" {
				log.Warn().Time("date", v.When()).Msg("skipping withdrawal with no currency")
				continue
			}
			r.add(v.Amount.Neg())
		case Conversion:
			if v.From.Currency() == "" && v.To.Currency() == "" {
				log.Warn().Time("date", v.When()).Msg("skipping conversion with no currency")
				continue
			}
			if v.From.Currency() != "" {
				r.add(v.From.Neg())
			}
			if v.To.Currency() != "" {
				r.add(v.To)
			}
		default:
			log.Warn().Str("type", string(e.What())).Msg("skipping unknown account entry type")
		}
	}

	for _, p := range closed {
		if p.Currency == "" {
			log.Warn().Str("position", p.ID).Msg("skipping closed position with no currency")
			continue
		}
		if err := p.Validate(); err != nil {
			log.Warn().Err(err).Str("position", p.ID).Msg("skipping malformed position")
			continue
		}
		r.add(p.PnL())
	}

	return r
}

func (r *BalanceReport) add(m Money) {
	r.balances[m.Currency()] = r.balances[m.Currency()].Add(m.Amount())
}

// Balance returns the net balance for a currency, zero when unknown.
func (r *BalanceReport) Balance(currency string) Money {
	return M(r.balances[currency], currency)
}

// Currencies returns all currency codes present in the map, sorted.
func (r *BalanceReport) Currencies() []string {
	codes := make([]string, 0, len(r.balances))
	for c := range r.balances {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}

// All returns every balance in currency order, including the near-zero ones.
func (r *BalanceReport) All() []CurrencyBalance {
	out := make([]CurrencyBalance, 0, len(r.balances))
	for _, c := range r.Currencies() {
		out = append(out, CurrencyBalance{Currency: c, Balance: r.Balance(c)})
	}
	return out
}

// Visible returns the balances worth displaying, in currency order.
// Balances within displayEpsilon of zero are suppressed from this view but
// remain in the underlying map.
func (r *BalanceReport) Visible() []CurrencyBalance {
	out := make([]CurrencyBalance, 0, len(r.balances))
	for _, b := range r.All() {
		if b.Balance.Amount().Abs().GreaterThan(displayEpsilon) {
			out = append(out, b)
		}
	}
	return out
}
