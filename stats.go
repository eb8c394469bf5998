package tradebook

import (
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AssetStats holds the trade count and win rate of one asset.
type AssetStats struct {
	Asset   string
	Total   int
	Wins    int
	WinRate Percent
}

// SideStats aggregates one direction (long or short) across all currencies.
type SideStats struct {
	Side     Side
	Total    int
	Wins     int
	TotalPnL decimal.Decimal
	WinRate  Percent
}

// StrategyPnL is the total net P&L attributed to one strategy.
type StrategyPnL struct {
	StrategyID string
	Label      string // resolved title, UnknownStrategyLabel for dangling ids
	TotalPnL   decimal.Decimal
}

// ScatterPoint relates a position's size to its net P&L. X is the total
// entry quantity, Y the net P&L; Gain follows the y >= 0 convention.
type ScatterPoint struct {
	X    float64
	Y    float64
	Gain bool
}

// CumulativePoint is one step of a per-currency running P&L series, in
// closing-time order.
type CumulativePoint struct {
	Date  time.Time
	Total decimal.Decimal
}

// MonthlyReport buckets one year of closed positions into twelve months,
// January to December, keyed by closing date.
type MonthlyReport struct {
	Year    int
	PnL     [12]decimal.Decimal
	Trades  [12]int
	Wins    [12]int
	WinRate [12]Percent
}

// StatsReport is the full aggregate bundle computed over every closed
// position. It is rebuilt wholesale from the full-history fetch; nothing in
// it is incremental.
type StatsReport struct {
	TotalTrades   int
	Wins          int
	WinRate       Percent // wins / total × 100, 0 when total is 0
	PnLByCurrency []CurrencyBalance
	ByAsset       []AssetStats
	Long, Short   SideStats
	ByStrategy    []StrategyPnL
	Scatter       []ScatterPoint
	Cumulative    map[string][]CumulativePoint // per currency

	AverageGain decimal.Decimal // mean of strictly positive P&L
	AverageLoss decimal.Decimal // mean of |strictly negative P&L|
	totalGains  decimal.Decimal
	totalLosses decimal.Decimal

	positions []Position // validated closed set, for monthly bucketing
	minYear   int
	maxYear   int
}

// NewStatsReport computes the aggregate bundle from the full closed-position
// set. Malformed positions are skipped with a diagnostic; one bad record
// never aborts the aggregate.
func NewStatsReport(closed []Position, strategies []Strategy, log zerolog.Logger) *StatsReport {
	r := &StatsReport{
		Long:       SideStats{Side: Long},
		Short:      SideStats{Side: Short},
		Cumulative: make(map[string][]CumulativePoint),
	}

	for _, p := range closed {
		if err := p.Validate(); err != nil {
			log.Warn().Err(err).Str("position", p.ID).Msg("skipping malformed position in statistics")
			continue
		}
		r.positions = append(r.positions, p)
	}

	pnlByCurrency := make(map[string]decimal.Decimal)
	assets := make(map[string]*AssetStats)
	strategyPnL := make(map[string]decimal.Decimal)
	var gains, losses []decimal.Decimal

	for _, p := range r.positions {
		pnl := p.PnL()
		win := !pnl.IsNegative() // P&L >= 0 counts as a win, zero included

		r.TotalTrades++
		if win {
			r.Wins++
		}

		currency := p.Currency
		if currency == "" {
			currency = "UNKNOWN"
		}
		pnlByCurrency[currency] = pnlByCurrency[currency].Add(pnl.Amount())

		a, ok := assets[p.Asset]
		if !ok {
			a = &AssetStats{Asset: p.Asset}
			assets[p.Asset] = a
		}
		a.Total++
		if win {
			a.Wins++
		}

		side := &r.Long
		if p.Side == Short {
			side = &r.Short
		}
		side.Total++
		side.TotalPnL = side.TotalPnL.Add(pnl.Amount())
		if win {
			side.Wins++
		}

		if p.StrategyID != "" {
			strategyPnL[p.StrategyID] = strategyPnL[p.StrategyID].Add(pnl.Amount())
		}

		switch {
		case pnl.IsPositive():
			gains = append(gains, pnl.Amount())
		case pnl.IsNegative():
			losses = append(losses, pnl.Amount().Abs())
		}

		r.Scatter = append(r.Scatter, ScatterPoint{
			X:    ComputeMetrics(p).TotalQuantity.AsFloat(),
			Y:    pnl.AsFloat(),
			Gain: !pnl.IsNegative(),
		})
	}

	r.WinRate = rate(r.Wins, r.TotalTrades)
	r.Long.WinRate = rate(r.Long.Wins, r.Long.Total)
	r.Short.WinRate = rate(r.Short.Wins, r.Short.Total)

	for _, c := range sortedKeys(pnlByCurrency) {
		r.PnLByCurrency = append(r.PnLByCurrency, CurrencyBalance{Currency: c, Balance: M(pnlByCurrency[c], c)})
	}
	for _, a := range sortedKeys(assets) {
		s := *assets[a]
		s.WinRate = rate(s.Wins, s.Total)
		r.ByAsset = append(r.ByAsset, s)
	}
	idx := NewStrategyIndex(strategies)
	for _, id := range sortedKeys(strategyPnL) {
		r.ByStrategy = append(r.ByStrategy, StrategyPnL{
			StrategyID: id,
			Label:      idx.Title(id),
			TotalPnL:   strategyPnL[id],
		})
	}

	r.AverageGain, r.totalGains = mean(gains)
	r.AverageLoss, r.totalLosses = mean(losses)

	r.computeCumulative()
	r.computeYearBounds()
	return r
}

// ProfitFactor is total gains over total losses, +Inf when there are no
// losses.
func (r *StatsReport) ProfitFactor() float64 {
	if r.totalLosses.IsZero() {
		return math.Inf(1)
	}
	return r.totalGains.Div(r.totalLosses).InexactFloat64()
}

// RewardRisk is the realized reward-to-risk ratio, average gain over average
// loss, +Inf when the average loss is zero.
func (r *StatsReport) RewardRisk() float64 {
	if r.AverageLoss.IsZero() {
		return math.Inf(1)
	}
	return r.AverageGain.Div(r.AverageLoss).InexactFloat64()
}

// Monthly buckets the positions whose closing date falls in the given year.
func (r *StatsReport) Monthly(year int) MonthlyReport {
	m := MonthlyReport{Year: year}
	for _, p := range r.positions {
		closed, ok := p.ClosingTime()
		if !ok || closed.Year() != year {
			continue
		}
		i := int(closed.Month()) - 1
		pnl := p.PnL()
		m.PnL[i] = m.PnL[i].Add(pnl.Amount())
		m.Trades[i]++
		if !pnl.IsNegative() {
			m.Wins[i]++
		}
	}
	for i := range m.WinRate {
		m.WinRate[i] = rate(m.Wins[i], m.Trades[i])
	}
	return m
}

// YearBounds returns the minimum and maximum year among closing dates. The
// boolean is false when no position has a closing date.
func (r *StatsReport) YearBounds() (min, max int, ok bool) {
	if r.minYear == 0 {
		return 0, 0, false
	}
	return r.minYear, r.maxYear, true
}

func (r *StatsReport) computeYearBounds() {
	for _, p := range r.positions {
		closed, ok := p.ClosingTime()
		if !ok {
			continue
		}
		y := closed.Year()
		if r.minYear == 0 || y < r.minYear {
			r.minYear = y
		}
		if y > r.maxYear {
			r.maxYear = y
		}
	}
}

func (r *StatsReport) computeCumulative() {
	ordered := make([]Position, len(r.positions))
	copy(ordered, r.positions)
	slices.SortStableFunc(ordered, func(a, b Position) int {
		at, _ := a.ClosingTime()
		bt, _ := b.ClosingTime()
		return at.Compare(bt)
	})

	running := make(map[string]decimal.Decimal)
	for _, p := range ordered {
		closed, ok := p.ClosingTime()
		if !ok {
			continue
		}
		running[p.Currency] = running[p.Currency].Add(p.PnL().Amount())
		r.Cumulative[p.Currency] = append(r.Cumulative[p.Currency], CumulativePoint{
			Date:  closed,
			Total: running[p.Currency],
		})
	}
}

// YearCursor navigates the selectable statistics year, clamped to the
// closing-date bounds of the report.
type YearCursor struct {
	year     int
	min, max int
}

// NewYearCursor starts a cursor on the given year, clamped into the
// report's bounds. With an empty report the cursor stays on the start year.
func NewYearCursor(r *StatsReport, start int) *YearCursor {
	c := &YearCursor{year: start, min: start, max: start}
	if min, max, ok := r.YearBounds(); ok {
		c.min, c.max = min, max
		if c.year < min {
			c.year = min
		}
		if c.year > max {
			c.year = max
		}
	}
	return c
}

func (c *YearCursor) Year() int { return c.year }

// Prev moves one year back, stopping at the lower bound.
func (c *YearCursor) Prev() int {
	if c.year > c.min {
		c.year--
	}
	return c.year
}

// Next moves one year forward, stopping at the upper bound.
func (c *YearCursor) Next() int {
	if c.year < c.max {
		c.year++
	}
	return c.year
}

func (c *YearCursor) PrevDisabled() bool { return c.year <= c.min }
func (c *YearCursor) NextDisabled() bool { return c.year >= c.max }

func rate(wins, total int) Percent {
	if total == 0 {
		return 0
	}
	return Percent(float64(wins) / float64(total) * 100)
}

func mean(values []decimal.Decimal) (avg, total decimal.Decimal) {
	for _, v := range values {
		total = total.Add(v)
	}
	if len(values) == 0 {
		return decimal.Zero, total
	}
	return total.Div(decimal.NewFromInt(int64(len(values)))), total
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
