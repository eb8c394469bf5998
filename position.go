package tradebook

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultFee is the per-transaction fee applied when none is given.
var DefaultFee = decimal.NewFromFloat(0.36)

// closeTolerance is the quantity below which a position is considered flat.
var closeTolerance = decimal.New(1, -9) // 1e-9

// Side identifies the direction of a position.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// ParseSide parses a string into a Side.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(s)) {
	case Long:
		return Long, nil
	case Short:
		return Short, nil
	default:
		return "", fmt.Errorf("unknown position side: %q", s)
	}
}

// Status is the lifecycle state of a position. It only ever moves from
// StatusOpen to StatusClosed.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Validation errors, checked with errors.Is before any store call is made.
var (
	ErrOverExit       = errors.New("exit quantity exceeds held quantity")
	ErrPositionClosed = errors.New("position is closed")
	ErrNoEntries      = errors.New("position has no entries")
	ErrBadEntryIndex  = errors.New("no entry at this index")
)

// Execution is the shared shape of an entry or exit transaction: a quantity
// traded at a price on a date, plus the fee charged for the trade.
// Price is expressed in the owning position's currency.
type Execution struct {
	Date     time.Time       `json:"date"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fees     decimal.Decimal `json:"fees"`
}

// NewExecution creates an execution carrying the default per-transaction fee.
func NewExecution(on time.Time, quantity, price decimal.Decimal) Execution {
	return Execution{Date: on, Quantity: quantity, Price: price, Fees: DefaultFee}
}

// Validate checks the execution's fields.
func (e Execution) Validate() error {
	if !e.Quantity.IsPositive() {
		return fmt.Errorf("execution quantity must be positive, got %s", e.Quantity)
	}
	if !e.Price.IsPositive() {
		return fmt.Errorf("execution price must be positive, got %s", e.Price)
	}
	if e.Fees.IsNegative() {
		return fmt.Errorf("execution fees must not be negative, got %s", e.Fees)
	}
	return nil
}

// Value is the gross traded value, quantity times price.
func (e Execution) Value() decimal.Decimal { return e.Quantity.Mul(e.Price) }

// Position is a tracked holding in one asset: one or more entries and zero
// or more exits. The cumulative exit quantity never exceeds the cumulative
// entry quantity; when the two are equal (within closeTolerance) the
// position is closed and never reopens.
type Position struct {
	ID         string      `json:"-"` // assigned by the store on creation
	Asset      string      `json:"asset"`
	Side       Side        `json:"type"`
	Currency   string      `json:"currency"`
	Status     Status      `json:"status"`
	StrategyID string      `json:"strategyId,omitempty"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	Entries    []Execution `json:"entries"`
	Exits      []Execution `json:"exits"`
}

// NewPosition opens a position with its initial entry. Asset and currency
// are uppercase-normalized; creation time is the first entry's date.
func NewPosition(asset string, side Side, currency, strategyID, notes string, first Execution) Position {
	return Position{
		Asset:      strings.ToUpper(strings.TrimSpace(asset)),
		Side:       side,
		Currency:   strings.ToUpper(strings.TrimSpace(currency)),
		Status:     StatusOpen,
		StrategyID: strategyID,
		Notes:      notes,
		CreatedAt:  first.Date,
		Entries:    []Execution{first},
		Exits:      []Execution{},
	}
}

// Validate reports structural problems on a position record. Aggregates use
// it to skip malformed documents rather than abort.
func (p Position) Validate() error {
	if len(p.Entries) == 0 {
		return ErrNoEntries
	}
	if p.Side != Long && p.Side != Short {
		return fmt.Errorf("unknown position side: %q", p.Side)
	}
	for _, e := range p.Entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("invalid entry: %w", err)
		}
	}
	for _, x := range p.Exits {
		if err := x.Validate(); err != nil {
			return fmt.Errorf("invalid exit: %w", err)
		}
	}
	return nil
}

// AddEntry appends a reinforcement entry. Only open positions accept new
// entries; the status never changes on this path.
func (p *Position) AddEntry(e Execution) error {
	if p.Status != StatusOpen {
		return ErrPositionClosed
	}
	if err := e.Validate(); err != nil {
		return err
	}
	p.Entries = append(p.Entries, e)
	return nil
}

// ApplyExit appends an exit after checking it against the held quantity.
// The exit is rejected when it exceeds the current quantity by more than
// closeTolerance; when it brings the current quantity within closeTolerance
// of zero the position transitions to closed.
func (p *Position) ApplyExit(x Execution) error {
	if p.Status != StatusOpen {
		return ErrPositionClosed
	}
	if err := x.Validate(); err != nil {
		return err
	}
	held := ComputeMetrics(*p).CurrentQuantity.Decimal()
	if x.Quantity.Sub(held).GreaterThan(closeTolerance) {
		return fmt.Errorf("%w: requested %s, held %s", ErrOverExit, x.Quantity, held)
	}
	p.Exits = append(p.Exits, x)
	if held.Sub(x.Quantity).Abs().LessThanOrEqual(closeTolerance) {
		p.Status = StatusClosed
	}
	return nil
}

// ReplaceEntry swaps the entry at index i for a corrected one, preserving
// the original fees when the replacement does not specify any. Only open
// positions may be corrected.
func (p *Position) ReplaceEntry(i int, e Execution) error {
	if p.Status != StatusOpen {
		return ErrPositionClosed
	}
	if i < 0 || i >= len(p.Entries) {
		return ErrBadEntryIndex
	}
	if e.Fees.IsZero() {
		e.Fees = p.Entries[i].Fees
	}
	if err := e.Validate(); err != nil {
		return err
	}
	p.Entries[i] = e
	return nil
}

// IsClosed reports whether the position is fully exited.
func (p Position) IsClosed() bool { return p.Status == StatusClosed }
