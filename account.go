package tradebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind is a typed string identifying account transaction variants.
type EntryKind string

const (
	KindDeposit    EntryKind = "deposit"
	KindWithdrawal EntryKind = "withdrawal"
	KindConversion EntryKind = "conversion"
)

// AccountEntry is the common interface of all cash-account transactions.
// Entries are immutable once created; there is no update path.
type AccountEntry interface {
	What() EntryKind // What returns the variant of the entry.
	When() time.Time // When returns the date on which the entry occurred.
	Validate() error
}

type baseEntry struct {
	Kind EntryKind `json:"type"`
	Date time.Time `json:"date"`
}

func (e baseEntry) What() EntryKind { return e.Kind }
func (e baseEntry) When() time.Time { return e.Date }

// Deposit adds cash to the account in one currency.
type Deposit struct {
	baseEntry
	Amount Money
}

// NewDeposit creates a deposit of the given amount.
func NewDeposit(on time.Time, amount Money) Deposit {
	return Deposit{baseEntry: baseEntry{Kind: KindDeposit, Date: on}, Amount: amount}
}

func (e Deposit) Validate() error { return validateCash(e.Amount) }

func (e Deposit) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(e.baseEntry)
	w.Append("amount", e.Amount.Amount())
	w.Append("currency", e.Amount.Currency())
	return w.MarshalJSON()
}

// Withdrawal removes cash from the account in one currency.
type Withdrawal struct {
	baseEntry
	Amount Money
}

// NewWithdrawal creates a withdrawal of the given amount.
func NewWithdrawal(on time.Time, amount Money) Withdrawal {
	return Withdrawal{baseEntry: baseEntry{Kind: KindWithdrawal, Date: on}, Amount: amount}
}

func (e Withdrawal) Validate() error { return validateCash(e.Amount) }

func (e Withdrawal) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(e.baseEntry)
	w.Append("amount", e.Amount.Amount())
	w.Append("currency", e.Amount.Currency())
	return w.MarshalJSON()
}

// Conversion exchanges cash from one currency into another at a rate.
// Invariant: To = From × Rate.
type Conversion struct {
	baseEntry
	From Money
	To   Money
	Rate decimal.Decimal
}

// NewConversion creates a conversion; the target amount is derived from the
// source amount and the rate, which keeps the invariant true by construction.
func NewConversion(on time.Time, from Money, rate decimal.Decimal, toCurrency string) Conversion {
	return Conversion{
		baseEntry: baseEntry{Kind: KindConversion, Date: on},
		From:      from,
		To:        M(from.Amount().Mul(rate), strings.ToUpper(toCurrency)),
		Rate:      rate,
	}
}

func (e Conversion) Validate() error {
	if err := validateCash(e.From); err != nil {
		return err
	}
	if err := validateCash(e.To); err != nil {
		return err
	}
	if !e.Rate.IsPositive() {
		return fmt.Errorf("conversion rate must be positive, got %s", e.Rate)
	}
	if !e.From.Amount().Mul(e.Rate).Equal(e.To.Amount()) {
		return fmt.Errorf("conversion of %s at %s does not yield %s", e.From, e.Rate, e.To)
	}
	return nil
}

func (e Conversion) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(e.baseEntry)
	w.Append("fromAmount", e.From.Amount())
	w.Append("fromCurrency", e.From.Currency())
	w.Append("toAmount", e.To.Amount())
	w.Append("toCurrency", e.To.Currency())
	w.Append("rate", e.Rate)
	return w.MarshalJSON()
}

func validateCash(m Money) error {
	if !m.Amount().IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", m.Amount())
	}
	if m.Currency() == "" {
		return errors.New("currency is missing")
	}
	return nil
}

// DecodeAccountEntry decodes a stored account transaction document into its
// typed variant. Legacy documents carry a single amount/currency pair even
// for conversions; the fromX/toX fallbacks are resolved here, once, so that
// downstream aggregation never sees them.
func DecodeAccountEntry(data []byte) (AccountEntry, error) {
	var raw struct {
		baseEntry
		Amount       decimal.Decimal `json:"amount"`
		Currency     string          `json:"currency"`
		FromAmount   decimal.Decimal `json:"fromAmount"`
		FromCurrency string          `json:"fromCurrency"`
		ToAmount     decimal.Decimal `json:"toAmount"`
		ToCurrency   string          `json:"toCurrency"`
		Rate         decimal.Decimal `json:"rate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("could not decode account entry: %w", err)
	}

	// field fallbacks from the legacy document shape
	fromCurrency := strings.ToUpper(firstOf(raw.FromCurrency, raw.Currency))
	toCurrency := strings.ToUpper(firstOf(raw.ToCurrency, raw.Currency))
	fromAmount := firstDec(raw.FromAmount, raw.Amount)
	toAmount := firstDec(raw.ToAmount, raw.Amount)

	switch raw.Kind {
	case KindDeposit:
		return Deposit{baseEntry: raw.baseEntry, Amount: M(toAmount, toCurrency)}, nil
	case KindWithdrawal:
		return Withdrawal{baseEntry: raw.baseEntry, Amount: M(fromAmount, fromCurrency)}, nil
	case KindConversion:
		return Conversion{
			baseEntry: raw.baseEntry,
			From:      M(fromAmount, fromCurrency),
			To:        M(toAmount, toCurrency),
			Rate:      raw.Rate,
		}, nil
	default:
		return nil, fmt.Errorf("unknown account entry type: %q", raw.Kind)
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstDec(values ...decimal.Decimal) decimal.Decimal {
	for _, v := range values {
		if !v.IsZero() {
			return v
		}
	}
	return decimal.Zero
}
