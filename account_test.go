package tradebook

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDecodeAccountEntry(t *testing.T) {
	t.Run("deposit", func(t *testing.T) {
		doc := `{"type":"deposit","date":"2025-01-05T00:00:00Z","amount":1000,"currency":"usd"}`
		e, err := DecodeAccountEntry([]byte(doc))
		if err != nil {
			t.Fatalf("DecodeAccountEntry() error = %v", err)
		}
		d, ok := e.(Deposit)
		if !ok {
			t.Fatalf("decoded %T, want Deposit", e)
		}
		if d.Amount.Currency() != "USD" {
			t.Errorf("Currency = %q, want USD", d.Amount.Currency())
		}
		if !d.Amount.Amount().Equal(decimal.NewFromInt(1000)) {
			t.Errorf("Amount = %s, want 1000", d.Amount.Amount())
		}
	})

	t.Run("modern conversion", func(t *testing.T) {
		doc := `{"type":"conversion","date":"2025-02-01T00:00:00Z",
			"fromAmount":500,"fromCurrency":"USD","toAmount":450,"toCurrency":"EUR","rate":0.9}`
		e, err := DecodeAccountEntry([]byte(doc))
		if err != nil {
			t.Fatalf("DecodeAccountEntry() error = %v", err)
		}
		c, ok := e.(Conversion)
		if !ok {
			t.Fatalf("decoded %T, want Conversion", e)
		}
		if c.From.Currency() != "USD" || c.To.Currency() != "EUR" {
			t.Errorf("currencies = %s/%s, want USD/EUR", c.From.Currency(), c.To.Currency())
		}
		if !c.To.Amount().Equal(decimal.NewFromInt(450)) {
			t.Errorf("To = %s, want 450", c.To.Amount())
		}
	})

	t.Run("legacy conversion falls back to single pair", func(t *testing.T) {
		// very old documents only carry amount/currency
		doc := `{"type":"conversion","date":"2024-06-01T00:00:00Z","amount":300,"currency":"usd","rate":1}`
		e, err := DecodeAccountEntry([]byte(doc))
		if err != nil {
			t.Fatalf("DecodeAccountEntry() error = %v", err)
		}
		c, ok := e.(Conversion)
		if !ok {
			t.Fatalf("decoded %T, want Conversion", e)
		}
		if c.From.Currency() != "USD" || c.To.Currency() != "USD" {
			t.Errorf("currencies = %s/%s, want USD/USD fallback", c.From.Currency(), c.To.Currency())
		}
		if !c.From.Amount().Equal(decimal.NewFromInt(300)) || !c.To.Amount().Equal(decimal.NewFromInt(300)) {
			t.Errorf("amounts = %s/%s, want 300/300 fallback", c.From.Amount(), c.To.Amount())
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := DecodeAccountEntry([]byte(`{"type":"dividend","date":"2025-01-01T00:00:00Z"}`)); err == nil {
			t.Error("DecodeAccountEntry() error = nil, want unknown type error")
		}
	})
}

func TestAccountEntry_RoundTrip(t *testing.T) {
	on := day(2025, time.February, 1)
	c := NewConversion(on, M(500, "USD"), decimal.NewFromFloat(0.9), "eur")

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	e, err := DecodeAccountEntry(data)
	if err != nil {
		t.Fatalf("DecodeAccountEntry() error = %v", err)
	}
	got, ok := e.(Conversion)
	if !ok {
		t.Fatalf("decoded %T, want Conversion", e)
	}
	if !got.To.Amount().Equal(decimal.NewFromInt(450)) {
		t.Errorf("To = %s, want 450", got.To.Amount())
	}
	if got.To.Currency() != "EUR" {
		t.Errorf("To currency = %q, want EUR", got.To.Currency())
	}
}

func TestConversion_Validate(t *testing.T) {
	on := day(2025, time.February, 1)

	if err := NewConversion(on, M(500, "USD"), decimal.NewFromFloat(0.9), "EUR").Validate(); err != nil {
		t.Errorf("valid conversion rejected: %v", err)
	}

	bad := NewConversion(on, M(500, "USD"), decimal.NewFromFloat(0.9), "EUR")
	bad.To = M(400, "EUR") // breaks To = From × Rate
	if err := bad.Validate(); err == nil {
		t.Error("inconsistent conversion accepted")
	}

	if err := NewConversion(on, M(500, "USD"), decimal.Zero, "EUR").Validate(); err == nil {
		t.Error("zero rate accepted")
	}
}

func TestDepositWithdrawal_Validate(t *testing.T) {
	on := day(2025, time.February, 1)

	if err := NewDeposit(on, M(100, "USD")).Validate(); err != nil {
		t.Errorf("valid deposit rejected: %v", err)
	}
	if err := NewDeposit(on, M(0, "USD")).Validate(); err == nil {
		t.Error("zero deposit accepted")
	}
	if err := NewWithdrawal(on, M(100, "")).Validate(); err == nil {
		t.Error("withdrawal without currency accepted")
	}
}
