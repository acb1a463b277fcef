package common

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyGTQ is the only currency the mall sells in.
const CurrencyGTQ = "gtq"

var ErrInvalidMoney = errors.New("money: invalid amount")

// Money is a GTQ amount kept at 2 decimal places.
// JSON encodes it as a bare number ("250.00" -> 250.00) so API payloads stay numeric.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

func NewMoney(v float64) Money {
	return Money{d: decimal.NewFromFloat(v).Round(2)}
}

func MoneyFromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

// ParseMoney parses "250", "250.5", "Q250.50".
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Q"), "q")
	if s == "" {
		return Zero, ErrInvalidMoney
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	return Money{d: d.Round(2)}, nil
}

// MustParseMoney is for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

func (m Money) Mul(qty int) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(int64(qty)))}
}

func (m Money) IsZero() bool             { return m.d.IsZero() }
func (m Money) IsNegative() bool         { return m.d.IsNegative() }
func (m Money) IsPositive() bool         { return m.d.IsPositive() }
func (m Money) Equal(o Money) bool       { return m.d.Equal(o.d) }
func (m Money) Cmp(o Money) int          { return m.d.Cmp(o.d) }
func (m Money) Decimal() decimal.Decimal { return m.d }

// Cents returns the amount in minor units (Stripe unit_amount).
func (m Money) Cents() int64 {
	return m.d.Shift(2).Round(0).IntPart()
}

func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

func (m Money) String() string { return m.d.StringFixed(2) }

// Display renders the storefront format, e.g. "Q1150.00".
func (m Money) Display() string { return "Q" + m.String() }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = Zero
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Value stores the amount as a fixed-point string (NUMERIC on Postgres, TEXT on sqlite).
func (m Money) Value() (driver.Value, error) {
	return m.d.StringFixed(2), nil
}

func (m *Money) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("money: scan: %w", err)
	}
	m.d = d.Round(2)
	return nil
}

// Sum adds all amounts.
func Sum(ms ...Money) Money {
	out := Zero
	for _, m := range ms {
		out = out.Add(m)
	}
	return out
}
