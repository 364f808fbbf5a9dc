package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a rupee amount stored as integer paise, so arithmetic in SQL and
// Go never goes through floating point. JSON input/output uses rupee
// decimals ("2500", "1500.50").
type Money int64

// Rupees returns the whole-rupee part.
func (m Money) Rupees() int64 { return int64(m) / 100 }

// Paise returns the fractional part in paise (0-99).
func (m Money) Paise() int { return int(int64(m) % 100) }

// FromRupees builds a Money from a rupee decimal, rounding to paise.
func FromRupees(d decimal.Decimal) Money {
	return Money(d.Round(2).Shift(2).IntPart())
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.New(int64(m), -2).String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	*m = FromRupees(d)
	return nil
}

func (m Money) String() string {
	return decimal.New(int64(m), -2).StringFixed(2)
}
