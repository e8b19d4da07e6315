// Package money provides an immutable currency amount backed by an arbitrary
// precision decimal. Every Money value is rounded half-up (away from zero) to
// the minor unit of its currency, so chains of monthly compounding stay exact
// to the cent regardless of the number of periods.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies have no minor unit.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true, "KRW": true, "VND": true, "CLP": true, "ISK": true, "UGX": true, "XAF": true, "XOF": true,
}

// threeDecimalCurrencies use a minor unit of 1/1000.
var threeDecimalCurrencies = map[string]bool{
	"BHD": true, "JOD": true, "KWD": true, "OMR": true, "TND": true,
}

// Precision returns the number of minor-unit digits for a currency code.
func Precision(currency string) int32 {
	code := strings.ToUpper(currency)
	switch {
	case zeroDecimalCurrencies[code]:
		return 0
	case threeDecimalCurrencies[code]:
		return 3
	default:
		return 2
	}
}

// Money is an amount in a single currency.
// The zero value is a zero amount with no currency; it adopts the currency of
// the first amount added to it.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{amount: decimal.Zero, currency: strings.ToUpper(currency)}
}

// FromMajor builds Money from a major-unit decimal (e.g. 12.34 dollars).
func FromMajor(amount decimal.Decimal, currency string) Money {
	cur := strings.ToUpper(currency)
	return Money{amount: amount.Round(Precision(cur)), currency: cur}
}

// FromMajorInt builds Money from a whole number of major units.
func FromMajorInt(amount int64, currency string) Money {
	return FromMajor(decimal.NewFromInt(amount), currency)
}

// FromMajorString parses a decimal string such as "1200.50".
func FromMajorString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return FromMajor(d, currency), nil
}

// FromMinor builds Money from an integer count of minor units (e.g. cents).
func FromMinor(minor int64, currency string) Money {
	cur := strings.ToUpper(currency)
	return Money{amount: decimal.New(minor, -Precision(cur)), currency: cur}
}

// Sum adds amounts into a zero of the given currency.
func Sum(currency string, amounts ...Money) Money {
	total := Zero(currency)
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Currency returns the ISO currency code.
func (m Money) Currency() string { return m.currency }

func (m Money) withAmount(d decimal.Decimal) Money {
	return Money{amount: d.Round(Precision(m.currency)), currency: m.currency}
}

func (m Money) pick(o Money) string {
	if m.currency == "" {
		return o.currency
	}
	return m.currency
}

// Add returns m + o. Currencies are not checked; see SameCurrency.
func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount), currency: m.pick(o)}
}

// Subtract returns m - o.
func (m Money) Subtract(o Money) Money {
	return Money{amount: m.amount.Sub(o.amount), currency: m.pick(o)}
}

// Multiply scales the amount and rounds to the minor unit.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return m.withAmount(m.amount.Mul(factor))
}

// MultiplyInt scales the amount by a whole number.
func (m Money) MultiplyInt(factor int64) Money {
	return m.withAmount(m.amount.Mul(decimal.NewFromInt(factor)))
}

// Divide divides the amount and rounds to the minor unit.
// Division by zero yields zero.
func (m Money) Divide(divisor decimal.Decimal) Money {
	if divisor.IsZero() {
		return Zero(m.currency)
	}
	return m.withAmount(m.amount.DivRound(divisor, Precision(m.currency)+4))
}

// DivideInt divides the amount by a whole number.
func (m Money) DivideInt(divisor int64) Money {
	return m.Divide(decimal.NewFromInt(divisor))
}

// Compound returns m × (1+rate)^periods, rounded once at the end.
func (m Money) Compound(rate decimal.Decimal, periods int) Money {
	if periods == 0 {
		return m
	}
	factor := decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(periods)))
	return m.withAmount(m.amount.Mul(factor))
}

// Ratio returns m / o as a float. A zero denominator yields 0.
func (m Money) Ratio(o Money) float64 {
	if o.amount.IsZero() {
		return 0
	}
	return m.amount.DivRound(o.amount, 12).InexactFloat64()
}

// Neg returns -m.
func (m Money) Neg() Money { return Money{amount: m.amount.Neg(), currency: m.currency} }

// Abs returns |m|.
func (m Money) Abs() Money { return Money{amount: m.amount.Abs(), currency: m.currency} }

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Cmp compares amounts, ignoring currency.
func (m Money) Cmp(o Money) int { return m.amount.Cmp(o.amount) }

func (m Money) Equal(o Money) bool              { return m.amount.Equal(o.amount) && m.currency == o.currency }
func (m Money) LessThan(o Money) bool           { return m.amount.LessThan(o.amount) }
func (m Money) LessThanOrEqual(o Money) bool    { return m.amount.LessThanOrEqual(o.amount) }
func (m Money) GreaterThan(o Money) bool        { return m.amount.GreaterThan(o.amount) }
func (m Money) GreaterThanOrEqual(o Money) bool { return m.amount.GreaterThanOrEqual(o.amount) }

// SameCurrency reports whether both amounts share a currency code.
func (m Money) SameCurrency(o Money) bool { return m.currency == o.currency }

// Max returns the larger of m and o.
func (m Money) Max(o Money) Money {
	if o.amount.GreaterThan(m.amount) {
		return Money{amount: o.amount, currency: m.pick(o)}
	}
	return m
}

// Min returns the smaller of m and o.
func (m Money) Min(o Money) Money {
	if o.amount.LessThan(m.amount) {
		return Money{amount: o.amount, currency: m.pick(o)}
	}
	return m
}

// ToMajor returns the amount as a float for display and charting only.
func (m Money) ToMajor() float64 { return m.amount.InexactFloat64() }

// ToMajorDecimal returns the exact major-unit amount.
func (m Money) ToMajorDecimal() decimal.Decimal { return m.amount }

// Minor returns the amount as an integer count of minor units.
func (m Money) Minor() int64 {
	return m.amount.Shift(Precision(m.currency)).IntPart()
}

// Format renders the amount with thousands separators, e.g. "USD 10,660.29".
func (m Money) Format() string {
	p := Precision(m.currency)
	pattern := "#,###." + strings.Repeat("#", int(p))
	formatted := humanize.FormatFloat(pattern, m.amount.InexactFloat64())
	if m.currency == "" {
		return formatted
	}
	return m.currency + " " + formatted
}

// String returns the exact fixed-point representation with currency.
func (m Money) String() string {
	return strings.TrimSpace(m.currency + " " + m.amount.StringFixed(Precision(m.currency)))
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// MarshalJSON encodes as {"amount":"12.34","currency":"USD"}.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.amount.StringFixed(Precision(m.currency)),
		Currency: m.currency,
	})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode money: %w", err)
	}
	if raw.Amount == "" {
		*m = Zero(raw.Currency)
		return nil
	}
	parsed, err := FromMajorString(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
