package domain

import (
	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/shopspring/decimal"
)

// VATMode selects the sales tax applied to revenue.
type VATMode string

const (
	VATNone          VATMode = "NONE"
	VATStandard      VATMode = "VAT"
	VATPercentageTax VATMode = "PERCENTAGE_TAX"
)

// TaxConfig holds the rates used when a projection includes taxes.
type TaxConfig struct {
	VATMode           VATMode
	VATRate           decimal.Decimal
	PercentageTaxRate decimal.Decimal
	IncomeTaxRate     decimal.Decimal
}

// DefaultTaxConfig applies no taxes.
func DefaultTaxConfig() TaxConfig {
	return TaxConfig{VATMode: VATNone}
}

// Validate checks every rate is within [0, 1] and the mode is known.
func (c TaxConfig) Validate() error {
	switch c.VATMode {
	case VATNone, VATStandard, VATPercentageTax:
	default:
		return apperrors.NewValidationError("vatMode", "unknown VAT mode %q", c.VATMode)
	}
	rates := []struct {
		field string
		rate  decimal.Decimal
	}{
		{"vatRate", c.VATRate},
		{"percentageTaxRate", c.PercentageTaxRate},
		{"incomeTaxRate", c.IncomeTaxRate},
	}
	one := decimal.NewFromInt(1)
	for _, r := range rates {
		if r.rate.IsNegative() || r.rate.GreaterThan(one) {
			return apperrors.NewValidationError(r.field, "must be within [0, 1], got %s", r.rate)
		}
	}
	return nil
}

// TaxBreakdown is the tax charged in one month.
type TaxBreakdown struct {
	VAT           money.Money
	PercentageTax money.Money
	IncomeTax     money.Money
}

// Total sums every tax line.
func (t TaxBreakdown) Total() money.Money {
	return t.VAT.Add(t.PercentageTax).Add(t.IncomeTax)
}

// Compute derives a month's taxes. Sales tax depends on the VAT mode; income
// tax applies to positive taxable profit only.
func (c TaxConfig) Compute(revenue, taxableProfit money.Money) TaxBreakdown {
	zero := money.Zero(revenue.Currency())
	t := TaxBreakdown{VAT: zero, PercentageTax: zero, IncomeTax: zero}
	switch c.VATMode {
	case VATStandard:
		t.VAT = revenue.Multiply(c.VATRate)
	case VATPercentageTax:
		t.PercentageTax = revenue.Multiply(c.PercentageTaxRate)
	}
	if taxableProfit.IsPositive() {
		t.IncomeTax = taxableProfit.Multiply(c.IncomeTaxRate)
	}
	return t
}
