package domain

import "github.com/SscSPs/majik_runway/pkg/money"

// Cashflow is one month of a projection ledger.
//
// CashIn = Revenue + FundingIn and CashOut = Expenses + DebtPrincipal + DebtInterest.
// EndingCash = previous EndingCash + CashIn − CashOut − Taxes.Total().
type Cashflow struct {
	Month      YYYYMM
	CashIn     money.Money
	CashOut    money.Money
	Taxes      *TaxBreakdown
	EndingCash money.Money

	Revenue       money.Money
	FundingIn     money.Money
	Expenses      money.Money
	Depreciation  money.Money // non-cash share of Expenses
	DebtPrincipal money.Money
	DebtInterest  money.Money // interest settled in cash this month
	DirectCost    money.Money // cost of the revenue items; deducted from taxable profit only
}

// TotalTaxes returns the month's taxes, zero when taxes were not projected.
func (c Cashflow) TotalTaxes() money.Money {
	if c.Taxes == nil {
		return money.Zero(c.CashIn.Currency())
	}
	return c.Taxes.Total()
}

// NetCashflow is CashIn − CashOut − taxes.
func (c Cashflow) NetCashflow() money.Money {
	return c.CashIn.Subtract(c.CashOut).Subtract(c.TotalTaxes())
}

// NetBurn is the operating outflow not covered by revenue; funding is excluded.
func (c Cashflow) NetBurn() money.Money {
	return c.CashOut.Add(c.TotalTaxes()).Subtract(c.Revenue)
}

// EBITDA is revenue less operating expenses, excluding depreciation, interest and tax.
func (c Cashflow) EBITDA() money.Money {
	return c.Revenue.Subtract(c.Expenses.Subtract(c.Depreciation))
}

// NetIncome is EBITDA less depreciation, interest and tax.
func (c Cashflow) NetIncome() money.Money {
	return c.EBITDA().Subtract(c.Depreciation).Subtract(c.DebtInterest).Subtract(c.TotalTaxes())
}

// BalanceSnapshot is a simplified balance sheet at the end of a month.
//
// Liabilities = DebtOutstanding + CapitalPayable and Equity = AssetsNet − Liabilities.
// RetainedEarnings accrues interest capitalized but not yet paid, so
// Equity = opening cash + non-repayable funding to date + RetainedEarnings.
type BalanceSnapshot struct {
	Month            YYYYMM
	Cash             money.Money
	AssetsNet        money.Money
	Liabilities      money.Money
	Equity           money.Money
	DebtOutstanding  money.Money
	CapitalPayable   money.Money // capital cost not yet paid through its monthly charges
	AccruedInterest  money.Money // capitalized interest included in DebtOutstanding
	RetainedEarnings money.Money
}
