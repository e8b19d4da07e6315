package services

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/pkg/money"
)

// ModelView is the read-only surface the projection engine folds over.
type ModelView interface {
	Currency() string
	OpeningCash() money.Money
	TaxConfig() domain.TaxConfig
	MonthlyRevenue(month domain.YYYYMM) money.Money
	MonthlyDirectCost(month domain.YYYYMM) money.Money
	MonthlyFundingIn(month domain.YYYYMM) money.Money
	MonthlyExpenses(month domain.YYYYMM) money.Money
	MonthlyDepreciation(month domain.YYYYMM) money.Money
	MonthlyTaxDeductible(month domain.YYYYMM) money.Money
	DebtService(month domain.YYYYMM) (principal, interest money.Money)
	DebtOutstanding(month domain.YYYYMM) money.Money
	AssetBookValue(month domain.YYYYMM) money.Money
	CapitalPayable(month domain.YYYYMM) money.Money
	AccruedInterest(month domain.YYYYMM) money.Money
}

// BusinessModel is the aggregate a MajikRunway owns: opening cash, the three
// collections and the tax settings, all sharing one currency and period.
type BusinessModel struct {
	openingCash  money.Money
	businessType domain.BusinessType
	taxConfig    domain.TaxConfig
	period       domain.PeriodYYYYMM
	expenses     *ExpenseBreakdown
	revenues     *RevenueStream
	funding      *FundingManager
}

// ModelSettings configures a new BusinessModel.
type ModelSettings struct {
	OpeningCash  money.Money
	Period       domain.PeriodYYYYMM
	BusinessType domain.BusinessType
	TaxConfig    domain.TaxConfig
	ScheduleMode ScheduleMode
	Logger       *slog.Logger
}

// NewBusinessModel creates a model with empty collections.
func NewBusinessModel(s ModelSettings) (*BusinessModel, error) {
	currency := s.OpeningCash.Currency()
	if currency == "" {
		return nil, apperrors.NewValidationError("openingCash", "a currency is required")
	}
	if s.BusinessType == "" {
		s.BusinessType = domain.BusinessStartup
	}
	if s.TaxConfig.VATMode == "" {
		s.TaxConfig.VATMode = domain.VATNone
	}
	if err := s.TaxConfig.Validate(); err != nil {
		return nil, err
	}
	funding, err := NewFundingManager(currency, s.Period, WithScheduleMode(s.ScheduleMode), WithFundingLogger(s.Logger))
	if err != nil {
		return nil, err
	}
	revenues, err := NewRevenueStream(currency, s.Period, WithRevenueLogger(s.Logger))
	if err != nil {
		return nil, err
	}
	expenses, err := NewExpenseBreakdown(currency, s.Period, WithExpenseLogger(s.Logger))
	if err != nil {
		return nil, err
	}
	return &BusinessModel{
		openingCash:  s.OpeningCash,
		businessType: s.BusinessType,
		taxConfig:    s.TaxConfig,
		period:       s.Period,
		expenses:     expenses,
		revenues:     revenues,
		funding:      funding,
	}, nil
}

func (m *BusinessModel) Currency() string                  { return m.openingCash.Currency() }
func (m *BusinessModel) OpeningCash() money.Money          { return m.openingCash }
func (m *BusinessModel) BusinessType() domain.BusinessType { return m.businessType }
func (m *BusinessModel) TaxConfig() domain.TaxConfig       { return m.taxConfig }
func (m *BusinessModel) Period() domain.PeriodYYYYMM       { return m.period }
func (m *BusinessModel) Expenses() *ExpenseBreakdown       { return m.expenses }
func (m *BusinessModel) Revenues() *RevenueStream          { return m.revenues }
func (m *BusinessModel) Funding() *FundingManager          { return m.funding }

func (m *BusinessModel) MonthlyRevenue(month domain.YYYYMM) money.Money {
	return m.revenues.GetMonthlyRevenue(month)
}

func (m *BusinessModel) MonthlyDirectCost(month domain.YYYYMM) money.Money {
	return m.revenues.GetMonthlyCost(month)
}

func (m *BusinessModel) MonthlyFundingIn(month domain.YYYYMM) money.Money {
	return m.funding.GetMonthlyCashIn(month)
}

func (m *BusinessModel) MonthlyExpenses(month domain.YYYYMM) money.Money {
	return m.expenses.GetMonthlyCashOut(month)
}

func (m *BusinessModel) MonthlyDepreciation(month domain.YYYYMM) money.Money {
	return m.expenses.GetMonthlyDepreciation(month)
}

func (m *BusinessModel) MonthlyTaxDeductible(month domain.YYYYMM) money.Money {
	return m.expenses.GetMonthlyTaxDeductible(month)
}

func (m *BusinessModel) DebtService(month domain.YYYYMM) (principal, interest money.Money) {
	return m.funding.GetDebtService(month)
}

func (m *BusinessModel) DebtOutstanding(month domain.YYYYMM) money.Money {
	return m.funding.GetDebtOutstanding(month)
}

func (m *BusinessModel) AssetBookValue(month domain.YYYYMM) money.Money {
	return m.expenses.GetAssetBookValue(month)
}

func (m *BusinessModel) CapitalPayable(month domain.YYYYMM) money.Money {
	return m.expenses.GetCapitalPayable(month)
}

func (m *BusinessModel) AccruedInterest(month domain.YYYYMM) money.Money {
	return m.funding.GetAccruedInterest(month)
}

// setPeriod moves every collection to period, or none of them.
func (m *BusinessModel) setPeriod(period domain.PeriodYYYYMM) error {
	if err := period.Validate(); err != nil {
		return err
	}
	funding := m.funding.Clone()
	revenues := m.revenues.Clone()
	expenses := m.expenses.Clone()
	if err := funding.SetPeriod(period); err != nil {
		return err
	}
	if err := revenues.SetPeriod(period); err != nil {
		return err
	}
	if err := expenses.SetPeriod(period); err != nil {
		return err
	}
	m.funding, m.revenues, m.expenses = funding, revenues, expenses
	m.period = period
	return nil
}

// Clone returns a structural deep copy sharing no mutable state with m.
func (m *BusinessModel) Clone() *BusinessModel {
	return &BusinessModel{
		openingCash:  m.openingCash,
		businessType: m.businessType,
		taxConfig:    m.taxConfig,
		period:       m.period,
		expenses:     m.expenses.Clone(),
		revenues:     m.revenues.Clone(),
		funding:      m.funding.Clone(),
	}
}

// ValidateCurrencyConsistency checks that every monetary value in the model is
// in the opening cash currency. Mutations do not check this on their own.
func (m *BusinessModel) ValidateCurrencyConsistency() error {
	want := m.Currency()
	check := func(what string, v money.Money) error {
		if v.Currency() != want {
			return fmt.Errorf("%w: %s is in %q, model uses %q", apperrors.ErrCurrencyMismatch, what, v.Currency(), want)
		}
		return nil
	}
	for _, c := range []struct{ what, currency string }{
		{"funding manager", m.funding.Currency()},
		{"revenue stream", m.revenues.Currency()},
		{"expense breakdown", m.expenses.Currency()},
	} {
		if c.currency != want {
			return fmt.Errorf("%w: %s uses %q, model uses %q", apperrors.ErrCurrencyMismatch, c.what, c.currency, want)
		}
	}
	for _, ev := range append(m.funding.Events(), m.funding.Archived()...) {
		if err := check(fmt.Sprintf("funding event %q", ev.Name), ev.Amount); err != nil {
			return err
		}
		if ev.Debt == nil {
			continue
		}
		if !ev.Debt.InitialPayment.IsZero() {
			if err := check(fmt.Sprintf("initial payment of %q", ev.Name), ev.Debt.InitialPayment); err != nil {
				return err
			}
		}
		for _, inst := range ev.Debt.InstallmentPlan {
			if err := check(fmt.Sprintf("installment %s of %q", inst.Month, ev.Name), inst.Amount); err != nil {
				return err
			}
		}
	}
	for _, r := range m.expenses.Records() {
		if err := check(fmt.Sprintf("expense %q", r.Name), r.Amount); err != nil {
			return err
		}
		for _, a := range r.Schedule {
			if err := check(fmt.Sprintf("allocation %s of %q", a.Month, r.Name), a.Amount); err != nil {
				return err
			}
		}
		if r.CapitalMeta != nil && !r.CapitalMeta.ResidualValue.IsZero() {
			if err := check(fmt.Sprintf("residual value of %q", r.Name), r.CapitalMeta.ResidualValue); err != nil {
				return err
			}
		}
	}
	for _, item := range m.revenues.Items() {
		if item.Currency() != want {
			return fmt.Errorf("%w: revenue item %q is in %q, model uses %q", apperrors.ErrCurrencyMismatch, item.Name(), item.Currency(), want)
		}
	}
	return nil
}
