package services_test

import (
	"errors"
	"testing"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/internal/core/services"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T, opening int64, tax domain.TaxConfig) *services.BusinessModel {
	t.Helper()
	m, err := services.NewBusinessModel(services.ModelSettings{
		OpeningCash:  usd(opening),
		Period:       year2025(t),
		TaxConfig:    tax,
		ScheduleMode: services.DefaultScheduleMode(),
	})
	require.NoError(t, err)
	return m
}

func addPayroll(t *testing.T, m *services.BusinessModel, amount int64) {
	t.Helper()
	_, err := m.Expenses().AddRecurring("Payroll", domain.ExpenseOperating, usd(amount), domain.FrequencyMonthly, month("2025-01"), "", true)
	require.NoError(t, err)
}

func assertLedger(t *testing.T, opening money.Money, cashflows []domain.Cashflow, start domain.YYYYMM) {
	t.Helper()
	prev := opening
	for i, cf := range cashflows {
		assert.Equal(t, start.AddMonths(i), cf.Month)
		want := prev.Add(cf.CashIn).Subtract(cf.CashOut).Subtract(cf.TotalTaxes())
		assert.True(t, want.Equal(cf.EndingCash), "month %s: want %s got %s", cf.Month, want, cf.EndingCash)
		assert.True(t, cf.CashIn.Equal(cf.Revenue.Add(cf.FundingIn)), "cash in at %s", cf.Month)
		prev = cf.EndingCash
	}
}

func TestGenerateMonthlyCashflow_LedgerInvariant(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model := newModel(t, 50000, domain.DefaultTaxConfig())
	addPayroll(t, model, 5000)
	require.NoError(t, model.Revenues().Add(flatProduct(t, 20, 100)))
	require.NoError(t, model.Funding().Add(equity(t, 25000, "2025-04")))

	for _, months := range []int{1, 7, 12, 30} {
		cashflows, err := engine.GenerateMonthlyCashflow(model, months, month("2025-01"), true)
		require.NoError(t, err)
		require.Len(t, cashflows, months)
		assertLedger(t, model.OpeningCash(), cashflows, month("2025-01"))
	}

	cashflows, err := engine.GenerateMonthlyCashflow(model, 4, month("2025-01"), true)
	require.NoError(t, err)
	assert.Equal(t, "USD 47000.00", cashflows[0].EndingCash.String())
	assert.Equal(t, "USD 63000.00", cashflows[3].EndingCash.String())
}

func TestGenerateMonthlyCashflow_RejectsBadInput(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model := newModel(t, 1000, domain.DefaultTaxConfig())

	for _, months := range []int{0, -3} {
		_, err := engine.GenerateMonthlyCashflow(model, months, month("2025-01"), false)
		var vErr *apperrors.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "months", vErr.Field)
	}
	_, err := engine.GenerateMonthlyCashflow(model, 3, "2025-13", false)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestGenerateMonthlyCashflow_Taxes(t *testing.T) {
	tests := []struct {
		name       string
		tax        domain.TaxConfig
		vat        string
		percentage string
		income     string
		ending     string
	}{
		{
			name: "vat",
			tax: domain.TaxConfig{VATMode: domain.VATStandard, VATRate: decimal.RequireFromString("0.12"),
				IncomeTaxRate: decimal.RequireFromString("0.25")},
			vat: "USD 1200.00", percentage: "USD 0.00", income: "USD 1500.00", ending: "USD 4300.00",
		},
		{
			name: "percentage tax",
			tax: domain.TaxConfig{VATMode: domain.VATPercentageTax, PercentageTaxRate: decimal.RequireFromString("0.03"),
				IncomeTaxRate: decimal.RequireFromString("0.25")},
			vat: "USD 0.00", percentage: "USD 300.00", income: "USD 1500.00", ending: "USD 5200.00",
		},
		{
			name: "no sales tax",
			tax:  domain.TaxConfig{VATMode: domain.VATNone, IncomeTaxRate: decimal.RequireFromString("0.10")},
			vat:  "USD 0.00", percentage: "USD 0.00", income: "USD 600.00", ending: "USD 6400.00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := services.NewProjectionEngine(nil)
			model := newModel(t, 1000, tt.tax)
			addPayroll(t, model, 4000)
			require.NoError(t, model.Revenues().Add(flatProduct(t, 100, 100)))

			cashflows, err := engine.GenerateMonthlyCashflow(model, 1, month("2025-01"), true)
			require.NoError(t, err)
			require.NotNil(t, cashflows[0].Taxes)
			assert.Equal(t, tt.vat, cashflows[0].Taxes.VAT.String())
			assert.Equal(t, tt.percentage, cashflows[0].Taxes.PercentageTax.String())
			assert.Equal(t, tt.income, cashflows[0].Taxes.IncomeTax.String())
			assert.Equal(t, tt.ending, cashflows[0].EndingCash.String())

			untaxed, err := engine.GenerateMonthlyCashflow(model, 1, month("2025-01"), false)
			require.NoError(t, err)
			assert.Nil(t, untaxed[0].Taxes)
			assert.Equal(t, "USD 7000.00", untaxed[0].EndingCash.String())
		})
	}
}

func TestGenerateMonthlyCashflow_IncomeTaxDeductsDepreciationAndInterest(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model := newModel(t, 0, domain.TaxConfig{VATMode: domain.VATNone, IncomeTaxRate: decimal.RequireFromString("0.20")})
	require.NoError(t, model.Revenues().Add(flatProduct(t, 100, 100)))
	_, err := model.Expenses().AddCapital("Servers", usd(12000), month("2025-01"), 24, money.Zero("USD"))
	require.NoError(t, err)
	require.NoError(t, model.Funding().Add(bankLoan(t)))

	cashflows, err := engine.GenerateMonthlyCashflow(model, 1, month("2025-01"), true)
	require.NoError(t, err)
	cf := cashflows[0]
	assert.Equal(t, "USD 500.00", cf.Depreciation.String())
	assert.Equal(t, "USD 1200.00", cf.DebtInterest.String())
	assert.Equal(t, "USD 9461.85", cf.DebtPrincipal.String())
	// (10000 − 500 − 1200) × 20%
	assert.Equal(t, "USD 1660.00", cf.Taxes.IncomeTax.String())
}

func TestGenerateMonthlyCashflow_DebtServiceReducesCash(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model := newModel(t, 0, domain.DefaultTaxConfig())
	require.NoError(t, model.Funding().Add(bankLoan(t)))

	cashflows, err := engine.GenerateMonthlyCashflow(model, 12, month("2025-01"), false)
	require.NoError(t, err)
	assert.Equal(t, "USD 120000.00", cashflows[0].FundingIn.String())
	assert.Equal(t, "USD 10661.85", cashflows[0].CashOut.String())
	assert.Equal(t, "USD 109338.15", cashflows[0].EndingCash.String())
	assert.Equal(t, "USD -7942.26", cashflows[11].EndingCash.String())
	assert.Equal(t, 12, engine.CalculateRunway(cashflows))
	assertLedger(t, model.OpeningCash(), cashflows, month("2025-01"))
}

func TestCalculateRunway_Boundary(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	series := func(endings ...int64) []domain.Cashflow {
		out := make([]domain.Cashflow, len(endings))
		for i, e := range endings {
			out[i] = domain.Cashflow{Month: month("2025-01").AddMonths(i), EndingCash: usd(e)}
		}
		return out
	}
	tests := []struct {
		name    string
		endings []int64
		want    int
	}{
		{"never breached", []int64{30, 20, 10}, 3},
		{"exactly zero counts", []int64{30, 0, 10}, 2},
		{"negative in first month", []int64{-1, 5, 5}, 1},
		{"breached in last month", []int64{30, 20, -10}, 3},
		{"first breach wins", []int64{10, -5, 20, -5}, 2},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.CalculateRunway(series(tt.endings...)))
		})
	}
}

func TestSimulateScenario_DoesNotTouchModel(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model := newModel(t, 50000, domain.DefaultTaxConfig())
	addPayroll(t, model, 5000)
	require.NoError(t, model.Revenues().Add(flatProduct(t, 10, 200)))

	bridge := equity(t, 30000, "2025-03")
	scenario, err := engine.SimulateScenario(model, services.ScenarioOverrides{
		Name:                 "downside",
		RevenueMultiplier:    decimal.NullDecimal{Decimal: decimal.RequireFromString("0.5"), Valid: true},
		ExpenseMultiplier:    decimal.NullDecimal{Decimal: decimal.NewFromInt(2), Valid: true},
		MonthlyExpenseOffset: usd(500),
		OpeningCashOffset:    usd(-10000),
		ExtraFunding:         []domain.FundingEvent{bridge},
	})
	require.NoError(t, err)
	require.Len(t, scenario, 12)
	// 40000 + 1000 − (10000 + 500)
	assert.Equal(t, "USD 30500.00", scenario[0].EndingCash.String())
	assert.Equal(t, "USD 30000.00", scenario[2].FundingIn.String())

	base, err := engine.GenerateMonthlyCashflow(model, 12, month("2025-01"), true)
	require.NoError(t, err)
	assert.Equal(t, "USD 47000.00", base[0].EndingCash.String())
	assert.Equal(t, "USD 50000.00", model.OpeningCash().String())
	assert.Zero(t, model.Funding().EventCount())
	assert.Equal(t, 1, model.Expenses().RecordCount())

	// the same overrides twice give the same series
	again, err := engine.SimulateScenario(model, services.ScenarioOverrides{ExtraFunding: []domain.FundingEvent{bridge}})
	require.NoError(t, err)
	assert.Equal(t, "USD 30000.00", again[2].FundingIn.String())
}

func TestSimulateScenario_Validation(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model := newModel(t, 50000, domain.DefaultTaxConfig())

	_, err := engine.SimulateScenario(model, services.ScenarioOverrides{
		RevenueMultiplier: decimal.NullDecimal{Decimal: decimal.NewFromInt(-1), Valid: true},
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = engine.SimulateScenario(model, services.ScenarioOverrides{
		ExtraFunding: []domain.FundingEvent{equity(t, 1000, "2030-01")},
	})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	short, err := engine.SimulateScenario(model, services.ScenarioOverrides{Months: 3, StartMonth: month("2025-06")})
	require.NoError(t, err)
	require.Len(t, short, 3)
	assert.Equal(t, month("2025-06"), short[0].Month)
}

func TestProjectFunding_ReturnsNewSeries(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model := newModel(t, 50000, domain.DefaultTaxConfig())
	addPayroll(t, model, 5000)
	cashflows, err := engine.GenerateMonthlyCashflow(model, 12, month("2025-01"), false)
	require.NoError(t, err)
	require.Equal(t, 10, engine.CalculateRunway(cashflows))

	projected, err := engine.ProjectFunding(cashflows, []domain.FundingEvent{equity(t, 20000, "2025-06")}, services.DefaultScheduleMode())
	require.NoError(t, err)

	assert.Equal(t, "USD 25000.00", cashflows[4].EndingCash.String())
	assert.Equal(t, "USD 25000.00", projected[4].EndingCash.String())
	assert.Equal(t, "USD 20000.00", cashflows[5].EndingCash.String())
	assert.Equal(t, "USD 40000.00", projected[5].EndingCash.String())
	assert.Equal(t, "USD 10000.00", projected[11].EndingCash.String())
	assert.True(t, cashflows[5].FundingIn.IsZero())
	assert.Equal(t, 12, engine.CalculateRunway(projected))
	assertLedger(t, model.OpeningCash(), projected, month("2025-01"))
}

func TestProjectFunding_PlannedDebtAddsRepayments(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model := newModel(t, 0, domain.DefaultTaxConfig())
	cashflows, err := engine.GenerateMonthlyCashflow(model, 12, month("2025-01"), false)
	require.NoError(t, err)

	projected, err := engine.ProjectFunding(cashflows, []domain.FundingEvent{bankLoan(t)}, services.DefaultScheduleMode())
	require.NoError(t, err)
	assert.Equal(t, "USD 109338.15", projected[0].EndingCash.String())
	assert.Equal(t, "USD -7942.26", projected[11].EndingCash.String())
	assertLedger(t, model.OpeningCash(), projected, month("2025-01"))
}

func TestGenerateBalanceSnapshot(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model := newModel(t, 50000, domain.DefaultTaxConfig())
	_, err := model.Expenses().AddCapital("Servers", usd(12000), month("2025-01"), 24, money.Zero("USD"))
	require.NoError(t, err)
	cashflows, err := engine.GenerateMonthlyCashflow(model, 12, month("2025-01"), true)
	require.NoError(t, err)

	snap, err := engine.GenerateBalanceSnapshot(model, month("2025-03"), cashflows)
	require.NoError(t, err)
	assert.Equal(t, "USD 48500.00", snap.Cash.String())
	assert.Equal(t, "USD 59000.00", snap.AssetsNet.String())
	assert.Equal(t, "USD 10500.00", snap.CapitalPayable.String())
	assert.Equal(t, "USD 10500.00", snap.Liabilities.String())
	assert.Equal(t, "USD 48500.00", snap.Equity.String())
	assert.Equal(t, "USD -1500.00", snap.RetainedEarnings.String())
	assertEquityIdentity(t, model, snap)

	_, err = engine.GenerateBalanceSnapshot(model, month("2026-03"), cashflows)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

// assertEquityIdentity checks equity = opening cash + non-repayable funding to date + retained earnings.
func assertEquityIdentity(t *testing.T, model *services.BusinessModel, snap domain.BalanceSnapshot) {
	t.Helper()
	contributed := model.OpeningCash()
	for _, ev := range model.Funding().Events() {
		if ev.Type.IsRepayable() {
			continue
		}
		for m := model.Period().StartMonth; !m.After(snap.Month); m = m.AddMonths(1) {
			contributed = contributed.Add(ev.CashInForMonth(m))
		}
	}
	want := contributed.Add(snap.RetainedEarnings)
	assert.True(t, want.Equal(snap.Equity), "%s: equity %s, contributed + retained %s", snap.Month, snap.Equity, want)
	assert.True(t, snap.Liabilities.Equal(snap.DebtOutstanding.Add(snap.CapitalPayable)), "%s: liabilities", snap.Month)
	assert.True(t, snap.Equity.Equal(snap.AssetsNet.Subtract(snap.Liabilities)), "%s: balance", snap.Month)
}

func TestGenerateBalanceSnapshot_EquityIdentity(t *testing.T) {
	jan, jun := month("2025-01"), month("2025-06")
	standard := services.ScheduleMode{FullyAmortized: false, UseCompoundInterest: true}
	tests := []struct {
		name  string
		mode  services.ScheduleMode
		setup func(t *testing.T, m *services.BusinessModel)
	}{
		{
			name: "capital with residual",
			mode: services.DefaultScheduleMode(),
			setup: func(t *testing.T, m *services.BusinessModel) {
				_, err := m.Expenses().AddCapital("Van", usd(9000), month("2025-02"), 6, usd(900))
				require.NoError(t, err)
			},
		},
		{
			name: "amortized debt with revenue and taxes",
			mode: services.DefaultScheduleMode(),
			setup: func(t *testing.T, m *services.BusinessModel) {
				require.NoError(t, m.Funding().Add(bankLoan(t, domain.WithGracePeriod(2))))
				require.NoError(t, m.Funding().Add(equity(t, 30000, "2025-04")))
				require.NoError(t, m.Revenues().Add(flatProduct(t, 100, 100)))
				addPayroll(t, m, 4000)
			},
		},
		{
			name: "standard debt capitalizes interest",
			mode: standard,
			setup: func(t *testing.T, m *services.BusinessModel) {
				require.NoError(t, m.Funding().Add(bankLoan(t)))
				require.NoError(t, m.Funding().Add(grant(t, 5000, "2025-03")))
				_, err := m.Expenses().AddCapital("Servers", usd(12000), jan, 24, money.Zero("USD"))
				require.NoError(t, err)
			},
		},
		{
			name: "tranched debt",
			mode: services.DefaultScheduleMode(),
			setup: func(t *testing.T, m *services.BusinessModel) {
				require.NoError(t, m.Funding().Add(bankLoan(t, domain.WithInstallmentPlan(
					domain.Installment{Month: jan, Amount: usd(40000)},
					domain.Installment{Month: jun, Amount: usd(80000)},
				))))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := services.NewProjectionEngine(nil)
			model, err := services.NewBusinessModel(services.ModelSettings{
				OpeningCash:  usd(50000),
				Period:       year2025(t),
				TaxConfig:    domain.TaxConfig{VATMode: domain.VATNone, IncomeTaxRate: decimal.RequireFromString("0.20")},
				ScheduleMode: tt.mode,
			})
			require.NoError(t, err)
			tt.setup(t, model)
			cashflows, err := engine.GenerateMonthlyCashflow(model, 12, jan, true)
			require.NoError(t, err)

			for _, cf := range cashflows {
				snap, err := engine.GenerateBalanceSnapshot(model, cf.Month, cashflows)
				require.NoError(t, err)
				assertEquityIdentity(t, model, snap)
			}
		})
	}
}

func TestGenerateBalanceSnapshot_TranchedDebtOwesOnlyWhatWasDisbursed(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model := newModel(t, 0, domain.DefaultTaxConfig())
	require.NoError(t, model.Funding().Add(bankLoan(t, domain.WithInstallmentPlan(
		domain.Installment{Month: month("2025-01"), Amount: usd(10000)},
		domain.Installment{Month: month("2025-12"), Amount: usd(110000)},
	))))
	cashflows, err := engine.GenerateMonthlyCashflow(model, 12, month("2025-01"), false)
	require.NoError(t, err)

	first := cashflows[0]
	assert.Equal(t, "USD 10000.00", first.FundingIn.String())
	assert.Equal(t, "USD 100.00", first.DebtInterest.String())
	assert.True(t, first.DebtPrincipal.IsZero())
	assert.Equal(t, "USD 9900.00", first.EndingCash.String())

	snap, err := engine.GenerateBalanceSnapshot(model, month("2025-06"), cashflows)
	require.NoError(t, err)
	assert.Equal(t, "USD 10000.00", snap.DebtOutstanding.String())
	assert.Equal(t, "USD 9400.00", snap.Cash.String())
}

func TestGenerateMonthlyCashflow_StandardDebtExpensesAllInterest(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model, err := services.NewBusinessModel(services.ModelSettings{
		OpeningCash:  usd(0),
		Period:       year2025(t),
		ScheduleMode: services.ScheduleMode{FullyAmortized: false, UseCompoundInterest: true},
	})
	require.NoError(t, err)
	loan := bankLoan(t)
	require.NoError(t, model.Funding().Add(loan))
	schedule, err := model.Funding().Schedule(loan.ID)
	require.NoError(t, err)

	cashflows, err := engine.GenerateMonthlyCashflow(model, 12, month("2025-01"), false)
	require.NoError(t, err)

	interest, principal := money.Zero("USD"), money.Zero("USD")
	for _, cf := range cashflows {
		interest = interest.Add(cf.DebtInterest)
		principal = principal.Add(cf.DebtPrincipal)
	}
	assert.Equal(t, "USD 15218.99", domain.TotalInterest(schedule).String())
	assert.Equal(t, domain.TotalInterest(schedule).String(), interest.String())
	assert.Equal(t, "USD 120000.00", principal.String())
	assert.Equal(t, "USD -15218.99", engine.GetNetIncomeAcrossPeriod(cashflows).String())
	assertLedger(t, model.OpeningCash(), cashflows, month("2025-01"))
}

func TestGenerateMonthlyCashflow_IncomeTaxDeductsItemCost(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model := newModel(t, 1000, domain.TaxConfig{VATMode: domain.VATNone, IncomeTaxRate: decimal.RequireFromString("0.10")})
	addPayroll(t, model, 4000)
	item, err := domain.NewProductItem(domain.ProductParams{
		Name:          "Widget",
		UnitPrice:     usd(100),
		UnitCost:      usd(40),
		UnitsPerMonth: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.NoError(t, model.Revenues().Add(item))

	cashflows, err := engine.GenerateMonthlyCashflow(model, 1, month("2025-01"), true)
	require.NoError(t, err)
	cf := cashflows[0]
	assert.Equal(t, "USD 4000.00", cf.DirectCost.String())
	// (10000 − 4000 − 4000) × 10%
	assert.Equal(t, "USD 200.00", cf.Taxes.IncomeTax.String())
	assert.Equal(t, "USD 6800.00", cf.EndingCash.String())

	lean, err := engine.SimulateScenario(model, services.ScenarioOverrides{
		RevenueMultiplier: decimal.NewNullDecimal(decimal.RequireFromString("0.5")),
		Months:            1,
	})
	require.NoError(t, err)
	assert.Equal(t, "USD 2000.00", lean[0].DirectCost.String())
	assert.True(t, lean[0].Taxes.IncomeTax.IsZero())
}

func TestEBITDAAndNetIncomeAcrossPeriod(t *testing.T) {
	engine := services.NewProjectionEngine(nil)
	model := newModel(t, 10000, domain.DefaultTaxConfig())
	addPayroll(t, model, 4000)
	require.NoError(t, model.Revenues().Add(flatProduct(t, 100, 100)))
	_, err := model.Expenses().AddCapital("Servers", usd(12000), month("2025-01"), 24, money.Zero("USD"))
	require.NoError(t, err)

	cashflows, err := engine.GenerateMonthlyCashflow(model, 12, month("2025-01"), true)
	require.NoError(t, err)
	assert.Equal(t, "USD 72000.00", engine.GetEBITDAAcrossPeriod(cashflows).String())
	assert.Equal(t, "USD 66000.00", engine.GetNetIncomeAcrossPeriod(cashflows).String())
	assert.True(t, engine.GetEBITDAAcrossPeriod(nil).IsZero())

	month0, ok := engine.BreakEvenMonth(cashflows)
	assert.True(t, ok)
	assert.Equal(t, month("2025-01"), month0)
	assert.Equal(t, "USD 4500.00", engine.AverageBurn(cashflows).String())
	assert.Equal(t, "USD -5500.00", engine.AverageNetBurn(cashflows).String())
}

func TestBusinessModel_ValidateCurrencyConsistency(t *testing.T) {
	model := newModel(t, 1000, domain.DefaultTaxConfig())
	require.NoError(t, model.ValidateCurrencyConsistency())

	addPayroll(t, model, 100)
	require.NoError(t, model.ValidateCurrencyConsistency())

	euro, err := domain.NewEquity("Angel", money.FromMajorInt(5000, "EUR"), month("2025-02"))
	require.NoError(t, err)
	require.NoError(t, model.Funding().Add(euro))

	err = model.ValidateCurrencyConsistency()
	assert.True(t, errors.Is(err, apperrors.ErrCurrencyMismatch))
	assert.Contains(t, err.Error(), "Angel")
}

func TestBusinessModel_CloneIsDeep(t *testing.T) {
	model := newModel(t, 1000, domain.DefaultTaxConfig())
	addPayroll(t, model, 100)
	clone := model.Clone()
	clone.Expenses().Clear()
	require.NoError(t, clone.Funding().Add(equity(t, 100, "2025-01")))

	assert.Equal(t, 1, model.Expenses().RecordCount())
	assert.Zero(t, model.Funding().EventCount())
}
