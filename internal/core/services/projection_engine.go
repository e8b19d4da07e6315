package services

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/shopspring/decimal"
)

// ProjectionEngine turns a model into a monthly cashflow series and reduces
// series into metrics. It holds no state besides its logger.
type ProjectionEngine struct {
	BaseService
}

// NewProjectionEngine creates an engine logging to logger, or to the default logger when nil.
func NewProjectionEngine(logger *slog.Logger) *ProjectionEngine {
	return &ProjectionEngine{BaseService: BaseService{Logger: logger}}
}

// GenerateMonthlyCashflow folds the model month by month from start.
//
//	CashIn     = revenue + funding in
//	CashOut    = expense cash-out + debt principal + debt interest
//	EndingCash = previous ending cash (opening cash for the first month) + CashIn − CashOut − taxes
//
// With includeTaxes, sales tax applies to revenue per the VAT mode and income
// tax to revenue less item direct cost, deductible expenses, depreciation and
// debt interest.
func (e *ProjectionEngine) GenerateMonthlyCashflow(model ModelView, months int, start domain.YYYYMM, includeTaxes bool) ([]domain.Cashflow, error) {
	if months <= 0 {
		return nil, apperrors.NewValidationError("months", "must be positive, got %d", months)
	}
	if !start.Valid() {
		return nil, apperrors.NewValidationError("startMonth", "invalid month %q", start)
	}
	taxConfig := model.TaxConfig()
	prev := model.OpeningCash()
	out := make([]domain.Cashflow, 0, months)
	for i := 0; i < months; i++ {
		month := start.AddMonths(i)
		cf := domain.Cashflow{
			Month:        month,
			Revenue:      model.MonthlyRevenue(month),
			DirectCost:   model.MonthlyDirectCost(month),
			FundingIn:    model.MonthlyFundingIn(month),
			Expenses:     model.MonthlyExpenses(month),
			Depreciation: model.MonthlyDepreciation(month),
		}
		cf.DebtPrincipal, cf.DebtInterest = model.DebtService(month)
		cf.CashIn = cf.Revenue.Add(cf.FundingIn)
		cf.CashOut = cf.Expenses.Add(cf.DebtPrincipal).Add(cf.DebtInterest)
		if includeTaxes {
			taxable := cf.Revenue.
				Subtract(cf.DirectCost).
				Subtract(model.MonthlyTaxDeductible(month)).
				Subtract(cf.Depreciation).
				Subtract(cf.DebtInterest)
			taxes := taxConfig.Compute(cf.Revenue, taxable)
			cf.Taxes = &taxes
		}
		cf.EndingCash = prev.Add(cf.CashIn).Subtract(cf.CashOut).Subtract(cf.TotalTaxes())
		prev = cf.EndingCash
		out = append(out, cf)
	}
	e.LogDebug("Cashflow generated",
		slog.String("start", start.String()),
		slog.Int("months", months),
		slog.Bool("include_taxes", includeTaxes),
		slog.String("ending_cash", prev.String()))
	return out, nil
}

// CalculateRunway returns the 1-based position of the first month whose ending
// cash is zero or below. A series that never breaches yields its length.
func (e *ProjectionEngine) CalculateRunway(cashflows []domain.Cashflow) int {
	if i, ok := firstBreach(cashflows); ok {
		return i + 1
	}
	return len(cashflows)
}

func firstBreach(cashflows []domain.Cashflow) (int, bool) {
	for i, cf := range cashflows {
		if !cf.EndingCash.IsPositive() {
			return i, true
		}
	}
	return 0, false
}

// ScenarioOverrides are what-if adjustments applied to a copy of a model.
// Unset multipliers leave figures unchanged.
type ScenarioOverrides struct {
	Name                 string
	RevenueMultiplier    decimal.NullDecimal
	ExpenseMultiplier    decimal.NullDecimal
	MonthlyExpenseOffset money.Money
	OpeningCashOffset    money.Money
	ExtraFunding         []domain.FundingEvent
	StartMonth           domain.YYYYMM
	Months               int
	IncludeTaxes         *bool
}

func (o ScenarioOverrides) validate() error {
	if o.RevenueMultiplier.Valid && o.RevenueMultiplier.Decimal.IsNegative() {
		return apperrors.NewValidationError("revenueMultiplier", "must not be negative, got %s", o.RevenueMultiplier.Decimal)
	}
	if o.ExpenseMultiplier.Valid && o.ExpenseMultiplier.Decimal.IsNegative() {
		return apperrors.NewValidationError("expenseMultiplier", "must not be negative, got %s", o.ExpenseMultiplier.Decimal)
	}
	if o.Months < 0 {
		return apperrors.NewValidationError("months", "must not be negative, got %d", o.Months)
	}
	return nil
}

// scenarioView reads through to a cloned model and applies the overrides.
type scenarioView struct {
	*BusinessModel
	o ScenarioOverrides
}

func scale(v money.Money, factor decimal.NullDecimal) money.Money {
	if !factor.Valid {
		return v
	}
	return v.Multiply(factor.Decimal)
}

func (v scenarioView) OpeningCash() money.Money {
	return v.BusinessModel.OpeningCash().Add(v.o.OpeningCashOffset)
}

func (v scenarioView) MonthlyRevenue(month domain.YYYYMM) money.Money {
	return scale(v.BusinessModel.MonthlyRevenue(month), v.o.RevenueMultiplier)
}

func (v scenarioView) MonthlyDirectCost(month domain.YYYYMM) money.Money {
	return scale(v.BusinessModel.MonthlyDirectCost(month), v.o.RevenueMultiplier)
}

func (v scenarioView) MonthlyExpenses(month domain.YYYYMM) money.Money {
	out := scale(v.BusinessModel.MonthlyExpenses(month), v.o.ExpenseMultiplier).Add(v.o.MonthlyExpenseOffset)
	if out.IsNegative() {
		return money.Zero(v.Currency())
	}
	return out
}

func (v scenarioView) MonthlyDepreciation(month domain.YYYYMM) money.Money {
	return scale(v.BusinessModel.MonthlyDepreciation(month), v.o.ExpenseMultiplier)
}

func (v scenarioView) MonthlyTaxDeductible(month domain.YYYYMM) money.Money {
	out := scale(v.BusinessModel.MonthlyTaxDeductible(month), v.o.ExpenseMultiplier).Add(v.o.MonthlyExpenseOffset)
	if out.IsNegative() {
		return money.Zero(v.Currency())
	}
	return out
}

// SimulateScenario projects a structural copy of model with the overrides
// applied. model itself is never modified.
func (e *ProjectionEngine) SimulateScenario(model *BusinessModel, o ScenarioOverrides) ([]domain.Cashflow, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	clone := model.Clone()
	for _, ev := range o.ExtraFunding {
		if err := clone.Funding().Add(ev); err != nil {
			return nil, fmt.Errorf("scenario funding %q: %w", ev.Name, err)
		}
	}
	months := o.Months
	if months == 0 {
		months = clone.Period().MonthCount()
	}
	start := o.StartMonth
	if start == "" {
		start = clone.Period().StartMonth
	}
	includeTaxes := true
	if o.IncludeTaxes != nil {
		includeTaxes = *o.IncludeTaxes
	}
	cashflows, err := e.GenerateMonthlyCashflow(scenarioView{BusinessModel: clone, o: o}, months, start, includeTaxes)
	if err != nil {
		return nil, err
	}
	e.LogInfo("Scenario simulated",
		slog.String("scenario", o.Name),
		slog.Int("months", months),
		slog.Int("runway_months", e.CalculateRunway(cashflows)))
	return cashflows, nil
}

// ProjectFunding returns a new series with planned funding merged in. Inflows
// land in their months; debt payments follow each debt's schedule under mode.
// Ending cash is carried forward from the change. Taxes are left as projected.
func (e *ProjectionEngine) ProjectFunding(cashflows []domain.Cashflow, planned []domain.FundingEvent, mode ScheduleMode) ([]domain.Cashflow, error) {
	type delta struct{ in, principal, interest money.Money }
	deltas := make(map[domain.YYYYMM]delta)
	for _, ev := range planned {
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("planned funding %q: %w", ev.Name, err)
		}
		for _, cf := range cashflows {
			if in := ev.CashInForMonth(cf.Month); !in.IsZero() {
				d := deltas[cf.Month]
				d.in = d.in.Add(in)
				deltas[cf.Month] = d
			}
		}
		if !ev.IsDebt() {
			continue
		}
		for _, entry := range ev.GenerateAmortizationSchedule(mode.FullyAmortized, mode.UseCompoundInterest) {
			d := deltas[entry.Month]
			d.principal = d.principal.Add(entry.Principal)
			d.interest = d.interest.Add(entry.InterestPaid())
			deltas[entry.Month] = d
		}
	}
	out := make([]domain.Cashflow, len(cashflows))
	var carried money.Money
	for i, cf := range cashflows {
		c := cf
		if cf.Taxes != nil {
			taxes := *cf.Taxes
			c.Taxes = &taxes
		}
		if d, ok := deltas[cf.Month]; ok {
			c.FundingIn = c.FundingIn.Add(d.in)
			c.CashIn = c.CashIn.Add(d.in)
			c.DebtPrincipal = c.DebtPrincipal.Add(d.principal)
			c.DebtInterest = c.DebtInterest.Add(d.interest)
			c.CashOut = c.CashOut.Add(d.principal).Add(d.interest)
			carried = carried.Add(d.in).Subtract(d.principal).Subtract(d.interest)
		}
		c.EndingCash = c.EndingCash.Add(carried)
		out[i] = c
	}
	return out, nil
}

// GenerateBalanceSnapshot derives a simplified balance sheet at the end of
// month from the series that covers it. Capital assets are carried at book
// value against the part of their cost not yet paid, and debt at its disbursed
// balance including capitalized interest.
func (e *ProjectionEngine) GenerateBalanceSnapshot(model ModelView, month domain.YYYYMM, cashflows []domain.Cashflow) (domain.BalanceSnapshot, error) {
	idx := -1
	for i, cf := range cashflows {
		if cf.Month == month {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.BalanceSnapshot{}, apperrors.NewValidationError("month", "%s is not covered by the cashflow series", month)
	}
	accrued := model.AccruedInterest(month)
	retained := money.Zero(model.Currency()).Subtract(accrued)
	for _, cf := range cashflows[:idx+1] {
		retained = retained.Add(cf.NetIncome())
	}
	cash := cashflows[idx].EndingCash
	debt := model.DebtOutstanding(month)
	payable := model.CapitalPayable(month)
	assets := cash.Add(model.AssetBookValue(month))
	liabilities := debt.Add(payable)
	return domain.BalanceSnapshot{
		Month:            month,
		Cash:             cash,
		AssetsNet:        assets,
		Liabilities:      liabilities,
		Equity:           assets.Subtract(liabilities),
		DebtOutstanding:  debt,
		CapitalPayable:   payable,
		AccruedInterest:  accrued,
		RetainedEarnings: retained,
	}, nil
}

// GetEBITDAAcrossPeriod sums EBITDA over one run.
func (e *ProjectionEngine) GetEBITDAAcrossPeriod(cashflows []domain.Cashflow) money.Money {
	total := money.Zero(seriesCurrency(cashflows))
	for _, cf := range cashflows {
		total = total.Add(cf.EBITDA())
	}
	return total
}

// GetNetIncomeAcrossPeriod sums net income over one run.
func (e *ProjectionEngine) GetNetIncomeAcrossPeriod(cashflows []domain.Cashflow) money.Money {
	total := money.Zero(seriesCurrency(cashflows))
	for _, cf := range cashflows {
		total = total.Add(cf.NetIncome())
	}
	return total
}

// AverageBurn is the mean of CashOut plus taxes over one run.
func (e *ProjectionEngine) AverageBurn(cashflows []domain.Cashflow) money.Money {
	total := money.Zero(seriesCurrency(cashflows))
	if len(cashflows) == 0 {
		return total
	}
	for _, cf := range cashflows {
		total = total.Add(cf.CashOut).Add(cf.TotalTaxes())
	}
	return total.DivideInt(int64(len(cashflows)))
}

// AverageNetBurn is the mean of NetBurn over one run. Negative means revenue
// covers outflows on average.
func (e *ProjectionEngine) AverageNetBurn(cashflows []domain.Cashflow) money.Money {
	total := money.Zero(seriesCurrency(cashflows))
	if len(cashflows) == 0 {
		return total
	}
	for _, cf := range cashflows {
		total = total.Add(cf.NetBurn())
	}
	return total.DivideInt(int64(len(cashflows)))
}

// BreakEvenMonth is the first month with revenue covering every outflow,
// funding excluded. The second result is false when no month breaks even.
func (e *ProjectionEngine) BreakEvenMonth(cashflows []domain.Cashflow) (domain.YYYYMM, bool) {
	for _, cf := range cashflows {
		if !cf.Revenue.IsZero() && !cf.NetBurn().IsPositive() {
			return cf.Month, true
		}
	}
	return "", false
}

func seriesCurrency(cashflows []domain.Cashflow) string {
	if len(cashflows) == 0 {
		return ""
	}
	return cashflows[0].EndingCash.Currency()
}
