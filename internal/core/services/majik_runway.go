package services

import (
	"log/slog"
	"strings"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InitParams are the starting figures of a runway model.
type InitParams struct {
	ID           string
	Name         string
	OpeningCash  money.Money
	Period       domain.PeriodYYYYMM
	BusinessType domain.BusinessType
	TaxConfig    domain.TaxConfig
}

// MajikRunway is the single owner of one BusinessModel. It is not safe for
// concurrent use; callers sharing one across goroutines must serialize access.
//
// Mutators return the receiver for chaining along with an error. When the error
// is non-nil the model is left as it was.
type MajikRunway struct {
	BaseService
	id           string
	name         string
	model        *BusinessModel
	engine       *ProjectionEngine
	mode         ScheduleMode
	thresholds   HealthThresholds
	includeTaxes bool
}

// RunwayOption is a functional option for configuring a MajikRunway
type RunwayOption func(*MajikRunway)

// WithLogger sets the logger shared by the facade, its managers and its engine.
func WithLogger(logger *slog.Logger) RunwayOption {
	return func(r *MajikRunway) { r.Logger = logger }
}

// WithDebtScheduleMode sets how debt schedules are generated.
func WithDebtScheduleMode(mode ScheduleMode) RunwayOption {
	return func(r *MajikRunway) { r.mode = mode }
}

// WithHealthThresholds sets the limits used by GetRunwayHealth.
func WithHealthThresholds(t HealthThresholds) RunwayOption {
	return func(r *MajikRunway) { r.thresholds = t }
}

// WithIncludeTaxes controls whether projections charge taxes.
func WithIncludeTaxes(include bool) RunwayOption {
	return func(r *MajikRunway) { r.includeTaxes = include }
}

// Initialize creates a runway model with empty collections.
func Initialize(p InitParams, options ...RunwayOption) (*MajikRunway, error) {
	r := &MajikRunway{
		id:           p.ID,
		name:         strings.TrimSpace(p.Name),
		mode:         DefaultScheduleMode(),
		thresholds:   DefaultHealthThresholds(),
		includeTaxes: true,
	}
	for _, option := range options {
		option(r)
	}
	if r.id == "" {
		r.id = uuid.NewString()
	}
	if err := r.thresholds.Validate(); err != nil {
		return nil, err
	}
	model, err := NewBusinessModel(ModelSettings{
		OpeningCash:  p.OpeningCash,
		Period:       p.Period,
		BusinessType: p.BusinessType,
		TaxConfig:    p.TaxConfig,
		ScheduleMode: r.mode,
		Logger:       r.Logger,
	})
	if err != nil {
		return nil, err
	}
	r.model = model
	r.engine = NewProjectionEngine(r.Logger)
	r.LogInfo("Runway model initialized",
		slog.String("runway_id", r.id),
		slog.String("currency", model.Currency()),
		slog.String("start", p.Period.StartMonth.String()),
		slog.String("end", p.Period.EndMonth.String()))
	return r, nil
}

func (r *MajikRunway) ID() string                        { return r.id }
func (r *MajikRunway) Name() string                      { return r.name }
func (r *MajikRunway) Currency() string                  { return r.model.Currency() }
func (r *MajikRunway) OpeningCash() money.Money          { return r.model.OpeningCash() }
func (r *MajikRunway) Period() domain.PeriodYYYYMM       { return r.model.Period() }
func (r *MajikRunway) BusinessType() domain.BusinessType { return r.model.BusinessType() }
func (r *MajikRunway) TaxConfig() domain.TaxConfig       { return r.model.TaxConfig() }
func (r *MajikRunway) ScheduleMode() ScheduleMode        { return r.mode }
func (r *MajikRunway) Thresholds() HealthThresholds      { return r.thresholds }
func (r *MajikRunway) IncludesTaxes() bool               { return r.includeTaxes }

// Funding, Revenues and Expenses return copies; mutate through the facade.
func (r *MajikRunway) Funding() *FundingManager    { return r.model.Funding().Clone() }
func (r *MajikRunway) Revenues() *RevenueStream    { return r.model.Revenues().Clone() }
func (r *MajikRunway) Expenses() *ExpenseBreakdown { return r.model.Expenses().Clone() }

// Model returns a copy of the owned model.
func (r *MajikRunway) Model() *BusinessModel { return r.model.Clone() }

func (r *MajikRunway) done(op string, err error) (*MajikRunway, error) {
	if err != nil {
		r.LogDebug("Runway mutation rejected", slog.String("op", op), slog.String("error", err.Error()))
		return r, err
	}
	r.LogDebug("Runway mutated", slog.String("op", op))
	return r, nil
}

// AddFunding adds a prepared funding event.
func (r *MajikRunway) AddFunding(ev domain.FundingEvent) (*MajikRunway, error) {
	return r.done("add_funding", r.model.funding.Add(ev))
}

// AddEquity adds an equity raise.
func (r *MajikRunway) AddEquity(name string, amount money.Money, month domain.YYYYMM) (*MajikRunway, error) {
	ev, err := domain.NewEquity(name, amount, month)
	if err != nil {
		return r.done("add_equity", err)
	}
	return r.done("add_equity", r.model.funding.Add(ev))
}

// AddGrant adds a grant.
func (r *MajikRunway) AddGrant(name string, amount money.Money, month domain.YYYYMM) (*MajikRunway, error) {
	ev, err := domain.NewGrant(name, amount, month)
	if err != nil {
		return r.done("add_grant", err)
	}
	return r.done("add_grant", r.model.funding.Add(ev))
}

// AddDebt adds a loan drawn in month and repaid by maturityDate.
func (r *MajikRunway) AddDebt(name string, amount money.Money, month domain.YYYYMM, maturityDate string, interestRate decimal.Decimal, initialPayment money.Money, opts ...domain.DebtOption) (*MajikRunway, error) {
	ev, err := domain.NewDebt(name, amount, month, maturityDate, interestRate, initialPayment, opts...)
	if err != nil {
		return r.done("add_debt", err)
	}
	return r.done("add_debt", r.model.funding.Add(ev))
}

// UpdateFunding replaces a funding event.
func (r *MajikRunway) UpdateFunding(ev domain.FundingEvent) (*MajikRunway, error) {
	return r.done("update_funding", r.model.funding.Update(ev))
}

// RemoveFunding deletes a funding event.
func (r *MajikRunway) RemoveFunding(id string) (*MajikRunway, error) {
	return r.done("remove_funding", r.model.funding.Remove(id))
}

// AddRevenue adds a revenue item.
func (r *MajikRunway) AddRevenue(item domain.RevenueItem) (*MajikRunway, error) {
	return r.done("add_revenue", r.model.revenues.Add(item))
}

// UpdateRevenue replaces a revenue item.
func (r *MajikRunway) UpdateRevenue(item domain.RevenueItem) (*MajikRunway, error) {
	return r.done("update_revenue", r.model.revenues.Update(item))
}

// RemoveRevenue deletes a revenue item.
func (r *MajikRunway) RemoveRevenue(id string) (*MajikRunway, error) {
	return r.done("remove_revenue", r.model.revenues.Remove(id))
}

// AddExpense adds a prepared expense record.
func (r *MajikRunway) AddExpense(rec domain.ExpenseRecord) (*MajikRunway, error) {
	return r.done("add_expense", r.model.expenses.Add(rec))
}

// AddRecurringExpense adds an expense charged every frequency interval from start.
func (r *MajikRunway) AddRecurringExpense(name string, t domain.ExpenseType, amount money.Money, freq domain.Frequency, start, end domain.YYYYMM, taxDeductible bool) (*MajikRunway, error) {
	_, err := r.model.expenses.AddRecurring(name, t, amount, freq, start, end, taxDeductible)
	return r.done("add_recurring_expense", err)
}

// AddOneTimeExpense adds an expense charged once.
func (r *MajikRunway) AddOneTimeExpense(name string, t domain.ExpenseType, amount money.Money, month domain.YYYYMM, taxDeductible bool) (*MajikRunway, error) {
	_, err := r.model.expenses.AddOneTime(name, t, amount, month, taxDeductible)
	return r.done("add_one_time_expense", err)
}

// AddCapitalExpense adds a purchase depreciated straight-line.
func (r *MajikRunway) AddCapitalExpense(name string, amount money.Money, month domain.YYYYMM, depreciationMonths int, residual money.Money) (*MajikRunway, error) {
	_, err := r.model.expenses.AddCapital(name, amount, month, depreciationMonths, residual)
	return r.done("add_capital_expense", err)
}

// UpdateExpense replaces an expense record.
func (r *MajikRunway) UpdateExpense(rec domain.ExpenseRecord) (*MajikRunway, error) {
	return r.done("update_expense", r.model.expenses.Update(rec))
}

// RemoveExpense deletes an expense record.
func (r *MajikRunway) RemoveExpense(id string) (*MajikRunway, error) {
	return r.done("remove_expense", r.model.expenses.Remove(id))
}

// SetOpeningCash changes the cash held before the first month.
func (r *MajikRunway) SetOpeningCash(cash money.Money) (*MajikRunway, error) {
	if cash.Currency() != r.model.Currency() {
		return r.done("set_opening_cash", apperrors.NewValidationError("openingCash", "currency %q does not match model currency %q", cash.Currency(), r.model.Currency()))
	}
	r.model.openingCash = cash
	return r.done("set_opening_cash", nil)
}

// SetTaxConfig replaces the tax settings.
func (r *MajikRunway) SetTaxConfig(c domain.TaxConfig) (*MajikRunway, error) {
	if err := c.Validate(); err != nil {
		return r.done("set_tax_config", err)
	}
	r.model.taxConfig = c
	return r.done("set_tax_config", nil)
}

// SetBusinessType reclassifies the business.
func (r *MajikRunway) SetBusinessType(t domain.BusinessType) *MajikRunway {
	r.model.businessType = t
	return r
}

// SetScheduleMode changes how debt schedules are generated.
func (r *MajikRunway) SetScheduleMode(mode ScheduleMode) *MajikRunway {
	r.mode = mode
	r.model.funding.SetScheduleMode(mode)
	return r
}

// SetPeriod moves all three collections to period at once; on failure none move.
func (r *MajikRunway) SetPeriod(period domain.PeriodYYYYMM) (*MajikRunway, error) {
	return r.done("set_period", r.model.setPeriod(period))
}

// UpdatePeriod parses both bounds and calls SetPeriod.
func (r *MajikRunway) UpdatePeriod(start, end string) (*MajikRunway, error) {
	p, err := domain.NewPeriod(start, end)
	if err != nil {
		return r.done("set_period", err)
	}
	return r.SetPeriod(p)
}

// ValidateCurrencyConsistency checks every amount uses the model currency.
func (r *MajikRunway) ValidateCurrencyConsistency() error {
	return r.model.ValidateCurrencyConsistency()
}

// GetCashflow projects the model over its whole period.
func (r *MajikRunway) GetCashflow() ([]domain.Cashflow, error) {
	p := r.model.Period()
	return r.engine.GenerateMonthlyCashflow(r.model, p.MonthCount(), p.StartMonth, r.includeTaxes)
}

// Project runs the model for an arbitrary horizon.
func (r *MajikRunway) Project(months int, start domain.YYYYMM, includeTaxes bool) ([]domain.Cashflow, error) {
	return r.engine.GenerateMonthlyCashflow(r.model, months, start, includeTaxes)
}

// GetRunwayRemainingMonths is the 1-based month in which cash first reaches
// zero or below, or the horizon length when it never does.
func (r *MajikRunway) GetRunwayRemainingMonths() (int, error) {
	cashflows, err := r.GetCashflow()
	if err != nil {
		return 0, err
	}
	return r.engine.CalculateRunway(cashflows), nil
}

// GetBurnRate is the average monthly outflow, taxes included.
func (r *MajikRunway) GetBurnRate() (money.Money, error) {
	cashflows, err := r.GetCashflow()
	if err != nil {
		return money.Money{}, err
	}
	return r.engine.AverageBurn(cashflows), nil
}

// GetNetBurnRate is the average monthly outflow not covered by revenue.
func (r *MajikRunway) GetNetBurnRate() (money.Money, error) {
	cashflows, err := r.GetCashflow()
	if err != nil {
		return money.Money{}, err
	}
	return r.engine.AverageNetBurn(cashflows), nil
}

// GetBreakEvenMonth is the first month revenue covers every outflow.
func (r *MajikRunway) GetBreakEvenMonth() (domain.YYYYMM, bool, error) {
	cashflows, err := r.GetCashflow()
	if err != nil {
		return "", false, err
	}
	month, ok := r.engine.BreakEvenMonth(cashflows)
	return month, ok, nil
}

// GetEBITDA sums EBITDA across the period.
func (r *MajikRunway) GetEBITDA() (money.Money, error) {
	cashflows, err := r.GetCashflow()
	if err != nil {
		return money.Money{}, err
	}
	return r.engine.GetEBITDAAcrossPeriod(cashflows), nil
}

// GetNetIncome sums net income across the period.
func (r *MajikRunway) GetNetIncome() (money.Money, error) {
	cashflows, err := r.GetCashflow()
	if err != nil {
		return money.Money{}, err
	}
	return r.engine.GetNetIncomeAcrossPeriod(cashflows), nil
}

// SimulateScenario projects a copy of the model with o applied.
func (r *MajikRunway) SimulateScenario(o ScenarioOverrides) ([]domain.Cashflow, error) {
	if o.IncludeTaxes == nil {
		include := r.includeTaxes
		o.IncludeTaxes = &include
	}
	return r.engine.SimulateScenario(r.model, o)
}

// ProjectFunding merges planned funding into the period's projection.
func (r *MajikRunway) ProjectFunding(planned []domain.FundingEvent) ([]domain.Cashflow, error) {
	cashflows, err := r.GetCashflow()
	if err != nil {
		return nil, err
	}
	return r.engine.ProjectFunding(cashflows, planned, r.mode)
}

// GetBalanceSnapshot derives the balance sheet at the end of month.
func (r *MajikRunway) GetBalanceSnapshot(month domain.YYYYMM) (domain.BalanceSnapshot, error) {
	cashflows, err := r.GetCashflow()
	if err != nil {
		return domain.BalanceSnapshot{}, err
	}
	return r.engine.GenerateBalanceSnapshot(r.model, month, cashflows)
}

// GetRunwayHealth classifies the current projection.
func (r *MajikRunway) GetRunwayHealth() (domain.RunwayHealth, error) {
	snap, err := r.GetDashboardSnapshot()
	if err != nil {
		return domain.RunwayHealth{}, err
	}
	return snap.Health, nil
}

// GetDashboardSnapshot computes every headline figure from a single projection run.
func (r *MajikRunway) GetDashboardSnapshot() (domain.DashboardSnapshot, error) {
	cashflows, err := r.GetCashflow()
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}
	snap := r.snapshotFrom(cashflows)
	r.LogInfo("Runway health evaluated",
		slog.String("runway_id", r.id),
		slog.String("status", string(snap.Health.Status)),
		slog.Int("runway_months", snap.RunwayMonths),
		slog.Bool("cash_breached", snap.CashBreached))
	return snap, nil
}

func (r *MajikRunway) snapshotFrom(cashflows []domain.Cashflow) domain.DashboardSnapshot {
	e := r.engine
	p := r.model.Period()
	snap := domain.DashboardSnapshot{
		Currency:              r.model.Currency(),
		StartMonth:            p.StartMonth,
		HorizonMonths:         len(cashflows),
		OpeningCash:           r.model.OpeningCash(),
		EndingCash:            cashflows[len(cashflows)-1].EndingCash,
		RunwayMonths:          e.CalculateRunway(cashflows),
		AverageMonthlyBurn:    e.AverageBurn(cashflows),
		AverageNetBurn:        e.AverageNetBurn(cashflows),
		AverageMonthlyRevenue: averageRevenue(cashflows),
		EBITDA:                e.GetEBITDAAcrossPeriod(cashflows),
		NetIncome:             e.GetNetIncomeAcrossPeriod(cashflows),
		TotalFunding:          r.model.Funding().Total(),
		TotalNonRepayable:     r.model.Funding().TotalNonRepayable(),
		Cashflows:             cashflows,
	}
	if i, ok := firstBreach(cashflows); ok {
		snap.CashBreached = true
		snap.CashZeroMonth = cashflows[i].Month
	}
	if v, ok := seriesMoM(cashflows); ok {
		snap.RevenueGrowthMoM = &v
	}
	if v, ok := seriesCMGR(cashflows); ok {
		snap.RevenueCMGR = &v
	}
	if v, ok := burnMultiple(cashflows, snap.AverageNetBurn); ok {
		snap.BurnMultiple = &v
	}
	if month, ok := e.BreakEvenMonth(cashflows); ok {
		snap.BreakEvenMonth = month
	}
	snap.Health = ClassifyHealth(snap, r.thresholds)
	return snap
}

// Clone returns an independent facade over a copy of the model.
func (r *MajikRunway) Clone() *MajikRunway {
	c := *r
	c.model = r.model.Clone()
	return &c
}
