package domain

import (
	"math"
	"strings"
	"time"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Installment is one tranche of a debt disbursed in a given month.
type Installment struct {
	Month  YYYYMM
	Amount money.Money
}

// DebtMetadata holds the repayment terms of a debt event.
type DebtMetadata struct {
	InterestRate      decimal.Decimal // annual nominal rate, 0.12 = 12%
	MaturityDate      time.Time
	InitialPayment    money.Money
	InstallmentPlan   []Installment
	Compounding       Compounding
	GracePeriodMonths int
}

func (d *DebtMetadata) clone() *DebtMetadata {
	if d == nil {
		return nil
	}
	c := *d
	c.InstallmentPlan = append([]Installment(nil), d.InstallmentPlan...)
	return &c
}

// FundingEvent is one equity, debt or grant inflow.
// It is a value type: the With/Rename/Reschedule methods return new events.
type FundingEvent struct {
	ID     string
	Name   string
	Type   FundingType
	Month  YYYYMM
	Amount money.Money
	Debt   *DebtMetadata
}

// DebtOption customises a debt built by NewDebt.
type DebtOption func(*DebtMetadata)

// WithCompounding sets the compounding frequency. Monthly is the default.
func WithCompounding(c Compounding) DebtOption {
	return func(d *DebtMetadata) { d.Compounding = c }
}

// WithGracePeriod sets the number of interest-only months at the start of the loan.
func WithGracePeriod(months int) DebtOption {
	return func(d *DebtMetadata) { d.GracePeriodMonths = months }
}

// WithInstallmentPlan disburses the debt in tranches instead of a lump sum.
func WithInstallmentPlan(plan ...Installment) DebtOption {
	return func(d *DebtMetadata) { d.InstallmentPlan = append([]Installment(nil), plan...) }
}

// NewEquity builds a validated equity event.
func NewEquity(name string, amount money.Money, month YYYYMM) (FundingEvent, error) {
	return newEvent(name, FundingEquity, amount, month, nil)
}

// NewGrant builds a validated grant event.
func NewGrant(name string, amount money.Money, month YYYYMM) (FundingEvent, error) {
	return newEvent(name, FundingGrant, amount, month, nil)
}

// NewDebt builds a validated debt event. maturityDate accepts "2006-01-02" or "2006-01".
func NewDebt(name string, amount money.Money, month YYYYMM, maturityDate string, interestRate decimal.Decimal, initialPayment money.Money, opts ...DebtOption) (FundingEvent, error) {
	maturity, err := ParseMaturityDate(maturityDate)
	if err != nil {
		return FundingEvent{}, err
	}
	if initialPayment.Currency() == "" {
		initialPayment = money.Zero(amount.Currency())
	}
	meta := &DebtMetadata{
		InterestRate:   interestRate,
		MaturityDate:   maturity,
		InitialPayment: initialPayment,
		Compounding:    CompoundingMonthly,
	}
	for _, opt := range opts {
		opt(meta)
	}
	return newEvent(name, FundingDebt, amount, month, meta)
}

// RestoreFundingEvent validates an event rebuilt from storage, keeping its ID.
func RestoreFundingEvent(e FundingEvent) (FundingEvent, error) {
	e.Debt = e.Debt.clone()
	if err := e.Validate(); err != nil {
		return FundingEvent{}, err
	}
	return e, nil
}

// ParseMaturityDate accepts an ISO date or a YYYY-MM month.
func ParseMaturityDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(MonthLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apperrors.NewValidationError("maturityDate", "invalid date %q, expected YYYY-MM-DD", s)
}

func newEvent(name string, t FundingType, amount money.Money, month YYYYMM, debt *DebtMetadata) (FundingEvent, error) {
	e := FundingEvent{
		ID:     uuid.NewString(),
		Name:   strings.TrimSpace(name),
		Type:   t,
		Month:  month,
		Amount: amount,
		Debt:   debt,
	}
	if err := e.Validate(); err != nil {
		return FundingEvent{}, err
	}
	return e, nil
}

// Validate checks every construction invariant of the event.
func (e FundingEvent) Validate() error {
	if e.ID == "" {
		return apperrors.NewValidationError("id", "funding event id is required")
	}
	if e.Name == "" {
		return apperrors.NewValidationError("name", "funding event name is required")
	}
	if !e.Type.Valid() {
		return apperrors.NewValidationError("type", "unknown funding type %q", e.Type)
	}
	if !e.Month.Valid() {
		return apperrors.NewValidationError("month", "invalid month %q", e.Month)
	}
	if !e.Amount.IsPositive() {
		return apperrors.NewValidationError("amount", "must be positive, got %s", e.Amount)
	}
	if e.Type != FundingDebt {
		if e.Debt != nil {
			return apperrors.NewValidationError("debt", "debt terms are only allowed on debt events")
		}
		return nil
	}
	return e.validateDebt()
}

func (e FundingEvent) validateDebt() error {
	d := e.Debt
	if d == nil {
		return apperrors.NewValidationError("debt", "debt terms are required for debt events")
	}
	if d.InterestRate.IsNegative() {
		return apperrors.NewValidationError("interestRate", "must not be negative, got %s", d.InterestRate)
	}
	if !MonthOf(d.MaturityDate).After(e.Month) {
		return apperrors.NewValidationError("maturityDate", "maturity %s must be after start month %s", d.MaturityDate.Format(time.DateOnly), e.Month)
	}
	if !d.Compounding.Valid() {
		return apperrors.NewValidationError("compounding", "unknown compounding %q", d.Compounding)
	}
	if d.GracePeriodMonths < 0 {
		return apperrors.NewValidationError("gracePeriodMonths", "must not be negative, got %d", d.GracePeriodMonths)
	}
	if d.InitialPayment.IsNegative() {
		return apperrors.NewValidationError("initialPayment", "must not be negative, got %s", d.InitialPayment)
	}
	if d.InitialPayment.GreaterThan(e.Amount) {
		return apperrors.NewValidationError("initialPayment", "%s exceeds principal %s", d.InitialPayment, e.Amount)
	}
	if len(d.InstallmentPlan) == 0 {
		return nil
	}
	total := money.Zero(e.Amount.Currency())
	for _, inst := range d.InstallmentPlan {
		if !inst.Month.Valid() {
			return apperrors.NewValidationError("installmentPlan", "invalid month %q", inst.Month)
		}
		if inst.Month.Before(e.Month) || !inst.Month.Before(e.MaturityMonth()) {
			return apperrors.NewValidationError("installmentPlan", "installment month %s outside %s..%s", inst.Month, e.Month, e.MaturityMonth())
		}
		if !inst.Amount.IsPositive() {
			return apperrors.NewValidationError("installmentPlan", "installment in %s must be positive", inst.Month)
		}
		total = total.Add(inst.Amount)
	}
	if total.Cmp(e.Amount) != 0 {
		return apperrors.NewValidationError("installmentPlan", "installments sum to %s, expected %s", total, e.Amount)
	}
	return nil
}

// IsDebt reports whether the event carries repayment terms.
func (e FundingEvent) IsDebt() bool { return e.Type == FundingDebt && e.Debt != nil }

// MaturityMonth returns the month of the maturity date, or "" for non-debt events.
func (e FundingEvent) MaturityMonth() YYYYMM {
	if !e.IsDebt() {
		return ""
	}
	return MonthOf(e.Debt.MaturityDate)
}

// TermMonths is the number of schedule entries of a debt.
func (e FundingEvent) TermMonths() int {
	if !e.IsDebt() {
		return 0
	}
	return e.Month.MonthsUntil(e.MaturityMonth())
}

// CashInForMonth returns the inflow this event contributes in month m.
func (e FundingEvent) CashInForMonth(m YYYYMM) money.Money {
	zero := money.Zero(e.Amount.Currency())
	if e.IsDebt() && len(e.Debt.InstallmentPlan) > 0 {
		total := zero
		for _, inst := range e.Debt.InstallmentPlan {
			if inst.Month == m {
				total = total.Add(inst.Amount)
			}
		}
		return total
	}
	if m == e.Month {
		return e.Amount
	}
	return zero
}

// WithAmount returns a copy with a new amount.
func (e FundingEvent) WithAmount(amount money.Money) (FundingEvent, error) {
	c := e.copy()
	c.Amount = amount
	if c.IsDebt() && len(c.Debt.InstallmentPlan) > 0 {
		// A plan that no longer sums to the amount is discarded in favour of a lump sum.
		c.Debt.InstallmentPlan = nil
	}
	if err := c.Validate(); err != nil {
		return FundingEvent{}, err
	}
	return c, nil
}

// Rename returns a copy with a new name.
func (e FundingEvent) Rename(name string) (FundingEvent, error) {
	c := e.copy()
	c.Name = strings.TrimSpace(name)
	if err := c.Validate(); err != nil {
		return FundingEvent{}, err
	}
	return c, nil
}

// Reschedule returns a copy moved to month. A debt keeps its term length, so
// its maturity date and installment plan shift by the same number of months.
func (e FundingEvent) Reschedule(month YYYYMM) (FundingEvent, error) {
	c := e.copy()
	shift := e.Month.MonthsUntil(month)
	c.Month = month
	if c.IsDebt() {
		c.Debt.MaturityDate = c.Debt.MaturityDate.AddDate(0, shift, 0)
		for i := range c.Debt.InstallmentPlan {
			c.Debt.InstallmentPlan[i].Month = c.Debt.InstallmentPlan[i].Month.AddMonths(shift)
		}
	}
	if err := c.Validate(); err != nil {
		return FundingEvent{}, err
	}
	return c, nil
}

func (e FundingEvent) copy() FundingEvent {
	c := e
	c.Debt = e.Debt.clone()
	return c
}

// Clone returns a deep copy sharing no mutable state with e.
func (e FundingEvent) Clone() FundingEvent { return e.copy() }

// monthlyRate converts the annual rate into the rate applied each month.
func (e FundingEvent) monthlyRate(useCompoundInterest bool) decimal.Decimal {
	annual := e.Debt.InterestRate
	if annual.IsZero() {
		return decimal.Zero
	}
	if !useCompoundInterest {
		return annual.DivRound(decimal.NewFromInt(12), 16)
	}
	switch e.Debt.Compounding {
	case CompoundingQuarterly:
		return effectiveMonthlyRate(annual.DivRound(decimal.NewFromInt(4), 16), 3)
	case CompoundingAnnually:
		return effectiveMonthlyRate(annual, 12)
	default:
		return annual.DivRound(decimal.NewFromInt(12), 16)
	}
}

// effectiveMonthlyRate solves (1+m)^months = 1+periodRate for m. The fractional
// root goes through float64 and is cut to 12 places before any money math.
func effectiveMonthlyRate(periodRate decimal.Decimal, months int) decimal.Decimal {
	root := math.Pow(1+periodRate.InexactFloat64(), 1/float64(months)) - 1
	return decimal.NewFromFloat(root).Round(12)
}

func (e FundingEvent) compounds(useCompoundInterest bool) bool {
	return useCompoundInterest && e.Debt.Compounding != CompoundingNone
}
