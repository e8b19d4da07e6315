package domain

import (
	"strings"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/google/uuid"
)

// Recurrence describes when a recurring expense is charged.
// An empty EndMonth means the charge runs indefinitely.
type Recurrence struct {
	Frequency  Frequency
	StartMonth YYYYMM
	EndMonth   YYYYMM
}

// Occurs reports whether the recurrence charges in month m.
func (r Recurrence) Occurs(m YYYYMM) bool {
	if m.Before(r.StartMonth) || (r.EndMonth != "" && m.After(r.EndMonth)) {
		return false
	}
	return r.StartMonth.MonthsUntil(m)%r.Frequency.IntervalMonths() == 0
}

// MonthlyAllocation is an amount scheduled for one month.
type MonthlyAllocation struct {
	Month  YYYYMM
	Amount money.Money
}

// CapitalMeta holds straight-line depreciation terms of a capital expense.
type CapitalMeta struct {
	StartMonth         YYYYMM
	DepreciationMonths int
	ResidualValue      money.Money
}

// ExpenseKind is the cash-out behaviour derived from an expense record's shape.
type ExpenseKind string

const (
	KindRecurring ExpenseKind = "RECURRING"
	KindOneTime   ExpenseKind = "ONE_TIME"
	KindCapital   ExpenseKind = "CAPITAL"
)

// ExpenseRecord is one expense line of the model.
type ExpenseRecord struct {
	ID              string
	Name            string
	Type            ExpenseType
	Amount          money.Money
	Recurrence      *Recurrence
	Schedule        []MonthlyAllocation
	IsTaxDeductible bool
	CapitalMeta     *CapitalMeta
}

// NewRecurringExpense builds a validated recurring expense.
func NewRecurringExpense(name string, t ExpenseType, amount money.Money, freq Frequency, start, end YYYYMM, taxDeductible bool) (ExpenseRecord, error) {
	return newExpense(ExpenseRecord{
		Name:            name,
		Type:            t,
		Amount:          amount,
		Recurrence:      &Recurrence{Frequency: freq, StartMonth: start, EndMonth: end},
		IsTaxDeductible: taxDeductible,
	})
}

// NewOneTimeExpense builds a validated expense charged once in month.
func NewOneTimeExpense(name string, t ExpenseType, amount money.Money, month YYYYMM, taxDeductible bool) (ExpenseRecord, error) {
	return newExpense(ExpenseRecord{
		Name:            name,
		Type:            t,
		Amount:          amount,
		Schedule:        []MonthlyAllocation{{Month: month, Amount: amount}},
		IsTaxDeductible: taxDeductible,
	})
}

// NewScheduledExpense builds an expense made of explicit monthly allocations.
func NewScheduledExpense(name string, t ExpenseType, schedule []MonthlyAllocation, taxDeductible bool) (ExpenseRecord, error) {
	var total money.Money
	for _, a := range schedule {
		total = total.Add(a.Amount)
	}
	return newExpense(ExpenseRecord{
		Name:            name,
		Type:            t,
		Amount:          total,
		Schedule:        append([]MonthlyAllocation(nil), schedule...),
		IsTaxDeductible: taxDeductible,
	})
}

// NewCapitalExpense builds a capital purchase depreciated straight-line from month.
func NewCapitalExpense(name string, amount money.Money, month YYYYMM, depreciationMonths int, residual money.Money) (ExpenseRecord, error) {
	if residual.Currency() == "" {
		residual = money.Zero(amount.Currency())
	}
	return newExpense(ExpenseRecord{
		Name:            name,
		Type:            ExpenseCapital,
		Amount:          amount,
		IsTaxDeductible: true,
		CapitalMeta: &CapitalMeta{
			StartMonth:         month,
			DepreciationMonths: depreciationMonths,
			ResidualValue:      residual,
		},
	})
}

// RestoreExpenseRecord validates a record rebuilt from storage, keeping its ID.
func RestoreExpenseRecord(r ExpenseRecord) (ExpenseRecord, error) {
	r = r.Clone()
	if err := r.Validate(); err != nil {
		return ExpenseRecord{}, err
	}
	return r, nil
}

func newExpense(r ExpenseRecord) (ExpenseRecord, error) {
	r.ID = uuid.NewString()
	r.Name = strings.TrimSpace(r.Name)
	if err := r.Validate(); err != nil {
		return ExpenseRecord{}, err
	}
	return r, nil
}

// Kind classifies the record. Capital terms win over a recurrence, which wins over a schedule.
func (r ExpenseRecord) Kind() ExpenseKind {
	switch {
	case r.CapitalMeta != nil:
		return KindCapital
	case r.Recurrence != nil:
		return KindRecurring
	default:
		return KindOneTime
	}
}

// Validate checks the record's invariants.
func (r ExpenseRecord) Validate() error {
	if r.ID == "" {
		return apperrors.NewValidationError("id", "expense id is required")
	}
	if r.Name == "" {
		return apperrors.NewValidationError("name", "expense name is required")
	}
	if !r.Type.Valid() {
		return apperrors.NewValidationError("type", "unknown expense type %q", r.Type)
	}
	if !r.Amount.IsPositive() {
		return apperrors.NewValidationError("amount", "must be positive, got %s", r.Amount)
	}
	switch r.Kind() {
	case KindCapital:
		c := r.CapitalMeta
		if !c.StartMonth.Valid() {
			return apperrors.NewValidationError("capitalMeta.startMonth", "invalid month %q", c.StartMonth)
		}
		if c.DepreciationMonths <= 0 {
			return apperrors.NewValidationError("capitalMeta.depreciationMonths", "must be positive, got %d", c.DepreciationMonths)
		}
		if c.ResidualValue.IsNegative() || !c.ResidualValue.LessThan(r.Amount) {
			return apperrors.NewValidationError("capitalMeta.residualValue", "must be in [0, amount), got %s", c.ResidualValue)
		}
	case KindRecurring:
		rec := r.Recurrence
		if !rec.Frequency.Valid() {
			return apperrors.NewValidationError("recurrence.frequency", "unknown frequency %q", rec.Frequency)
		}
		if !rec.StartMonth.Valid() {
			return apperrors.NewValidationError("recurrence.startMonth", "invalid month %q", rec.StartMonth)
		}
		if rec.EndMonth != "" && (!rec.EndMonth.Valid() || rec.EndMonth.Before(rec.StartMonth)) {
			return apperrors.NewValidationError("recurrence.endMonth", "invalid end month %q", rec.EndMonth)
		}
	case KindOneTime:
		if len(r.Schedule) == 0 {
			return apperrors.NewValidationError("schedule", "a one-time expense needs at least one scheduled month")
		}
		for _, a := range r.Schedule {
			if !a.Month.Valid() {
				return apperrors.NewValidationError("schedule", "invalid month %q", a.Month)
			}
			if a.Amount.IsNegative() {
				return apperrors.NewValidationError("schedule", "allocation in %s must not be negative", a.Month)
			}
		}
	}
	return nil
}

// MonthlyDepreciation is the straight-line charge of a capital record, or zero.
func (r ExpenseRecord) MonthlyDepreciation() money.Money {
	if r.CapitalMeta == nil {
		return money.Zero(r.Amount.Currency())
	}
	base := r.Amount.Subtract(r.CapitalMeta.ResidualValue)
	return base.DivideInt(int64(r.CapitalMeta.DepreciationMonths))
}

// DepreciationForMonth returns the capital charge falling in month m. The final
// month absorbs the rounding remainder so the charges sum to the depreciable base.
func (r ExpenseRecord) DepreciationForMonth(m YYYYMM) money.Money {
	zero := money.Zero(r.Amount.Currency())
	c := r.CapitalMeta
	if c == nil {
		return zero
	}
	idx := c.StartMonth.MonthsUntil(m)
	if idx < 0 || idx >= c.DepreciationMonths {
		return zero
	}
	monthly := r.MonthlyDepreciation()
	if idx == c.DepreciationMonths-1 {
		base := r.Amount.Subtract(c.ResidualValue)
		return base.Subtract(monthly.MultiplyInt(int64(c.DepreciationMonths - 1)))
	}
	return monthly
}

// CashOutForMonth resolves the amount the record emits in month m.
func (r ExpenseRecord) CashOutForMonth(m YYYYMM) money.Money {
	zero := money.Zero(r.Amount.Currency())
	switch r.Kind() {
	case KindCapital:
		return r.DepreciationForMonth(m)
	case KindRecurring:
		if r.Recurrence.Occurs(m) {
			return r.Amount
		}
		return zero
	case KindOneTime:
		total := zero
		for _, a := range r.Schedule {
			if a.Month == m {
				total = total.Add(a.Amount)
			}
		}
		return total
	}
	return zero
}

// BookValue is the undepreciated value of a capital record at the end of month m.
func (r ExpenseRecord) BookValue(m YYYYMM) money.Money {
	c := r.CapitalMeta
	if c == nil || m.Before(c.StartMonth) {
		return money.Zero(r.Amount.Currency())
	}
	value := r.Amount
	for i := 0; i < c.DepreciationMonths; i++ {
		month := c.StartMonth.AddMonths(i)
		if month.After(m) {
			break
		}
		value = value.Subtract(r.DepreciationForMonth(month))
	}
	return value
}

// UnpaidCost is the part of a capital purchase not yet paid through its monthly
// charges at the end of month m. It is zero before the asset is acquired.
func (r ExpenseRecord) UnpaidCost(m YYYYMM) money.Money {
	c := r.CapitalMeta
	if c == nil || m.Before(c.StartMonth) {
		return money.Zero(r.Amount.Currency())
	}
	unpaid := r.Amount
	for i := 0; i < c.DepreciationMonths; i++ {
		month := c.StartMonth.AddMonths(i)
		if month.After(m) {
			break
		}
		unpaid = unpaid.Subtract(r.CashOutForMonth(month))
	}
	return unpaid
}

// Clone returns a deep copy of the record.
func (r ExpenseRecord) Clone() ExpenseRecord {
	c := r
	if r.Recurrence != nil {
		rec := *r.Recurrence
		c.Recurrence = &rec
	}
	if r.CapitalMeta != nil {
		meta := *r.CapitalMeta
		c.CapitalMeta = &meta
	}
	c.Schedule = append([]MonthlyAllocation(nil), r.Schedule...)
	return c
}
