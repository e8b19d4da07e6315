package services

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/pkg/money"
)

// ExpenseSummary holds the period totals cached by an ExpenseBreakdown.
// Capital totals are the depreciation charged inside the period and are not
// part of TotalTaxDeductible.
type ExpenseSummary struct {
	TotalRecurring     money.Money
	TotalOneTime       money.Money
	TotalCapital       money.Money
	TotalTaxDeductible money.Money
	Total              money.Money
	RecordCount        int
}

// ExpenseBreakdown owns the expense records of a model.
type ExpenseBreakdown struct {
	BaseService
	currency string
	period   domain.PeriodYYYYMM
	records  []domain.ExpenseRecord
	summary  ExpenseSummary
}

// ExpenseBreakdownOption is a functional option for configuring the expense breakdown
type ExpenseBreakdownOption func(*ExpenseBreakdown)

// WithExpenseLogger sets the logger used by the breakdown.
func WithExpenseLogger(logger *slog.Logger) ExpenseBreakdownOption {
	return func(b *ExpenseBreakdown) { b.Logger = logger }
}

// NewExpenseBreakdown creates an empty breakdown for the given currency and period.
func NewExpenseBreakdown(currency string, period domain.PeriodYYYYMM, options ...ExpenseBreakdownOption) (*ExpenseBreakdown, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	b := &ExpenseBreakdown{currency: currency, period: period}
	for _, option := range options {
		option(b)
	}
	b.recalculateCache()
	return b, nil
}

func (b *ExpenseBreakdown) mutate(fn func() error) error {
	defer b.recalculateCache()
	return fn()
}

func (b *ExpenseBreakdown) indexOf(id string) int {
	for i, r := range b.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Add validates and appends a record.
func (b *ExpenseBreakdown) Add(r domain.ExpenseRecord) error {
	return b.mutate(func() error {
		if err := r.Validate(); err != nil {
			return err
		}
		if b.indexOf(r.ID) >= 0 {
			return fmt.Errorf("%w: expense %q", apperrors.ErrDuplicate, r.ID)
		}
		b.records = append(b.records, r.Clone())
		b.LogDebug("Expense added",
			slog.String("expense_id", r.ID),
			slog.String("kind", string(r.Kind())))
		return nil
	})
}

// AddRecurring builds a recurring record and adds it.
func (b *ExpenseBreakdown) AddRecurring(name string, t domain.ExpenseType, amount money.Money, freq domain.Frequency, start, end domain.YYYYMM, taxDeductible bool) (domain.ExpenseRecord, error) {
	r, err := domain.NewRecurringExpense(name, t, amount, freq, start, end, taxDeductible)
	if err != nil {
		return domain.ExpenseRecord{}, err
	}
	return r, b.Add(r)
}

// AddOneTime builds a record charged once and adds it.
func (b *ExpenseBreakdown) AddOneTime(name string, t domain.ExpenseType, amount money.Money, month domain.YYYYMM, taxDeductible bool) (domain.ExpenseRecord, error) {
	r, err := domain.NewOneTimeExpense(name, t, amount, month, taxDeductible)
	if err != nil {
		return domain.ExpenseRecord{}, err
	}
	return r, b.Add(r)
}

// AddCapital builds a depreciating capital record and adds it.
func (b *ExpenseBreakdown) AddCapital(name string, amount money.Money, month domain.YYYYMM, depreciationMonths int, residual money.Money) (domain.ExpenseRecord, error) {
	r, err := domain.NewCapitalExpense(name, amount, month, depreciationMonths, residual)
	if err != nil {
		return domain.ExpenseRecord{}, err
	}
	return r, b.Add(r)
}

// Remove deletes the record with the given id.
func (b *ExpenseBreakdown) Remove(id string) error {
	return b.mutate(func() error {
		i := b.indexOf(id)
		if i < 0 {
			return fmt.Errorf("%w: expense %q", apperrors.ErrNotFound, id)
		}
		b.records = append(b.records[:i], b.records[i+1:]...)
		return nil
	})
}

// Update replaces the record sharing r's id.
func (b *ExpenseBreakdown) Update(r domain.ExpenseRecord) error {
	return b.mutate(func() error {
		i := b.indexOf(r.ID)
		if i < 0 {
			return fmt.Errorf("%w: expense %q", apperrors.ErrNotFound, r.ID)
		}
		if err := r.Validate(); err != nil {
			return err
		}
		b.records[i] = r.Clone()
		return nil
	})
}

// Clear removes every record.
func (b *ExpenseBreakdown) Clear() {
	_ = b.mutate(func() error {
		b.records = nil
		return nil
	})
}

// SetPeriod changes the window the cached totals cover. Records are kept
// whatever their months; they simply emit nothing outside the period.
func (b *ExpenseBreakdown) SetPeriod(period domain.PeriodYYYYMM) error {
	if err := period.Validate(); err != nil {
		return err
	}
	return b.mutate(func() error {
		b.period = period
		return nil
	})
}

// UpdatePeriod parses both bounds and calls SetPeriod.
func (b *ExpenseBreakdown) UpdatePeriod(start, end string) error {
	p, err := domain.NewPeriod(start, end)
	if err != nil {
		return err
	}
	return b.SetPeriod(p)
}

func (b *ExpenseBreakdown) recalculateCache() {
	zero := money.Zero(b.currency)
	s := ExpenseSummary{
		TotalRecurring:     zero,
		TotalOneTime:       zero,
		TotalCapital:       zero,
		TotalTaxDeductible: zero,
		Total:              zero,
		RecordCount:        len(b.records),
	}
	months := b.period.Months()
	for _, r := range b.records {
		sum := zero
		for _, month := range months {
			sum = sum.Add(r.CashOutForMonth(month))
		}
		switch r.Kind() {
		case domain.KindCapital:
			s.TotalCapital = s.TotalCapital.Add(sum)
		case domain.KindRecurring:
			s.TotalRecurring = s.TotalRecurring.Add(sum)
		case domain.KindOneTime:
			s.TotalOneTime = s.TotalOneTime.Add(sum)
		}
		if r.IsTaxDeductible && r.Kind() != domain.KindCapital {
			s.TotalTaxDeductible = s.TotalTaxDeductible.Add(sum)
		}
		s.Total = s.Total.Add(sum)
	}
	b.summary = s
}

func (b *ExpenseBreakdown) Currency() string                { return b.currency }
func (b *ExpenseBreakdown) Period() domain.PeriodYYYYMM     { return b.period }
func (b *ExpenseBreakdown) Summary() ExpenseSummary         { return b.summary }
func (b *ExpenseBreakdown) RecordCount() int                { return b.summary.RecordCount }
func (b *ExpenseBreakdown) TotalRecurring() money.Money     { return b.summary.TotalRecurring }
func (b *ExpenseBreakdown) TotalOneTime() money.Money       { return b.summary.TotalOneTime }
func (b *ExpenseBreakdown) TotalCapital() money.Money       { return b.summary.TotalCapital }
func (b *ExpenseBreakdown) TotalTaxDeductible() money.Money { return b.summary.TotalTaxDeductible }
func (b *ExpenseBreakdown) Total() money.Money              { return b.summary.Total }

// Records returns copies of every record in insertion order.
func (b *ExpenseBreakdown) Records() []domain.ExpenseRecord {
	out := make([]domain.ExpenseRecord, len(b.records))
	for i, r := range b.records {
		out[i] = r.Clone()
	}
	return out
}

// Get returns a copy of one record.
func (b *ExpenseBreakdown) Get(id string) (domain.ExpenseRecord, error) {
	i := b.indexOf(id)
	if i < 0 {
		return domain.ExpenseRecord{}, fmt.Errorf("%w: expense %q", apperrors.ErrNotFound, id)
	}
	return b.records[i].Clone(), nil
}

// GetMonthlyCashOut sums what every record emits in month. Capital records
// emit their straight-line depreciation.
func (b *ExpenseBreakdown) GetMonthlyCashOut(month domain.YYYYMM) money.Money {
	total := money.Zero(b.currency)
	for _, r := range b.records {
		total = total.Add(r.CashOutForMonth(month))
	}
	return total
}

// GetMonthlyDepreciation sums the capital charges of month.
func (b *ExpenseBreakdown) GetMonthlyDepreciation(month domain.YYYYMM) money.Money {
	total := money.Zero(b.currency)
	for _, r := range b.records {
		total = total.Add(r.DepreciationForMonth(month))
	}
	return total
}

// GetMonthlyTaxDeductible sums what deductible non-capital records emit in
// month. Capital records are deducted through depreciation instead.
func (b *ExpenseBreakdown) GetMonthlyTaxDeductible(month domain.YYYYMM) money.Money {
	total := money.Zero(b.currency)
	for _, r := range b.records {
		if r.IsTaxDeductible && r.Kind() != domain.KindCapital {
			total = total.Add(r.CashOutForMonth(month))
		}
	}
	return total
}

// GetAssetBookValue is the undepreciated value of every capital record at the end of month.
func (b *ExpenseBreakdown) GetAssetBookValue(month domain.YYYYMM) money.Money {
	total := money.Zero(b.currency)
	for _, r := range b.records {
		total = total.Add(r.BookValue(month))
	}
	return total
}

// GetCapitalPayable is the capital cost still unpaid at the end of month.
func (b *ExpenseBreakdown) GetCapitalPayable(month domain.YYYYMM) money.Money {
	total := money.Zero(b.currency)
	for _, r := range b.records {
		total = total.Add(r.UnpaidCost(month))
	}
	return total
}

// Clone returns an independent breakdown with copies of every record.
func (b *ExpenseBreakdown) Clone() *ExpenseBreakdown {
	c := &ExpenseBreakdown{
		BaseService: b.BaseService,
		currency:    b.currency,
		period:      b.period,
		records:     b.Records(),
	}
	c.recalculateCache()
	return c
}
