package domain

import "github.com/SscSPs/majik_runway/internal/apperrors"

// PeriodYYYYMM is an inclusive month range.
type PeriodYYYYMM struct {
	StartMonth YYYYMM `json:"startMonth"`
	EndMonth   YYYYMM `json:"endMonth"`
}

// NewPeriod validates both bounds and start <= end.
func NewPeriod(start, end string) (PeriodYYYYMM, error) {
	s, err := ParseYYYYMM(start)
	if err != nil {
		return PeriodYYYYMM{}, err
	}
	e, err := ParseYYYYMM(end)
	if err != nil {
		return PeriodYYYYMM{}, err
	}
	p := PeriodYYYYMM{StartMonth: s, EndMonth: e}
	if err := p.Validate(); err != nil {
		return PeriodYYYYMM{}, err
	}
	return p, nil
}

// PeriodOfMonths returns the period of n months beginning at start.
func PeriodOfMonths(start YYYYMM, n int) (PeriodYYYYMM, error) {
	if n <= 0 {
		return PeriodYYYYMM{}, apperrors.NewValidationError("months", "period length must be positive, got %d", n)
	}
	return NewPeriod(start.String(), start.AddMonths(n-1).String())
}

// Validate checks the period invariant.
func (p PeriodYYYYMM) Validate() error {
	if !p.StartMonth.Valid() {
		return apperrors.NewValidationError("startMonth", "invalid month %q", p.StartMonth)
	}
	if !p.EndMonth.Valid() {
		return apperrors.NewValidationError("endMonth", "invalid month %q", p.EndMonth)
	}
	if p.EndMonth.Before(p.StartMonth) {
		return apperrors.NewValidationError("period", "startMonth %s must not be after endMonth %s", p.StartMonth, p.EndMonth)
	}
	return nil
}

// MonthCount returns the number of months in the period, or 0 if malformed.
func (p PeriodYYYYMM) MonthCount() int {
	if !p.StartMonth.Valid() || !p.EndMonth.Valid() {
		return 0
	}
	n := p.StartMonth.MonthsUntil(p.EndMonth) + 1
	if n < 0 {
		return 0
	}
	return n
}

// Contains reports whether m falls inside the period.
func (p PeriodYYYYMM) Contains(m YYYYMM) bool {
	return !m.Before(p.StartMonth) && !m.After(p.EndMonth)
}

// Months lists every month in the period in order.
func (p PeriodYYYYMM) Months() []YYYYMM {
	n := p.MonthCount()
	months := make([]YYYYMM, n)
	for i := range months {
		months[i] = p.StartMonth.AddMonths(i)
	}
	return months
}
