package domain

import (
	"time"

	"github.com/SscSPs/majik_runway/internal/apperrors"
)

// MonthLayout is the wire and display layout of a YYYYMM token.
const MonthLayout = "2006-01"

// YYYYMM is a calendar month token such as "2025-01".
// Valid tokens order correctly under plain string comparison.
type YYYYMM string

// ParseYYYYMM validates a month token.
func ParseYYYYMM(s string) (YYYYMM, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return "", apperrors.NewValidationError("month", "invalid month %q, expected YYYY-MM", s)
	}
	return YYYYMM(t.Format(MonthLayout)), nil
}

// MustParseYYYYMM is ParseYYYYMM for literals known to be valid. It panics otherwise.
func MustParseYYYYMM(s string) YYYYMM {
	m, err := ParseYYYYMM(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) YYYYMM {
	return YYYYMM(t.UTC().Format(MonthLayout))
}

// Valid reports whether m is a well-formed token.
func (m YYYYMM) Valid() bool {
	_, err := time.Parse(MonthLayout, string(m))
	return err == nil
}

// Time returns the first instant of the month in UTC.
func (m YYYYMM) Time() time.Time {
	t, _ := time.Parse(MonthLayout, string(m))
	return t
}

// AddMonths returns the month n months after m (n may be negative).
func (m YYYYMM) AddMonths(n int) YYYYMM {
	return YYYYMM(m.Time().AddDate(0, n, 0).Format(MonthLayout))
}

// MonthsUntil returns the number of whole months from m to other.
// It is negative when other precedes m.
func (m YYYYMM) MonthsUntil(other YYYYMM) int {
	a, b := m.Time(), other.Time()
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func (m YYYYMM) Before(other YYYYMM) bool { return m < other }
func (m YYYYMM) After(other YYYYMM) bool  { return m > other }

func (m YYYYMM) String() string { return string(m) }
