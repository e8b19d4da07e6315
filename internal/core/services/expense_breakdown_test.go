package services_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/internal/core/services"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBreakdown(t *testing.T) *services.ExpenseBreakdown {
	t.Helper()
	b, err := services.NewExpenseBreakdown("USD", year2025(t))
	require.NoError(t, err)
	return b
}

func TestExpenseBreakdown_TotalsByKind(t *testing.T) {
	b := newBreakdown(t)
	_, err := b.AddRecurring("Payroll", domain.ExpenseOperating, usd(1000), domain.FrequencyMonthly, month("2025-01"), "", true)
	require.NoError(t, err)
	_, err = b.AddRecurring("Insurance", domain.ExpenseOperating, usd(3000), domain.FrequencyQuarterly, month("2025-02"), "", true)
	require.NoError(t, err)
	_, err = b.AddOneTime("Launch party", domain.ExpenseVariable, usd(5000), month("2025-06"), false)
	require.NoError(t, err)
	_, err = b.AddCapital("Servers", usd(12000), month("2025-01"), 24, money.Zero("USD"))
	require.NoError(t, err)

	assert.Equal(t, 4, b.RecordCount())
	assert.Equal(t, "USD 24000.00", b.TotalRecurring().String())
	assert.Equal(t, "USD 5000.00", b.TotalOneTime().String())
	assert.Equal(t, "USD 6000.00", b.TotalCapital().String())
	assert.Equal(t, "USD 24000.00", b.TotalTaxDeductible().String())
	assert.Equal(t, "USD 35000.00", b.Total().String())

	tests := []struct {
		month        string
		cashOut      string
		depreciation string
		deductible   string
	}{
		{"2025-01", "USD 1500.00", "USD 500.00", "USD 1000.00"},
		{"2025-02", "USD 4500.00", "USD 500.00", "USD 4000.00"},
		{"2025-03", "USD 1500.00", "USD 500.00", "USD 1000.00"},
		{"2025-06", "USD 6500.00", "USD 500.00", "USD 1000.00"},
		{"2025-11", "USD 4500.00", "USD 500.00", "USD 4000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			m := month(tt.month)
			assert.Equal(t, tt.cashOut, b.GetMonthlyCashOut(m).String())
			assert.Equal(t, tt.depreciation, b.GetMonthlyDepreciation(m).String())
			assert.Equal(t, tt.deductible, b.GetMonthlyTaxDeductible(m).String())
		})
	}
	assert.Equal(t, "USD 6000.00", b.GetAssetBookValue(month("2025-12")).String())
	assert.True(t, b.GetAssetBookValue(month("2024-12")).IsZero())
}

func TestExpenseBreakdown_RecurringEndMonth(t *testing.T) {
	b := newBreakdown(t)
	_, err := b.AddRecurring("Contractor", domain.ExpenseVariable, usd(2000), domain.FrequencyMonthly, month("2025-03"), month("2025-05"), false)
	require.NoError(t, err)

	assert.True(t, b.GetMonthlyCashOut(month("2025-02")).IsZero())
	assert.Equal(t, "USD 2000.00", b.GetMonthlyCashOut(month("2025-05")).String())
	assert.True(t, b.GetMonthlyCashOut(month("2025-06")).IsZero())
	assert.Equal(t, "USD 6000.00", b.TotalRecurring().String())
}

func TestExpenseBreakdown_CRUD(t *testing.T) {
	b := newBreakdown(t)
	rec, err := b.AddOneTime("Legal", domain.ExpenseOperating, usd(800), month("2025-04"), true)
	require.NoError(t, err)
	before := b.Summary()

	extra, err := b.AddOneTime("Audit", domain.ExpenseOperating, usd(1200), month("2025-04"), true)
	require.NoError(t, err)
	require.NoError(t, b.Remove(extra.ID))
	assert.Equal(t, before.Total.String(), b.Total().String())
	assert.Equal(t, before.RecordCount, b.RecordCount())

	assert.True(t, errors.Is(b.Remove("missing"), apperrors.ErrNotFound))
	assert.True(t, errors.Is(b.Add(rec), apperrors.ErrDuplicate))

	rec.Amount = usd(900)
	rec.Schedule = []domain.MonthlyAllocation{{Month: month("2025-04"), Amount: usd(900)}}
	require.NoError(t, b.Update(rec))
	assert.Equal(t, "USD 900.00", b.TotalOneTime().String())

	rec.Amount = usd(-1)
	assert.True(t, errors.Is(b.Update(rec), apperrors.ErrValidation))
	assert.Equal(t, "USD 900.00", b.TotalOneTime().String())
}

func TestExpenseBreakdown_SetPeriodChangesTotals(t *testing.T) {
	b := newBreakdown(t)
	_, err := b.AddRecurring("Rent", domain.ExpenseOperating, usd(2500), domain.FrequencyMonthly, month("2025-01"), "", true)
	require.NoError(t, err)

	require.NoError(t, b.UpdatePeriod("2025-01", "2025-06"))
	assert.Equal(t, "USD 15000.00", b.TotalRecurring().String())
	assert.Equal(t, 1, b.RecordCount())
}

func TestExpenseBreakdown_JSONRoundTrip(t *testing.T) {
	b := newBreakdown(t)
	_, err := b.AddRecurring("Payroll", domain.ExpenseOperating, usd(1000), domain.FrequencyYearly, month("2025-01"), month("2027-01"), true)
	require.NoError(t, err)
	_, err = b.AddOneTime("Launch", domain.ExpenseVariable, usd(5000), month("2025-06"), false)
	require.NoError(t, err)
	_, err = b.AddCapital("Van", usd(30000), month("2025-03"), 36, usd(3000))
	require.NoError(t, err)

	first, err := json.Marshal(b)
	require.NoError(t, err)
	parsed, err := services.ParseExpenseBreakdown(first)
	require.NoError(t, err)
	second, err := json.Marshal(parsed)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, b.Total().String(), parsed.Total().String())
}
