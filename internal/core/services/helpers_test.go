package services_test

import (
	"testing"

	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func usd(major int64) money.Money { return money.FromMajorInt(major, "USD") }

func month(s string) domain.YYYYMM { return domain.MustParseYYYYMM(s) }

func year2025(t *testing.T) domain.PeriodYYYYMM {
	t.Helper()
	p, err := domain.NewPeriod("2025-01", "2025-12")
	require.NoError(t, err)
	return p
}

func equity(t *testing.T, amount int64, m string) domain.FundingEvent {
	t.Helper()
	ev, err := domain.NewEquity("Seed round", usd(amount), month(m))
	require.NoError(t, err)
	return ev
}

func grant(t *testing.T, amount int64, m string) domain.FundingEvent {
	t.Helper()
	ev, err := domain.NewGrant("Innovation grant", usd(amount), month(m))
	require.NoError(t, err)
	return ev
}

// bankLoan is 120,000 at 12% drawn 2025-01, maturing 2026-01.
func bankLoan(t *testing.T, opts ...domain.DebtOption) domain.FundingEvent {
	t.Helper()
	ev, err := domain.NewDebt("Bank loan", usd(120000), month("2025-01"), "2026-01-01",
		decimal.RequireFromString("0.12"), money.Zero("USD"), opts...)
	require.NoError(t, err)
	return ev
}

// flatProduct earns price × units every month.
func flatProduct(t *testing.T, price, units int64) *domain.ProductItem {
	t.Helper()
	item, err := domain.NewProductItem(domain.ProductParams{
		Name:          "Widget",
		UnitPrice:     usd(price),
		UnitCost:      money.Zero("USD"),
		UnitsPerMonth: decimal.NewFromInt(units),
	})
	require.NoError(t, err)
	return item
}
