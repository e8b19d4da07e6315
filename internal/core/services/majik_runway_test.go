package services_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/internal/core/services"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MajikRunwayTestSuite struct {
	suite.Suite
	runway *services.MajikRunway
}

func TestMajikRunwayTestSuite(t *testing.T) {
	suite.Run(t, new(MajikRunwayTestSuite))
}

// SetupTest builds a business burning 5,000 a month from 50,000 with no revenue.
func (suite *MajikRunwayTestSuite) SetupTest() {
	t := suite.T()
	r, err := services.Initialize(services.InitParams{
		Name:        "  Acme  ",
		OpeningCash: usd(50000),
		Period:      year2025(t),
	})
	suite.Require().NoError(err)
	_, err = r.AddRecurringExpense("Payroll", domain.ExpenseOperating, usd(5000), domain.FrequencyMonthly, month("2025-01"), "", true)
	suite.Require().NoError(err)
	suite.runway = r
}

func (suite *MajikRunwayTestSuite) TestInitializeDefaults() {
	r := suite.runway
	suite.NotEmpty(r.ID())
	suite.Equal("Acme", r.Name())
	suite.Equal("USD", r.Currency())
	suite.Equal(domain.BusinessStartup, r.BusinessType())
	suite.Equal(domain.VATNone, r.TaxConfig().VATMode)
	suite.True(r.IncludesTaxes())
	suite.Equal(services.DefaultHealthThresholds(), r.Thresholds())
	suite.Equal(services.DefaultScheduleMode(), r.ScheduleMode())

	_, err := services.Initialize(services.InitParams{OpeningCash: usd(1), Period: year2025(suite.T())},
		services.WithHealthThresholds(services.HealthThresholds{CriticalRunwayMonths: 12, WarningRunwayMonths: 6}))
	suite.True(errors.Is(err, apperrors.ErrValidation))
}

func (suite *MajikRunwayTestSuite) TestRunwayAndDashboard() {
	runway, err := suite.runway.GetRunwayRemainingMonths()
	suite.Require().NoError(err)
	suite.Equal(10, runway)

	snap, err := suite.runway.GetDashboardSnapshot()
	suite.Require().NoError(err)
	suite.Equal(10, snap.RunwayMonths)
	suite.True(snap.CashBreached)
	suite.Equal(month("2025-10"), snap.CashZeroMonth)
	suite.Equal("USD 5000.00", snap.AverageMonthlyBurn.String())
	suite.Equal("USD 5000.00", snap.AverageNetBurn.String())
	suite.Equal("USD -10000.00", snap.EndingCash.String())
	suite.Equal(12, snap.HorizonMonths)
	suite.Len(snap.Cashflows, 12)
	suite.Nil(snap.RevenueGrowthMoM)
	suite.Nil(snap.BurnMultiple)
	suite.Empty(snap.BreakEvenMonth)
	suite.Equal(domain.HealthWarning, snap.Health.Status)

	health, err := suite.runway.GetRunwayHealth()
	suite.Require().NoError(err)
	suite.Equal(snap.Health, health)
}

func (suite *MajikRunwayTestSuite) TestHealthCriticalWhenRunwayShort() {
	_, err := suite.runway.AddRecurringExpense("Rent", domain.ExpenseOperating, usd(5000), domain.FrequencyMonthly, month("2025-01"), "", true)
	suite.Require().NoError(err)

	health, err := suite.runway.GetRunwayHealth()
	suite.Require().NoError(err)
	suite.Equal(domain.HealthCritical, health.Status)
	runway, err := suite.runway.GetRunwayRemainingMonths()
	suite.Require().NoError(err)
	suite.Equal(5, runway)
}

func (suite *MajikRunwayTestSuite) TestHealthyWhenRevenueCoversBurn() {
	_, err := suite.runway.AddRevenue(flatProduct(suite.T(), 60, 100))
	suite.Require().NoError(err)

	snap, err := suite.runway.GetDashboardSnapshot()
	suite.Require().NoError(err)
	suite.Equal(domain.HealthHealthy, snap.Health.Status)
	suite.Empty(snap.Health.Reasons)
	suite.False(snap.CashBreached)
	suite.Equal(12, snap.RunwayMonths)
	suite.Equal(month("2025-01"), snap.BreakEvenMonth)

	month0, ok, err := suite.runway.GetBreakEvenMonth()
	suite.Require().NoError(err)
	suite.True(ok)
	suite.Equal(month("2025-01"), month0)
}

func (suite *MajikRunwayTestSuite) TestMutatorsReturnReceiverAndLeaveModelOnError() {
	r, err := suite.runway.AddEquity("Seed", usd(-1), month("2025-02"))
	suite.Same(suite.runway, r)
	suite.True(errors.Is(err, apperrors.ErrValidation))

	r, err = suite.runway.RemoveExpense("missing")
	suite.Same(suite.runway, r)
	suite.True(errors.Is(err, apperrors.ErrNotFound))

	_, err = suite.runway.SetOpeningCash(money.FromMajorInt(1, "EUR"))
	suite.Error(err)
	suite.Equal("USD 50000.00", suite.runway.OpeningCash().String())

	_, err = suite.runway.SetTaxConfig(domain.TaxConfig{VATMode: "GST"})
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Equal(domain.VATNone, suite.runway.TaxConfig().VATMode)

	_, err = suite.runway.AddEquity("Seed", usd(20000), month("2025-06"))
	suite.Require().NoError(err)
	_, err = suite.runway.AddGrant("Grant", usd(5000), month("2025-03"))
	suite.Require().NoError(err)
	_, err = suite.runway.AddDebt("Loan", usd(12000), month("2025-01"), "2026-01-01", decimal.Zero, money.Zero("USD"))
	suite.Require().NoError(err)
	suite.Equal(3, suite.runway.Funding().EventCount())
	suite.Equal("USD 37000.00", suite.runway.Funding().Total().String())
}

func (suite *MajikRunwayTestSuite) TestAccessorsReturnCopies() {
	suite.runway.Expenses().Clear()
	suite.runway.Model().Expenses().Clear()
	suite.Equal(1, suite.runway.Expenses().RecordCount())
}

func (suite *MajikRunwayTestSuite) TestSetPeriodIsAtomic() {
	_, err := suite.runway.AddEquity("Bridge", usd(10000), month("2025-10"))
	suite.Require().NoError(err)

	_, err = suite.runway.UpdatePeriod("2025-12", "2025-01")
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Equal(month("2025-12"), suite.runway.Period().EndMonth)
	suite.Equal(1, suite.runway.Funding().EventCount())

	_, err = suite.runway.UpdatePeriod("2025-01", "2025-06")
	suite.Require().NoError(err)
	suite.Equal(6, suite.runway.Period().MonthCount())
	suite.Zero(suite.runway.Funding().EventCount())
	suite.Len(suite.runway.Funding().Archived(), 1)
	suite.Equal(month("2025-06"), suite.runway.Expenses().Period().EndMonth)
	suite.Equal(month("2025-06"), suite.runway.Revenues().Period().EndMonth)

	_, err = suite.runway.UpdatePeriod("2025-01", "2025-12")
	suite.Require().NoError(err)
	suite.Equal(1, suite.runway.Funding().EventCount())
	suite.Empty(suite.runway.Funding().Archived())
}

func (suite *MajikRunwayTestSuite) TestProjectFundingExtendsRunway() {
	bridge, err := domain.NewEquity("Bridge", usd(20000), month("2025-06"))
	suite.Require().NoError(err)
	projected, err := suite.runway.ProjectFunding([]domain.FundingEvent{bridge})
	suite.Require().NoError(err)
	suite.Equal("USD 10000.00", projected[11].EndingCash.String())
	suite.Zero(suite.runway.Funding().EventCount())
}

func (suite *MajikRunwayTestSuite) TestSimulateScenarioUsesFacadeTaxSetting() {
	_, err := suite.runway.SetTaxConfig(domain.TaxConfig{VATMode: domain.VATPercentageTax, PercentageTaxRate: decimal.RequireFromString("0.10")})
	suite.Require().NoError(err)
	_, err = suite.runway.AddRevenue(flatProduct(suite.T(), 10, 100))
	suite.Require().NoError(err)

	taxed, err := suite.runway.SimulateScenario(services.ScenarioOverrides{Months: 1})
	suite.Require().NoError(err)
	suite.Equal("USD 45900.00", taxed[0].EndingCash.String())

	r, err := services.Initialize(services.InitParams{OpeningCash: usd(100), Period: year2025(suite.T())}, services.WithIncludeTaxes(false))
	suite.Require().NoError(err)
	untaxed, err := r.SimulateScenario(services.ScenarioOverrides{Months: 1})
	suite.Require().NoError(err)
	suite.Nil(untaxed[0].Taxes)
}

func (suite *MajikRunwayTestSuite) TestBalanceSnapshotAndIncome() {
	_, err := suite.runway.AddCapitalExpense("Laptops", usd(12000), month("2025-01"), 24, money.Zero("USD"))
	suite.Require().NoError(err)

	snap, err := suite.runway.GetBalanceSnapshot(month("2025-03"))
	suite.Require().NoError(err)
	suite.Equal("USD 33500.00", snap.Cash.String())
	suite.Equal("USD 44000.00", snap.AssetsNet.String())
	suite.Equal("USD 10500.00", snap.Liabilities.String())
	suite.Equal("USD 33500.00", snap.Equity.String())
	suite.Equal("USD -16500.00", snap.RetainedEarnings.String())

	ebitda, err := suite.runway.GetEBITDA()
	suite.Require().NoError(err)
	suite.Equal("USD -60000.00", ebitda.String())
	income, err := suite.runway.GetNetIncome()
	suite.Require().NoError(err)
	suite.Equal("USD -66000.00", income.String())
}

func (suite *MajikRunwayTestSuite) TestCurrencyConsistency() {
	suite.NoError(suite.runway.ValidateCurrencyConsistency())
	_, err := suite.runway.AddEquity("Angel", money.FromMajorInt(5000, "EUR"), month("2025-02"))
	suite.Require().NoError(err)
	suite.True(errors.Is(suite.runway.ValidateCurrencyConsistency(), apperrors.ErrCurrencyMismatch))
}

func (suite *MajikRunwayTestSuite) TestJSONRoundTrip() {
	_, err := suite.runway.AddDebt("Loan", usd(120000), month("2025-01"), "2026-01-01",
		decimal.RequireFromString("0.12"), money.Zero("USD"), domain.WithGracePeriod(2))
	suite.Require().NoError(err)
	_, err = suite.runway.AddRevenue(flatProduct(suite.T(), 25, 40))
	suite.Require().NoError(err)
	_, err = suite.runway.AddCapitalExpense("Laptops", usd(6000), month("2025-02"), 12, usd(600))
	suite.Require().NoError(err)

	data, err := json.Marshal(suite.runway)
	suite.Require().NoError(err)
	restored, err := services.Parse(data)
	suite.Require().NoError(err)
	again, err := json.Marshal(restored)
	suite.Require().NoError(err)
	suite.JSONEq(string(data), string(again))

	want, err := suite.runway.GetCashflow()
	suite.Require().NoError(err)
	got, err := restored.GetCashflow()
	suite.Require().NoError(err)
	suite.Require().Len(got, len(want))
	for i := range want {
		suite.True(want[i].EndingCash.Equal(got[i].EndingCash), "month %s", want[i].Month)
	}

	_, err = services.Parse([]byte(`{"version":99}`))
	suite.True(errors.Is(err, apperrors.ErrValidation))
}

func (suite *MajikRunwayTestSuite) TestCloneIsIndependent() {
	clone := suite.runway.Clone()
	_, err := clone.AddEquity("Seed", usd(1000), month("2025-01"))
	suite.Require().NoError(err)
	suite.Zero(suite.runway.Funding().EventCount())
	suite.Equal(suite.runway.ID(), clone.ID())
}

func TestClassifyHealth(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	base := func() domain.DashboardSnapshot {
		return domain.DashboardSnapshot{
			HorizonMonths:  12,
			RunwayMonths:   12,
			AverageNetBurn: usd(-100),
			BreakEvenMonth: month("2025-01"),
		}
	}
	tests := []struct {
		name    string
		mutate  func(s *domain.DashboardSnapshot)
		want    domain.HealthStatus
		reasons int
	}{
		{"healthy", func(*domain.DashboardSnapshot) {}, domain.HealthHealthy, 0},
		{"burn multiple above critical", func(s *domain.DashboardSnapshot) { s.BurnMultiple = f(3.5) }, domain.HealthCritical, 1},
		{"burn multiple above warning", func(s *domain.DashboardSnapshot) { s.BurnMultiple = f(2.5) }, domain.HealthWarning, 1},
		{"burn multiple at warning", func(s *domain.DashboardSnapshot) { s.BurnMultiple = f(2) }, domain.HealthHealthy, 0},
		{"revenue shrinking", func(s *domain.DashboardSnapshot) { s.RevenueGrowthMoM = f(-0.1) }, domain.HealthWarning, 1},
		{"no break-even", func(s *domain.DashboardSnapshot) { s.BreakEvenMonth = "" }, domain.HealthWarning, 1},
		{"breach late in horizon", func(s *domain.DashboardSnapshot) {
			s.CashBreached, s.CashZeroMonth = true, month("2025-12")
		}, domain.HealthWarning, 1},
		{"short horizon still burning", func(s *domain.DashboardSnapshot) {
			s.HorizonMonths, s.RunwayMonths, s.AverageNetBurn = 3, 3, usd(500)
		}, domain.HealthCritical, 2},
		{"horizon under warning still burning", func(s *domain.DashboardSnapshot) {
			s.HorizonMonths, s.RunwayMonths, s.AverageNetBurn = 9, 9, usd(500)
		}, domain.HealthWarning, 2},
		{"short horizon cash positive", func(s *domain.DashboardSnapshot) {
			s.HorizonMonths, s.RunwayMonths = 3, 3
		}, domain.HealthHealthy, 0},
		{"worst rule wins", func(s *domain.DashboardSnapshot) {
			s.CashBreached, s.RunwayMonths, s.CashZeroMonth = true, 3, month("2025-03")
			s.RevenueGrowthMoM = f(-0.2)
			s.AverageNetBurn = usd(2000)
		}, domain.HealthCritical, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(&s)
			h := services.ClassifyHealth(s, services.DefaultHealthThresholds())
			assert.Equal(t, tt.want, h.Status)
			require.Len(t, h.Reasons, tt.reasons)
		})
	}
}
