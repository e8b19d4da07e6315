package domain

import "github.com/SscSPs/majik_runway/pkg/money"

// HealthStatus is the severity of a runway diagnosis.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
)

// Rank orders statuses by severity.
func (s HealthStatus) Rank() int {
	switch s {
	case HealthCritical:
		return 2
	case HealthWarning:
		return 1
	default:
		return 0
	}
}

// Worse returns the more severe of s and other.
func (s HealthStatus) Worse(other HealthStatus) HealthStatus {
	if other.Rank() > s.Rank() {
		return other
	}
	return s
}

// RunwayHealth is the outcome of the health rules.
type RunwayHealth struct {
	Status  HealthStatus
	Reasons []string
}

// DashboardSnapshot collects every headline figure of one projection run.
type DashboardSnapshot struct {
	Currency              string
	StartMonth            YYYYMM
	HorizonMonths         int
	OpeningCash           money.Money
	EndingCash            money.Money
	RunwayMonths          int
	CashBreached          bool
	CashZeroMonth         YYYYMM
	AverageMonthlyBurn    money.Money
	AverageNetBurn        money.Money
	AverageMonthlyRevenue money.Money
	RevenueGrowthMoM      *float64
	RevenueCMGR           *float64
	BurnMultiple          *float64
	BreakEvenMonth        YYYYMM
	EBITDA                money.Money
	NetIncome             money.Money
	TotalFunding          money.Money
	TotalNonRepayable     money.Money
	Health                RunwayHealth
	Cashflows             []Cashflow
}
