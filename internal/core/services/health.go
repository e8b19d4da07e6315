package services

import (
	"fmt"
	"math"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/pkg/money"
)

// HealthThresholds are the limits the health rules compare against.
type HealthThresholds struct {
	CriticalRunwayMonths int
	WarningRunwayMonths  int
	BurnMultipleWarning  float64
	BurnMultipleCritical float64
}

// DefaultHealthThresholds flags runway under 6 months as critical, under 12 as
// a warning, and burn multiples above 2 and 3.
func DefaultHealthThresholds() HealthThresholds {
	return HealthThresholds{
		CriticalRunwayMonths: 6,
		WarningRunwayMonths:  12,
		BurnMultipleWarning:  2,
		BurnMultipleCritical: 3,
	}
}

// Validate checks the thresholds are ordered.
func (t HealthThresholds) Validate() error {
	if t.CriticalRunwayMonths < 0 || t.WarningRunwayMonths < t.CriticalRunwayMonths {
		return apperrors.NewValidationError("runwayMonths", "need 0 <= critical (%d) <= warning (%d)", t.CriticalRunwayMonths, t.WarningRunwayMonths)
	}
	if t.BurnMultipleWarning < 0 || t.BurnMultipleCritical < t.BurnMultipleWarning {
		return apperrors.NewValidationError("burnMultiple", "need 0 <= warning (%g) <= critical (%g)", t.BurnMultipleWarning, t.BurnMultipleCritical)
	}
	return nil
}

type healthRule func(s domain.DashboardSnapshot, t HealthThresholds) (domain.HealthStatus, string)

var healthRules = []healthRule{
	runwayRule,
	netBurnRule,
	growthRule,
	burnMultipleRule,
	breakEvenRule,
}

// ClassifyHealth runs every rule against one snapshot. Rules are independent;
// the most severe status wins and every triggered rule contributes a reason.
func ClassifyHealth(s domain.DashboardSnapshot, t HealthThresholds) domain.RunwayHealth {
	h := domain.RunwayHealth{Status: domain.HealthHealthy}
	for _, rule := range healthRules {
		status, reason := rule(s, t)
		if reason == "" {
			continue
		}
		h.Status = h.Status.Worse(status)
		h.Reasons = append(h.Reasons, reason)
	}
	return h
}

func runwayRule(s domain.DashboardSnapshot, t HealthThresholds) (domain.HealthStatus, string) {
	if !s.CashBreached {
		return unprovenRunwayRule(s, t)
	}
	switch {
	case s.RunwayMonths < t.CriticalRunwayMonths:
		return domain.HealthCritical, fmt.Sprintf("cash runs out in %s, %d months in (under %d)", s.CashZeroMonth, s.RunwayMonths, t.CriticalRunwayMonths)
	case s.RunwayMonths < t.WarningRunwayMonths:
		return domain.HealthWarning, fmt.Sprintf("cash runs out in %s, %d months in (under %d)", s.CashZeroMonth, s.RunwayMonths, t.WarningRunwayMonths)
	default:
		return domain.HealthWarning, fmt.Sprintf("cash runs out in %s within the %d month horizon", s.CashZeroMonth, s.HorizonMonths)
	}
}

// unprovenRunwayRule grades a horizon too short to show the runway thresholds
// are met while cash is still burning. Runway is only known to reach the horizon.
func unprovenRunwayRule(s domain.DashboardSnapshot, t HealthThresholds) (domain.HealthStatus, string) {
	if !s.AverageNetBurn.IsPositive() || s.HorizonMonths >= t.WarningRunwayMonths {
		return domain.HealthHealthy, ""
	}
	status, limit := domain.HealthWarning, t.WarningRunwayMonths
	if s.HorizonMonths < t.CriticalRunwayMonths {
		status, limit = domain.HealthCritical, t.CriticalRunwayMonths
	}
	return status, fmt.Sprintf("cash burn continues past the %d month horizon, runway beyond it is unproven (under %d)", s.HorizonMonths, limit)
}

// netBurnRule only annotates; the runway rule carries the severity of burning cash.
func netBurnRule(s domain.DashboardSnapshot, _ HealthThresholds) (domain.HealthStatus, string) {
	if !s.AverageNetBurn.IsPositive() {
		return domain.HealthHealthy, ""
	}
	return domain.HealthHealthy, fmt.Sprintf("net burn averages %s per month", s.AverageNetBurn.Format())
}

func growthRule(s domain.DashboardSnapshot, _ HealthThresholds) (domain.HealthStatus, string) {
	if s.RevenueGrowthMoM == nil || *s.RevenueGrowthMoM >= 0 {
		return domain.HealthHealthy, ""
	}
	return domain.HealthWarning, fmt.Sprintf("revenue fell %.1f%% in the last month", -*s.RevenueGrowthMoM*100)
}

func burnMultipleRule(s domain.DashboardSnapshot, t HealthThresholds) (domain.HealthStatus, string) {
	if s.BurnMultiple == nil {
		return domain.HealthHealthy, ""
	}
	bm := *s.BurnMultiple
	switch {
	case bm > t.BurnMultipleCritical:
		return domain.HealthCritical, fmt.Sprintf("burn multiple %.2f is above %.2f", bm, t.BurnMultipleCritical)
	case bm > t.BurnMultipleWarning:
		return domain.HealthWarning, fmt.Sprintf("burn multiple %.2f is above %.2f", bm, t.BurnMultipleWarning)
	}
	return domain.HealthHealthy, ""
}

func breakEvenRule(s domain.DashboardSnapshot, _ HealthThresholds) (domain.HealthStatus, string) {
	if s.BreakEvenMonth != "" {
		return domain.HealthHealthy, ""
	}
	return domain.HealthWarning, fmt.Sprintf("no break-even within the %d month horizon", s.HorizonMonths)
}

func averageRevenue(cashflows []domain.Cashflow) money.Money {
	total := money.Zero(seriesCurrency(cashflows))
	if len(cashflows) == 0 {
		return total
	}
	for _, cf := range cashflows {
		total = total.Add(cf.Revenue)
	}
	return total.DivideInt(int64(len(cashflows)))
}

func seriesMoM(cashflows []domain.Cashflow) (float64, bool) {
	n := len(cashflows)
	if n < 2 {
		return 0, false
	}
	prev := cashflows[n-2].Revenue
	if prev.IsZero() {
		return 0, false
	}
	return cashflows[n-1].Revenue.Subtract(prev).Ratio(prev), true
}

func seriesCMGR(cashflows []domain.Cashflow) (float64, bool) {
	n := len(cashflows)
	if n < 2 {
		return 0, false
	}
	start := cashflows[0].Revenue
	if start.IsZero() {
		return 0, false
	}
	return math.Pow(cashflows[n-1].Revenue.Ratio(start), 1/float64(n-1)) - 1, true
}

// burnMultiple is average net burn over average monthly revenue added. It is
// undefined while revenue covers outflows or revenue is not growing.
func burnMultiple(cashflows []domain.Cashflow, avgNetBurn money.Money) (float64, bool) {
	n := len(cashflows)
	if n < 2 || !avgNetBurn.IsPositive() {
		return 0, false
	}
	added := cashflows[n-1].Revenue.Subtract(cashflows[0].Revenue).DivideInt(int64(n - 1))
	if !added.IsPositive() {
		return 0, false
	}
	return avgNetBurn.Ratio(added), true
}
