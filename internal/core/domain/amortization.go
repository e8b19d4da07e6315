package domain

import (
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/shopspring/decimal"
)

// AmortizationEntry is one month of a debt schedule.
type AmortizationEntry struct {
	Month     YYYYMM
	Principal money.Money // principal repaid this month
	Interest  money.Money // interest accrued this month
	Total     money.Money // remaining balance after this entry, capitalized interest included
	Payment   money.Money // cash due this month

	// CapitalizedInterest is earlier capitalized interest settled by this entry.
	// Payment = Principal + CapitalizedInterest + the cash part of Interest.
	CapitalizedInterest money.Money
	// AccruedInterest is capitalized interest still unpaid after this entry.
	AccruedInterest money.Money
}

// InterestPaid is the interest settled in cash by this entry.
func (a AmortizationEntry) InterestPaid() money.Money {
	return a.Payment.Subtract(a.Principal)
}

// GenerateAmortizationSchedule produces one entry per month from the event month
// up to (excluding) the maturity month. Non-debt events have no schedule.
//
// Principal is owed from the month it is disbursed: the whole amount in the
// event month, or each tranche of an installment plan in its own month.
// The initial payment, if any, is a principal paydown in the first month. Grace
// months pay interest only. A fully amortized loan pays interest only until the
// last tranche lands, then a fixed annuity over the remaining months; a standard
// loan capitalizes interest every month and repays the whole balance in its last
// month. Every amount is rounded half-up to the currency minor unit before it
// touches the running balance.
func (e FundingEvent) GenerateAmortizationSchedule(fullyAmortized, useCompoundInterest bool) []AmortizationEntry {
	if !e.IsDebt() {
		return nil
	}
	n := e.TermMonths()
	if n <= 0 {
		return nil
	}

	currency := e.Amount.Currency()
	zero := money.Zero(currency)
	rate := e.monthlyRate(useCompoundInterest)
	compounds := e.compounds(useCompoundInterest)

	grace := min(e.Debt.GracePeriodMonths, n-1)
	amortStart := min(max(grace, e.lastDisbursementIndex()), n-1)

	principal := zero // disbursed, unpaid principal
	accrued := zero   // capitalized, unpaid interest
	var installment money.Money

	schedule := make([]AmortizationEntry, 0, n)
	for i := 0; i < n; i++ {
		month := e.Month.AddMonths(i)
		principal = principal.Add(e.CashInForMonth(month))
		paidPrincipal := zero
		settled := zero

		if i == 0 && e.Debt.InitialPayment.IsPositive() {
			paidPrincipal = e.Debt.InitialPayment.Min(principal)
			principal = principal.Subtract(paidPrincipal)
		}

		base := principal
		if compounds {
			base = principal.Add(accrued)
		}
		interest := base.Multiply(rate)
		last := i == n-1

		entry := AmortizationEntry{Month: month, Interest: interest}
		switch {
		case i < grace, fullyAmortized && i < amortStart:
			entry.Payment = paidPrincipal.Add(interest)

		case fullyAmortized:
			if i == amortStart {
				installment = annuityPayment(principal, rate, n-amortStart)
			}
			step := installment.Subtract(interest)
			if last || step.GreaterThan(principal) {
				step = principal
			}
			if step.IsNegative() {
				step = zero
			}
			principal = principal.Subtract(step)
			paidPrincipal = paidPrincipal.Add(step)
			entry.Payment = paidPrincipal.Add(interest)

		case last:
			// balloon: remaining principal plus everything capitalized so far
			paidPrincipal = paidPrincipal.Add(principal)
			settled = accrued
			principal, accrued = zero, zero
			entry.Payment = paidPrincipal.Add(settled).Add(interest)

		default:
			accrued = accrued.Add(interest)
			entry.Payment = paidPrincipal
		}

		entry.Principal = paidPrincipal
		entry.CapitalizedInterest = settled
		entry.AccruedInterest = accrued
		entry.Total = principal.Add(accrued).Max(zero)
		schedule = append(schedule, entry)
	}
	return schedule
}

// lastDisbursementIndex is the schedule position of the last tranche, 0 for a lump sum.
func (e FundingEvent) lastDisbursementIndex() int {
	last := 0
	for _, inst := range e.Debt.InstallmentPlan {
		last = max(last, e.Month.MonthsUntil(inst.Month))
	}
	return last
}

// annuityPayment is the fixed payment clearing principal over months at rate:
// P·r·(1+r)^n / ((1+r)^n − 1), or P/n when the rate is zero.
func annuityPayment(principal money.Money, rate decimal.Decimal, months int) money.Money {
	if months <= 0 {
		return principal
	}
	if rate.IsZero() {
		return principal.DivideInt(int64(months))
	}
	one := decimal.NewFromInt(1)
	factor := one.Add(rate).Pow(decimal.NewFromInt(int64(months)))
	p := principal.ToMajorDecimal().Mul(rate).Mul(factor).DivRound(factor.Sub(one), 10)
	return money.FromMajor(p, principal.Currency())
}

// TotalInterest sums the interest column of a schedule.
func TotalInterest(schedule []AmortizationEntry) money.Money {
	var total money.Money
	for _, entry := range schedule {
		total = total.Add(entry.Interest)
	}
	return total
}

// TotalPayments sums the cash due across a schedule.
func TotalPayments(schedule []AmortizationEntry) money.Money {
	var total money.Money
	for _, entry := range schedule {
		total = total.Add(entry.Payment)
	}
	return total
}
