package dto

import (
	"time"

	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/shopspring/decimal"
)

// PeriodDTO is the wire form of an inclusive month range.
type PeriodDTO struct {
	StartMonth string `json:"startMonth"`
	EndMonth   string `json:"endMonth"`
}

// ToPeriodDTO converts a domain.PeriodYYYYMM to PeriodDTO.
func ToPeriodDTO(p domain.PeriodYYYYMM) PeriodDTO {
	return PeriodDTO{StartMonth: p.StartMonth.String(), EndMonth: p.EndMonth.String()}
}

// ToDomain parses and validates the period.
func (d PeriodDTO) ToDomain() (domain.PeriodYYYYMM, error) {
	return domain.NewPeriod(d.StartMonth, d.EndMonth)
}

// InstallmentDTO is one drawdown of a debt installment plan.
type InstallmentDTO struct {
	Month  string      `json:"month"`
	Amount money.Money `json:"amount"`
}

// DebtDTO carries the repayment terms of a debt event.
type DebtDTO struct {
	InterestRate      decimal.Decimal  `json:"interestRate"`
	MaturityDate      string           `json:"maturityDate"` // YYYY-MM-DD
	InitialPayment    money.Money      `json:"initialPayment"`
	InstallmentPlan   []InstallmentDTO `json:"installmentPlan,omitempty"`
	Compounding       string           `json:"compounding"`
	GracePeriodMonths int              `json:"gracePeriodMonths,omitempty"`
}

// FundingEventDTO is the wire form of a domain.FundingEvent.
type FundingEventDTO struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Month  string      `json:"month"`
	Amount money.Money `json:"amount"`
	Debt   *DebtDTO    `json:"debt,omitempty"`
}

// ToFundingEventDTO converts a domain.FundingEvent to FundingEventDTO.
func ToFundingEventDTO(ev domain.FundingEvent) FundingEventDTO {
	d := FundingEventDTO{
		ID:     ev.ID,
		Name:   ev.Name,
		Type:   string(ev.Type),
		Month:  ev.Month.String(),
		Amount: ev.Amount,
	}
	if ev.Debt != nil {
		debt := &DebtDTO{
			InterestRate:      ev.Debt.InterestRate,
			MaturityDate:      ev.Debt.MaturityDate.Format(time.DateOnly),
			InitialPayment:    ev.Debt.InitialPayment,
			Compounding:       string(ev.Debt.Compounding),
			GracePeriodMonths: ev.Debt.GracePeriodMonths,
		}
		for _, inst := range ev.Debt.InstallmentPlan {
			debt.InstallmentPlan = append(debt.InstallmentPlan, InstallmentDTO{Month: inst.Month.String(), Amount: inst.Amount})
		}
		d.Debt = debt
	}
	return d
}

// ToFundingEventDTOs converts a slice of domain.FundingEvent to []FundingEventDTO.
func ToFundingEventDTOs(events []domain.FundingEvent) []FundingEventDTO {
	out := make([]FundingEventDTO, len(events))
	for i, ev := range events {
		out[i] = ToFundingEventDTO(ev)
	}
	return out
}

// ToDomain rebuilds and validates the event, keeping its ID.
func (d FundingEventDTO) ToDomain() (domain.FundingEvent, error) {
	ev := domain.FundingEvent{
		ID:     d.ID,
		Name:   d.Name,
		Type:   domain.FundingType(d.Type),
		Month:  domain.YYYYMM(d.Month),
		Amount: d.Amount,
	}
	if d.Debt != nil {
		maturity, err := domain.ParseMaturityDate(d.Debt.MaturityDate)
		if err != nil {
			return domain.FundingEvent{}, err
		}
		meta := &domain.DebtMetadata{
			InterestRate:      d.Debt.InterestRate,
			MaturityDate:      maturity,
			InitialPayment:    d.Debt.InitialPayment,
			Compounding:       domain.Compounding(d.Debt.Compounding),
			GracePeriodMonths: d.Debt.GracePeriodMonths,
		}
		if meta.InitialPayment.Currency() == "" {
			meta.InitialPayment = money.Zero(d.Amount.Currency())
		}
		for _, inst := range d.Debt.InstallmentPlan {
			meta.InstallmentPlan = append(meta.InstallmentPlan, domain.Installment{Month: domain.YYYYMM(inst.Month), Amount: inst.Amount})
		}
		ev.Debt = meta
	}
	return domain.RestoreFundingEvent(ev)
}

// ScheduleModeDTO selects how debt schedules are generated.
type ScheduleModeDTO struct {
	FullyAmortized      bool `json:"fullyAmortized"`
	UseCompoundInterest bool `json:"useCompoundInterest"`
}

// FundingManagerDTO is the wire form of a funding manager. Archived events are
// the ones outside the period, kept so a wider period can restore them.
type FundingManagerDTO struct {
	Currency     string            `json:"currency"`
	Period       PeriodDTO         `json:"period"`
	ScheduleMode ScheduleModeDTO   `json:"scheduleMode"`
	Events       []FundingEventDTO `json:"events"`
	Archived     []FundingEventDTO `json:"archived,omitempty"`
}
