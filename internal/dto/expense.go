package dto

import (
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/pkg/money"
)

// RecurrenceDTO is the wire form of domain.Recurrence.
type RecurrenceDTO struct {
	Frequency  string `json:"frequency"`
	StartMonth string `json:"startMonth"`
	EndMonth   string `json:"endMonth,omitempty"`
}

// AllocationDTO is an amount scheduled for one month.
type AllocationDTO struct {
	Month  string      `json:"month"`
	Amount money.Money `json:"amount"`
}

// CapitalMetaDTO carries straight-line depreciation terms.
type CapitalMetaDTO struct {
	StartMonth         string      `json:"startMonth"`
	DepreciationMonths int         `json:"depreciationMonths"`
	ResidualValue      money.Money `json:"residualValue"`
}

// ExpenseRecordDTO is the wire form of a domain.ExpenseRecord.
type ExpenseRecordDTO struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Amount          money.Money     `json:"amount"`
	Recurrence      *RecurrenceDTO  `json:"recurrence,omitempty"`
	Schedule        []AllocationDTO `json:"schedule,omitempty"`
	IsTaxDeductible bool            `json:"isTaxDeductible"`
	CapitalMeta     *CapitalMetaDTO `json:"capitalMeta,omitempty"`
}

// ToExpenseRecordDTO converts a domain.ExpenseRecord to ExpenseRecordDTO.
func ToExpenseRecordDTO(r domain.ExpenseRecord) ExpenseRecordDTO {
	d := ExpenseRecordDTO{
		ID:              r.ID,
		Name:            r.Name,
		Type:            string(r.Type),
		Amount:          r.Amount,
		IsTaxDeductible: r.IsTaxDeductible,
	}
	if r.Recurrence != nil {
		d.Recurrence = &RecurrenceDTO{
			Frequency:  string(r.Recurrence.Frequency),
			StartMonth: r.Recurrence.StartMonth.String(),
			EndMonth:   r.Recurrence.EndMonth.String(),
		}
	}
	for _, a := range r.Schedule {
		d.Schedule = append(d.Schedule, AllocationDTO{Month: a.Month.String(), Amount: a.Amount})
	}
	if r.CapitalMeta != nil {
		d.CapitalMeta = &CapitalMetaDTO{
			StartMonth:         r.CapitalMeta.StartMonth.String(),
			DepreciationMonths: r.CapitalMeta.DepreciationMonths,
			ResidualValue:      r.CapitalMeta.ResidualValue,
		}
	}
	return d
}

// ToExpenseRecordDTOs converts a slice of domain.ExpenseRecord to []ExpenseRecordDTO.
func ToExpenseRecordDTOs(records []domain.ExpenseRecord) []ExpenseRecordDTO {
	out := make([]ExpenseRecordDTO, len(records))
	for i, r := range records {
		out[i] = ToExpenseRecordDTO(r)
	}
	return out
}

// ToDomain rebuilds and validates the record, keeping its ID.
func (d ExpenseRecordDTO) ToDomain() (domain.ExpenseRecord, error) {
	r := domain.ExpenseRecord{
		ID:              d.ID,
		Name:            d.Name,
		Type:            domain.ExpenseType(d.Type),
		Amount:          d.Amount,
		IsTaxDeductible: d.IsTaxDeductible,
	}
	if d.Recurrence != nil {
		r.Recurrence = &domain.Recurrence{
			Frequency:  domain.Frequency(d.Recurrence.Frequency),
			StartMonth: domain.YYYYMM(d.Recurrence.StartMonth),
			EndMonth:   domain.YYYYMM(d.Recurrence.EndMonth),
		}
	}
	for _, a := range d.Schedule {
		r.Schedule = append(r.Schedule, domain.MonthlyAllocation{Month: domain.YYYYMM(a.Month), Amount: a.Amount})
	}
	if d.CapitalMeta != nil {
		r.CapitalMeta = &domain.CapitalMeta{
			StartMonth:         domain.YYYYMM(d.CapitalMeta.StartMonth),
			DepreciationMonths: d.CapitalMeta.DepreciationMonths,
			ResidualValue:      d.CapitalMeta.ResidualValue,
		}
	}
	return domain.RestoreExpenseRecord(r)
}

// ExpenseBreakdownDTO is the wire form of an expense breakdown.
type ExpenseBreakdownDTO struct {
	Currency string             `json:"currency"`
	Period   PeriodDTO          `json:"period"`
	Records  []ExpenseRecordDTO `json:"records"`
}
