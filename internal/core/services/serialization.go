package services

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/internal/dto"
)

// ToDTO converts the manager to its wire form.
func (m *FundingManager) ToDTO() dto.FundingManagerDTO {
	return dto.FundingManagerDTO{
		Currency: m.currency,
		Period:   dto.ToPeriodDTO(m.period),
		ScheduleMode: dto.ScheduleModeDTO{
			FullyAmortized:      m.mode.FullyAmortized,
			UseCompoundInterest: m.mode.UseCompoundInterest,
		},
		Events:   dto.ToFundingEventDTOs(m.events),
		Archived: dto.ToFundingEventDTOs(m.archived),
	}
}

func (m *FundingManager) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToDTO())
}

// FundingManagerFromDTO rebuilds a manager, validating every event.
func FundingManagerFromDTO(d dto.FundingManagerDTO, options ...FundingManagerOption) (*FundingManager, error) {
	period, err := d.Period.ToDomain()
	if err != nil {
		return nil, err
	}
	mode := ScheduleMode{FullyAmortized: d.ScheduleMode.FullyAmortized, UseCompoundInterest: d.ScheduleMode.UseCompoundInterest}
	m, err := NewFundingManager(d.Currency, period, append([]FundingManagerOption{WithScheduleMode(mode)}, options...)...)
	if err != nil {
		return nil, err
	}
	events := make([]domain.FundingEvent, 0, len(d.Events)+len(d.Archived))
	for _, e := range append(append([]dto.FundingEventDTO(nil), d.Events...), d.Archived...) {
		ev, err := e.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("funding event %q: %w", e.ID, err)
		}
		events = append(events, ev)
	}
	if err := m.Load(events); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseFundingManager decodes the form written by MarshalJSON.
func ParseFundingManager(data []byte, options ...FundingManagerOption) (*FundingManager, error) {
	var d dto.FundingManagerDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode funding manager: %w", err)
	}
	return FundingManagerFromDTO(d, options...)
}

// ToDTO converts the stream to its wire form.
func (s *RevenueStream) ToDTO() (dto.RevenueStreamDTO, error) {
	items, err := dto.ToRevenueItemDTOs(s.items)
	if err != nil {
		return dto.RevenueStreamDTO{}, fmt.Errorf("encode revenue stream: %w", err)
	}
	return dto.RevenueStreamDTO{
		Currency: s.currency,
		Period:   dto.ToPeriodDTO(s.period),
		Items:    items,
	}, nil
}

func (s *RevenueStream) MarshalJSON() ([]byte, error) {
	d, err := s.ToDTO()
	if err != nil {
		return nil, err
	}
	return json.Marshal(d)
}

// RevenueStreamFromDTO rebuilds a stream, validating every item.
func RevenueStreamFromDTO(d dto.RevenueStreamDTO, options ...RevenueStreamOption) (*RevenueStream, error) {
	period, err := d.Period.ToDomain()
	if err != nil {
		return nil, err
	}
	s, err := NewRevenueStream(d.Currency, period, options...)
	if err != nil {
		return nil, err
	}
	for _, i := range d.Items {
		item, err := i.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("revenue item %q: %w", i.ID, err)
		}
		if err := s.Add(item); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ParseRevenueStream decodes the form written by MarshalJSON.
func ParseRevenueStream(data []byte, options ...RevenueStreamOption) (*RevenueStream, error) {
	var d dto.RevenueStreamDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode revenue stream: %w", err)
	}
	return RevenueStreamFromDTO(d, options...)
}

// ToDTO converts the breakdown to its wire form.
func (b *ExpenseBreakdown) ToDTO() dto.ExpenseBreakdownDTO {
	return dto.ExpenseBreakdownDTO{
		Currency: b.currency,
		Period:   dto.ToPeriodDTO(b.period),
		Records:  dto.ToExpenseRecordDTOs(b.records),
	}
}

func (b *ExpenseBreakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.ToDTO())
}

// ExpenseBreakdownFromDTO rebuilds a breakdown, validating every record.
func ExpenseBreakdownFromDTO(d dto.ExpenseBreakdownDTO, options ...ExpenseBreakdownOption) (*ExpenseBreakdown, error) {
	period, err := d.Period.ToDomain()
	if err != nil {
		return nil, err
	}
	b, err := NewExpenseBreakdown(d.Currency, period, options...)
	if err != nil {
		return nil, err
	}
	for _, r := range d.Records {
		rec, err := r.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("expense %q: %w", r.ID, err)
		}
		if err := b.Add(rec); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// ParseExpenseBreakdown decodes the form written by MarshalJSON.
func ParseExpenseBreakdown(data []byte, options ...ExpenseBreakdownOption) (*ExpenseBreakdown, error) {
	var d dto.ExpenseBreakdownDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode expense breakdown: %w", err)
	}
	return ExpenseBreakdownFromDTO(d, options...)
}

// ToDTO converts the whole runway model to its persisted form.
func (r *MajikRunway) ToDTO() (dto.RunwayDTO, error) {
	revenues, err := r.model.revenues.ToDTO()
	if err != nil {
		return dto.RunwayDTO{}, err
	}
	return dto.RunwayDTO{
		Version:      dto.SnapshotVersion,
		ID:           r.id,
		Name:         r.name,
		OpeningCash:  r.model.openingCash,
		Period:       dto.ToPeriodDTO(r.model.period),
		BusinessType: string(r.model.businessType),
		TaxConfig:    dto.ToTaxConfigDTO(r.model.taxConfig),
		IncludeTaxes: r.includeTaxes,
		Thresholds: dto.HealthThresholdsDTO{
			CriticalRunwayMonths: r.thresholds.CriticalRunwayMonths,
			WarningRunwayMonths:  r.thresholds.WarningRunwayMonths,
			BurnMultipleWarning:  r.thresholds.BurnMultipleWarning,
			BurnMultipleCritical: r.thresholds.BurnMultipleCritical,
		},
		Funding:  r.model.funding.ToDTO(),
		Revenues: revenues,
		Expenses: r.model.expenses.ToDTO(),
	}, nil
}

func (r *MajikRunway) MarshalJSON() ([]byte, error) {
	d, err := r.ToDTO()
	if err != nil {
		return nil, err
	}
	return json.Marshal(d)
}

// FromDTO rebuilds a runway model from its persisted form. Options apply after
// the persisted settings, so a logger or thresholds passed here win.
func FromDTO(d dto.RunwayDTO, options ...RunwayOption) (*MajikRunway, error) {
	if d.Version != dto.SnapshotVersion {
		return nil, apperrors.NewValidationError("version", "unsupported snapshot version %d", d.Version)
	}
	period, err := d.Period.ToDomain()
	if err != nil {
		return nil, err
	}
	taxConfig, err := d.TaxConfig.ToDomain()
	if err != nil {
		return nil, err
	}
	mode := ScheduleMode{FullyAmortized: d.Funding.ScheduleMode.FullyAmortized, UseCompoundInterest: d.Funding.ScheduleMode.UseCompoundInterest}
	thresholds := HealthThresholds{
		CriticalRunwayMonths: d.Thresholds.CriticalRunwayMonths,
		WarningRunwayMonths:  d.Thresholds.WarningRunwayMonths,
		BurnMultipleWarning:  d.Thresholds.BurnMultipleWarning,
		BurnMultipleCritical: d.Thresholds.BurnMultipleCritical,
	}
	opts := append([]RunwayOption{
		WithDebtScheduleMode(mode),
		WithHealthThresholds(thresholds),
		WithIncludeTaxes(d.IncludeTaxes),
	}, options...)
	r, err := Initialize(InitParams{
		ID:           d.ID,
		Name:         d.Name,
		OpeningCash:  d.OpeningCash,
		Period:       period,
		BusinessType: domain.BusinessType(d.BusinessType),
		TaxConfig:    taxConfig,
	}, opts...)
	if err != nil {
		return nil, err
	}
	funding, err := FundingManagerFromDTO(d.Funding, WithFundingLogger(r.Logger))
	if err != nil {
		return nil, err
	}
	revenues, err := RevenueStreamFromDTO(d.Revenues, WithRevenueLogger(r.Logger))
	if err != nil {
		return nil, err
	}
	expenses, err := ExpenseBreakdownFromDTO(d.Expenses, WithExpenseLogger(r.Logger))
	if err != nil {
		return nil, err
	}
	for _, c := range []struct {
		what   string
		period domain.PeriodYYYYMM
	}{
		{"funding", funding.Period()},
		{"revenues", revenues.Period()},
		{"expenses", expenses.Period()},
	} {
		if c.period != period {
			return nil, apperrors.NewValidationError(c.what+".period", "%s..%s differs from model period %s..%s", c.period.StartMonth, c.period.EndMonth, period.StartMonth, period.EndMonth)
		}
	}
	r.model.funding, r.model.revenues, r.model.expenses = funding, revenues, expenses
	r.mode = funding.ScheduleMode()
	return r, nil
}

// Parse decodes the snapshot written by MarshalJSON.
func Parse(data []byte, options ...RunwayOption) (*MajikRunway, error) {
	var d dto.RunwayDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode runway: %w", err)
	}
	return FromDTO(d, options...)
}

// DashboardJSON renders a snapshot for output.
func DashboardJSON(s domain.DashboardSnapshot) ([]byte, error) {
	return json.MarshalIndent(dto.ToDashboardResponse(s), "", "  ")
}
