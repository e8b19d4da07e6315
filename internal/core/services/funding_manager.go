package services

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/pkg/money"
)

// ScheduleMode selects how debt schedules are generated.
type ScheduleMode struct {
	FullyAmortized      bool
	UseCompoundInterest bool
}

// DefaultScheduleMode amortizes every debt with compounding as declared on the debt.
func DefaultScheduleMode() ScheduleMode {
	return ScheduleMode{FullyAmortized: true, UseCompoundInterest: true}
}

// FundingSummary holds the aggregates cached by a FundingManager.
type FundingSummary struct {
	TotalByType       map[domain.FundingType]money.Money
	Total             money.Money
	TotalNonRepayable money.Money
	AverageMonthly    money.Money
	DebtRatio         float64
	NonRepayableRatio float64
	EventCount        int
}

// ChartTrace is one cumulative series for charting funding by type.
type ChartTrace struct {
	Name   string
	Months []domain.YYYYMM
	Values []float64
}

// FundingManager owns the funding events of a model.
// Events whose month falls outside the period are archived rather than dropped,
// and come back when the period is widened to include them again.
type FundingManager struct {
	BaseService
	currency  string
	period    domain.PeriodYYYYMM
	mode      ScheduleMode
	events    []domain.FundingEvent
	archived  []domain.FundingEvent
	summary   FundingSummary
	schedules map[string][]domain.AmortizationEntry
}

// FundingManagerOption is a functional option for configuring the funding manager
type FundingManagerOption func(*FundingManager)

// WithScheduleMode sets how debt schedules are generated.
func WithScheduleMode(mode ScheduleMode) FundingManagerOption {
	return func(m *FundingManager) { m.mode = mode }
}

// WithFundingLogger sets the logger used by the manager.
func WithFundingLogger(logger *slog.Logger) FundingManagerOption {
	return func(m *FundingManager) { m.Logger = logger }
}

// NewFundingManager creates an empty manager for the given currency and period.
func NewFundingManager(currency string, period domain.PeriodYYYYMM, options ...FundingManagerOption) (*FundingManager, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	m := &FundingManager{
		currency: currency,
		period:   period,
		mode:     DefaultScheduleMode(),
	}
	for _, option := range options {
		option(m)
	}
	m.recalculateCache()
	return m, nil
}

// mutate is the single entry point for state changes; the cache is always
// rebuilt afterwards, whether or not fn succeeded.
func (m *FundingManager) mutate(fn func() error) error {
	defer m.recalculateCache()
	return fn()
}

func (m *FundingManager) indexOf(id string) int {
	for i, ev := range m.events {
		if ev.ID == id {
			return i
		}
	}
	return -1
}

func (m *FundingManager) checkInPeriod(ev domain.FundingEvent) error {
	if !m.period.Contains(ev.Month) {
		return apperrors.NewValidationError("month", "funding event %q in %s is outside period %s..%s", ev.Name, ev.Month, m.period.StartMonth, m.period.EndMonth)
	}
	return nil
}

// Add validates and appends an event.
func (m *FundingManager) Add(ev domain.FundingEvent) error {
	return m.mutate(func() error {
		if err := ev.Validate(); err != nil {
			return err
		}
		if err := m.checkInPeriod(ev); err != nil {
			return err
		}
		if m.indexOf(ev.ID) >= 0 {
			return fmt.Errorf("%w: funding event %q", apperrors.ErrDuplicate, ev.ID)
		}
		m.events = append(m.events, ev.Clone())
		m.LogDebug("Funding event added",
			slog.String("event_id", ev.ID),
			slog.String("type", string(ev.Type)),
			slog.String("month", ev.Month.String()))
		return nil
	})
}

// Remove deletes the event with the given id.
func (m *FundingManager) Remove(id string) error {
	return m.mutate(func() error {
		i := m.indexOf(id)
		if i < 0 {
			return fmt.Errorf("%w: funding event %q", apperrors.ErrNotFound, id)
		}
		m.events = append(m.events[:i], m.events[i+1:]...)
		m.LogDebug("Funding event removed", slog.String("event_id", id))
		return nil
	})
}

// Update replaces the event sharing ev's id.
func (m *FundingManager) Update(ev domain.FundingEvent) error {
	return m.mutate(func() error {
		i := m.indexOf(ev.ID)
		if i < 0 {
			return fmt.Errorf("%w: funding event %q", apperrors.ErrNotFound, ev.ID)
		}
		if err := ev.Validate(); err != nil {
			return err
		}
		if err := m.checkInPeriod(ev); err != nil {
			return err
		}
		m.events[i] = ev.Clone()
		return nil
	})
}

// Clear removes every event, archived ones included.
func (m *FundingManager) Clear() {
	_ = m.mutate(func() error {
		m.events = nil
		m.archived = nil
		return nil
	})
}

// SetPeriod moves events outside the new period to the archive and restores
// archived events that fall inside it.
func (m *FundingManager) SetPeriod(period domain.PeriodYYYYMM) error {
	if err := period.Validate(); err != nil {
		return err
	}
	return m.mutate(func() error {
		m.period = period
		all := append(append([]domain.FundingEvent(nil), m.events...), m.archived...)
		m.events, m.archived = nil, nil
		for _, ev := range all {
			if period.Contains(ev.Month) {
				m.events = append(m.events, ev)
			} else {
				m.archived = append(m.archived, ev)
			}
		}
		sortEvents(m.events)
		sortEvents(m.archived)
		if len(m.archived) > 0 {
			m.LogInfo("Funding events archived outside period",
				slog.Int("archived", len(m.archived)),
				slog.String("start", period.StartMonth.String()),
				slog.String("end", period.EndMonth.String()))
		}
		return nil
	})
}

// Load replaces every event, active or archived, with events. Each event is
// validated and placed by the current period, as SetPeriod would.
func (m *FundingManager) Load(events []domain.FundingEvent) error {
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			return err
		}
		if _, ok := seen[ev.ID]; ok {
			return fmt.Errorf("%w: funding event %q", apperrors.ErrDuplicate, ev.ID)
		}
		seen[ev.ID] = struct{}{}
	}
	return m.mutate(func() error {
		m.events, m.archived = nil, nil
		for _, ev := range events {
			if m.period.Contains(ev.Month) {
				m.events = append(m.events, ev.Clone())
			} else {
				m.archived = append(m.archived, ev.Clone())
			}
		}
		return nil
	})
}

// UpdatePeriod parses both bounds and calls SetPeriod.
func (m *FundingManager) UpdatePeriod(start, end string) error {
	p, err := domain.NewPeriod(start, end)
	if err != nil {
		return err
	}
	return m.SetPeriod(p)
}

func sortEvents(events []domain.FundingEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Month < events[j].Month })
}

// SetScheduleMode changes how debt schedules are generated.
func (m *FundingManager) SetScheduleMode(mode ScheduleMode) {
	_ = m.mutate(func() error {
		m.mode = mode
		return nil
	})
}

func (m *FundingManager) recalculateCache() {
	zero := money.Zero(m.currency)
	s := FundingSummary{
		TotalByType:       make(map[domain.FundingType]money.Money, len(domain.FundingTypes)),
		Total:             zero,
		TotalNonRepayable: zero,
		AverageMonthly:    zero,
	}
	for _, t := range domain.FundingTypes {
		s.TotalByType[t] = zero
	}
	schedules := make(map[string][]domain.AmortizationEntry)
	for _, ev := range m.events {
		s.TotalByType[ev.Type] = s.TotalByType[ev.Type].Add(ev.Amount)
		s.Total = s.Total.Add(ev.Amount)
		if !ev.Type.IsRepayable() {
			s.TotalNonRepayable = s.TotalNonRepayable.Add(ev.Amount)
		}
		if ev.IsDebt() {
			schedules[ev.ID] = ev.GenerateAmortizationSchedule(m.mode.FullyAmortized, m.mode.UseCompoundInterest)
		}
	}
	s.EventCount = len(m.events)
	if months := m.period.MonthCount(); months > 0 {
		s.AverageMonthly = s.Total.DivideInt(int64(months))
	}
	s.DebtRatio = s.TotalByType[domain.FundingDebt].Ratio(s.Total)
	s.NonRepayableRatio = s.TotalNonRepayable.Ratio(s.Total)
	m.summary = s
	m.schedules = schedules
}

func (m *FundingManager) Currency() string            { return m.currency }
func (m *FundingManager) Period() domain.PeriodYYYYMM { return m.period }
func (m *FundingManager) ScheduleMode() ScheduleMode  { return m.mode }
func (m *FundingManager) EventCount() int             { return m.summary.EventCount }
func (m *FundingManager) Total() money.Money          { return m.summary.Total }
func (m *FundingManager) DebtRatio() float64          { return m.summary.DebtRatio }
func (m *FundingManager) NonRepayableRatio() float64  { return m.summary.NonRepayableRatio }

// TotalNonRepayable is the cached total of equity and grants.
func (m *FundingManager) TotalNonRepayable() money.Money { return m.summary.TotalNonRepayable }

// AverageMonthlyFunding is the cached total spread over the period's months.
func (m *FundingManager) AverageMonthlyFunding() money.Money { return m.summary.AverageMonthly }

// TotalByType returns the cached total raised through one funding type.
func (m *FundingManager) TotalByType(t domain.FundingType) money.Money {
	if v, ok := m.summary.TotalByType[t]; ok {
		return v
	}
	return money.Zero(m.currency)
}

// Summary returns a copy of every cached aggregate.
func (m *FundingManager) Summary() FundingSummary {
	s := m.summary
	s.TotalByType = make(map[domain.FundingType]money.Money, len(m.summary.TotalByType))
	for k, v := range m.summary.TotalByType {
		s.TotalByType[k] = v
	}
	return s
}

// Events returns the active events in insertion order.
func (m *FundingManager) Events() []domain.FundingEvent {
	return cloneEvents(m.events)
}

// Archived returns events kept aside because they fall outside the period.
func (m *FundingManager) Archived() []domain.FundingEvent {
	return cloneEvents(m.archived)
}

func cloneEvents(events []domain.FundingEvent) []domain.FundingEvent {
	out := make([]domain.FundingEvent, len(events))
	for i, ev := range events {
		out[i] = ev.Clone()
	}
	return out
}

// Get returns one active event.
func (m *FundingManager) Get(id string) (domain.FundingEvent, error) {
	i := m.indexOf(id)
	if i < 0 {
		return domain.FundingEvent{}, fmt.Errorf("%w: funding event %q", apperrors.ErrNotFound, id)
	}
	return m.events[i].Clone(), nil
}

// Schedule returns the cached amortization schedule of a debt event.
func (m *FundingManager) Schedule(id string) ([]domain.AmortizationEntry, error) {
	if m.indexOf(id) < 0 {
		return nil, fmt.Errorf("%w: funding event %q", apperrors.ErrNotFound, id)
	}
	return append([]domain.AmortizationEntry(nil), m.schedules[id]...), nil
}

// GetMonthlyCashIn sums every event's inflow for month.
func (m *FundingManager) GetMonthlyCashIn(month domain.YYYYMM) money.Money {
	total := money.Zero(m.currency)
	for _, ev := range m.events {
		total = total.Add(ev.CashInForMonth(month))
	}
	return total
}

// GetDebtService returns the principal and interest paid in cash during month.
// Interest is counted when it is settled, so interest capitalized in earlier
// months lands in the month of the balloon repayment.
func (m *FundingManager) GetDebtService(month domain.YYYYMM) (principal, interest money.Money) {
	principal, interest = money.Zero(m.currency), money.Zero(m.currency)
	for _, schedule := range m.schedules {
		for _, entry := range schedule {
			if entry.Month != month {
				continue
			}
			principal = principal.Add(entry.Principal)
			interest = interest.Add(entry.InterestPaid())
		}
	}
	return principal, interest
}

// GetDebtOutstanding returns the balance owed on every debt at the end of month.
func (m *FundingManager) GetDebtOutstanding(month domain.YYYYMM) money.Money {
	total := money.Zero(m.currency)
	for _, ev := range m.events {
		if !ev.IsDebt() {
			continue
		}
		// before the first entry nothing is owed; past the last entry the debt is repaid
		for _, entry := range m.schedules[ev.ID] {
			if entry.Month == month {
				total = total.Add(entry.Total)
				break
			}
		}
	}
	return total
}

// GetAccruedInterest returns the capitalized interest still unpaid at the end of month.
func (m *FundingManager) GetAccruedInterest(month domain.YYYYMM) money.Money {
	total := money.Zero(m.currency)
	for _, ev := range m.events {
		for _, entry := range m.schedules[ev.ID] {
			if entry.Month == month {
				total = total.Add(entry.AccruedInterest)
				break
			}
		}
	}
	return total
}

// TotalDebtService sums every scheduled debt payment.
func (m *FundingManager) TotalDebtService() money.Money {
	total := money.Zero(m.currency)
	for _, schedule := range m.schedules {
		total = total.Add(domain.TotalPayments(schedule))
	}
	return total
}

// EstimateRunway returns how many months of burn the non-repayable funding covers.
// No funds yields 0; otherwise a non-positive burn yields +Inf.
func (m *FundingManager) EstimateRunway(monthlyBurn money.Money) float64 {
	return runwayMonths(m.summary.TotalNonRepayable, monthlyBurn)
}

// EstimateNetRunway is EstimateRunway after setting aside all scheduled debt service.
func (m *FundingManager) EstimateNetRunway(monthlyBurn money.Money) float64 {
	net := m.summary.TotalNonRepayable.Subtract(m.TotalDebtService())
	if !net.IsPositive() {
		return 0
	}
	return runwayMonths(net, monthlyBurn)
}

func runwayMonths(funds, burn money.Money) float64 {
	if !funds.IsPositive() {
		return 0
	}
	if !burn.IsPositive() {
		return math.Inf(1)
	}
	return funds.Ratio(burn)
}

// WeightByType returns each type's share of total funding.
func (m *FundingManager) WeightByType() map[domain.FundingType]float64 {
	weights := make(map[domain.FundingType]float64, len(domain.FundingTypes))
	for _, t := range domain.FundingTypes {
		weights[t] = m.TotalByType(t).Ratio(m.summary.Total)
	}
	return weights
}

// GrowthRate is the compound monthly growth of cumulative funding between the
// first and last funded months. It is undefined with fewer than two funded months.
func (m *FundingManager) GrowthRate() (float64, bool) {
	if len(m.events) == 0 {
		return 0, false
	}
	sorted := cloneEvents(m.events)
	sortEvents(sorted)
	first, last := sorted[0].Month, sorted[len(sorted)-1].Month
	span := first.MonthsUntil(last)
	if span <= 0 {
		return 0, false
	}
	start := money.Zero(m.currency)
	end := money.Zero(m.currency)
	for _, ev := range sorted {
		if ev.Month == first {
			start = start.Add(ev.Amount)
		}
		end = end.Add(ev.Amount)
	}
	return math.Pow(end.Ratio(start), 1/float64(span)) - 1, true
}

// ChartTraces builds one cumulative funding series per type across the period.
func (m *FundingManager) ChartTraces() []ChartTrace {
	months := m.period.Months()
	traces := make([]ChartTrace, 0, len(domain.FundingTypes))
	for _, t := range domain.FundingTypes {
		trace := ChartTrace{Name: string(t), Months: months, Values: make([]float64, len(months))}
		running := money.Zero(m.currency)
		for i, month := range months {
			for _, ev := range m.events {
				if ev.Type == t {
					running = running.Add(ev.CashInForMonth(month))
				}
			}
			trace.Values[i] = running.ToMajor()
		}
		traces = append(traces, trace)
	}
	return traces
}

// Clone returns an independent manager with the same events and settings.
func (m *FundingManager) Clone() *FundingManager {
	c := &FundingManager{
		BaseService: m.BaseService,
		currency:    m.currency,
		period:      m.period,
		mode:        m.mode,
		events:      cloneEvents(m.events),
		archived:    cloneEvents(m.archived),
	}
	c.recalculateCache()
	return c
}
