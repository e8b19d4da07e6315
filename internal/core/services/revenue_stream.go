package services

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/pkg/money"
)

// RevenueSummary holds the aggregates cached by a RevenueStream.
type RevenueSummary struct {
	TotalRevenue money.Money
	TotalCost    money.Money
	TotalProfit  money.Money
	ItemCount    int
}

// RevenueStream owns the revenue items of a model. Items are copied on the way
// in and out, so a caller never holds a reference to a managed item.
type RevenueStream struct {
	BaseService
	currency string
	period   domain.PeriodYYYYMM
	items    []domain.RevenueItem
	summary  RevenueSummary
}

// RevenueStreamOption is a functional option for configuring the revenue stream
type RevenueStreamOption func(*RevenueStream)

// WithRevenueLogger sets the logger used by the stream.
func WithRevenueLogger(logger *slog.Logger) RevenueStreamOption {
	return func(s *RevenueStream) { s.Logger = logger }
}

// NewRevenueStream creates an empty stream for the given currency and period.
func NewRevenueStream(currency string, period domain.PeriodYYYYMM, options ...RevenueStreamOption) (*RevenueStream, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	s := &RevenueStream{currency: currency, period: period}
	for _, option := range options {
		option(s)
	}
	s.recalculateCache()
	return s, nil
}

func (s *RevenueStream) mutate(fn func() error) error {
	defer s.recalculateCache()
	return fn()
}

func (s *RevenueStream) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID() == id {
			return i
		}
	}
	return -1
}

// prepare validates a copy of item and aligns its capacity plan to the period.
func (s *RevenueStream) prepare(item domain.RevenueItem) (domain.RevenueItem, error) {
	if item == nil {
		return nil, apperrors.NewValidationError("item", "revenue item is required")
	}
	if err := item.ValidateSelf(); err != nil {
		return nil, err
	}
	c := item.Clone()
	if err := c.RecomputeCapacityPeriod(s.period.StartMonth, s.period.EndMonth, domain.CapacityExtend); err != nil {
		return nil, err
	}
	return c, nil
}

// Add validates and appends an item.
func (s *RevenueStream) Add(item domain.RevenueItem) error {
	return s.mutate(func() error {
		c, err := s.prepare(item)
		if err != nil {
			return err
		}
		if s.indexOf(c.ID()) >= 0 {
			return fmt.Errorf("%w: revenue item %q", apperrors.ErrDuplicate, c.ID())
		}
		s.items = append(s.items, c)
		s.LogDebug("Revenue item added",
			slog.String("item_id", c.ID()),
			slog.String("kind", string(c.Kind())))
		return nil
	})
}

// Remove deletes the item with the given id.
func (s *RevenueStream) Remove(id string) error {
	return s.mutate(func() error {
		i := s.indexOf(id)
		if i < 0 {
			return fmt.Errorf("%w: revenue item %q", apperrors.ErrNotFound, id)
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return nil
	})
}

// Update replaces the item sharing item's id.
func (s *RevenueStream) Update(item domain.RevenueItem) error {
	return s.mutate(func() error {
		if item == nil {
			return apperrors.NewValidationError("item", "revenue item is required")
		}
		i := s.indexOf(item.ID())
		if i < 0 {
			return fmt.Errorf("%w: revenue item %q", apperrors.ErrNotFound, item.ID())
		}
		c, err := s.prepare(item)
		if err != nil {
			return err
		}
		s.items[i] = c
		return nil
	})
}

// Clear removes every item.
func (s *RevenueStream) Clear() {
	_ = s.mutate(func() error {
		s.items = nil
		return nil
	})
}

// SetPeriod realigns every item's capacity plan to the new period. Either all
// items are realigned or, on the first failure, none are.
func (s *RevenueStream) SetPeriod(period domain.PeriodYYYYMM) error {
	if err := period.Validate(); err != nil {
		return err
	}
	return s.mutate(func() error {
		next := make([]domain.RevenueItem, len(s.items))
		for i, item := range s.items {
			c := item.Clone()
			if err := c.RecomputeCapacityPeriod(period.StartMonth, period.EndMonth, domain.CapacityExtend); err != nil {
				return fmt.Errorf("realign revenue item %q: %w", item.ID(), err)
			}
			next[i] = c
		}
		s.items = next
		s.period = period
		return nil
	})
}

// UpdatePeriod parses both bounds and calls SetPeriod.
func (s *RevenueStream) UpdatePeriod(start, end string) error {
	p, err := domain.NewPeriod(start, end)
	if err != nil {
		return err
	}
	return s.SetPeriod(p)
}

func (s *RevenueStream) recalculateCache() {
	sum := RevenueSummary{
		TotalRevenue: money.Zero(s.currency),
		TotalCost:    money.Zero(s.currency),
		ItemCount:    len(s.items),
	}
	for _, month := range s.period.Months() {
		sum.TotalRevenue = sum.TotalRevenue.Add(s.GetMonthlyRevenue(month))
		sum.TotalCost = sum.TotalCost.Add(s.GetMonthlyCost(month))
	}
	sum.TotalProfit = sum.TotalRevenue.Subtract(sum.TotalCost)
	s.summary = sum
}

func (s *RevenueStream) Currency() string             { return s.currency }
func (s *RevenueStream) Period() domain.PeriodYYYYMM  { return s.period }
func (s *RevenueStream) Summary() RevenueSummary      { return s.summary }
func (s *RevenueStream) ItemCount() int               { return s.summary.ItemCount }
func (s *RevenueStream) GetTotalRevenue() money.Money { return s.summary.TotalRevenue }
func (s *RevenueStream) GetTotalProfit() money.Money  { return s.summary.TotalProfit }

// Items returns copies of every item.
func (s *RevenueStream) Items() []domain.RevenueItem {
	out := make([]domain.RevenueItem, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

// Get returns a copy of one item.
func (s *RevenueStream) Get(id string) (domain.RevenueItem, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: revenue item %q", apperrors.ErrNotFound, id)
	}
	return s.items[i].Clone(), nil
}

// GetMonthlyRevenue sums every item's revenue for month.
func (s *RevenueStream) GetMonthlyRevenue(month domain.YYYYMM) money.Money {
	total := money.Zero(s.currency)
	for _, item := range s.items {
		total = total.Add(item.GetRevenue(month))
	}
	return total
}

// GetMonthlyCost sums every item's direct cost for month.
func (s *RevenueStream) GetMonthlyCost(month domain.YYYYMM) money.Money {
	total := money.Zero(s.currency)
	for _, item := range s.items {
		total = total.Add(item.GetCost(month))
	}
	return total
}

// GetMonthlyProfit is revenue less direct cost for month.
func (s *RevenueStream) GetMonthlyProfit(month domain.YYYYMM) money.Money {
	return s.GetMonthlyRevenue(month).Subtract(s.GetMonthlyCost(month))
}

// GetAverageMonthlyRevenue spreads total revenue over the period's months.
func (s *RevenueStream) GetAverageMonthlyRevenue() money.Money {
	return s.average(s.summary.TotalRevenue)
}

// GetAverageMonthlyGrossProfit spreads total gross profit over the period's months.
func (s *RevenueStream) GetAverageMonthlyGrossProfit() money.Money {
	return s.average(s.summary.TotalProfit)
}

func (s *RevenueStream) average(total money.Money) money.Money {
	months := s.period.MonthCount()
	if months <= 0 {
		return money.Zero(s.currency)
	}
	return total.DivideInt(int64(months))
}

// GetLastRevenueGrowthMoM compares the last two months of the period. It is
// undefined when the period has one month or the prior month earned nothing.
func (s *RevenueStream) GetLastRevenueGrowthMoM() (float64, bool) {
	if s.period.MonthCount() < 2 {
		return 0, false
	}
	last := s.period.EndMonth
	prev := s.GetMonthlyRevenue(last.AddMonths(-1))
	if prev.IsZero() {
		return 0, false
	}
	return s.GetMonthlyRevenue(last).Subtract(prev).Ratio(prev), true
}

// GetRevenueGrowthRateCMGR is (end/start)^(1/(months-1)) − 1 across the period.
// It is undefined for fewer than two months or zero starting revenue.
func (s *RevenueStream) GetRevenueGrowthRateCMGR() (float64, bool) {
	months := s.period.MonthCount()
	if months < 2 {
		return 0, false
	}
	start := s.GetMonthlyRevenue(s.period.StartMonth)
	if start.IsZero() {
		return 0, false
	}
	end := s.GetMonthlyRevenue(s.period.EndMonth)
	return math.Pow(end.Ratio(start), 1/float64(months-1)) - 1, true
}

// Clone returns an independent stream with copies of every item.
func (s *RevenueStream) Clone() *RevenueStream {
	c := &RevenueStream{
		BaseService: s.BaseService,
		currency:    s.currency,
		period:      s.period,
		items:       s.Items(),
	}
	c.recalculateCache()
	return c
}
