package domain

import (
	"sort"
	"strings"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RevenueKind discriminates the RevenueItem implementations.
type RevenueKind string

const (
	RevenueProduct      RevenueKind = "PRODUCT"
	RevenueService      RevenueKind = "SERVICE"
	RevenueSubscription RevenueKind = "SUBSCRIPTION"
)

// CapacityMode controls how RecomputeCapacityPeriod treats an existing plan.
type CapacityMode string

const (
	// CapacityExtend keeps planned months still inside the period and generates the rest.
	CapacityExtend CapacityMode = "EXTEND"
	// CapacityReset regenerates every month from the item's base figures.
	CapacityReset CapacityMode = "RESET"
)

// MonthlyCapacity is the number of units (products, hours, subscribers) planned for a month.
type MonthlyCapacity struct {
	Month YYYYMM
	Units decimal.Decimal
}

// RevenueItem is a source of revenue. The set of implementations is closed:
// *ProductItem, *ServiceItem and *SubscriptionItem.
type RevenueItem interface {
	ID() string
	Name() string
	Kind() RevenueKind
	Currency() string
	GrossRevenue() money.Money
	GrossCost() money.Money
	GrossProfit() money.Money
	GetRevenue(m YYYYMM) money.Money
	GetCost(m YYYYMM) money.Money
	GetProfit(m YYYYMM) money.Money
	Capacity() []MonthlyCapacity
	RecomputeCapacityPeriod(start, end YYYYMM, mode CapacityMode) error
	ValidateSelf() error
	Clone() RevenueItem

	sealed()
}

// capacityPlan is the per-month unit plan shared by every revenue item.
// Month i of a regenerated plan holds baseUnits × (1+growth)^i.
type capacityPlan struct {
	id        string
	name      string
	price     money.Money
	cost      money.Money
	baseUnits decimal.Decimal
	growth    decimal.Decimal
	plan      []MonthlyCapacity
}

func newCapacityPlan(id, name string, price, cost money.Money, baseUnits, growth decimal.Decimal, plan []MonthlyCapacity) capacityPlan {
	if id == "" {
		id = uuid.NewString()
	}
	if cost.Currency() == "" {
		cost = money.Zero(price.Currency())
	}
	p := capacityPlan{
		id:        id,
		name:      strings.TrimSpace(name),
		price:     price,
		cost:      cost,
		baseUnits: baseUnits,
		growth:    growth,
		plan:      append([]MonthlyCapacity(nil), plan...),
	}
	sort.Slice(p.plan, func(i, j int) bool { return p.plan[i].Month < p.plan[j].Month })
	return p
}

func (p *capacityPlan) ID() string       { return p.id }
func (p *capacityPlan) Name() string     { return p.name }
func (p *capacityPlan) Currency() string { return p.price.Currency() }

func (p *capacityPlan) Capacity() []MonthlyCapacity {
	return append([]MonthlyCapacity(nil), p.plan...)
}

func (p *capacityPlan) unitsFor(m YYYYMM) decimal.Decimal {
	i := sort.Search(len(p.plan), func(i int) bool { return p.plan[i].Month >= m })
	if i < len(p.plan) && p.plan[i].Month == m {
		return p.plan[i].Units
	}
	return decimal.Zero
}

func (p *capacityPlan) GetRevenue(m YYYYMM) money.Money { return p.price.Multiply(p.unitsFor(m)) }
func (p *capacityPlan) GetCost(m YYYYMM) money.Money    { return p.cost.Multiply(p.unitsFor(m)) }

func (p *capacityPlan) GetProfit(m YYYYMM) money.Money {
	return p.GetRevenue(m).Subtract(p.GetCost(m))
}

func (p *capacityPlan) GrossRevenue() money.Money {
	total := money.Zero(p.Currency())
	for _, c := range p.plan {
		total = total.Add(p.price.Multiply(c.Units))
	}
	return total
}

func (p *capacityPlan) GrossCost() money.Money {
	total := money.Zero(p.Currency())
	for _, c := range p.plan {
		total = total.Add(p.cost.Multiply(c.Units))
	}
	return total
}

func (p *capacityPlan) GrossProfit() money.Money {
	return p.GrossRevenue().Subtract(p.GrossCost())
}

func (p *capacityPlan) RecomputeCapacityPeriod(start, end YYYYMM, mode CapacityMode) error {
	if !start.Valid() || !end.Valid() || end.Before(start) {
		return apperrors.NewValidationError("period", "invalid capacity period %s..%s", start, end)
	}
	if mode != CapacityExtend && mode != CapacityReset {
		return apperrors.NewValidationError("mode", "unknown capacity mode %q", mode)
	}
	factor := decimal.NewFromInt(1).Add(p.growth)
	n := start.MonthsUntil(end) + 1
	next := make([]MonthlyCapacity, 0, n)
	for i := 0; i < n; i++ {
		month := start.AddMonths(i)
		units := p.baseUnits.Mul(factor.Pow(decimal.NewFromInt(int64(i)))).Round(4)
		if mode == CapacityExtend {
			if idx := sort.Search(len(p.plan), func(k int) bool { return p.plan[k].Month >= month }); idx < len(p.plan) && p.plan[idx].Month == month {
				units = p.plan[idx].Units
			}
		}
		next = append(next, MonthlyCapacity{Month: month, Units: units})
	}
	p.plan = next
	return nil
}

func (p *capacityPlan) validate(kind RevenueKind) error {
	if p.id == "" {
		return apperrors.NewValidationError("id", "%s item id is required", strings.ToLower(string(kind)))
	}
	if p.name == "" {
		return apperrors.NewValidationError("name", "%s item name is required", strings.ToLower(string(kind)))
	}
	if p.price.IsNegative() {
		return apperrors.NewValidationError("price", "must not be negative, got %s", p.price)
	}
	if p.cost.IsNegative() {
		return apperrors.NewValidationError("cost", "must not be negative, got %s", p.cost)
	}
	if p.cost.Currency() != p.price.Currency() {
		return apperrors.NewValidationError("cost", "currency %s differs from price currency %s", p.cost.Currency(), p.price.Currency())
	}
	if p.baseUnits.IsNegative() {
		return apperrors.NewValidationError("units", "must not be negative, got %s", p.baseUnits)
	}
	if p.growth.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return apperrors.NewValidationError("growth", "net monthly growth must be greater than -100%%, got %s", p.growth)
	}
	for _, c := range p.plan {
		if !c.Month.Valid() || c.Units.IsNegative() {
			return apperrors.NewValidationError("capacity", "invalid capacity entry %s=%s", c.Month, c.Units)
		}
	}
	return nil
}

func (p capacityPlan) clone() capacityPlan {
	c := p
	c.plan = append([]MonthlyCapacity(nil), p.plan...)
	return c
}

// ProductParams describes a product sold in units.
type ProductParams struct {
	ID            string
	Name          string
	UnitPrice     money.Money
	UnitCost      money.Money
	UnitsPerMonth decimal.Decimal
	MonthlyGrowth decimal.Decimal
	Capacity      []MonthlyCapacity
}

// ProductItem earns UnitPrice per unit sold.
type ProductItem struct {
	capacityPlan
}

// NewProductItem builds a validated product.
func NewProductItem(p ProductParams) (*ProductItem, error) {
	item := &ProductItem{newCapacityPlan(p.ID, p.Name, p.UnitPrice, p.UnitCost, p.UnitsPerMonth, p.MonthlyGrowth, p.Capacity)}
	if err := item.ValidateSelf(); err != nil {
		return nil, err
	}
	return item, nil
}

func (i *ProductItem) Kind() RevenueKind   { return RevenueProduct }
func (i *ProductItem) ValidateSelf() error { return i.validate(RevenueProduct) }
func (i *ProductItem) Clone() RevenueItem  { return &ProductItem{i.capacityPlan.clone()} }
func (i *ProductItem) sealed()             {}

// Params returns the figures the product was built from, including its current plan.
func (i *ProductItem) Params() ProductParams {
	return ProductParams{
		ID:            i.id,
		Name:          i.name,
		UnitPrice:     i.price,
		UnitCost:      i.cost,
		UnitsPerMonth: i.baseUnits,
		MonthlyGrowth: i.growth,
		Capacity:      i.Capacity(),
	}
}

// ServiceParams describes billable work sold by the hour.
type ServiceParams struct {
	ID            string
	Name          string
	HourlyRate    money.Money
	HourlyCost    money.Money
	HoursPerMonth decimal.Decimal
	MonthlyGrowth decimal.Decimal
	Capacity      []MonthlyCapacity
}

// ServiceItem earns HourlyRate per billable hour.
type ServiceItem struct {
	capacityPlan
}

// NewServiceItem builds a validated service.
func NewServiceItem(p ServiceParams) (*ServiceItem, error) {
	item := &ServiceItem{newCapacityPlan(p.ID, p.Name, p.HourlyRate, p.HourlyCost, p.HoursPerMonth, p.MonthlyGrowth, p.Capacity)}
	if err := item.ValidateSelf(); err != nil {
		return nil, err
	}
	return item, nil
}

func (i *ServiceItem) Kind() RevenueKind   { return RevenueService }
func (i *ServiceItem) ValidateSelf() error { return i.validate(RevenueService) }
func (i *ServiceItem) Clone() RevenueItem  { return &ServiceItem{i.capacityPlan.clone()} }
func (i *ServiceItem) sealed()             {}

// Params returns the figures the service was built from, including its current plan.
func (i *ServiceItem) Params() ServiceParams {
	return ServiceParams{
		ID:            i.id,
		Name:          i.name,
		HourlyRate:    i.price,
		HourlyCost:    i.cost,
		HoursPerMonth: i.baseUnits,
		MonthlyGrowth: i.growth,
		Capacity:      i.Capacity(),
	}
}

// SubscriptionParams describes a recurring plan billed per subscriber.
// Subscribers grow each month by GrowthRate − ChurnRate.
type SubscriptionParams struct {
	ID                  string
	Name                string
	PricePerSubscriber  money.Money
	CostPerSubscriber   money.Money
	StartingSubscribers decimal.Decimal
	GrowthRate          decimal.Decimal
	ChurnRate           decimal.Decimal
	Capacity            []MonthlyCapacity
}

// SubscriptionItem earns PricePerSubscriber for every active subscriber.
type SubscriptionItem struct {
	capacityPlan
	grossGrowth decimal.Decimal
	churn       decimal.Decimal
}

// NewSubscriptionItem builds a validated subscription.
func NewSubscriptionItem(p SubscriptionParams) (*SubscriptionItem, error) {
	net := p.GrowthRate.Sub(p.ChurnRate)
	item := &SubscriptionItem{
		capacityPlan: newCapacityPlan(p.ID, p.Name, p.PricePerSubscriber, p.CostPerSubscriber, p.StartingSubscribers, net, p.Capacity),
		grossGrowth:  p.GrowthRate,
		churn:        p.ChurnRate,
	}
	if err := item.ValidateSelf(); err != nil {
		return nil, err
	}
	return item, nil
}

func (i *SubscriptionItem) Kind() RevenueKind { return RevenueSubscription }

func (i *SubscriptionItem) ValidateSelf() error {
	if i.churn.IsNegative() || i.churn.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return apperrors.NewValidationError("churnRate", "must be within [0, 1), got %s", i.churn)
	}
	if i.grossGrowth.IsNegative() {
		return apperrors.NewValidationError("growthRate", "must not be negative, got %s", i.grossGrowth)
	}
	return i.validate(RevenueSubscription)
}

func (i *SubscriptionItem) Clone() RevenueItem {
	return &SubscriptionItem{capacityPlan: i.capacityPlan.clone(), grossGrowth: i.grossGrowth, churn: i.churn}
}

func (i *SubscriptionItem) sealed() {}

func (i *SubscriptionItem) Params() SubscriptionParams {
	return SubscriptionParams{
		ID:                  i.id,
		Name:                i.name,
		PricePerSubscriber:  i.price,
		CostPerSubscriber:   i.cost,
		StartingSubscribers: i.baseUnits,
		GrowthRate:          i.grossGrowth,
		ChurnRate:           i.churn,
		Capacity:            i.Capacity(),
	}
}

// Compile-time checks that the union stays closed and complete.
var (
	_ RevenueItem = (*ProductItem)(nil)
	_ RevenueItem = (*ServiceItem)(nil)
	_ RevenueItem = (*SubscriptionItem)(nil)
)
