package dto

import (
	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/shopspring/decimal"
)

// CapacityDTO is the planned units of one month.
type CapacityDTO struct {
	Month string          `json:"month"`
	Units decimal.Decimal `json:"units"`
}

// RevenueItemDTO is the wire form of every revenue item. Kind selects the
// implementation; Price, Cost and Units mean per unit, per hour or per
// subscriber depending on it. ChurnRate is only present for subscriptions.
type RevenueItemDTO struct {
	Kind       string           `json:"kind"`
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Price      money.Money      `json:"price"`
	Cost       money.Money      `json:"cost"`
	Units      decimal.Decimal  `json:"units"`
	GrowthRate decimal.Decimal  `json:"growthRate"`
	ChurnRate  *decimal.Decimal `json:"churnRate,omitempty"`
	Capacity   []CapacityDTO    `json:"capacity,omitempty"`
}

func toCapacityDTOs(plan []domain.MonthlyCapacity) []CapacityDTO {
	var out []CapacityDTO
	for _, c := range plan {
		out = append(out, CapacityDTO{Month: c.Month.String(), Units: c.Units})
	}
	return out
}

func toCapacity(plan []CapacityDTO) []domain.MonthlyCapacity {
	var out []domain.MonthlyCapacity
	for _, c := range plan {
		out = append(out, domain.MonthlyCapacity{Month: domain.YYYYMM(c.Month), Units: c.Units})
	}
	return out
}

// ToRevenueItemDTO converts a domain.RevenueItem to RevenueItemDTO. Items of
// no known kind, including nil, are rejected.
func ToRevenueItemDTO(item domain.RevenueItem) (RevenueItemDTO, error) {
	switch it := item.(type) {
	case *domain.ProductItem:
		p := it.Params()
		return RevenueItemDTO{
			Kind:       string(domain.RevenueProduct),
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.UnitPrice,
			Cost:       p.UnitCost,
			Units:      p.UnitsPerMonth,
			GrowthRate: p.MonthlyGrowth,
			Capacity:   toCapacityDTOs(p.Capacity),
		}, nil
	case *domain.ServiceItem:
		p := it.Params()
		return RevenueItemDTO{
			Kind:       string(domain.RevenueService),
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.HourlyRate,
			Cost:       p.HourlyCost,
			Units:      p.HoursPerMonth,
			GrowthRate: p.MonthlyGrowth,
			Capacity:   toCapacityDTOs(p.Capacity),
		}, nil
	case *domain.SubscriptionItem:
		p := it.Params()
		churn := p.ChurnRate
		return RevenueItemDTO{
			Kind:       string(domain.RevenueSubscription),
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.PricePerSubscriber,
			Cost:       p.CostPerSubscriber,
			Units:      p.StartingSubscribers,
			GrowthRate: p.GrowthRate,
			ChurnRate:  &churn,
			Capacity:   toCapacityDTOs(p.Capacity),
		}, nil
	}
	return RevenueItemDTO{}, apperrors.NewValidationError("kind", "unsupported revenue item %T", item)
}

// ToRevenueItemDTOs converts a slice of domain.RevenueItem to []RevenueItemDTO.
func ToRevenueItemDTOs(items []domain.RevenueItem) ([]RevenueItemDTO, error) {
	out := make([]RevenueItemDTO, len(items))
	for i, item := range items {
		d, err := ToRevenueItemDTO(item)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// ToDomain rebuilds and validates the item named by Kind.
func (d RevenueItemDTO) ToDomain() (domain.RevenueItem, error) {
	capacity := toCapacity(d.Capacity)
	switch domain.RevenueKind(d.Kind) {
	case domain.RevenueProduct:
		item, err := domain.NewProductItem(domain.ProductParams{
			ID:            d.ID,
			Name:          d.Name,
			UnitPrice:     d.Price,
			UnitCost:      d.Cost,
			UnitsPerMonth: d.Units,
			MonthlyGrowth: d.GrowthRate,
			Capacity:      capacity,
		})
		if err != nil {
			return nil, err
		}
		return item, nil
	case domain.RevenueService:
		item, err := domain.NewServiceItem(domain.ServiceParams{
			ID:            d.ID,
			Name:          d.Name,
			HourlyRate:    d.Price,
			HourlyCost:    d.Cost,
			HoursPerMonth: d.Units,
			MonthlyGrowth: d.GrowthRate,
			Capacity:      capacity,
		})
		if err != nil {
			return nil, err
		}
		return item, nil
	case domain.RevenueSubscription:
		var churn decimal.Decimal
		if d.ChurnRate != nil {
			churn = *d.ChurnRate
		}
		item, err := domain.NewSubscriptionItem(domain.SubscriptionParams{
			ID:                  d.ID,
			Name:                d.Name,
			PricePerSubscriber:  d.Price,
			CostPerSubscriber:   d.Cost,
			StartingSubscribers: d.Units,
			GrowthRate:          d.GrowthRate,
			ChurnRate:           churn,
			Capacity:            capacity,
		})
		if err != nil {
			return nil, err
		}
		return item, nil
	}
	return nil, apperrors.NewValidationError("kind", "unknown revenue item kind %q", d.Kind)
}

// RevenueStreamDTO is the wire form of a revenue stream.
type RevenueStreamDTO struct {
	Currency string           `json:"currency"`
	Period   PeriodDTO        `json:"period"`
	Items    []RevenueItemDTO `json:"items"`
}
