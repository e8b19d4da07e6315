package dto

import (
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/shopspring/decimal"
)

// SnapshotVersion is written into every serialized runway.
const SnapshotVersion = 1

// TaxConfigDTO is the wire form of domain.TaxConfig.
type TaxConfigDTO struct {
	VATMode           string          `json:"vatMode"`
	VATRate           decimal.Decimal `json:"vatRate"`
	PercentageTaxRate decimal.Decimal `json:"percentageTaxRate"`
	IncomeTaxRate     decimal.Decimal `json:"incomeTaxRate"`
}

// ToTaxConfigDTO converts a domain.TaxConfig to TaxConfigDTO.
func ToTaxConfigDTO(c domain.TaxConfig) TaxConfigDTO {
	return TaxConfigDTO{
		VATMode:           string(c.VATMode),
		VATRate:           c.VATRate,
		PercentageTaxRate: c.PercentageTaxRate,
		IncomeTaxRate:     c.IncomeTaxRate,
	}
}

// ToDomain validates and converts the tax settings.
func (d TaxConfigDTO) ToDomain() (domain.TaxConfig, error) {
	c := domain.TaxConfig{
		VATMode:           domain.VATMode(d.VATMode),
		VATRate:           d.VATRate,
		PercentageTaxRate: d.PercentageTaxRate,
		IncomeTaxRate:     d.IncomeTaxRate,
	}
	if c.VATMode == "" {
		c.VATMode = domain.VATNone
	}
	return c, c.Validate()
}

// HealthThresholdsDTO carries the limits of the health rules.
type HealthThresholdsDTO struct {
	CriticalRunwayMonths int     `json:"criticalRunwayMonths"`
	WarningRunwayMonths  int     `json:"warningRunwayMonths"`
	BurnMultipleWarning  float64 `json:"burnMultipleWarning"`
	BurnMultipleCritical float64 `json:"burnMultipleCritical"`
}

// RunwayDTO is the persisted snapshot of a whole runway model.
type RunwayDTO struct {
	Version      int                 `json:"version"`
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	OpeningCash  money.Money         `json:"openingCash"`
	Period       PeriodDTO           `json:"period"`
	BusinessType string              `json:"businessType"`
	TaxConfig    TaxConfigDTO        `json:"taxConfig"`
	IncludeTaxes bool                `json:"includeTaxes"`
	Thresholds   HealthThresholdsDTO `json:"thresholds"`
	Funding      FundingManagerDTO   `json:"funding"`
	Revenues     RevenueStreamDTO    `json:"revenues"`
	Expenses     ExpenseBreakdownDTO `json:"expenses"`
}

// TaxBreakdownDTO is the tax charged in one month.
type TaxBreakdownDTO struct {
	VAT           money.Money `json:"vat"`
	PercentageTax money.Money `json:"percentageTax"`
	IncomeTax     money.Money `json:"incomeTax"`
}

// CashflowDTO is one month of a projection.
type CashflowDTO struct {
	Month         string           `json:"month"`
	CashIn        money.Money      `json:"cashIn"`
	CashOut       money.Money      `json:"cashOut"`
	Taxes         *TaxBreakdownDTO `json:"taxes,omitempty"`
	EndingCash    money.Money      `json:"endingCash"`
	Revenue       money.Money      `json:"revenue"`
	FundingIn     money.Money      `json:"fundingIn"`
	Expenses      money.Money      `json:"expenses"`
	Depreciation  money.Money      `json:"depreciation"`
	DebtPrincipal money.Money      `json:"debtPrincipal"`
	DebtInterest  money.Money      `json:"debtInterest"`
	DirectCost    money.Money      `json:"directCost"`
}

// ToCashflowDTO converts a domain.Cashflow to CashflowDTO.
func ToCashflowDTO(cf domain.Cashflow) CashflowDTO {
	d := CashflowDTO{
		Month:         cf.Month.String(),
		CashIn:        cf.CashIn,
		CashOut:       cf.CashOut,
		EndingCash:    cf.EndingCash,
		Revenue:       cf.Revenue,
		FundingIn:     cf.FundingIn,
		Expenses:      cf.Expenses,
		Depreciation:  cf.Depreciation,
		DebtPrincipal: cf.DebtPrincipal,
		DebtInterest:  cf.DebtInterest,
		DirectCost:    cf.DirectCost,
	}
	if cf.Taxes != nil {
		d.Taxes = &TaxBreakdownDTO{VAT: cf.Taxes.VAT, PercentageTax: cf.Taxes.PercentageTax, IncomeTax: cf.Taxes.IncomeTax}
	}
	return d
}

// ToCashflowDTOs converts a slice of domain.Cashflow to []CashflowDTO.
func ToCashflowDTOs(cashflows []domain.Cashflow) []CashflowDTO {
	out := make([]CashflowDTO, len(cashflows))
	for i, cf := range cashflows {
		out[i] = ToCashflowDTO(cf)
	}
	return out
}

// DashboardResponse is the rendered form of a dashboard snapshot.
type DashboardResponse struct {
	Currency              string        `json:"currency"`
	StartMonth            string        `json:"startMonth"`
	HorizonMonths         int           `json:"horizonMonths"`
	OpeningCash           money.Money   `json:"openingCash"`
	EndingCash            money.Money   `json:"endingCash"`
	RunwayMonths          int           `json:"runwayMonths"`
	CashBreached          bool          `json:"cashBreached"`
	CashZeroMonth         string        `json:"cashZeroMonth,omitempty"`
	AverageMonthlyBurn    money.Money   `json:"averageMonthlyBurn"`
	AverageNetBurn        money.Money   `json:"averageNetBurn"`
	AverageMonthlyRevenue money.Money   `json:"averageMonthlyRevenue"`
	RevenueGrowthMoM      *float64      `json:"revenueGrowthMoM,omitempty"`
	RevenueCMGR           *float64      `json:"revenueCMGR,omitempty"`
	BurnMultiple          *float64      `json:"burnMultiple,omitempty"`
	BreakEvenMonth        string        `json:"breakEvenMonth,omitempty"`
	EBITDA                money.Money   `json:"ebitda"`
	NetIncome             money.Money   `json:"netIncome"`
	TotalFunding          money.Money   `json:"totalFunding"`
	TotalNonRepayable     money.Money   `json:"totalNonRepayable"`
	HealthStatus          string        `json:"healthStatus"`
	HealthReasons         []string      `json:"healthReasons"`
	Cashflows             []CashflowDTO `json:"cashflows"`
}

// ToDashboardResponse converts a domain.DashboardSnapshot to DashboardResponse.
func ToDashboardResponse(s domain.DashboardSnapshot) DashboardResponse {
	reasons := s.Health.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return DashboardResponse{
		Currency:              s.Currency,
		StartMonth:            s.StartMonth.String(),
		HorizonMonths:         s.HorizonMonths,
		OpeningCash:           s.OpeningCash,
		EndingCash:            s.EndingCash,
		RunwayMonths:          s.RunwayMonths,
		CashBreached:          s.CashBreached,
		CashZeroMonth:         s.CashZeroMonth.String(),
		AverageMonthlyBurn:    s.AverageMonthlyBurn,
		AverageNetBurn:        s.AverageNetBurn,
		AverageMonthlyRevenue: s.AverageMonthlyRevenue,
		RevenueGrowthMoM:      s.RevenueGrowthMoM,
		RevenueCMGR:           s.RevenueCMGR,
		BurnMultiple:          s.BurnMultiple,
		BreakEvenMonth:        s.BreakEvenMonth.String(),
		EBITDA:                s.EBITDA,
		NetIncome:             s.NetIncome,
		TotalFunding:          s.TotalFunding,
		TotalNonRepayable:     s.TotalNonRepayable,
		HealthStatus:          string(s.Health.Status),
		HealthReasons:         reasons,
		Cashflows:             ToCashflowDTOs(s.Cashflows),
	}
}
