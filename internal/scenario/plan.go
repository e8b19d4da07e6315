// Package scenario loads runway plans from YAML files.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/SscSPs/majik_runway/internal/apperrors"
	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/internal/core/services"
	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Plan is a declarative runway model. Amounts and rates are decimal strings.
type Plan struct {
	Name         string         `yaml:"name"`
	Currency     string         `yaml:"currency" validate:"omitempty,len=3,uppercase"`
	OpeningCash  string         `yaml:"opening_cash" validate:"required,numeric"`
	Start        string         `yaml:"start" validate:"required"`
	End          string         `yaml:"end"` // defaults to start + horizon
	BusinessType string         `yaml:"business_type" validate:"omitempty,oneof=STARTUP SMALL_BUSINESS ENTERPRISE NON_PROFIT"`
	Tax          TaxPlan        `yaml:"tax"`
	Funding      []FundingPlan  `yaml:"funding" validate:"dive"`
	Revenue      []RevenuePlan  `yaml:"revenue" validate:"dive"`
	Expenses     []ExpensePlan  `yaml:"expenses" validate:"dive"`
	Scenarios    []ScenarioPlan `yaml:"scenarios" validate:"dive"`
}

type TaxPlan struct {
	VATMode           string `yaml:"vat_mode" validate:"omitempty,oneof=NONE VAT PERCENTAGE_TAX"`
	VATRate           string `yaml:"vat_rate" validate:"omitempty,numeric"`
	PercentageTaxRate string `yaml:"percentage_tax_rate" validate:"omitempty,numeric"`
	IncomeTaxRate     string `yaml:"income_tax_rate" validate:"omitempty,numeric"`
}

type FundingPlan struct {
	Name   string    `yaml:"name" validate:"required"`
	Type   string    `yaml:"type" validate:"required,oneof=EQUITY DEBT GRANT"`
	Month  string    `yaml:"month" validate:"required"`
	Amount string    `yaml:"amount" validate:"required,numeric"`
	Debt   *DebtPlan `yaml:"debt" validate:"required_if=Type DEBT"`
}

type DebtPlan struct {
	InterestRate      string `yaml:"interest_rate" validate:"required,numeric"`
	MaturityDate      string `yaml:"maturity_date" validate:"required"`
	InitialPayment    string `yaml:"initial_payment" validate:"omitempty,numeric"`
	Compounding       string `yaml:"compounding" validate:"omitempty,oneof=NONE MONTHLY QUARTERLY ANNUALLY"`
	GracePeriodMonths int    `yaml:"grace_period_months" validate:"min=0"`
}

// RevenuePlan is one revenue item. Units are products sold, hours billed or
// starting subscribers depending on Kind.
type RevenuePlan struct {
	Kind       string `yaml:"kind" validate:"required,oneof=PRODUCT SERVICE SUBSCRIPTION"`
	Name       string `yaml:"name" validate:"required"`
	Price      string `yaml:"price" validate:"required,numeric"`
	Cost       string `yaml:"cost" validate:"omitempty,numeric"`
	Units      string `yaml:"units" validate:"required,numeric"`
	GrowthRate string `yaml:"growth_rate" validate:"omitempty,numeric"`
	ChurnRate  string `yaml:"churn_rate" validate:"omitempty,numeric,excluded_unless=Kind SUBSCRIPTION"`
}

type ExpensePlan struct {
	Kind               string `yaml:"kind" validate:"required,oneof=recurring one_time capital"`
	Name               string `yaml:"name" validate:"required"`
	Type               string `yaml:"type" validate:"omitempty,oneof=OPERATING VARIABLE CAPITAL"`
	Amount             string `yaml:"amount" validate:"required,numeric"`
	Frequency          string `yaml:"frequency" validate:"omitempty,oneof=MONTHLY QUARTERLY YEARLY"`
	Start              string `yaml:"start" validate:"required_if=Kind recurring"`
	End                string `yaml:"end"`
	Month              string `yaml:"month" validate:"required_unless=Kind recurring"`
	TaxDeductible      *bool  `yaml:"tax_deductible"`
	DepreciationMonths int    `yaml:"depreciation_months" validate:"required_if=Kind capital"`
	ResidualValue      string `yaml:"residual_value" validate:"omitempty,numeric"`
}

// ScenarioPlan is a named what-if run over the plan's model.
type ScenarioPlan struct {
	Name                 string        `yaml:"name" validate:"required"`
	RevenueMultiplier    string        `yaml:"revenue_multiplier" validate:"omitempty,numeric"`
	ExpenseMultiplier    string        `yaml:"expense_multiplier" validate:"omitempty,numeric"`
	MonthlyExpenseOffset string        `yaml:"monthly_expense_offset" validate:"omitempty,numeric"`
	OpeningCashOffset    string        `yaml:"opening_cash_offset" validate:"omitempty,numeric"`
	Months               int           `yaml:"months" validate:"min=0"`
	ExtraFunding         []FundingPlan `yaml:"extra_funding" validate:"dive"`
}

// Defaults fill what a plan leaves out.
type Defaults struct {
	Currency      string
	HorizonMonths int
}

var validate = validator.New()

// Load reads and validates the plan at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML plan. Unknown keys are rejected.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decode plan: %v", apperrors.ErrValidation, err)
	}
	if err := validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return &p, nil
}

type parser struct {
	currency string
}

func (ps parser) money(field, s string) (money.Money, error) {
	if strings.TrimSpace(s) == "" {
		return money.Zero(ps.currency), nil
	}
	m, err := money.FromMajorString(s, ps.currency)
	if err != nil {
		return money.Money{}, apperrors.NewValidationError(field, "invalid amount %q", s)
	}
	return m, nil
}

func rate(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperrors.NewValidationError(field, "invalid number %q", s)
	}
	return d, nil
}

func multiplier(field, s string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := rate(field, s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func (p *Plan) currency(d Defaults) string {
	if p.Currency != "" {
		return p.Currency
	}
	return strings.ToUpper(d.Currency)
}

func (p *Plan) period(d Defaults) (domain.PeriodYYYYMM, error) {
	if p.End != "" {
		return domain.NewPeriod(p.Start, p.End)
	}
	start, err := domain.ParseYYYYMM(p.Start)
	if err != nil {
		return domain.PeriodYYYYMM{}, err
	}
	return domain.PeriodOfMonths(start, d.HorizonMonths)
}

func (p *Plan) taxConfig() (domain.TaxConfig, error) {
	c := domain.DefaultTaxConfig()
	if p.Tax.VATMode != "" {
		c.VATMode = domain.VATMode(p.Tax.VATMode)
	}
	var err error
	if c.VATRate, err = rate("vat_rate", p.Tax.VATRate); err != nil {
		return c, err
	}
	if c.PercentageTaxRate, err = rate("percentage_tax_rate", p.Tax.PercentageTaxRate); err != nil {
		return c, err
	}
	if c.IncomeTaxRate, err = rate("income_tax_rate", p.Tax.IncomeTaxRate); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Build creates a runway model from the plan.
func (p *Plan) Build(d Defaults, options ...services.RunwayOption) (*services.MajikRunway, error) {
	ps := parser{currency: p.currency(d)}
	opening, err := ps.money("opening_cash", p.OpeningCash)
	if err != nil {
		return nil, err
	}
	period, err := p.period(d)
	if err != nil {
		return nil, err
	}
	tax, err := p.taxConfig()
	if err != nil {
		return nil, err
	}
	r, err := services.Initialize(services.InitParams{
		Name:         p.Name,
		OpeningCash:  opening,
		Period:       period,
		BusinessType: domain.BusinessType(p.BusinessType),
		TaxConfig:    tax,
	}, options...)
	if err != nil {
		return nil, err
	}
	for i, f := range p.Funding {
		ev, err := ps.fundingEvent(f)
		if err != nil {
			return nil, fmt.Errorf("funding[%d]: %w", i, err)
		}
		if _, err := r.AddFunding(ev); err != nil {
			return nil, fmt.Errorf("funding[%d]: %w", i, err)
		}
	}
	for i, rv := range p.Revenue {
		item, err := ps.revenueItem(rv)
		if err != nil {
			return nil, fmt.Errorf("revenue[%d]: %w", i, err)
		}
		if _, err := r.AddRevenue(item); err != nil {
			return nil, fmt.Errorf("revenue[%d]: %w", i, err)
		}
	}
	for i, e := range p.Expenses {
		rec, err := ps.expense(e)
		if err != nil {
			return nil, fmt.Errorf("expenses[%d]: %w", i, err)
		}
		if _, err := r.AddExpense(rec); err != nil {
			return nil, fmt.Errorf("expenses[%d]: %w", i, err)
		}
	}
	return r, nil
}

func (ps parser) fundingEvent(f FundingPlan) (domain.FundingEvent, error) {
	month, err := domain.ParseYYYYMM(f.Month)
	if err != nil {
		return domain.FundingEvent{}, err
	}
	amount, err := ps.money("amount", f.Amount)
	if err != nil {
		return domain.FundingEvent{}, err
	}
	switch domain.FundingType(f.Type) {
	case domain.FundingEquity:
		return domain.NewEquity(f.Name, amount, month)
	case domain.FundingGrant:
		return domain.NewGrant(f.Name, amount, month)
	}
	if f.Debt == nil {
		return domain.FundingEvent{}, apperrors.NewValidationError("debt", "debt terms are required for %q", f.Name)
	}
	interest, err := rate("interest_rate", f.Debt.InterestRate)
	if err != nil {
		return domain.FundingEvent{}, err
	}
	initial, err := ps.money("initial_payment", f.Debt.InitialPayment)
	if err != nil {
		return domain.FundingEvent{}, err
	}
	var opts []domain.DebtOption
	if f.Debt.Compounding != "" {
		opts = append(opts, domain.WithCompounding(domain.Compounding(f.Debt.Compounding)))
	}
	if f.Debt.GracePeriodMonths > 0 {
		opts = append(opts, domain.WithGracePeriod(f.Debt.GracePeriodMonths))
	}
	return domain.NewDebt(f.Name, amount, month, f.Debt.MaturityDate, interest, initial, opts...)
}

func (ps parser) revenueItem(rv RevenuePlan) (domain.RevenueItem, error) {
	price, err := ps.money("price", rv.Price)
	if err != nil {
		return nil, err
	}
	cost, err := ps.money("cost", rv.Cost)
	if err != nil {
		return nil, err
	}
	units, err := rate("units", rv.Units)
	if err != nil {
		return nil, err
	}
	growth, err := rate("growth_rate", rv.GrowthRate)
	if err != nil {
		return nil, err
	}
	switch domain.RevenueKind(rv.Kind) {
	case domain.RevenueService:
		item, err := domain.NewServiceItem(domain.ServiceParams{
			Name: rv.Name, HourlyRate: price, HourlyCost: cost, HoursPerMonth: units, MonthlyGrowth: growth,
		})
		if err != nil {
			return nil, err
		}
		return item, nil
	case domain.RevenueSubscription:
		churn, err := rate("churn_rate", rv.ChurnRate)
		if err != nil {
			return nil, err
		}
		item, err := domain.NewSubscriptionItem(domain.SubscriptionParams{
			Name: rv.Name, PricePerSubscriber: price, CostPerSubscriber: cost,
			StartingSubscribers: units, GrowthRate: growth, ChurnRate: churn,
		})
		if err != nil {
			return nil, err
		}
		return item, nil
	default:
		item, err := domain.NewProductItem(domain.ProductParams{
			Name: rv.Name, UnitPrice: price, UnitCost: cost, UnitsPerMonth: units, MonthlyGrowth: growth,
		})
		if err != nil {
			return nil, err
		}
		return item, nil
	}
}

func (ps parser) expense(e ExpensePlan) (domain.ExpenseRecord, error) {
	amount, err := ps.money("amount", e.Amount)
	if err != nil {
		return domain.ExpenseRecord{}, err
	}
	t := domain.ExpenseOperating
	if e.Type != "" {
		t = domain.ExpenseType(e.Type)
	}
	deductible := e.TaxDeductible == nil || *e.TaxDeductible
	switch e.Kind {
	case "recurring":
		freq := domain.FrequencyMonthly
		if e.Frequency != "" {
			freq = domain.Frequency(e.Frequency)
		}
		start, err := domain.ParseYYYYMM(e.Start)
		if err != nil {
			return domain.ExpenseRecord{}, err
		}
		var end domain.YYYYMM
		if e.End != "" {
			if end, err = domain.ParseYYYYMM(e.End); err != nil {
				return domain.ExpenseRecord{}, err
			}
		}
		return domain.NewRecurringExpense(e.Name, t, amount, freq, start, end, deductible)
	case "capital":
		month, err := domain.ParseYYYYMM(e.Month)
		if err != nil {
			return domain.ExpenseRecord{}, err
		}
		residual, err := ps.money("residual_value", e.ResidualValue)
		if err != nil {
			return domain.ExpenseRecord{}, err
		}
		return domain.NewCapitalExpense(e.Name, amount, month, e.DepreciationMonths, residual)
	default:
		month, err := domain.ParseYYYYMM(e.Month)
		if err != nil {
			return domain.ExpenseRecord{}, err
		}
		return domain.NewOneTimeExpense(e.Name, t, amount, month, deductible)
	}
}

// Overrides converts the plan's scenarios for SimulateScenario.
func (p *Plan) Overrides(d Defaults) ([]services.ScenarioOverrides, error) {
	ps := parser{currency: p.currency(d)}
	out := make([]services.ScenarioOverrides, 0, len(p.Scenarios))
	for i, s := range p.Scenarios {
		o := services.ScenarioOverrides{Name: s.Name, Months: s.Months}
		var err error
		if o.RevenueMultiplier, err = multiplier("revenue_multiplier", s.RevenueMultiplier); err != nil {
			return nil, fmt.Errorf("scenarios[%d]: %w", i, err)
		}
		if o.ExpenseMultiplier, err = multiplier("expense_multiplier", s.ExpenseMultiplier); err != nil {
			return nil, fmt.Errorf("scenarios[%d]: %w", i, err)
		}
		if o.MonthlyExpenseOffset, err = ps.money("monthly_expense_offset", s.MonthlyExpenseOffset); err != nil {
			return nil, fmt.Errorf("scenarios[%d]: %w", i, err)
		}
		if o.OpeningCashOffset, err = ps.money("opening_cash_offset", s.OpeningCashOffset); err != nil {
			return nil, fmt.Errorf("scenarios[%d]: %w", i, err)
		}
		for j, f := range s.ExtraFunding {
			ev, err := ps.fundingEvent(f)
			if err != nil {
				return nil, fmt.Errorf("scenarios[%d].extra_funding[%d]: %w", i, j, err)
			}
			o.ExtraFunding = append(o.ExtraFunding, ev)
		}
		out = append(out, o)
	}
	return out, nil
}
