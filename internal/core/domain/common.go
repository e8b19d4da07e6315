package domain

// FundingType classifies a funding inflow.
type FundingType string

const (
	FundingEquity FundingType = "EQUITY"
	FundingDebt   FundingType = "DEBT"
	FundingGrant  FundingType = "GRANT"
)

// FundingTypes lists every funding type in reporting order.
var FundingTypes = []FundingType{FundingEquity, FundingDebt, FundingGrant}

// IsRepayable reports whether the funding must be paid back.
func (t FundingType) IsRepayable() bool { return t == FundingDebt }

func (t FundingType) Valid() bool {
	switch t {
	case FundingEquity, FundingDebt, FundingGrant:
		return true
	}
	return false
}

// Compounding is the interest compounding frequency of a debt.
type Compounding string

const (
	CompoundingNone      Compounding = "NONE"
	CompoundingMonthly   Compounding = "MONTHLY"
	CompoundingQuarterly Compounding = "QUARTERLY"
	CompoundingAnnually  Compounding = "ANNUALLY"
)

func (c Compounding) Valid() bool {
	switch c {
	case CompoundingNone, CompoundingMonthly, CompoundingQuarterly, CompoundingAnnually:
		return true
	}
	return false
}

// ExpenseType classifies an expense record.
type ExpenseType string

const (
	ExpenseOperating ExpenseType = "OPERATING"
	ExpenseVariable  ExpenseType = "VARIABLE"
	ExpenseCapital   ExpenseType = "CAPITAL"
)

func (t ExpenseType) Valid() bool {
	switch t {
	case ExpenseOperating, ExpenseVariable, ExpenseCapital:
		return true
	}
	return false
}

// Frequency is how often a recurring expense is charged.
type Frequency string

const (
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

// IntervalMonths returns the number of months between charges.
func (f Frequency) IntervalMonths() int {
	switch f {
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	default:
		return 1
	}
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// BusinessType is a free classification of the modelled business.
type BusinessType string

const (
	BusinessStartup    BusinessType = "STARTUP"
	BusinessSmall      BusinessType = "SMALL_BUSINESS"
	BusinessEnterprise BusinessType = "ENTERPRISE"
	BusinessNonProfit  BusinessType = "NON_PROFIT"
)
