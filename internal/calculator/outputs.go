package calculator

import "github.com/iwvelando/auto-loan-calc/pkg/tax"

// RateSource records where the county rate used in a computation came from.
type RateSource string

// County rate sources.
const (
	RateSourceOverride RateSource = "override"
	RateSourceLookup   RateSource = "lookup"
	RateSourceDefault  RateSource = "default"
)

// LoanOutputs is everything derived from one LoanInputs snapshot.
type LoanOutputs struct {
	PriceForCalc float64    `json:"priceForCalc"`
	MSRPDelta    *MSRPDelta `json:"msrpDelta,omitempty"`

	DealerFeesTotal float64 `json:"dealerFeesTotal"`
	GovFeesTotal    float64 `json:"govFeesTotal"`

	CountyRate        float64    `json:"countyRate"`
	CountyRateSource  RateSource `json:"countyRateSource"`
	Taxes             tax.Result `json:"taxes"`
	TradeInTaxSavings float64    `json:"tradeInTaxSavings"`
	TotalTaxesAndFees float64    `json:"totalTaxesAndFees"`

	TradeEquity    float64 `json:"tradeEquity"`
	NegativeEquity float64 `json:"negativeEquity"`
	BaseAmount     float64 `json:"baseAmount"`
	AmountFinanced float64 `json:"amountFinanced"`

	APRPercent            float64 `json:"aprPercent"`
	MonthlyRate           float64 `json:"monthlyRate"`
	TermMonths            int     `json:"termMonths"`
	MonthlyPayment        float64 `json:"monthlyPayment"`
	ZeroAPRMonthlyPayment float64 `json:"zeroAprMonthlyPayment"`
	FinancingCostPerMonth float64 `json:"financingCostPerMonth"`
	TotalOfPayments       float64 `json:"totalOfPayments"`
	TotalInterest         float64 `json:"totalInterest"`

	SavingsFromNotFinancingTaxesFees float64 `json:"savingsFromNotFinancingTaxesFees"`
	SavingsFromNotFinancingNegEquity float64 `json:"savingsFromNotFinancingNegEquity"`

	Goal     *GoalResult `json:"goal,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

// MSRPDelta compares the sale price with MSRP. Amount is positive when the
// sale price is below MSRP.
type MSRPDelta struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

// GoalResult answers "how do I get to this monthly payment". When Met is set
// only Surplus is meaningful; otherwise each strategy is populated.
type GoalResult struct {
	Target  float64 `json:"target"`
	Met     bool    `json:"met"`
	Surplus float64 `json:"surplus,omitempty"`

	ExtraCashDown *Strategy `json:"extraCashDown,omitempty"`
	RequiredAPR   *Strategy `json:"requiredApr,omitempty"`
	RequiredTerm  *Strategy `json:"requiredTerm,omitempty"`
	RequiredPrice *Strategy `json:"requiredPrice,omitempty"`
}

// Strategy is one way of reaching the goal. OutOfRange means no acceptable
// numeric answer exists and Value should not be shown.
type Strategy struct {
	Value      float64 `json:"value"`
	OutOfRange bool    `json:"outOfRange"`
	Boundary   bool    `json:"boundary,omitempty"`
	Note       string  `json:"note"`
}

// Report holds one named computation, as produced for a configured scenario.
type Report struct {
	Name    string          `json:"name"`
	Vehicle string          `json:"vehicle,omitempty"`
	County  string          `json:"county,omitempty"`
	Inputs  LoanInputs      `json:"inputs"`
	Rates   tax.RateContext `json:"rates"`
	Outputs LoanOutputs     `json:"outputs"`
}
