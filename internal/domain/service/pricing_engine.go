package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// ---------------------------------------------------------------------------
// PricingEngine – rate and eligibility policy
// ---------------------------------------------------------------------------

// RatePolicy is the per-product pricing configuration. Rates are annual
// basis points; IncomeMultiple bounds the eligible amount as a multiple of
// verified monthly income.
type RatePolicy struct {
	BaseRateBps      int
	MinRateBps       int
	MaxRateBps       int
	IncomeMultiple   int
	ProcessingFeeBps int
}

// Quote is the pricing result for one application.
type Quote struct {
	InterestRateBps   int
	MaxEligibleAmount money.Money
}

// PricingEngine maps score, product and tenure onto an interest rate and an
// eligibility ceiling. Pure; all adjustments come from validated ordered
// range tables, never inline conditionals.
type PricingEngine struct {
	policies    map[string]RatePolicy
	scoreBands  valueobject.BandTable
	tenureBands valueobject.BandTable
}

// NewPricingEngine returns an engine with the default product policies.
func NewPricingEngine() *PricingEngine {
	return &PricingEngine{
		policies: map[string]RatePolicy{
			valueobject.LoanTypePersonal.String():      {BaseRateBps: 1400, MinRateBps: 1000, MaxRateBps: 2400, IncomeMultiple: 10, ProcessingFeeBps: 100},
			valueobject.LoanTypeSalaryAdvance.String(): {BaseRateBps: 1800, MinRateBps: 1200, MaxRateBps: 2800, IncomeMultiple: 3, ProcessingFeeBps: 150},
			valueobject.LoanTypeBusiness.String():      {BaseRateBps: 1600, MinRateBps: 1100, MaxRateBps: 2600, IncomeMultiple: 12, ProcessingFeeBps: 100},
			valueobject.LoanTypeEducation.String():     {BaseRateBps: 1100, MinRateBps: 800, MaxRateBps: 2000, IncomeMultiple: 15, ProcessingFeeBps: 50},
		},
		// Discounts and surcharges over the clamped score range.
		scoreBands: valueobject.MustBandTable("score adjustment", []valueobject.Band{
			{Min: 300, Max: 549, Adjustment: 300},
			{Min: 550, Max: 649, Adjustment: 150},
			{Min: 650, Max: 749, Adjustment: 0},
			{Min: 750, Max: 819, Adjustment: -100},
			{Min: 820, Max: -1, Adjustment: -150},
		}),
		// Short tenures carry the fixed servicing cost, very long ones carry
		// duration risk.
		tenureBands: valueobject.MustBandTable("tenure adjustment", []valueobject.Band{
			{Min: 1, Max: 6, Adjustment: 100},
			{Min: 7, Max: 24, Adjustment: 0},
			{Min: 25, Max: 60, Adjustment: 50},
			{Min: 61, Max: -1, Adjustment: 150},
		}),
	}
}

// Price computes the interest rate and eligibility ceiling for an
// application. The final rate is clamped into the product's [min,max] range.
func (e *PricingEngine) Price(
	score int,
	loanType valueobject.LoanType,
	termMonths int,
	verifiedMonthlyIncome money.Money,
) (Quote, error) {
	policy, ok := e.policies[loanType.String()]
	if !ok {
		return Quote{}, fmt.Errorf("%w: no rate policy for loan type %q", valueobject.ErrValidation, loanType)
	}
	if !verifiedMonthlyIncome.IsPositive() {
		return Quote{}, fmt.Errorf("%w: verified monthly income must be positive for pricing", valueobject.ErrValidation)
	}

	scoreAdj, err := e.scoreBands.Lookup(score)
	if err != nil {
		return Quote{}, err
	}
	tenureAdj, err := e.tenureBands.Lookup(termMonths)
	if err != nil {
		return Quote{}, err
	}

	rate := policy.BaseRateBps + scoreAdj + tenureAdj
	if rate < policy.MinRateBps {
		rate = policy.MinRateBps
	}
	if rate > policy.MaxRateBps {
		rate = policy.MaxRateBps
	}

	ceiling := verifiedMonthlyIncome.Multiply(decimal.NewFromInt(int64(policy.IncomeMultiple)))
	return Quote{InterestRateBps: rate, MaxEligibleAmount: ceiling}, nil
}

// ProcessingFee computes the one-off origination fee for the product.
func (e *PricingEngine) ProcessingFee(amount money.Money, loanType valueobject.LoanType) (money.Money, error) {
	policy, ok := e.policies[loanType.String()]
	if !ok {
		return money.Money{}, fmt.Errorf("%w: no rate policy for loan type %q", valueobject.ErrValidation, loanType)
	}
	feeRate := decimal.New(int64(policy.ProcessingFeeBps), -4)
	return amount.Multiply(feeRate), nil
}

// EnsureEligible rejects a requested amount above the quote's ceiling. The
// violated rule is named in the error; the amount is never silently
// truncated.
func (e *PricingEngine) EnsureEligible(requested money.Money, quote Quote) error {
	if requested.Amount().GreaterThan(quote.MaxEligibleAmount.Amount()) {
		return fmt.Errorf("%w: rule max_eligible_amount: requested %s exceeds limit %s",
			valueobject.ErrPolicyViolation, requested, quote.MaxEligibleAmount)
	}
	return nil
}
