package service

import (
	"fmt"
	"time"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// ScoringEngine – deterministic rule-based credit scoring
// ---------------------------------------------------------------------------

// Score bounds. Every computed score is clamped into this range.
const (
	scoreFloor   = 300
	scoreCeiling = 900
	scoreBase    = 500
)

// ScoringEngine computes a bounded credit score from applicant signals. It
// is pure and side-effect-free; the same signals always produce the same
// profile. Each signal group contributes an independent additive delta.
type ScoringEngine struct {
	employmentDeltas map[string]int
	tenureBands      valueobject.BandTable
	incomeBands      valueobject.BandTable
	accountAgeBands  valueobject.BandTable
	activeLoanBands  valueobject.BandTable
}

// NewScoringEngine returns an engine with the default delta tables. The
// band tables are validated for gaps and overlaps at construction.
func NewScoringEngine() *ScoringEngine {
	return &ScoringEngine{
		employmentDeltas: map[string]int{
			valueobject.EmploymentSalaried.String():     60,
			valueobject.EmploymentSelfEmployed.String(): 30,
			valueobject.EmploymentRetired.String():      20,
			valueobject.EmploymentStudent.String():      0,
			valueobject.EmploymentUnemployed.String():   -80,
		},
		tenureBands: valueobject.MustBandTable("employment tenure", []valueobject.Band{
			{Min: 0, Max: 5, Adjustment: 0},
			{Min: 6, Max: 11, Adjustment: 10},
			{Min: 12, Max: 35, Adjustment: 25},
			{Min: 36, Max: 59, Adjustment: 40},
			{Min: 60, Max: -1, Adjustment: 50},
		}),
		// Monthly income in whole currency units. Deltas are non-decreasing
		// so more income never lowers the score.
		incomeBands: valueobject.MustBandTable("monthly income", []valueobject.Band{
			{Min: 0, Max: 24_999, Adjustment: 0},
			{Min: 25_000, Max: 49_999, Adjustment: 30},
			{Min: 50_000, Max: 99_999, Adjustment: 60},
			{Min: 100_000, Max: 199_999, Adjustment: 90},
			{Min: 200_000, Max: -1, Adjustment: 120},
		}),
		accountAgeBands: valueobject.MustBandTable("account age", []valueobject.Band{
			{Min: 0, Max: 5, Adjustment: 0},
			{Min: 6, Max: 23, Adjustment: 10},
			{Min: 24, Max: 59, Adjustment: 20},
			{Min: 60, Max: -1, Adjustment: 30},
		}),
		activeLoanBands: valueobject.MustBandTable("active loans", []valueobject.Band{
			{Min: 0, Max: 0, Adjustment: 20},
			{Min: 1, Max: 2, Adjustment: 0},
			{Min: 3, Max: 4, Adjustment: -20},
			{Min: 5, Max: -1, Adjustment: -50},
		}),
	}
}

// KYC verification deltas.
const (
	identityVerifiedDelta = 25
	addressVerifiedDelta  = 15
	incomeVerifiedDelta   = 20
)

// Score computes a credit profile from the given signals. Applicant ID,
// monthly income and employment type are required; missing any of them is a
// validation error, never a silent zero delta.
func (e *ScoringEngine) Score(signals model.ApplicantSignals, now time.Time) (model.CreditProfile, error) {
	if signals.ApplicantID == "" {
		return model.CreditProfile{}, fmt.Errorf("%w: applicant_id is required for scoring", valueobject.ErrValidation)
	}
	if !signals.MonthlyIncome.IsPositive() {
		return model.CreditProfile{}, fmt.Errorf("%w: monthly_income must be positive for scoring", valueobject.ErrValidation)
	}
	if signals.EmploymentType.IsZero() {
		return model.CreditProfile{}, fmt.Errorf("%w: employment_type is required for scoring", valueobject.ErrValidation)
	}
	if signals.EmploymentTenureMonths < 0 {
		return model.CreditProfile{}, fmt.Errorf("%w: employment_tenure_months must not be negative", valueobject.ErrValidation)
	}
	if signals.AccountAgeMonths < 0 {
		return model.CreditProfile{}, fmt.Errorf("%w: account_age_months must not be negative", valueobject.ErrValidation)
	}
	if signals.ActiveLoanCount < 0 {
		return model.CreditProfile{}, fmt.Errorf("%w: active_loan_count must not be negative", valueobject.ErrValidation)
	}

	score := scoreBase
	score += e.employmentDeltas[signals.EmploymentType.String()]

	tenureDelta, err := e.tenureBands.Lookup(signals.EmploymentTenureMonths)
	if err != nil {
		return model.CreditProfile{}, err
	}
	score += tenureDelta

	incomeDelta, err := e.incomeBands.Lookup(int(signals.MonthlyIncome.IntPart()))
	if err != nil {
		return model.CreditProfile{}, err
	}
	score += incomeDelta

	if signals.IdentityVerified {
		score += identityVerifiedDelta
	}
	if signals.AddressVerified {
		score += addressVerifiedDelta
	}
	if signals.IncomeVerified {
		score += incomeVerifiedDelta
	}

	ageDelta, err := e.accountAgeBands.Lookup(signals.AccountAgeMonths)
	if err != nil {
		return model.CreditProfile{}, err
	}
	score += ageDelta

	loanDelta, err := e.activeLoanBands.Lookup(signals.ActiveLoanCount)
	if err != nil {
		return model.CreditProfile{}, err
	}
	score += loanDelta

	if score < scoreFloor {
		score = scoreFloor
	}
	if score > scoreCeiling {
		score = scoreCeiling
	}

	return model.NewCreditProfile(
		signals.ApplicantID,
		score,
		gradeForScore(score),
		riskForScore(score),
		now,
	), nil
}

func gradeForScore(score int) valueobject.CreditGrade {
	switch {
	case score >= 800:
		return valueobject.CreditGradeA
	case score >= 700:
		return valueobject.CreditGradeB
	case score >= 600:
		return valueobject.CreditGradeC
	default:
		return valueobject.CreditGradeD
	}
}

func riskForScore(score int) valueobject.RiskLevel {
	switch {
	case score >= 750:
		return valueobject.RiskLevelLow
	case score >= 650:
		return valueobject.RiskLevelMedium
	default:
		return valueobject.RiskLevelHigh
	}
}
