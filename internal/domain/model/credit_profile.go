package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbank/lending-core/internal/domain/valueobject"
)

// ApplicantSignals is the raw input to credit scoring, supplied by the
// identity/KYC subsystem. Monetary figures are monthly and currency-scaled.
type ApplicantSignals struct {
	ApplicantID            string
	MonthlyIncome          decimal.Decimal
	EmploymentType         valueobject.EmploymentType
	EmploymentTenureMonths int
	IdentityVerified       bool
	AddressVerified        bool
	IncomeVerified         bool
	AccountAgeMonths       int
	ActiveLoanCount        int
}

// CreditProfile is a recomputable scoring snapshot with a validity horizon.
// It is never the system of record for applicant identity.
type CreditProfile struct {
	applicantID string
	score       int
	grade       valueobject.CreditGrade
	riskLevel   valueobject.RiskLevel
	computedAt  time.Time
	validUntil  time.Time
}

// NewCreditProfile builds a profile snapshot. Validity is fixed at 30 days
// from computation.
func NewCreditProfile(
	applicantID string,
	score int,
	grade valueobject.CreditGrade,
	riskLevel valueobject.RiskLevel,
	computedAt time.Time,
) CreditProfile {
	return CreditProfile{
		applicantID: applicantID,
		score:       score,
		grade:       grade,
		riskLevel:   riskLevel,
		computedAt:  computedAt,
		validUntil:  computedAt.AddDate(0, 0, 30),
	}
}

func (p CreditProfile) ApplicantID() string                { return p.applicantID }
func (p CreditProfile) Score() int                         { return p.score }
func (p CreditProfile) Grade() valueobject.CreditGrade     { return p.grade }
func (p CreditProfile) RiskLevel() valueobject.RiskLevel   { return p.riskLevel }
func (p CreditProfile) ComputedAt() time.Time              { return p.computedAt }
func (p CreditProfile) ValidUntil() time.Time              { return p.validUntil }
func (p CreditProfile) IsValidAt(t time.Time) bool         { return !t.After(p.validUntil) }
