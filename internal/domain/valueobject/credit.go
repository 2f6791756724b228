package valueobject

import "fmt"

// CreditGrade is a letter grade derived from the credit score.
type CreditGrade struct {
	value string
}

var validCreditGrades = map[string]bool{
	"A": true,
	"B": true,
	"C": true,
	"D": true,
}

var (
	CreditGradeA = CreditGrade{value: "A"}
	CreditGradeB = CreditGrade{value: "B"}
	CreditGradeC = CreditGrade{value: "C"}
	CreditGradeD = CreditGrade{value: "D"}
)

func NewCreditGrade(s string) (CreditGrade, error) {
	if !validCreditGrades[s] {
		return CreditGrade{}, fmt.Errorf("%w: invalid credit grade: %s", ErrValidation, s)
	}
	return CreditGrade{value: s}, nil
}

func (g CreditGrade) String() string { return g.value }
func (g CreditGrade) IsZero() bool   { return g.value == "" }

// RiskLevel is the coarse risk classification used by the pricing and
// auto-approval policies.
type RiskLevel struct {
	value string
}

var validRiskLevels = map[string]bool{
	"LOW":    true,
	"MEDIUM": true,
	"HIGH":   true,
}

var (
	RiskLevelLow    = RiskLevel{value: "LOW"}
	RiskLevelMedium = RiskLevel{value: "MEDIUM"}
	RiskLevelHigh   = RiskLevel{value: "HIGH"}
)

func NewRiskLevel(s string) (RiskLevel, error) {
	if !validRiskLevels[s] {
		return RiskLevel{}, fmt.Errorf("%w: invalid risk level: %s", ErrValidation, s)
	}
	return RiskLevel{value: s}, nil
}

func (r RiskLevel) String() string { return r.value }
func (r RiskLevel) IsZero() bool   { return r.value == "" }
