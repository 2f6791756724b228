package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// LoanType – immutable value object
// ---------------------------------------------------------------------------

// LoanType identifies the product a loan was originated under. Pricing policy
// (base rate, rate bounds, income multiple) is keyed by loan type.
type LoanType struct {
	value string
}

const (
	loanTypePersonal      = "PERSONAL"
	loanTypeSalaryAdvance = "SALARY_ADVANCE"
	loanTypeBusiness      = "BUSINESS"
	loanTypeEducation     = "EDUCATION"
)

var (
	LoanTypePersonal      = LoanType{value: loanTypePersonal}
	LoanTypeSalaryAdvance = LoanType{value: loanTypeSalaryAdvance}
	LoanTypeBusiness      = LoanType{value: loanTypeBusiness}
	LoanTypeEducation     = LoanType{value: loanTypeEducation}
)

var validLoanTypes = map[string]LoanType{
	loanTypePersonal:      LoanTypePersonal,
	loanTypeSalaryAdvance: LoanTypeSalaryAdvance,
	loanTypeBusiness:      LoanTypeBusiness,
	loanTypeEducation:     LoanTypeEducation,
}

// NewLoanType creates a LoanType from a raw string.
func NewLoanType(s string) (LoanType, error) {
	v, ok := validLoanTypes[s]
	if !ok {
		return LoanType{}, fmt.Errorf("%w: invalid loan type %q", ErrValidation, s)
	}
	return v, nil
}

// String returns the string representation of the loan type.
func (t LoanType) String() string { return t.value }

// IsZero returns true if the loan type has not been initialised.
func (t LoanType) IsZero() bool { return t.value == "" }

// ---------------------------------------------------------------------------
// EmploymentType – immutable value object
// ---------------------------------------------------------------------------

// EmploymentType is a scoring signal describing how the applicant earns.
type EmploymentType struct {
	value string
}

const (
	employmentSalaried     = "SALARIED"
	employmentSelfEmployed = "SELF_EMPLOYED"
	employmentRetired      = "RETIRED"
	employmentStudent      = "STUDENT"
	employmentUnemployed   = "UNEMPLOYED"
)

var (
	EmploymentSalaried     = EmploymentType{value: employmentSalaried}
	EmploymentSelfEmployed = EmploymentType{value: employmentSelfEmployed}
	EmploymentRetired      = EmploymentType{value: employmentRetired}
	EmploymentStudent      = EmploymentType{value: employmentStudent}
	EmploymentUnemployed   = EmploymentType{value: employmentUnemployed}
)

var validEmploymentTypes = map[string]EmploymentType{
	employmentSalaried:     EmploymentSalaried,
	employmentSelfEmployed: EmploymentSelfEmployed,
	employmentRetired:      EmploymentRetired,
	employmentStudent:      EmploymentStudent,
	employmentUnemployed:   EmploymentUnemployed,
}

// NewEmploymentType creates an EmploymentType from a raw string.
func NewEmploymentType(s string) (EmploymentType, error) {
	v, ok := validEmploymentTypes[s]
	if !ok {
		return EmploymentType{}, fmt.Errorf("%w: invalid employment type %q", ErrValidation, s)
	}
	return v, nil
}

// String returns the string representation of the employment type.
func (t EmploymentType) String() string { return t.value }

// IsZero returns true if the employment type has not been initialised.
func (t EmploymentType) IsZero() bool { return t.value == "" }
