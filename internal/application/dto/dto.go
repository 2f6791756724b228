package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// ApplicantSignalsRequest carries the scoring inputs supplied by the
// identity/KYC subsystem.
type ApplicantSignalsRequest struct {
	MonthlyIncome          decimal.Decimal `json:"monthly_income"`
	EmploymentType         string          `json:"employment_type"`
	EmploymentTenureMonths int             `json:"employment_tenure_months"`
	IdentityVerified       bool            `json:"identity_verified"`
	AddressVerified        bool            `json:"address_verified"`
	IncomeVerified         bool            `json:"income_verified"`
	AccountAgeMonths       int             `json:"account_age_months"`
	ActiveLoanCount        int             `json:"active_loan_count"`
}

// SubmitApplicationRequest carries a new loan application.
type SubmitApplicationRequest struct {
	ApplicantID     string                  `json:"applicant_id"`
	RequestedAmount decimal.Decimal         `json:"requested_amount"`
	Currency        string                  `json:"currency"`
	LoanType        string                  `json:"loan_type"`
	TermMonths      int                     `json:"term_months"`
	Purpose         string                  `json:"purpose"`
	Signals         ApplicantSignalsRequest `json:"signals"`
}

// ConfirmDisbursementRequest carries a funds-transfer confirmation event.
type ConfirmDisbursementRequest struct {
	LoanID        string    `json:"loan_id"`
	Success       bool      `json:"success"`
	FailureReason string    `json:"failure_reason,omitempty"`
	TransferredAt time.Time `json:"transferred_at"`
}

// ApplyPaymentRequest carries a payment-application event for one
// installment.
type ApplyPaymentRequest struct {
	LoanID   string          `json:"loan_id"`
	Sequence int             `json:"sequence"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	PaidAt   time.Time       `json:"paid_at"`
}

// RunValuationRequest triggers a portfolio valuation cycle.
type RunValuationRequest struct {
	AsOfDate time.Time `json:"as_of_date"`
}

// GetLoanHealthRequest identifies a loan health projection.
type GetLoanHealthRequest struct {
	LoanID   string    `json:"loan_id"`
	AsOfDate time.Time `json:"as_of_date"`
}

// GetProvisioningReportRequest identifies a provisioning snapshot. A zero
// AsOfDate selects the latest.
type GetProvisioningReportRequest struct {
	AsOfDate time.Time `json:"as_of_date"`
}

// GetCollectionQueueRequest filters the work queue. An empty Stage selects
// every open case.
type GetCollectionQueueRequest struct {
	Stage string `json:"stage,omitempty"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// ScheduleEntryResponse is one installment of a repayment schedule.
type ScheduleEntryResponse struct {
	Sequence  int             `json:"sequence"`
	DueDate   time.Time       `json:"due_date"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

// LoanResponse is the external representation of a loan.
type LoanResponse struct {
	ID              string                  `json:"id"`
	ApplicantID     string                  `json:"applicant_id"`
	LoanType        string                  `json:"loan_type"`
	Purpose         string                  `json:"purpose,omitempty"`
	RequestedAmount decimal.Decimal         `json:"requested_amount"`
	ApprovedAmount  decimal.Decimal         `json:"approved_amount"`
	Currency        string                  `json:"currency"`
	InterestRateBps int                     `json:"interest_rate_bps"`
	TermMonths      int                     `json:"term_months"`
	ProcessingFee   decimal.Decimal         `json:"processing_fee"`
	Status          string                  `json:"status"`
	ScoreAtApproval int                     `json:"score_at_approval,omitempty"`
	AutoApproved    bool                    `json:"auto_approved"`
	Outstanding     decimal.Decimal         `json:"outstanding"`
	Schedule        []ScheduleEntryResponse `json:"schedule,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// SubmitApplicationResponse is the decision returned to the caller.
type SubmitApplicationResponse struct {
	Loan              LoanResponse    `json:"loan"`
	Score             int             `json:"score"`
	Grade             string          `json:"grade"`
	RiskLevel         string          `json:"risk_level"`
	InterestRateBps   int             `json:"interest_rate_bps"`
	MaxEligibleAmount decimal.Decimal `json:"max_eligible_amount"`
	Decision          string          `json:"decision"`
}

// PaymentResponse reports the outcome of applying one payment.
type PaymentResponse struct {
	LoanID      string          `json:"loan_id"`
	Sequence    int             `json:"sequence"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	LoanStatus  string          `json:"loan_status"`
}

// LoanHealthResponse is the read-only projection for dashboards.
type LoanHealthResponse struct {
	LoanID      string          `json:"loan_id"`
	Status      string          `json:"status"`
	Bucket      string          `json:"bucket"`
	DaysPastDue int             `json:"days_past_due"`
	Outstanding decimal.Decimal `json:"outstanding"`
	NextDueDate *time.Time      `json:"next_due_date,omitempty"`
}

// BucketProvisionResponse is one bucket row of a provisioning report.
type BucketProvisionResponse struct {
	Bucket            string          `json:"bucket"`
	LoanCount         int             `json:"loan_count"`
	Outstanding       decimal.Decimal `json:"outstanding"`
	ProvisionRate     decimal.Decimal `json:"provision_rate"`
	RequiredProvision decimal.Decimal `json:"required_provision"`
}

// ProvisioningReportResponse is a portfolio provisioning snapshot.
type ProvisioningReportResponse struct {
	ID               string                    `json:"id"`
	AsOfDate         time.Time                 `json:"as_of_date"`
	Currency         string                    `json:"currency"`
	Buckets          []BucketProvisionResponse `json:"buckets"`
	TotalOutstanding decimal.Decimal           `json:"total_outstanding"`
	TotalProvision   decimal.Decimal           `json:"total_provision"`
	CoverageRatio    decimal.Decimal           `json:"coverage_ratio"`
	ComputedAt       time.Time                 `json:"computed_at"`
}

// RunValuationResponse summarises one valuation cycle. FailedLoanIDs lists
// loans whose classification failed and should be retried; the rest of the
// batch is unaffected.
type RunValuationResponse struct {
	AsOfDate       time.Time                  `json:"as_of_date"`
	LoansEvaluated int                        `json:"loans_evaluated"`
	Transitions    int                        `json:"transitions"`
	CasesOpened    int                        `json:"cases_opened"`
	CasesClosed    int                        `json:"cases_closed"`
	FailedLoanIDs  []string                   `json:"failed_loan_ids,omitempty"`
	Report         ProvisioningReportResponse `json:"report"`
}

// CollectionActionResponse is one row of the collection work queue.
type CollectionActionResponse struct {
	LoanID        string          `json:"loan_id"`
	CaseID        string          `json:"case_id,omitempty"`
	Stage         string          `json:"stage"`
	Channel       string          `json:"channel"`
	Intensity     string          `json:"intensity"`
	DaysPastDue   int             `json:"days_past_due"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	LastContactAt *time.Time      `json:"last_contact_at,omitempty"`
}

// CollectionQueueResponse is the ordered work list for collectors.
type CollectionQueueResponse struct {
	Actions []CollectionActionResponse `json:"actions"`
}
