package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbank/lending-core/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// ---------------------------------------------------------------------------
// Loan lifecycle events
// ---------------------------------------------------------------------------

// LoanSubmitted is raised when a new application enters the book.
type LoanSubmitted struct {
	events.BaseEvent
	ApplicantID     string          `json:"applicant_id"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	Currency        string          `json:"currency"`
	LoanType        string          `json:"loan_type"`
	TermMonths      int             `json:"term_months"`
	Purpose         string          `json:"purpose"`
}

func NewLoanSubmitted(
	loanID, applicantID string,
	requested decimal.Decimal, currency, loanType string,
	termMonths int, purpose string,
) LoanSubmitted {
	return LoanSubmitted{
		BaseEvent:       events.NewBaseEvent("lending.loan.submitted", loanID, "Loan"),
		ApplicantID:     applicantID,
		RequestedAmount: requested,
		Currency:        currency,
		LoanType:        loanType,
		TermMonths:      termMonths,
		Purpose:         purpose,
	}
}

// LoanApproved is raised on approval, automatic or manual.
type LoanApproved struct {
	events.BaseEvent
	ApprovedAmount  decimal.Decimal `json:"approved_amount"`
	Currency        string          `json:"currency"`
	InterestRateBps int             `json:"interest_rate_bps"`
	Score           int             `json:"score"`
	AutoApproved    bool            `json:"auto_approved"`
}

func NewLoanApproved(
	loanID string,
	approved decimal.Decimal, currency string,
	rateBps, score int, autoApproved bool,
) LoanApproved {
	return LoanApproved{
		BaseEvent:       events.NewBaseEvent("lending.loan.approved", loanID, "Loan"),
		ApprovedAmount:  approved,
		Currency:        currency,
		InterestRateBps: rateBps,
		Score:           score,
		AutoApproved:    autoApproved,
	}
}

// LoanRejected is raised when an application is turned down.
type LoanRejected struct {
	events.BaseEvent
	Reason string `json:"reason"`
}

func NewLoanRejected(loanID, reason string) LoanRejected {
	return LoanRejected{
		BaseEvent: events.NewBaseEvent("lending.loan.rejected", loanID, "Loan"),
		Reason:    reason,
	}
}

// LoanDisbursed is raised when the funds transfer is confirmed.
type LoanDisbursed struct {
	events.BaseEvent
	Principal       decimal.Decimal `json:"principal"`
	Currency        string          `json:"currency"`
	InterestRateBps int             `json:"interest_rate_bps"`
	TermMonths      int             `json:"term_months"`
	FirstDueDate    time.Time       `json:"first_due_date"`
}

func NewLoanDisbursed(
	loanID string,
	principal decimal.Decimal, currency string,
	rateBps, termMonths int, firstDueDate time.Time,
) LoanDisbursed {
	return LoanDisbursed{
		BaseEvent:       events.NewBaseEvent("lending.loan.disbursed", loanID, "Loan"),
		Principal:       principal,
		Currency:        currency,
		InterestRateBps: rateBps,
		TermMonths:      termMonths,
		FirstDueDate:    firstDueDate,
	}
}

// PaymentApplied is raised when a payment flips a schedule entry to PAID.
type PaymentApplied struct {
	events.BaseEvent
	Sequence    int             `json:"sequence"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

func NewPaymentApplied(
	loanID string, sequence int,
	amount decimal.Decimal, currency string,
	outstanding decimal.Decimal,
) PaymentApplied {
	return PaymentApplied{
		BaseEvent:   events.NewBaseEvent("lending.loan.payment_applied", loanID, "Loan"),
		Sequence:    sequence,
		Amount:      amount,
		Currency:    currency,
		Outstanding: outstanding,
	}
}

// LoanStatusChanged is raised on every lifecycle transition, alongside any
// more specific event. Consumers that only care about the state machine can
// subscribe to this one.
type LoanStatusChanged struct {
	events.BaseEvent
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	Actor          string `json:"actor"`
	Reason         string `json:"reason"`
}

func NewLoanStatusChanged(loanID, previous, next, actor, reason string) LoanStatusChanged {
	return LoanStatusChanged{
		BaseEvent:      events.NewBaseEvent("lending.loan.status_changed", loanID, "Loan"),
		PreviousStatus: previous,
		NewStatus:      next,
		Actor:          actor,
		Reason:         reason,
	}
}

// ---------------------------------------------------------------------------
// Delinquency events
// ---------------------------------------------------------------------------

// LoanBucketChanged is raised when a valuation cycle moves a loan into a
// different delinquency bucket.
type LoanBucketChanged struct {
	events.BaseEvent
	AsOfDate       time.Time       `json:"as_of_date"`
	PreviousBucket string          `json:"previous_bucket"`
	NewBucket      string          `json:"new_bucket"`
	DaysPastDue    int             `json:"days_past_due"`
	Outstanding    decimal.Decimal `json:"outstanding"`
}

func NewLoanBucketChanged(
	loanID string, asOf time.Time,
	previousBucket, newBucket string,
	dpd int, outstanding decimal.Decimal,
) LoanBucketChanged {
	return LoanBucketChanged{
		BaseEvent:      events.NewBaseEvent("lending.loan.bucket_changed", loanID, "Loan"),
		AsOfDate:       asOf,
		PreviousBucket: previousBucket,
		NewBucket:      newBucket,
		DaysPastDue:    dpd,
		Outstanding:    outstanding,
	}
}

// ---------------------------------------------------------------------------
// Collection events
// ---------------------------------------------------------------------------

// CollectionCaseOpened is raised on a loan's first post-due bucket entry.
type CollectionCaseOpened struct {
	events.BaseEvent
	LoanID string `json:"loan_id"`
	Stage  string `json:"stage"`
}

func NewCollectionCaseOpened(caseID, loanID, stage string) CollectionCaseOpened {
	return CollectionCaseOpened{
		BaseEvent: events.NewBaseEvent("lending.collection_case.opened", caseID, "CollectionCase"),
		LoanID:    loanID,
		Stage:     stage,
	}
}

// CollectionCaseEscalated is raised when a case moves to a higher stage.
type CollectionCaseEscalated struct {
	events.BaseEvent
	LoanID        string `json:"loan_id"`
	PreviousStage string `json:"previous_stage"`
	NewStage      string `json:"new_stage"`
}

func NewCollectionCaseEscalated(caseID, loanID, previousStage, newStage string) CollectionCaseEscalated {
	return CollectionCaseEscalated{
		BaseEvent:     events.NewBaseEvent("lending.collection_case.escalated", caseID, "CollectionCase"),
		LoanID:        loanID,
		PreviousStage: previousStage,
		NewStage:      newStage,
	}
}

// CollectionCaseClosed is raised on cure or terminal resolution.
type CollectionCaseClosed struct {
	events.BaseEvent
	LoanID string `json:"loan_id"`
	Reason string `json:"reason"`
}

func NewCollectionCaseClosed(caseID, loanID, reason string) CollectionCaseClosed {
	return CollectionCaseClosed{
		BaseEvent: events.NewBaseEvent("lending.collection_case.closed", caseID, "CollectionCase"),
		LoanID:    loanID,
		Reason:    reason,
	}
}
