package valueobject

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a loan.
type LoanStatus struct {
	value string
}

const (
	loanStatusDraft      = "DRAFT"
	loanStatusPending    = "PENDING"
	loanStatusApproved   = "APPROVED"
	loanStatusRejected   = "REJECTED"
	loanStatusOnHold     = "ON_HOLD"
	loanStatusDisbursed  = "DISBURSED"
	loanStatusActive     = "ACTIVE"
	loanStatusOverdue    = "OVERDUE"
	loanStatusNPA        = "NPA"
	loanStatusCompleted  = "COMPLETED"
	loanStatusWrittenOff = "WRITTEN_OFF"
	loanStatusSettled    = "SETTLED"
)

var (
	LoanStatusDraft      = LoanStatus{value: loanStatusDraft}
	LoanStatusPending    = LoanStatus{value: loanStatusPending}
	LoanStatusApproved   = LoanStatus{value: loanStatusApproved}
	LoanStatusRejected   = LoanStatus{value: loanStatusRejected}
	LoanStatusOnHold     = LoanStatus{value: loanStatusOnHold}
	LoanStatusDisbursed  = LoanStatus{value: loanStatusDisbursed}
	LoanStatusActive     = LoanStatus{value: loanStatusActive}
	LoanStatusOverdue    = LoanStatus{value: loanStatusOverdue}
	LoanStatusNPA        = LoanStatus{value: loanStatusNPA}
	LoanStatusCompleted  = LoanStatus{value: loanStatusCompleted}
	LoanStatusWrittenOff = LoanStatus{value: loanStatusWrittenOff}
	LoanStatusSettled    = LoanStatus{value: loanStatusSettled}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusDraft:      LoanStatusDraft,
	loanStatusPending:    LoanStatusPending,
	loanStatusApproved:   LoanStatusApproved,
	loanStatusRejected:   LoanStatusRejected,
	loanStatusOnHold:     LoanStatusOnHold,
	loanStatusDisbursed:  LoanStatusDisbursed,
	loanStatusActive:     LoanStatusActive,
	loanStatusOverdue:    LoanStatusOverdue,
	loanStatusNPA:        LoanStatusNPA,
	loanStatusCompleted:  LoanStatusCompleted,
	loanStatusWrittenOff: LoanStatusWrittenOff,
	loanStatusSettled:    LoanStatusSettled,
}

// loanStatusTransitions is the full lifecycle graph. OVERDUE and NPA cure
// back to ACTIVE once the overdue balance clears; terminal statuses have no
// outgoing edges.
var loanStatusTransitions = map[string][]string{
	loanStatusDraft:     {loanStatusPending},
	loanStatusPending:   {loanStatusApproved, loanStatusRejected, loanStatusOnHold},
	loanStatusOnHold:    {loanStatusPending, loanStatusRejected},
	loanStatusApproved:  {loanStatusDisbursed},
	loanStatusDisbursed: {loanStatusActive},
	loanStatusActive:    {loanStatusOverdue, loanStatusCompleted},
	loanStatusOverdue:   {loanStatusActive, loanStatusNPA, loanStatusCompleted, loanStatusSettled},
	loanStatusNPA:       {loanStatusActive, loanStatusCompleted, loanStatusWrittenOff, loanStatusSettled},
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("%w: invalid loan status %q", ErrValidation, s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// CanTransitionTo reports whether the lifecycle graph allows moving to next.
func (s LoanStatus) CanTransitionTo(next LoanStatus) bool {
	for _, allowed := range loanStatusTransitions[s.value] {
		if allowed == next.value {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions.
func (s LoanStatus) IsTerminal() bool {
	return len(loanStatusTransitions[s.value]) == 0 && !s.IsZero()
}

// IsServicing reports whether the loan is in a post-disbursement state that
// the valuation cycle classifies.
func (s LoanStatus) IsServicing() bool {
	switch s.value {
	case loanStatusActive, loanStatusOverdue, loanStatusNPA:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// ScheduleEntryStatus – immutable value object
// ---------------------------------------------------------------------------

// ScheduleEntryStatus represents the payment state of one schedule entry.
type ScheduleEntryStatus struct {
	value string
}

const (
	entryStatusPending = "PENDING"
	entryStatusPaid    = "PAID"
	entryStatusOverdue = "OVERDUE"
)

var (
	ScheduleEntryStatusPending = ScheduleEntryStatus{value: entryStatusPending}
	ScheduleEntryStatusPaid    = ScheduleEntryStatus{value: entryStatusPaid}
	ScheduleEntryStatusOverdue = ScheduleEntryStatus{value: entryStatusOverdue}
)

var validEntryStatuses = map[string]ScheduleEntryStatus{
	entryStatusPending: ScheduleEntryStatusPending,
	entryStatusPaid:    ScheduleEntryStatusPaid,
	entryStatusOverdue: ScheduleEntryStatusOverdue,
}

// NewScheduleEntryStatus creates a ScheduleEntryStatus from a raw string.
func NewScheduleEntryStatus(s string) (ScheduleEntryStatus, error) {
	v, ok := validEntryStatuses[s]
	if !ok {
		return ScheduleEntryStatus{}, fmt.Errorf("%w: invalid schedule entry status %q", ErrValidation, s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s ScheduleEntryStatus) String() string { return s.value }

// Equal returns true when both statuses carry the same value.
func (s ScheduleEntryStatus) Equal(other ScheduleEntryStatus) bool { return s.value == other.value }

// IsUnpaid reports whether the entry still counts toward the outstanding
// balance.
func (s ScheduleEntryStatus) IsUnpaid() bool {
	return s.value == entryStatusPending || s.value == entryStatusOverdue
}
