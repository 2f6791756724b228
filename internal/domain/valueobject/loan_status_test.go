package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoanStatus(t *testing.T) {
	s, err := NewLoanStatus("ACTIVE")
	require.NoError(t, err)
	assert.True(t, s.Equal(LoanStatusActive))

	_, err = NewLoanStatus("FROZEN")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoanStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    LoanStatus
		to      LoanStatus
		allowed bool
	}{
		{"draft to pending", LoanStatusDraft, LoanStatusPending, true},
		{"pending to approved", LoanStatusPending, LoanStatusApproved, true},
		{"pending to rejected", LoanStatusPending, LoanStatusRejected, true},
		{"pending to on hold", LoanStatusPending, LoanStatusOnHold, true},
		{"on hold back to pending", LoanStatusOnHold, LoanStatusPending, true},
		{"approved to disbursed", LoanStatusApproved, LoanStatusDisbursed, true},
		{"disbursed to active", LoanStatusDisbursed, LoanStatusActive, true},
		{"active to overdue", LoanStatusActive, LoanStatusOverdue, true},
		{"overdue cures to active", LoanStatusOverdue, LoanStatusActive, true},
		{"overdue to npa", LoanStatusOverdue, LoanStatusNPA, true},
		{"npa to written off", LoanStatusNPA, LoanStatusWrittenOff, true},
		{"npa to settled", LoanStatusNPA, LoanStatusSettled, true},
		{"draft cannot approve", LoanStatusDraft, LoanStatusApproved, false},
		{"approved cannot re-approve", LoanStatusApproved, LoanStatusApproved, false},
		{"active cannot write off", LoanStatusActive, LoanStatusWrittenOff, false},
		{"rejected is final", LoanStatusRejected, LoanStatusPending, false},
		{"completed is final", LoanStatusCompleted, LoanStatusActive, false},
		{"written off is final", LoanStatusWrittenOff, LoanStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestLoanStatus_IsTerminal(t *testing.T) {
	for _, s := range []LoanStatus{LoanStatusRejected, LoanStatusCompleted, LoanStatusWrittenOff, LoanStatusSettled} {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
	}
	for _, s := range []LoanStatus{LoanStatusDraft, LoanStatusPending, LoanStatusActive, LoanStatusOverdue, LoanStatusNPA} {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
	}
}

func TestLoanStatus_IsServicing(t *testing.T) {
	for _, s := range []LoanStatus{LoanStatusActive, LoanStatusOverdue, LoanStatusNPA} {
		assert.True(t, s.IsServicing(), "%s should be servicing", s)
	}
	for _, s := range []LoanStatus{LoanStatusDraft, LoanStatusApproved, LoanStatusCompleted} {
		assert.False(t, s.IsServicing(), "%s should not be servicing", s)
	}
}

func TestScheduleEntryStatus_IsUnpaid(t *testing.T) {
	assert.True(t, ScheduleEntryStatusPending.IsUnpaid())
	assert.True(t, ScheduleEntryStatusOverdue.IsUnpaid())
	assert.False(t, ScheduleEntryStatusPaid.IsUnpaid())
}
