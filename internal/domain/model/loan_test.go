package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

var testNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newDraftLoan(t *testing.T) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(
		"applicant-1",
		valueobject.LoanTypePersonal,
		"medical expense",
		money.FromMinorUnits(5_000_000, money.INR),
		12,
		testNow,
	)
	require.NoError(t, err)
	return loan
}

func newApprovedLoan(t *testing.T) model.Loan {
	t.Helper()
	loan := newDraftLoan(t)
	loan, err := loan.Submit(testNow)
	require.NoError(t, err)

	schedule, err := model.GenerateSchedule(loan.RequestedAmount().Amount(), 1400, 12, testNow)
	require.NoError(t, err)

	fee := money.FromMinorUnits(50_000, money.INR)
	loan, err = loan.Approve(loan.RequestedAmount(), 1400, fee, 720, false, schedule, "underwriter-7", testNow)
	require.NoError(t, err)
	return loan
}

func newActiveLoan(t *testing.T) model.Loan {
	t.Helper()
	loan := newApprovedLoan(t)
	loan, err := loan.ConfirmDisbursement(testNow)
	require.NoError(t, err)
	loan, err = loan.Activate(testNow)
	require.NoError(t, err)
	return loan
}

func TestNewLoan(t *testing.T) {
	loan := newDraftLoan(t)

	assert.NotEmpty(t, loan.ID())
	assert.Equal(t, "applicant-1", loan.ApplicantID())
	assert.True(t, loan.Status().Equal(valueobject.LoanStatusDraft))
	assert.Equal(t, 12, loan.TermMonths())
	assert.True(t, loan.ApprovedAmount().IsZero())
	assert.Equal(t, 1, loan.Version())
	assert.Empty(t, loan.DomainEvents())

	t.Run("rejects missing applicant", func(t *testing.T) {
		_, err := model.NewLoan("", valueobject.LoanTypePersonal, "", money.FromMinorUnits(100, money.INR), 12, testNow)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := model.NewLoan("a", valueobject.LoanTypePersonal, "", money.Zero(money.INR), 12, testNow)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})
}

func TestLoan_SubmitAndApprove(t *testing.T) {
	loan := newDraftLoan(t)

	loan, err := loan.Submit(testNow)
	require.NoError(t, err)
	assert.True(t, loan.Status().Equal(valueobject.LoanStatusPending))
	assert.Len(t, loan.DomainEvents(), 2, "status change + submitted")

	schedule, err := model.GenerateSchedule(loan.RequestedAmount().Amount(), 1400, 12, testNow)
	require.NoError(t, err)

	approved, err := loan.Approve(loan.RequestedAmount(), 1400, money.Zero(money.INR), 720, false, schedule, "underwriter-7", testNow)
	require.NoError(t, err)
	assert.True(t, approved.Status().Equal(valueobject.LoanStatusApproved))
	assert.Equal(t, 1400, approved.InterestRateBps())
	assert.Equal(t, 720, approved.ScoreAtApproval())
	assert.Equal(t, 1, approved.ScheduleVersion())
	assert.Len(t, approved.Schedule(), 12)

	t.Run("approval requires a schedule", func(t *testing.T) {
		_, err := loan.Approve(loan.RequestedAmount(), 1400, money.Zero(money.INR), 720, false, nil, "underwriter-7", testNow)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})

	t.Run("approved amount cannot exceed requested", func(t *testing.T) {
		over := money.FromMinorUnits(5_000_001, money.INR)
		_, err := loan.Approve(over, 1400, money.Zero(money.INR), 720, false, schedule, "underwriter-7", testNow)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})

	t.Run("double approval is a state conflict", func(t *testing.T) {
		_, err := approved.Approve(approved.RequestedAmount(), 1400, money.Zero(money.INR), 720, false, schedule, "underwriter-7", testNow)
		require.Error(t, err)
		assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
		assert.ErrorIs(t, err, valueobject.ErrStateConflict)
	})
}

func TestLoan_ConfirmDisbursement(t *testing.T) {
	loan := newApprovedLoan(t)

	disbursedAt := testNow.AddDate(0, 0, 10)
	loan, err := loan.ConfirmDisbursement(disbursedAt)
	require.NoError(t, err)

	assert.True(t, loan.Status().Equal(valueobject.LoanStatusDisbursed))
	require.NotNil(t, loan.DisbursedAt())
	assert.Equal(t, disbursedAt, *loan.DisbursedAt())

	// Due dates rebase on the actual transfer date.
	assert.Equal(t, disbursedAt.AddDate(0, 1, 0), loan.Schedule()[0].DueDate)

	active, err := loan.Activate(disbursedAt)
	require.NoError(t, err)
	assert.True(t, active.Status().Equal(valueobject.LoanStatusActive))
}

func TestLoan_ApplyPayment(t *testing.T) {
	loan := newActiveLoan(t)
	first := loan.Schedule()[0]
	installment := money.New(first.Total, money.INR)

	paid, err := loan.ApplyPayment(1, installment, testNow.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, paid.Schedule()[0].Status.Equal(valueobject.ScheduleEntryStatusPaid))
	assert.NotNil(t, paid.Schedule()[0].PaidAt)
	assert.True(t, paid.Status().Equal(valueobject.LoanStatusActive))
	assert.True(t, paid.Outstanding().Amount().LessThan(loan.Outstanding().Amount()))

	t.Run("amount must match installment total", func(t *testing.T) {
		short := money.FromMinorUnits(100, money.INR)
		_, err := loan.ApplyPayment(1, short, testNow)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})

	t.Run("unknown sequence is rejected", func(t *testing.T) {
		_, err := loan.ApplyPayment(99, installment, testNow)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})

	t.Run("double payment is a state conflict", func(t *testing.T) {
		_, err := paid.ApplyPayment(1, installment, testNow)
		assert.ErrorIs(t, err, valueobject.ErrStateConflict)
	})

	t.Run("final payment completes the loan", func(t *testing.T) {
		current := loan
		for _, e := range loan.Schedule() {
			var err error
			current, err = current.ApplyPayment(e.Sequence, money.New(e.Total, money.INR), testNow.AddDate(0, e.Sequence, 0))
			require.NoError(t, err)
		}
		assert.True(t, current.Status().Equal(valueobject.LoanStatusCompleted))
		assert.True(t, current.Outstanding().IsZero())
	})
}

func TestLoan_DelinquencyTransitions(t *testing.T) {
	loan := newActiveLoan(t)

	overdue, err := loan.MarkOverdue("bucket DPD_1_30 at 5 DPD", testNow.AddDate(0, 2, 0))
	require.NoError(t, err)
	assert.True(t, overdue.Status().Equal(valueobject.LoanStatusOverdue))

	npa, err := overdue.MarkNonPerforming("bucket NPA at 200 DPD", testNow.AddDate(0, 8, 0))
	require.NoError(t, err)
	assert.True(t, npa.Status().Equal(valueobject.LoanStatusNPA))

	cured, err := npa.Cure(testNow.AddDate(0, 9, 0))
	require.NoError(t, err)
	assert.True(t, cured.Status().Equal(valueobject.LoanStatusActive))

	written, err := npa.WriteOff("credit-committee", "unrecoverable", testNow.AddDate(0, 12, 0))
	require.NoError(t, err)
	assert.True(t, written.Status().Equal(valueobject.LoanStatusWrittenOff))

	t.Run("active loan cannot be written off directly", func(t *testing.T) {
		_, err := loan.WriteOff("credit-committee", "x", testNow)
		assert.ErrorIs(t, err, valueobject.ErrStateConflict)
	})
}

func TestLoan_MarkEntriesOverdue(t *testing.T) {
	loan := newActiveLoan(t)
	asOf := testNow.AddDate(0, 2, 5)

	marked := loan.MarkEntriesOverdue(asOf)
	assert.True(t, marked.Schedule()[0].Status.Equal(valueobject.ScheduleEntryStatusOverdue))
	assert.True(t, marked.Schedule()[1].Status.Equal(valueobject.ScheduleEntryStatusOverdue))
	assert.True(t, marked.Schedule()[2].Status.Equal(valueobject.ScheduleEntryStatusPending))

	// Idempotent.
	again := marked.MarkEntriesOverdue(asOf)
	assert.Equal(t, marked.Schedule(), again.Schedule())
}

func TestLoan_HistoryIsAppendOnly(t *testing.T) {
	loan := newActiveLoan(t)

	history := loan.History()
	require.Len(t, history, 4, "draft->pending->approved->disbursed->active")
	assert.True(t, history[0].From.Equal(valueobject.LoanStatusDraft))
	assert.True(t, history[len(history)-1].To.Equal(valueobject.LoanStatusActive))

	// Mutating the returned slice must not touch the aggregate.
	history[0].Actor = "tampered"
	assert.NotEqual(t, "tampered", loan.History()[0].Actor)
}

func TestLoan_EarliestUnpaidDue(t *testing.T) {
	loan := newActiveLoan(t)

	due, ok := loan.EarliestUnpaidDue()
	require.True(t, ok)
	assert.Equal(t, loan.Schedule()[0].DueDate, due)

	paid := loan
	for _, e := range loan.Schedule() {
		var err error
		paid, err = paid.ApplyPayment(e.Sequence, money.New(e.Total, money.INR), testNow)
		require.NoError(t, err)
	}
	_, ok = paid.EarliestUnpaidDue()
	assert.False(t, ok)
}
