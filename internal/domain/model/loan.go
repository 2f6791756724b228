package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbank/lending-core/internal/domain/event"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// StatusTransition is one row of the append-only lifecycle history.
type StatusTransition struct {
	From   valueobject.LoanStatus
	To     valueobject.LoanStatus
	Actor  string
	Reason string
	At     time.Time
}

// Loan is an immutable aggregate. Mutations return a new copy; the status
// field only ever changes through the guarded transition methods below, each
// of which appends to the history.
type Loan struct {
	id              string
	applicantID     string
	loanType        valueobject.LoanType
	purpose         string
	requestedAmount money.Money
	approvedAmount  money.Money
	interestRateBps int
	termMonths      int
	processingFee   money.Money
	status          valueobject.LoanStatus
	scoreAtApproval int
	autoApproved    bool
	disbursedAt     *time.Time
	schedule        []ScheduleEntry
	scheduleVersion int
	history         []StatusTransition
	version         int
	createdAt       time.Time
	updatedAt       time.Time
	domainEvents    []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan creates a loan in DRAFT. Submission to the book is a separate
// transition so the creation path and the state machine stay uniform.
func NewLoan(
	applicantID string,
	loanType valueobject.LoanType,
	purpose string,
	requestedAmount money.Money,
	termMonths int,
	now time.Time,
) (Loan, error) {
	if applicantID == "" {
		return Loan{}, fmt.Errorf("%w: applicant ID is required", valueobject.ErrValidation)
	}
	if loanType.IsZero() {
		return Loan{}, fmt.Errorf("%w: loan type is required", valueobject.ErrValidation)
	}
	if !requestedAmount.IsPositive() {
		return Loan{}, fmt.Errorf("%w: requested amount must be positive", valueobject.ErrValidation)
	}
	if termMonths <= 0 {
		return Loan{}, fmt.Errorf("%w: term months must be positive", valueobject.ErrValidation)
	}

	return Loan{
		id:              uuid.New().String(),
		applicantID:     applicantID,
		loanType:        loanType,
		purpose:         purpose,
		requestedAmount: requestedAmount,
		approvedAmount:  money.Zero(requestedAmount.Currency()),
		processingFee:   money.Zero(requestedAmount.Currency()),
		termMonths:      termMonths,
		status:          valueobject.LoanStatusDraft,
		scheduleVersion: 0,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, applicantID string,
	loanType valueobject.LoanType,
	purpose string,
	requestedAmount, approvedAmount money.Money,
	interestRateBps, termMonths int,
	processingFee money.Money,
	status valueobject.LoanStatus,
	scoreAtApproval int,
	autoApproved bool,
	disbursedAt *time.Time,
	schedule []ScheduleEntry,
	scheduleVersion int,
	history []StatusTransition,
	version int,
	createdAt, updatedAt time.Time,
) Loan {
	return Loan{
		id:              id,
		applicantID:     applicantID,
		loanType:        loanType,
		purpose:         purpose,
		requestedAmount: requestedAmount,
		approvedAmount:  approvedAmount,
		interestRateBps: interestRateBps,
		termMonths:      termMonths,
		processingFee:   processingFee,
		status:          status,
		scoreAtApproval: scoreAtApproval,
		autoApproved:    autoApproved,
		disbursedAt:     disbursedAt,
		schedule:        schedule,
		scheduleVersion: scheduleVersion,
		history:         history,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Internal transition plumbing
// ---------------------------------------------------------------------------

func (l Loan) transitionTo(
	next valueobject.LoanStatus,
	actor, reason string,
	now time.Time,
) (Loan, error) {
	if !l.status.CanTransitionTo(next) {
		return l, fmt.Errorf("%w: %s -> %s", valueobject.ErrInvalidStatusTransition, l.status, next)
	}
	out := l
	out.history = append(copyHistory(l.history), StatusTransition{
		From:   l.status,
		To:     next,
		Actor:  actor,
		Reason: reason,
		At:     now,
	})
	out.status = next
	out.updatedAt = now
	out.domainEvents = append(copyEvents(l.domainEvents),
		event.NewLoanStatusChanged(l.id, l.status.String(), next.String(), actor, reason))
	return out, nil
}

func copyHistory(in []StatusTransition) []StatusTransition {
	if in == nil {
		return nil
	}
	out := make([]StatusTransition, len(in))
	copy(out, in)
	return out
}

func copyEvents(in []event.DomainEvent) []event.DomainEvent {
	if in == nil {
		return nil
	}
	out := make([]event.DomainEvent, len(in))
	copy(out, in)
	return out
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Submit moves DRAFT -> PENDING and announces the application.
func (l Loan) Submit(now time.Time) (Loan, error) {
	next, err := l.transitionTo(valueobject.LoanStatusPending, "system", "application submitted", now)
	if err != nil {
		return l, err
	}
	next.domainEvents = append(next.domainEvents, event.NewLoanSubmitted(
		l.id, l.applicantID,
		l.requestedAmount.Amount(), l.requestedAmount.Currency().Code(),
		l.loanType.String(), l.termMonths, l.purpose,
	))
	return next, nil
}

// Approve moves PENDING -> APPROVED, recording price and score and attaching
// the repayment schedule. A loan is never APPROVED without a schedule.
func (l Loan) Approve(
	approvedAmount money.Money,
	interestRateBps int,
	processingFee money.Money,
	score int,
	autoApproved bool,
	schedule []ScheduleEntry,
	actor string,
	now time.Time,
) (Loan, error) {
	if len(schedule) == 0 {
		return l, fmt.Errorf("%w: approval requires a repayment schedule", valueobject.ErrValidation)
	}
	if !approvedAmount.IsPositive() {
		return l, fmt.Errorf("%w: approved amount must be positive", valueobject.ErrValidation)
	}
	if approvedAmount.Amount().GreaterThan(l.requestedAmount.Amount()) {
		return l, fmt.Errorf("%w: approved amount %s exceeds requested %s",
			valueobject.ErrValidation, approvedAmount, l.requestedAmount)
	}

	reason := "manual approval"
	if autoApproved {
		reason = "auto-approval gate"
	}
	next, err := l.transitionTo(valueobject.LoanStatusApproved, actor, reason, now)
	if err != nil {
		return l, err
	}
	next.approvedAmount = approvedAmount
	next.interestRateBps = interestRateBps
	next.processingFee = processingFee
	next.scoreAtApproval = score
	next.autoApproved = autoApproved
	next.schedule = copySchedule(schedule)
	next.scheduleVersion = l.scheduleVersion + 1
	next.domainEvents = append(next.domainEvents, event.NewLoanApproved(
		l.id, approvedAmount.Amount(), approvedAmount.Currency().Code(),
		interestRateBps, score, autoApproved,
	))
	return next, nil
}

// Reject moves PENDING or ON_HOLD -> REJECTED.
func (l Loan) Reject(actor, reason string, now time.Time) (Loan, error) {
	next, err := l.transitionTo(valueobject.LoanStatusRejected, actor, reason, now)
	if err != nil {
		return l, err
	}
	next.domainEvents = append(next.domainEvents, event.NewLoanRejected(l.id, reason))
	return next, nil
}

// Hold parks a PENDING application for manual underwriting.
func (l Loan) Hold(actor, reason string, now time.Time) (Loan, error) {
	return l.transitionTo(valueobject.LoanStatusOnHold, actor, reason, now)
}

// Resume returns an ON_HOLD application to PENDING.
func (l Loan) Resume(actor string, now time.Time) (Loan, error) {
	return l.transitionTo(valueobject.LoanStatusPending, actor, "resumed from hold", now)
}

// ConfirmDisbursement moves APPROVED -> DISBURSED on a confirmed funds
// transfer and rebases the schedule's due dates on the actual disbursement
// date.
func (l Loan) ConfirmDisbursement(disbursedAt time.Time) (Loan, error) {
	next, err := l.transitionTo(valueobject.LoanStatusDisbursed, "system", "funds transfer confirmed", disbursedAt)
	if err != nil {
		return l, err
	}
	t := disbursedAt
	next.disbursedAt = &t

	rebased := copySchedule(l.schedule)
	for i := range rebased {
		rebased[i].DueDate = disbursedAt.AddDate(0, rebased[i].Sequence, 0)
	}
	next.schedule = rebased

	var firstDue time.Time
	if len(rebased) > 0 {
		firstDue = rebased[0].DueDate
	}
	next.domainEvents = append(next.domainEvents, event.NewLoanDisbursed(
		l.id, l.approvedAmount.Amount(), l.approvedAmount.Currency().Code(),
		l.interestRateBps, l.termMonths, firstDue,
	))
	return next, nil
}

// Activate moves DISBURSED -> ACTIVE. Requires the schedule to exist.
func (l Loan) Activate(now time.Time) (Loan, error) {
	if len(l.schedule) == 0 {
		return l, fmt.Errorf("%w: cannot activate a loan without a schedule", valueobject.ErrStateConflict)
	}
	return l.transitionTo(valueobject.LoanStatusActive, "system", "schedule in force", now)
}

// ApplyPayment flips the schedule entry with the given sequence to PAID.
// The amount must match the installment total. When the last entry is paid
// the loan completes.
func (l Loan) ApplyPayment(sequence int, amount money.Money, paidAt time.Time) (Loan, error) {
	if !l.status.IsServicing() {
		return l, fmt.Errorf("%w: payments apply only to loans in servicing, status is %s",
			valueobject.ErrStateConflict, l.status)
	}

	idx := -1
	for i, e := range l.schedule {
		if e.Sequence == sequence {
			idx = i
			break
		}
	}
	if idx < 0 {
		return l, fmt.Errorf("%w: no schedule entry with sequence %d", valueobject.ErrValidation, sequence)
	}
	entry := l.schedule[idx]
	if !entry.Status.IsUnpaid() {
		return l, fmt.Errorf("%w: installment %d is already paid", valueobject.ErrStateConflict, sequence)
	}
	if amount.Currency() != l.requestedAmount.Currency() {
		return l, fmt.Errorf("%w: payment currency %s does not match loan currency %s",
			valueobject.ErrValidation, amount.Currency(), l.requestedAmount.Currency())
	}
	if !amount.Amount().Equal(entry.Total) {
		return l, fmt.Errorf("%w: payment %s does not match installment total %s",
			valueobject.ErrValidation, amount.Amount(), entry.Total)
	}

	next := l
	next.schedule = copySchedule(l.schedule)
	t := paidAt
	next.schedule[idx].Status = valueobject.ScheduleEntryStatusPaid
	next.schedule[idx].PaidAt = &t
	next.updatedAt = paidAt
	next.domainEvents = append(copyEvents(l.domainEvents), event.NewPaymentApplied(
		l.id, sequence, amount.Amount(), amount.Currency().Code(), next.outstandingAmount(),
	))

	if next.outstandingAmount().IsZero() {
		completed, err := next.transitionTo(valueobject.LoanStatusCompleted, "system", "all installments paid", paidAt)
		if err != nil {
			return l, err
		}
		return completed, nil
	}
	return next, nil
}

// MarkOverdue moves ACTIVE -> OVERDUE. Driven by the delinquency classifier
// only.
func (l Loan) MarkOverdue(reason string, now time.Time) (Loan, error) {
	return l.transitionTo(valueobject.LoanStatusOverdue, "valuation", reason, now)
}

// MarkNonPerforming moves OVERDUE -> NPA. Driven by the delinquency
// classifier only.
func (l Loan) MarkNonPerforming(reason string, now time.Time) (Loan, error) {
	return l.transitionTo(valueobject.LoanStatusNPA, "valuation", reason, now)
}

// Cure returns an OVERDUE or NPA loan to ACTIVE once no installment is past
// due.
func (l Loan) Cure(now time.Time) (Loan, error) {
	return l.transitionTo(valueobject.LoanStatusActive, "valuation", "overdue balance cleared", now)
}

// WriteOff moves NPA -> WRITTEN_OFF.
func (l Loan) WriteOff(actor, reason string, now time.Time) (Loan, error) {
	return l.transitionTo(valueobject.LoanStatusWrittenOff, actor, reason, now)
}

// Settle moves OVERDUE or NPA -> SETTLED on a negotiated resolution.
func (l Loan) Settle(actor, reason string, now time.Time) (Loan, error) {
	return l.transitionTo(valueobject.LoanStatusSettled, actor, reason, now)
}

// MarkEntriesOverdue flips unpaid entries with due dates on or before asOf to
// OVERDUE. Idempotent; entries already OVERDUE are left alone.
func (l Loan) MarkEntriesOverdue(asOf time.Time) Loan {
	changed := false
	sched := copySchedule(l.schedule)
	for i := range sched {
		if sched[i].Status.Equal(valueobject.ScheduleEntryStatusPending) && !sched[i].DueDate.After(asOf) {
			sched[i].Status = valueobject.ScheduleEntryStatusOverdue
			changed = true
		}
	}
	if !changed {
		return l
	}
	next := l
	next.schedule = sched
	next.updatedAt = asOf
	next.domainEvents = copyEvents(l.domainEvents)
	return next
}

// ---------------------------------------------------------------------------
// Derived views
// ---------------------------------------------------------------------------

func (l Loan) outstandingAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range l.schedule {
		sum = sum.Add(e.Outstanding())
	}
	return sum
}

// Outstanding returns the sum of unpaid installment totals.
func (l Loan) Outstanding() money.Money {
	return money.New(l.outstandingAmount(), l.requestedAmount.Currency())
}

// EarliestUnpaidDue returns the due date of the oldest unpaid installment.
// The second return is false when every installment is paid.
func (l Loan) EarliestUnpaidDue() (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, e := range l.schedule {
		if !e.Status.IsUnpaid() {
			continue
		}
		if !found || e.DueDate.Before(earliest) {
			earliest = e.DueDate
			found = true
		}
	}
	return earliest, found
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                         { return l.id }
func (l Loan) ApplicantID() string                { return l.applicantID }
func (l Loan) LoanType() valueobject.LoanType     { return l.loanType }
func (l Loan) Purpose() string                    { return l.purpose }
func (l Loan) RequestedAmount() money.Money       { return l.requestedAmount }
func (l Loan) ApprovedAmount() money.Money        { return l.approvedAmount }
func (l Loan) InterestRateBps() int               { return l.interestRateBps }
func (l Loan) TermMonths() int                    { return l.termMonths }
func (l Loan) ProcessingFee() money.Money         { return l.processingFee }
func (l Loan) Status() valueobject.LoanStatus     { return l.status }
func (l Loan) ScoreAtApproval() int               { return l.scoreAtApproval }
func (l Loan) AutoApproved() bool                 { return l.autoApproved }
func (l Loan) DisbursedAt() *time.Time            { return l.disbursedAt }
func (l Loan) ScheduleVersion() int               { return l.scheduleVersion }
func (l Loan) Version() int                       { return l.version }
func (l Loan) CreatedAt() time.Time               { return l.createdAt }
func (l Loan) UpdatedAt() time.Time               { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent  { return l.domainEvents }

// Schedule returns a defensive copy of the repayment schedule.
func (l Loan) Schedule() []ScheduleEntry {
	return copySchedule(l.schedule)
}

// History returns a defensive copy of the lifecycle history.
func (l Loan) History() []StatusTransition {
	return copyHistory(l.history)
}

// ClearEvents returns a copy with an empty event list.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}

func copySchedule(in []ScheduleEntry) []ScheduleEntry {
	if in == nil {
		return nil
	}
	out := make([]ScheduleEntry, len(in))
	copy(out, in)
	return out
}
