package model_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// versionedLoanStore mimics the persistence guard: a save only lands when
// the writer holds the version currently on record, and a successful save
// bumps that version, the same contract the SQL upsert enforces.
type versionedLoanStore struct {
	mu   sync.Mutex
	loan model.Loan
}

func (s *versionedLoanStore) get() model.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loan
}

func (s *versionedLoanStore) put(loan model.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loan.Version() != s.loan.Version() {
		return fmt.Errorf("%w: loan %s was modified concurrently", valueobject.ErrStateConflict, loan.ID())
	}
	s.loan = model.ReconstructLoan(
		loan.ID(), loan.ApplicantID(), loan.LoanType(), loan.Purpose(),
		loan.RequestedAmount(), loan.ApprovedAmount(), loan.InterestRateBps(), loan.TermMonths(), loan.ProcessingFee(),
		loan.Status(), loan.ScoreAtApproval(), loan.AutoApproved(), loan.DisbursedAt(),
		loan.Schedule(), loan.ScheduleVersion(), loan.History(),
		loan.Version()+1, loan.CreatedAt(), loan.UpdatedAt(),
	)
	return nil
}

func TestLoan_ConcurrentApprovalHasSingleWinner(t *testing.T) {
	loan := newDraftLoan(t)
	loan, err := loan.Submit(testNow)
	require.NoError(t, err)
	store := &versionedLoanStore{loan: loan.ClearEvents()}

	schedule, err := model.GenerateSchedule(loan.RequestedAmount().Amount(), 1400, 12, testNow)
	require.NoError(t, err)
	fee := money.FromMinorUnits(50_000, money.INR)

	// Two underwriters each load the PENDING loan and race to approve it.
	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start

			snapshot := store.get()
			approved, err := snapshot.Approve(
				snapshot.RequestedAmount(), 1400, fee, 720, false,
				schedule, fmt.Sprintf("underwriter-%d", i+1), testNow,
			)
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = store.put(approved)
		}(i)
	}
	close(start)
	wg.Wait()

	// Exactly one attempt lands; the other is a state conflict, whether it
	// lost at the version check or loaded an already approved loan.
	var wins, conflicts int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, err, valueobject.ErrStateConflict)
		conflicts++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	final := store.get()
	assert.True(t, final.Status().Equal(valueobject.LoanStatusApproved))
	assert.Equal(t, 2, final.Version(), "one committed write on top of the stored version")

	approvals := 0
	for _, h := range final.History() {
		if h.To.Equal(valueobject.LoanStatusApproved) {
			approvals++
		}
	}
	assert.Equal(t, 1, approvals)
}
