package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbank/lending-core/internal/application/dto"
	"github.com/finbank/lending-core/internal/application/usecase"
	"github.com/finbank/lending-core/internal/domain/event"
	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/service"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// --- Mock implementations ---

type mockLoanRepository struct {
	saveFunc           func(ctx context.Context, loan model.Loan) error
	findByIDFunc       func(ctx context.Context, id string) (model.Loan, error)
	findByStatusesFunc func(ctx context.Context, statuses []valueobject.LoanStatus) ([]model.Loan, error)
	savedLoans         []model.Loan
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, loan)
	}
	m.savedLoans = append(m.savedLoans, loan)
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id string) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Loan{}, valueobject.ErrNotFound
}

func (m *mockLoanRepository) FindByApplicantID(_ context.Context, _ string) ([]model.Loan, error) {
	return nil, nil
}

func (m *mockLoanRepository) FindByStatuses(ctx context.Context, statuses []valueobject.LoanStatus) ([]model.Loan, error) {
	if m.findByStatusesFunc != nil {
		return m.findByStatusesFunc(ctx, statuses)
	}
	return nil, nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockDelinquencyRepository struct {
	upsertFunc      func(ctx context.Context, record model.DelinquencyRecord) error
	findLatestFunc  func(ctx context.Context, loanID string) (model.DelinquencyRecord, error)
	upsertedRecords []model.DelinquencyRecord
}

func (m *mockDelinquencyRepository) Upsert(ctx context.Context, record model.DelinquencyRecord) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, record)
	}
	m.upsertedRecords = append(m.upsertedRecords, record)
	return nil
}

func (m *mockDelinquencyRepository) FindByLoanID(_ context.Context, _ string) ([]model.DelinquencyRecord, error) {
	return nil, nil
}

func (m *mockDelinquencyRepository) FindByAsOfDate(_ context.Context, _ time.Time) ([]model.DelinquencyRecord, error) {
	return nil, nil
}

func (m *mockDelinquencyRepository) FindLatestByLoanID(ctx context.Context, loanID string) (model.DelinquencyRecord, error) {
	if m.findLatestFunc != nil {
		return m.findLatestFunc(ctx, loanID)
	}
	return model.DelinquencyRecord{}, valueobject.ErrNotFound
}

type mockProvisioningRepository struct {
	savedReports []model.ProvisioningReport
}

func (m *mockProvisioningRepository) Save(_ context.Context, report model.ProvisioningReport) error {
	m.savedReports = append(m.savedReports, report)
	return nil
}

func (m *mockProvisioningRepository) FindByAsOfDate(_ context.Context, _ time.Time) (model.ProvisioningReport, error) {
	return model.ProvisioningReport{}, valueobject.ErrNotFound
}

func (m *mockProvisioningRepository) FindLatest(_ context.Context) (model.ProvisioningReport, error) {
	if len(m.savedReports) == 0 {
		return model.ProvisioningReport{}, valueobject.ErrNotFound
	}
	return m.savedReports[len(m.savedReports)-1], nil
}

type mockCollectionCaseRepository struct {
	findOpenByLoanFunc func(ctx context.Context, loanID string) (model.CollectionCase, error)
	findOpenFunc       func(ctx context.Context) ([]model.CollectionCase, error)
	savedCases         []model.CollectionCase
}

func (m *mockCollectionCaseRepository) Save(_ context.Context, c model.CollectionCase) error {
	m.savedCases = append(m.savedCases, c)
	return nil
}

func (m *mockCollectionCaseRepository) FindByID(_ context.Context, _ string) (model.CollectionCase, error) {
	return model.CollectionCase{}, valueobject.ErrNotFound
}

func (m *mockCollectionCaseRepository) FindOpenByLoanID(ctx context.Context, loanID string) (model.CollectionCase, error) {
	if m.findOpenByLoanFunc != nil {
		return m.findOpenByLoanFunc(ctx, loanID)
	}
	return model.CollectionCase{}, valueobject.ErrNotFound
}

func (m *mockCollectionCaseRepository) FindOpen(ctx context.Context) ([]model.CollectionCase, error) {
	if m.findOpenFunc != nil {
		return m.findOpenFunc(ctx)
	}
	return nil, nil
}

// --- Tests ---

func defaultPolicy() usecase.AutoApprovalPolicy {
	return usecase.AutoApprovalPolicy{
		MinScore:  700,
		MaxAmount: money.New(decimal.NewFromInt(50_000), money.INR),
	}
}

func strongSignals() dto.ApplicantSignalsRequest {
	return dto.ApplicantSignalsRequest{
		MonthlyIncome:          decimal.NewFromInt(60_000),
		EmploymentType:         "SALARIED",
		EmploymentTenureMonths: 24,
		IdentityVerified:       true,
		AddressVerified:        true,
		IncomeVerified:         true,
		AccountAgeMonths:       36,
		ActiveLoanCount:        0,
	}
}

func validSubmitRequest() dto.SubmitApplicationRequest {
	return dto.SubmitApplicationRequest{
		ApplicantID:     "applicant-001",
		RequestedAmount: decimal.NewFromInt(50_000),
		Currency:        "INR",
		LoanType:        "SALARY_ADVANCE",
		TermMonths:      12,
		Purpose:         "relocation",
		Signals:         strongSignals(),
	}
}

func newSubmitUseCase(repo *mockLoanRepository, pub *mockEventPublisher) *usecase.SubmitApplicationUseCase {
	return usecase.NewSubmitApplicationUseCase(
		repo, pub,
		service.NewScoringEngine(),
		service.NewPricingEngine(),
		defaultPolicy(),
	)
}

func TestSubmitApplication_Execute(t *testing.T) {
	t.Run("strong applicant inside the safe zone is auto-approved", func(t *testing.T) {
		repo := &mockLoanRepository{}
		pub := &mockEventPublisher{}
		uc := newSubmitUseCase(repo, pub)

		resp, err := uc.Execute(context.Background(), validSubmitRequest())
		require.NoError(t, err)

		assert.Equal(t, "AUTO_APPROVED", resp.Decision)
		assert.Equal(t, "APPROVED", resp.Loan.Status)
		assert.GreaterOrEqual(t, resp.Score, 700)
		assert.Len(t, resp.Loan.Schedule, 12, "approval carries the schedule")
		assert.True(t, resp.Loan.AutoApproved)

		require.Len(t, repo.savedLoans, 1)
		saved := repo.savedLoans[0]
		assert.True(t, saved.Status().Equal(valueobject.LoanStatusApproved))
		assert.Equal(t, resp.Score, saved.ScoreAtApproval())
		assert.False(t, saved.ProcessingFee().IsZero())
		assert.NotEmpty(t, pub.publishedEvents)
	})

	t.Run("weak score stays pending for manual review", func(t *testing.T) {
		repo := &mockLoanRepository{}
		uc := newSubmitUseCase(repo, &mockEventPublisher{})

		req := validSubmitRequest()
		req.Signals = dto.ApplicantSignalsRequest{
			MonthlyIncome:          decimal.NewFromInt(30_000),
			EmploymentType:         "SALARIED",
			EmploymentTenureMonths: 6,
			AccountAgeMonths:       6,
			ActiveLoanCount:        1,
		}

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, "PENDING_REVIEW", resp.Decision)
		assert.Equal(t, "PENDING", resp.Loan.Status)
		assert.Empty(t, resp.Loan.Schedule, "no schedule before approval")
		require.Len(t, repo.savedLoans, 1)
		assert.True(t, repo.savedLoans[0].Status().Equal(valueobject.LoanStatusPending))
	})

	t.Run("amount above the safe zone stays pending even with a top score", func(t *testing.T) {
		repo := &mockLoanRepository{}
		uc := newSubmitUseCase(repo, &mockEventPublisher{})

		req := validSubmitRequest()
		req.RequestedAmount = decimal.NewFromInt(100_000)

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "PENDING_REVIEW", resp.Decision)
	})

	t.Run("request above the eligibility ceiling is a policy violation", func(t *testing.T) {
		repo := &mockLoanRepository{}
		uc := newSubmitUseCase(repo, &mockEventPublisher{})

		// Salary advance ceiling is 3x monthly income.
		req := validSubmitRequest()
		req.RequestedAmount = decimal.NewFromInt(200_000)

		_, err := uc.Execute(context.Background(), req)
		require.Error(t, err)
		assert.ErrorIs(t, err, valueobject.ErrPolicyViolation)
		assert.Contains(t, err.Error(), "max_eligible_amount")
		assert.Empty(t, repo.savedLoans, "no loan is created for an ineligible request")
	})

	t.Run("rejects unknown loan type", func(t *testing.T) {
		uc := newSubmitUseCase(&mockLoanRepository{}, &mockEventPublisher{})

		req := validSubmitRequest()
		req.LoanType = "MORTGAGE"

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})

	t.Run("rejects malformed currency", func(t *testing.T) {
		uc := newSubmitUseCase(&mockLoanRepository{}, &mockEventPublisher{})

		req := validSubmitRequest()
		req.Currency = "rupees"

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})

	t.Run("save failure propagates", func(t *testing.T) {
		repo := &mockLoanRepository{
			saveFunc: func(_ context.Context, _ model.Loan) error {
				return valueobject.ErrStateConflict
			},
		}
		uc := newSubmitUseCase(repo, &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), validSubmitRequest())
		assert.ErrorIs(t, err, valueobject.ErrStateConflict)
	})
}
