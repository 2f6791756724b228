package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/finbank/lending-core/internal/application/dto"
	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/port"
	"github.com/finbank/lending-core/internal/domain/service"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// AutoApprovalPolicy is the safe zone within which an application skips
// manual underwriting.
type AutoApprovalPolicy struct {
	MinScore  int
	MaxAmount money.Money
}

// SubmitApplicationUseCase is the single entry point for new applications:
// scoring, pricing, the auto-approval gate and schedule generation run as
// one unit of work against the loan aggregate.
type SubmitApplicationUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
	scorer    *service.ScoringEngine
	pricer    *service.PricingEngine
	policy    AutoApprovalPolicy
}

// NewSubmitApplicationUseCase wires dependencies.
func NewSubmitApplicationUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	scorer *service.ScoringEngine,
	pricer *service.PricingEngine,
	policy AutoApprovalPolicy,
) *SubmitApplicationUseCase {
	return &SubmitApplicationUseCase{
		loanRepo:  loanRepo,
		publisher: publisher,
		scorer:    scorer,
		pricer:    pricer,
		policy:    policy,
	}
}

// Execute scores, prices and decides a new application. A request above the
// eligibility ceiling fails with a policy violation before any loan is
// created; a loan below the auto-approval bar is persisted PENDING for
// manual underwriting. Approval and schedule generation happen in the same
// save, so a loan is never stored APPROVED without a schedule.
func (uc *SubmitApplicationUseCase) Execute(
	ctx context.Context,
	req dto.SubmitApplicationRequest,
) (dto.SubmitApplicationResponse, error) {
	now := time.Now().UTC()

	// 1. Parse and validate the request into domain values.
	loanType, err := valueobject.NewLoanType(req.LoanType)
	if err != nil {
		return dto.SubmitApplicationResponse{}, fmt.Errorf("parse loan type: %w", err)
	}
	currency, err := money.NewCurrency(req.Currency)
	if err != nil {
		return dto.SubmitApplicationResponse{}, fmt.Errorf("%w: %s", valueobject.ErrValidation, err)
	}
	employment, err := valueobject.NewEmploymentType(req.Signals.EmploymentType)
	if err != nil {
		return dto.SubmitApplicationResponse{}, fmt.Errorf("parse employment type: %w", err)
	}
	requested := money.New(req.RequestedAmount, currency)

	signals := model.ApplicantSignals{
		ApplicantID:            req.ApplicantID,
		MonthlyIncome:          req.Signals.MonthlyIncome,
		EmploymentType:         employment,
		EmploymentTenureMonths: req.Signals.EmploymentTenureMonths,
		IdentityVerified:       req.Signals.IdentityVerified,
		AddressVerified:        req.Signals.AddressVerified,
		IncomeVerified:         req.Signals.IncomeVerified,
		AccountAgeMonths:       req.Signals.AccountAgeMonths,
		ActiveLoanCount:        req.Signals.ActiveLoanCount,
	}

	// 2. Score the applicant.
	profile, err := uc.scorer.Score(signals, now)
	if err != nil {
		return dto.SubmitApplicationResponse{}, fmt.Errorf("score applicant: %w", err)
	}

	// 3. Price the application.
	income := money.New(signals.MonthlyIncome, currency)
	quote, err := uc.pricer.Price(profile.Score(), loanType, req.TermMonths, income)
	if err != nil {
		return dto.SubmitApplicationResponse{}, fmt.Errorf("price application: %w", err)
	}

	// 4. Eligibility ceiling. Over-ceiling requests fail loudly, never
	// silently truncated.
	if err := uc.pricer.EnsureEligible(requested, quote); err != nil {
		return dto.SubmitApplicationResponse{}, err
	}

	// 5. Create and submit the loan aggregate.
	loan, err := model.NewLoan(req.ApplicantID, loanType, req.Purpose, requested, req.TermMonths, now)
	if err != nil {
		return dto.SubmitApplicationResponse{}, fmt.Errorf("create loan: %w", err)
	}
	loan, err = loan.Submit(now)
	if err != nil {
		return dto.SubmitApplicationResponse{}, fmt.Errorf("submit loan: %w", err)
	}

	// 6. Auto-approval gate. Outside the safe zone the loan stays PENDING.
	decision := "PENDING_REVIEW"
	if profile.Score() >= uc.policy.MinScore &&
		!requested.Amount().GreaterThan(uc.policy.MaxAmount.Amount()) {
		approved, err := uc.autoApprove(loan, requested, quote, profile.Score(), now)
		if err != nil {
			return dto.SubmitApplicationResponse{}, err
		}
		loan = approved
		decision = "AUTO_APPROVED"
	}

	// 7. Persist and publish.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.SubmitApplicationResponse{}, fmt.Errorf("save loan: %w", err)
	}
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.SubmitApplicationResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return dto.SubmitApplicationResponse{
		Loan:              toLoanResponse(loan),
		Score:             profile.Score(),
		Grade:             profile.Grade().String(),
		RiskLevel:         profile.RiskLevel().String(),
		InterestRateBps:   quote.InterestRateBps,
		MaxEligibleAmount: quote.MaxEligibleAmount.Amount(),
		Decision:          decision,
	}, nil
}

// autoApprove generates the schedule and approves in one step. Any failure
// leaves the PENDING aggregate untouched.
func (uc *SubmitApplicationUseCase) autoApprove(
	loan model.Loan,
	requested money.Money,
	quote service.Quote,
	score int,
	now time.Time,
) (model.Loan, error) {
	schedule, err := model.GenerateSchedule(requested.Amount(), quote.InterestRateBps, loan.TermMonths(), now)
	if err != nil {
		return model.Loan{}, fmt.Errorf("generate schedule: %w", err)
	}
	fee, err := uc.pricer.ProcessingFee(requested, loan.LoanType())
	if err != nil {
		return model.Loan{}, fmt.Errorf("compute processing fee: %w", err)
	}
	approved, err := loan.Approve(requested, quote.InterestRateBps, fee, score, true, schedule, "system", now)
	if err != nil {
		return model.Loan{}, fmt.Errorf("approve loan: %w", err)
	}
	return approved, nil
}
