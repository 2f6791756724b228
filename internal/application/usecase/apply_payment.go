package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbank/lending-core/internal/application/dto"
	"github.com/finbank/lending-core/internal/domain/port"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// ApplyPaymentUseCase flips one schedule entry to PAID on a payment event.
// Status effects of clearing overdue balances are left to the next valuation
// cycle; paying the final installment completes the loan immediately and
// ends any recovery work still open on it.
type ApplyPaymentUseCase struct {
	loanRepo  port.LoanRepository
	caseRepo  port.CollectionCaseRepository
	publisher port.EventPublisher
}

// NewApplyPaymentUseCase wires dependencies.
func NewApplyPaymentUseCase(
	loanRepo port.LoanRepository,
	caseRepo port.CollectionCaseRepository,
	publisher port.EventPublisher,
) *ApplyPaymentUseCase {
	return &ApplyPaymentUseCase{
		loanRepo:  loanRepo,
		caseRepo:  caseRepo,
		publisher: publisher,
	}
}

// Execute applies one payment-application event.
func (uc *ApplyPaymentUseCase) Execute(
	ctx context.Context,
	req dto.ApplyPaymentRequest,
) (dto.PaymentResponse, error) {
	// 1. Parse the amount.
	currency, err := money.NewCurrency(req.Currency)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("%w: %s", valueobject.ErrValidation, err)
	}
	amount := money.New(req.Amount, currency)

	// 2. Load the loan and apply the payment.
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("find loan: %w", err)
	}
	loan, err = loan.ApplyPayment(req.Sequence, amount, req.PaidAt.UTC())
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("apply payment: %w", err)
	}

	// 3. Persist and publish.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("save loan: %w", err)
	}
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("publish events: %w", err)
	}

	// 4. Terminal resolution closes the loan's open collection case, if one
	// exists, so the loan drops out of the work queue immediately.
	if loan.Status().IsTerminal() {
		if err := uc.closeOpenCase(ctx, loan.ID(), req.PaidAt.UTC()); err != nil {
			return dto.PaymentResponse{}, err
		}
	}

	return dto.PaymentResponse{
		LoanID:      loan.ID(),
		Sequence:    req.Sequence,
		AmountPaid:  amount.Amount(),
		Outstanding: loan.Outstanding().Amount(),
		LoanStatus:  loan.Status().String(),
	}, nil
}

func (uc *ApplyPaymentUseCase) closeOpenCase(ctx context.Context, loanID string, now time.Time) error {
	c, err := uc.caseRepo.FindOpenByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, valueobject.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find open case: %w", err)
	}
	closed, err := c.Close("loan fully repaid", now)
	if err != nil {
		return fmt.Errorf("close case: %w", err)
	}
	if err := uc.caseRepo.Save(ctx, closed); err != nil {
		return fmt.Errorf("save closed case: %w", err)
	}
	if err := uc.publisher.Publish(ctx, closed.DomainEvents()...); err != nil {
		return fmt.Errorf("publish case events: %w", err)
	}
	return nil
}
