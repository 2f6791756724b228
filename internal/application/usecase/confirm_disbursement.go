package usecase

import (
	"context"
	"fmt"

	"github.com/finbank/lending-core/internal/application/dto"
	"github.com/finbank/lending-core/internal/domain/port"
)

// ConfirmDisbursementUseCase applies a funds-transfer confirmation to an
// approved loan. A successful transfer moves the loan through DISBURSED into
// ACTIVE; a failed one leaves it APPROVED for a retry by the payments
// system.
type ConfirmDisbursementUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
}

// NewConfirmDisbursementUseCase wires dependencies.
func NewConfirmDisbursementUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
) *ConfirmDisbursementUseCase {
	return &ConfirmDisbursementUseCase{loanRepo: loanRepo, publisher: publisher}
}

// Execute processes one funds-transfer confirmation event.
func (uc *ConfirmDisbursementUseCase) Execute(
	ctx context.Context,
	req dto.ConfirmDisbursementRequest,
) (dto.LoanResponse, error) {
	// 1. Load the loan.
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. A failed transfer changes nothing; the loan stays APPROVED.
	if !req.Success {
		return toLoanResponse(loan), nil
	}

	// 3. Disburse and activate. Activation is immediate once the schedule
	// is in force.
	loan, err = loan.ConfirmDisbursement(req.TransferredAt.UTC())
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("confirm disbursement: %w", err)
	}
	loan, err = loan.Activate(req.TransferredAt.UTC())
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("activate loan: %w", err)
	}

	// 4. Persist and publish.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toLoanResponse(loan), nil
}
