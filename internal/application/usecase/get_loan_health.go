package usecase

import (
	"context"
	"fmt"

	"github.com/finbank/lending-core/internal/application/dto"
	"github.com/finbank/lending-core/internal/domain/port"
	"github.com/finbank/lending-core/internal/domain/service"
)

// GetLoanHealthUseCase is the read-only projection behind dashboards and
// notification triggers. Classification runs on the fly; nothing is
// persisted.
type GetLoanHealthUseCase struct {
	loanRepo   port.LoanRepository
	classifier *service.DelinquencyClassifier
}

// NewGetLoanHealthUseCase wires dependencies.
func NewGetLoanHealthUseCase(
	loanRepo port.LoanRepository,
	classifier *service.DelinquencyClassifier,
) *GetLoanHealthUseCase {
	return &GetLoanHealthUseCase{loanRepo: loanRepo, classifier: classifier}
}

// Execute computes the loan's health as of the requested date.
func (uc *GetLoanHealthUseCase) Execute(
	ctx context.Context,
	req dto.GetLoanHealthRequest,
) (dto.LoanHealthResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanHealthResponse{}, fmt.Errorf("find loan: %w", err)
	}

	asOf := req.AsOfDate.UTC()
	projected := loan.MarkEntriesOverdue(asOf)
	record := uc.classifier.Classify(projected, asOf)

	resp := dto.LoanHealthResponse{
		LoanID:      loan.ID(),
		Status:      loan.Status().String(),
		Bucket:      record.Bucket.String(),
		DaysPastDue: record.DaysPastDue,
		Outstanding: record.Outstanding.Amount(),
	}
	if due, ok := projected.EarliestUnpaidDue(); ok {
		resp.NextDueDate = &due
	}
	return resp, nil
}
