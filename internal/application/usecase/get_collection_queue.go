package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finbank/lending-core/internal/application/dto"
	"github.com/finbank/lending-core/internal/domain/port"
	"github.com/finbank/lending-core/internal/domain/service"
	"github.com/finbank/lending-core/internal/domain/valueobject"
)

// GetCollectionQueueUseCase builds the ordered work list for collectors
// from open cases and their latest delinquency records.
type GetCollectionQueueUseCase struct {
	caseRepo port.CollectionCaseRepository
	dlqRepo  port.DelinquencyRepository
	strategy *service.CollectionStrategy
	logger   *slog.Logger
}

// NewGetCollectionQueueUseCase wires dependencies.
func NewGetCollectionQueueUseCase(
	caseRepo port.CollectionCaseRepository,
	dlqRepo port.DelinquencyRepository,
	strategy *service.CollectionStrategy,
	logger *slog.Logger,
) *GetCollectionQueueUseCase {
	return &GetCollectionQueueUseCase{
		caseRepo: caseRepo,
		dlqRepo:  dlqRepo,
		strategy: strategy,
		logger:   logger,
	}
}

// Execute assembles and orders the queue, optionally filtered to one stage.
// A case without a delinquency record yet is skipped; it picks up an action
// after its first valuation cycle.
func (uc *GetCollectionQueueUseCase) Execute(
	ctx context.Context,
	req dto.GetCollectionQueueRequest,
) (dto.CollectionQueueResponse, error) {
	var stageFilter valueobject.CollectionStage
	if req.Stage != "" {
		s, err := valueobject.NewCollectionStage(req.Stage)
		if err != nil {
			return dto.CollectionQueueResponse{}, fmt.Errorf("parse stage filter: %w", err)
		}
		stageFilter = s
	}

	cases, err := uc.caseRepo.FindOpen(ctx)
	if err != nil {
		return dto.CollectionQueueResponse{}, fmt.Errorf("load open cases: %w", err)
	}

	actions := make([]service.CollectionAction, 0, len(cases))
	for _, c := range cases {
		record, err := uc.dlqRepo.FindLatestByLoanID(ctx, c.LoanID())
		if err != nil {
			if errors.Is(err, valueobject.ErrNotFound) {
				continue
			}
			return dto.CollectionQueueResponse{}, fmt.Errorf("load delinquency record: %w", err)
		}
		if !record.IsPastDue() {
			// Cured since the case was last touched; the next valuation
			// cycle will close it.
			continue
		}
		action, err := uc.strategy.Assign(record, &c)
		if err != nil {
			uc.logger.Warn("skip unassignable case", "case_id", c.ID(), "error", err)
			continue
		}
		if !stageFilter.IsZero() && !action.Stage.Equal(stageFilter) {
			continue
		}
		actions = append(actions, action)
	}

	ordered := uc.strategy.OrderQueue(actions)
	resp := dto.CollectionQueueResponse{Actions: make([]dto.CollectionActionResponse, 0, len(ordered))}
	for _, a := range ordered {
		resp.Actions = append(resp.Actions, toActionResponse(a))
	}
	return resp, nil
}
