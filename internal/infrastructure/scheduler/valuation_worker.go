package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/finbank/lending-core/internal/application/dto"
	"github.com/finbank/lending-core/internal/application/usecase"
)

// ValuationWorker triggers a valuation cycle on a fixed interval. One cycle
// runs at a time; a cycle that overruns the interval simply delays the next
// tick's work.
type ValuationWorker struct {
	valuation *usecase.RunValuationUseCase
	interval  time.Duration
	logger    *slog.Logger
}

// NewValuationWorker wires dependencies.
func NewValuationWorker(
	valuation *usecase.RunValuationUseCase,
	interval time.Duration,
	logger *slog.Logger,
) *ValuationWorker {
	return &ValuationWorker{
		valuation: valuation,
		interval:  interval,
		logger:    logger,
	}
}

// Run blocks until the context is cancelled. A failed cycle is logged and
// retried on the next tick; the classifier's idempotency makes reruns safe.
func (w *ValuationWorker) Run(ctx context.Context) {
	w.logger.Info("valuation worker started", "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("valuation worker stopped")
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *ValuationWorker) runCycle(ctx context.Context) {
	resp, err := w.valuation.Execute(ctx, dto.RunValuationRequest{AsOfDate: time.Now().UTC()})
	if err != nil {
		w.logger.Error("valuation cycle failed", "error", err)
		return
	}
	if len(resp.FailedLoanIDs) > 0 {
		w.logger.Warn("valuation cycle finished with failures",
			"loans", resp.LoansEvaluated,
			"failed_loan_ids", resp.FailedLoanIDs)
		return
	}
	w.logger.Info("valuation cycle finished",
		"loans", resp.LoansEvaluated,
		"transitions", resp.Transitions,
		"cases_opened", resp.CasesOpened,
		"cases_closed", resp.CasesClosed)
}
