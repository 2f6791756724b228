package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/finbank/lending-core/internal/application/dto"
	"github.com/finbank/lending-core/internal/domain/event"
	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/port"
	"github.com/finbank/lending-core/internal/domain/service"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// RunValuationUseCase runs one portfolio valuation cycle: classify every
// serviced loan by days past due, apply the resulting lifecycle transitions
// and collection-case changes, then rebuild the provisioning report.
//
// Classification is pure and runs in parallel across loans; the reduce phase
// that writes state runs sequentially. A single loan's failure is isolated
// and reported for retry, never aborting the batch.
type RunValuationUseCase struct {
	loanRepo    port.LoanRepository
	dlqRepo     port.DelinquencyRepository
	provRepo    port.ProvisioningRepository
	caseRepo    port.CollectionCaseRepository
	publisher   port.EventPublisher
	classifier  *service.DelinquencyClassifier
	strategy    *service.CollectionStrategy
	provisioner *service.ProvisioningCalculator
	currency    money.Currency
	workers     int
	logger      *slog.Logger
}

// NewRunValuationUseCase wires dependencies. workers bounds classification
// parallelism and is clamped to at least one.
func NewRunValuationUseCase(
	loanRepo port.LoanRepository,
	dlqRepo port.DelinquencyRepository,
	provRepo port.ProvisioningRepository,
	caseRepo port.CollectionCaseRepository,
	publisher port.EventPublisher,
	classifier *service.DelinquencyClassifier,
	strategy *service.CollectionStrategy,
	provisioner *service.ProvisioningCalculator,
	currency money.Currency,
	workers int,
	logger *slog.Logger,
) *RunValuationUseCase {
	if workers < 1 {
		workers = 1
	}
	return &RunValuationUseCase{
		loanRepo:    loanRepo,
		dlqRepo:     dlqRepo,
		provRepo:    provRepo,
		caseRepo:    caseRepo,
		publisher:   publisher,
		classifier:  classifier,
		strategy:    strategy,
		provisioner: provisioner,
		currency:    currency,
		workers:     workers,
		logger:      logger,
	}
}

type valuationItem struct {
	loan   model.Loan
	record model.DelinquencyRecord
}

// Execute runs the cycle as of the given date. Cancellation is honoured
// between loans, never mid-loan; classification is idempotent so a rerun
// picks up where a cancelled batch left off.
func (uc *RunValuationUseCase) Execute(
	ctx context.Context,
	req dto.RunValuationRequest,
) (dto.RunValuationResponse, error) {
	asOf := req.AsOfDate.UTC()

	// 1. Load the serviced book.
	loans, err := uc.loanRepo.FindByStatuses(ctx, []valueobject.LoanStatus{
		valueobject.LoanStatusActive,
		valueobject.LoanStatusOverdue,
		valueobject.LoanStatusNPA,
	})
	if err != nil {
		return dto.RunValuationResponse{}, fmt.Errorf("load serviced loans: %w", err)
	}

	// 2. Classify in parallel. Loans are independent, so each worker owns a
	// disjoint set of indices and writes only its own slots.
	items, err := uc.classifyAll(ctx, loans, asOf)
	if err != nil {
		return dto.RunValuationResponse{}, err
	}

	// 3. Sequential reduce: persist records, drive transitions and cases.
	var (
		failed      []string
		transitions int
		casesOpened int
		casesClosed int
		records     []model.DelinquencyRecord
	)
	for _, item := range items {
		prev, prevErr := uc.dlqRepo.FindLatestByLoanID(ctx, item.loan.ID())
		if err := uc.dlqRepo.Upsert(ctx, item.record); err != nil {
			uc.logger.Error("persist delinquency record failed",
				"loan_id", item.loan.ID(), "error", err)
			failed = append(failed, item.loan.ID())
			continue
		}
		if prevErr == nil && !prev.Bucket.Equal(item.record.Bucket) {
			evt := event.NewLoanBucketChanged(item.loan.ID(), asOf,
				prev.Bucket.String(), item.record.Bucket.String(),
				item.record.DaysPastDue, item.record.Outstanding.Amount())
			if err := uc.publisher.Publish(ctx, evt); err != nil {
				uc.logger.Warn("publish bucket change failed", "loan_id", item.loan.ID(), "error", err)
			}
		}

		loan, moved, err := uc.applyTransitions(item.loan, item.record, asOf)
		if err != nil {
			uc.logger.Error("lifecycle transition failed",
				"loan_id", item.loan.ID(), "bucket", item.record.Bucket.String(), "error", err)
			failed = append(failed, item.loan.ID())
			continue
		}
		if err := uc.loanRepo.Save(ctx, loan); err != nil {
			uc.logger.Error("save loan failed", "loan_id", loan.ID(), "error", err)
			failed = append(failed, loan.ID())
			continue
		}
		transitions += moved

		opened, closed, err := uc.reconcileCase(ctx, loan, item.record, asOf)
		if err != nil {
			uc.logger.Error("collection case reconciliation failed",
				"loan_id", loan.ID(), "error", err)
			failed = append(failed, loan.ID())
			continue
		}
		casesOpened += opened
		casesClosed += closed

		if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
			uc.logger.Warn("publish valuation events failed", "loan_id", loan.ID(), "error", err)
		}
		records = append(records, item.record)
	}

	// 4. Rebuild the portfolio provisioning report from this cycle's
	// records.
	report, err := uc.provisioner.Compute(records, asOf, uc.currency)
	if err != nil {
		return dto.RunValuationResponse{}, fmt.Errorf("compute provisioning: %w", err)
	}
	if err := uc.provRepo.Save(ctx, report); err != nil {
		return dto.RunValuationResponse{}, fmt.Errorf("save provisioning report: %w", err)
	}

	uc.logger.Info("valuation cycle complete",
		"as_of", asOf.Format("2006-01-02"),
		"loans", len(loans),
		"transitions", transitions,
		"failed", len(failed))

	return dto.RunValuationResponse{
		AsOfDate:       report.AsOfDate,
		LoansEvaluated: len(loans),
		Transitions:    transitions,
		CasesOpened:    casesOpened,
		CasesClosed:    casesClosed,
		FailedLoanIDs:  failed,
		Report:         toReportResponse(report),
	}, nil
}

// classifyAll fans classification out over the worker pool. Each loan first
// has its past-due entries flipped, then is classified; both steps are pure
// on the aggregate copy.
func (uc *RunValuationUseCase) classifyAll(
	ctx context.Context,
	loans []model.Loan,
	asOf time.Time,
) ([]valuationItem, error) {
	items := make([]valuationItem, len(loans))
	indices := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < uc.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				loan := loans[i].MarkEntriesOverdue(asOf)
				items[i] = valuationItem{
					loan:   loan,
					record: uc.classifier.Classify(loan, asOf),
				}
			}
		}()
	}

	var cancelled error
feed:
	for i := range loans {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()

	if cancelled != nil {
		return nil, fmt.Errorf("valuation cancelled: %w", cancelled)
	}
	return items, nil
}

// applyTransitions moves the loan's lifecycle to match its bucket. The
// classifier's output is the only thing that drives ACTIVE/OVERDUE/NPA
// movement.
func (uc *RunValuationUseCase) applyTransitions(
	loan model.Loan,
	record model.DelinquencyRecord,
	asOf time.Time,
) (model.Loan, int, error) {
	moved := 0
	reason := fmt.Sprintf("bucket %s at %d DPD", record.Bucket, record.DaysPastDue)

	switch {
	case record.Bucket.Equal(valueobject.BucketNPA):
		if loan.Status().Equal(valueobject.LoanStatusActive) {
			next, err := loan.MarkOverdue(reason, asOf)
			if err != nil {
				return model.Loan{}, 0, err
			}
			loan = next
			moved++
		}
		if loan.Status().Equal(valueobject.LoanStatusOverdue) {
			next, err := loan.MarkNonPerforming(reason, asOf)
			if err != nil {
				return model.Loan{}, 0, err
			}
			loan = next
			moved++
		}
	case record.Bucket.IsPastDue():
		if loan.Status().Equal(valueobject.LoanStatusActive) {
			next, err := loan.MarkOverdue(reason, asOf)
			if err != nil {
				return model.Loan{}, 0, err
			}
			loan = next
			moved++
		}
	default:
		if loan.Status().Equal(valueobject.LoanStatusOverdue) ||
			loan.Status().Equal(valueobject.LoanStatusNPA) {
			next, err := loan.Cure(asOf)
			if err != nil {
				return model.Loan{}, 0, err
			}
			loan = next
			moved++
		}
	}
	return loan, moved, nil
}

// reconcileCase opens, escalates or closes the loan's collection case to
// match this cycle's bucket.
func (uc *RunValuationUseCase) reconcileCase(
	ctx context.Context,
	loan model.Loan,
	record model.DelinquencyRecord,
	asOf time.Time,
) (opened, closed int, err error) {
	existing, findErr := uc.caseRepo.FindOpenByLoanID(ctx, loan.ID())
	hasCase := findErr == nil
	if findErr != nil && !errors.Is(findErr, valueobject.ErrNotFound) {
		return 0, 0, fmt.Errorf("find open case: %w", findErr)
	}

	if !record.IsPastDue() {
		if !hasCase {
			return 0, 0, nil
		}
		cured, err := existing.Close("loan returned to current", asOf)
		if err != nil {
			return 0, 0, fmt.Errorf("close case: %w", err)
		}
		if err := uc.caseRepo.Save(ctx, cured); err != nil {
			return 0, 0, fmt.Errorf("save closed case: %w", err)
		}
		if err := uc.publisher.Publish(ctx, cured.DomainEvents()...); err != nil {
			uc.logger.Warn("publish case events failed", "case_id", cured.ID(), "error", err)
		}
		return 0, 1, nil
	}

	var action service.CollectionAction
	if hasCase {
		action, err = uc.strategy.Assign(record, &existing)
	} else {
		action, err = uc.strategy.Assign(record, nil)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("assign strategy: %w", err)
	}

	if !hasCase {
		c, err := model.NewCollectionCase(loan.ID(), action.Stage, action.Channel, action.Intensity, asOf)
		if err != nil {
			return 0, 0, fmt.Errorf("open case: %w", err)
		}
		if err := uc.caseRepo.Save(ctx, c); err != nil {
			return 0, 0, fmt.Errorf("save new case: %w", err)
		}
		if err := uc.publisher.Publish(ctx, c.DomainEvents()...); err != nil {
			uc.logger.Warn("publish case events failed", "case_id", c.ID(), "error", err)
		}
		return 1, 0, nil
	}

	if action.Stage.Outranks(existing.Stage()) {
		escalated, err := existing.Escalate(action.Stage, action.Channel, action.Intensity,
			fmt.Sprintf("escalated at %d DPD", record.DaysPastDue), asOf)
		if err != nil {
			return 0, 0, fmt.Errorf("escalate case: %w", err)
		}
		if err := uc.caseRepo.Save(ctx, escalated); err != nil {
			return 0, 0, fmt.Errorf("save escalated case: %w", err)
		}
		if err := uc.publisher.Publish(ctx, escalated.DomainEvents()...); err != nil {
			uc.logger.Warn("publish case events failed", "case_id", escalated.ID(), "error", err)
		}
		return 0, 0, nil
	}

	// Same stage but different tactics: retarget the contact plan without
	// escalating.
	if action.Stage.Equal(existing.Stage()) &&
		(action.Channel != existing.Channel() || action.Intensity != existing.Intensity()) {
		retargeted, err := existing.Reassign(action.Channel, action.Intensity, asOf)
		if err != nil {
			return 0, 0, fmt.Errorf("reassign case: %w", err)
		}
		if err := uc.caseRepo.Save(ctx, retargeted); err != nil {
			return 0, 0, fmt.Errorf("save reassigned case: %w", err)
		}
	}
	return 0, 0, nil
}
