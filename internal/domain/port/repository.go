package port

import (
	"context"
	"time"

	"github.com/finbank/lending-core/internal/domain/event"
	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanRepository persists and retrieves loans with their schedules and
// lifecycle history. Save enforces a per-loan optimistic version check and
// returns a StateConflict error when the stored version has moved on.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id string) (model.Loan, error)
	FindByApplicantID(ctx context.Context, applicantID string) ([]model.Loan, error)
	FindByStatuses(ctx context.Context, statuses []valueobject.LoanStatus) ([]model.Loan, error)
}

// DelinquencyRepository stores the per-loan delinquency time series. Upsert
// replaces the record for the same (loan, as-of date) pair so a valuation
// rerun stays idempotent.
type DelinquencyRepository interface {
	Upsert(ctx context.Context, record model.DelinquencyRecord) error
	FindByLoanID(ctx context.Context, loanID string) ([]model.DelinquencyRecord, error)
	FindByAsOfDate(ctx context.Context, asOf time.Time) ([]model.DelinquencyRecord, error)
	FindLatestByLoanID(ctx context.Context, loanID string) (model.DelinquencyRecord, error)
}

// ProvisioningRepository stores portfolio provisioning snapshots.
type ProvisioningRepository interface {
	Save(ctx context.Context, report model.ProvisioningReport) error
	FindByAsOfDate(ctx context.Context, asOf time.Time) (model.ProvisioningReport, error)
	FindLatest(ctx context.Context) (model.ProvisioningReport, error)
}

// CollectionCaseRepository persists collection cases with their activity
// logs. Save serializes writes within a case via the version column.
type CollectionCaseRepository interface {
	Save(ctx context.Context, c model.CollectionCase) error
	FindByID(ctx context.Context, id string) (model.CollectionCase, error)
	FindOpenByLoanID(ctx context.Context, loanID string) (model.CollectionCase, error)
	FindOpen(ctx context.Context) ([]model.CollectionCase, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
