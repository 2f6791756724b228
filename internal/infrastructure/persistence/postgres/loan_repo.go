package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
	pkgpostgres "github.com/finbank/lending-core/pkg/postgres"
)

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	pool *pgxpool.Pool
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

// Save persists a loan with its schedule and lifecycle history in one
// transaction. Updates are guarded by the version column; a concurrent
// writer that got there first turns this into a state conflict.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	return pkgpostgres.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return r.saveInTx(ctx, tx, loan)
	})
}

func (r *LoanRepo) saveInTx(ctx context.Context, tx pgx.Tx, loan model.Loan) error {
	loanQuery := `
		INSERT INTO loans (
			id, applicant_id, loan_type, purpose,
			requested_amount, approved_amount, currency,
			interest_rate_bps, term_months, processing_fee,
			status, score_at_approval, auto_approved, disbursed_at,
			schedule_version, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (id) DO UPDATE SET
			approved_amount   = EXCLUDED.approved_amount,
			interest_rate_bps = EXCLUDED.interest_rate_bps,
			processing_fee    = EXCLUDED.processing_fee,
			status            = EXCLUDED.status,
			score_at_approval = EXCLUDED.score_at_approval,
			auto_approved     = EXCLUDED.auto_approved,
			disbursed_at      = EXCLUDED.disbursed_at,
			schedule_version  = EXCLUDED.schedule_version,
			version           = loans.version + 1,
			updated_at        = EXCLUDED.updated_at
		WHERE loans.version = $16
	`
	tag, err := tx.Exec(ctx, loanQuery,
		loan.ID(), loan.ApplicantID(), loan.LoanType().String(), loan.Purpose(),
		loan.RequestedAmount().Amount(), loan.ApprovedAmount().Amount(),
		loan.RequestedAmount().Currency().Code(),
		loan.InterestRateBps(), loan.TermMonths(), loan.ProcessingFee().Amount(),
		loan.Status().String(), loan.ScoreAtApproval(), loan.AutoApproved(), loan.DisbursedAt(),
		loan.ScheduleVersion(), loan.Version(), loan.CreatedAt(), loan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: loan %s was modified concurrently", valueobject.ErrStateConflict, loan.ID())
	}

	for _, entry := range loan.Schedule() {
		entryQuery := `
			INSERT INTO schedule_entries (
				loan_id, schedule_version, sequence,
				due_date, principal, interest, total, status, paid_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (loan_id, schedule_version, sequence) DO UPDATE SET
				due_date = EXCLUDED.due_date,
				status   = EXCLUDED.status,
				paid_at  = EXCLUDED.paid_at
		`
		_, err := tx.Exec(ctx, entryQuery,
			loan.ID(), loan.ScheduleVersion(), entry.Sequence,
			entry.DueDate, entry.Principal, entry.Interest, entry.Total,
			entry.Status.String(), entry.PaidAt,
		)
		if err != nil {
			return fmt.Errorf("save schedule entry %d: %w", entry.Sequence, err)
		}
	}

	for i, h := range loan.History() {
		historyQuery := `
			INSERT INTO loan_status_history (
				loan_id, position, from_status, to_status, actor, reason, occurred_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (loan_id, position) DO NOTHING
		`
		_, err := tx.Exec(ctx, historyQuery,
			loan.ID(), i, h.From.String(), h.To.String(), h.Actor, h.Reason, h.At,
		)
		if err != nil {
			return fmt.Errorf("save status history %d: %w", i, err)
		}
	}

	return nil
}

// FindByID retrieves a loan with its schedule and history.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	query := selectLoans + ` WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	header, err := scanLoanRow(row)
	if err != nil {
		return model.Loan{}, notFound(err, fmt.Sprintf("loan %s", id))
	}
	return r.hydrate(ctx, header)
}

// FindByApplicantID retrieves all loans for an applicant, newest first.
func (r *LoanRepo) FindByApplicantID(ctx context.Context, applicantID string) ([]model.Loan, error) {
	query := selectLoans + ` WHERE applicant_id = $1 ORDER BY created_at DESC`
	return r.queryLoans(ctx, query, applicantID)
}

// FindByStatuses retrieves all loans in any of the given statuses.
func (r *LoanRepo) FindByStatuses(ctx context.Context, statuses []valueobject.LoanStatus) ([]model.Loan, error) {
	raw := make([]string, 0, len(statuses))
	for _, s := range statuses {
		raw = append(raw, s.String())
	}
	query := selectLoans + ` WHERE status = ANY($1) ORDER BY created_at`
	return r.queryLoans(ctx, query, raw)
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

const selectLoans = `
	SELECT id, applicant_id, loan_type, purpose,
	       requested_amount, approved_amount, currency,
	       interest_rate_bps, term_months, processing_fee,
	       status, score_at_approval, auto_approved, disbursed_at,
	       schedule_version, version, created_at, updated_at
	FROM loans`

// loanHeader holds a scanned loan row before schedule and history are
// attached.
type loanHeader struct {
	id, applicantID, purpose       string
	loanType                       valueobject.LoanType
	requested, approved, fee       money.Money
	interestRateBps, termMonths    int
	status                         valueobject.LoanStatus
	scoreAtApproval                int
	autoApproved                   bool
	disbursedAt                    *time.Time
	scheduleVersion, version       int
	createdAt, updatedAt           time.Time
}

func (r *LoanRepo) queryLoans(ctx context.Context, query string, args ...any) ([]model.Loan, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var headers []loanHeader
	for rows.Next() {
		h, err := scanLoanRow(rows)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	loans := make([]model.Loan, 0, len(headers))
	for _, h := range headers {
		loan, err := r.hydrate(ctx, h)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

func scanLoanRow(s scannable) (loanHeader, error) {
	var (
		h                               loanHeader
		loanTypeStr, currencyStr        string
		requested, approved, fee        decimal.Decimal
		statusStr                       string
	)
	err := s.Scan(
		&h.id, &h.applicantID, &loanTypeStr, &h.purpose,
		&requested, &approved, &currencyStr,
		&h.interestRateBps, &h.termMonths, &fee,
		&statusStr, &h.scoreAtApproval, &h.autoApproved, &h.disbursedAt,
		&h.scheduleVersion, &h.version, &h.createdAt, &h.updatedAt,
	)
	if err != nil {
		return loanHeader{}, err
	}

	h.loanType, err = valueobject.NewLoanType(loanTypeStr)
	if err != nil {
		return loanHeader{}, fmt.Errorf("parse loan type: %w", err)
	}
	h.status, err = valueobject.NewLoanStatus(statusStr)
	if err != nil {
		return loanHeader{}, fmt.Errorf("parse loan status: %w", err)
	}
	currency, err := money.NewCurrency(currencyStr)
	if err != nil {
		return loanHeader{}, fmt.Errorf("parse currency: %w", err)
	}
	h.requested = money.New(requested, currency)
	h.approved = money.New(approved, currency)
	h.fee = money.New(fee, currency)
	return h, nil
}

func (r *LoanRepo) hydrate(ctx context.Context, h loanHeader) (model.Loan, error) {
	schedule, err := r.loadSchedule(ctx, h.id, h.scheduleVersion)
	if err != nil {
		return model.Loan{}, err
	}
	history, err := r.loadHistory(ctx, h.id)
	if err != nil {
		return model.Loan{}, err
	}
	return model.ReconstructLoan(
		h.id, h.applicantID, h.loanType, h.purpose,
		h.requested, h.approved, h.interestRateBps, h.termMonths, h.fee,
		h.status, h.scoreAtApproval, h.autoApproved, h.disbursedAt,
		schedule, h.scheduleVersion, history,
		h.version, h.createdAt, h.updatedAt,
	), nil
}

func (r *LoanRepo) loadSchedule(ctx context.Context, loanID string, scheduleVersion int) ([]model.ScheduleEntry, error) {
	query := `
		SELECT sequence, due_date, principal, interest, total, status, paid_at
		FROM schedule_entries
		WHERE loan_id = $1 AND schedule_version = $2
		ORDER BY sequence
	`
	rows, err := r.pool.Query(ctx, query, loanID, scheduleVersion)
	if err != nil {
		return nil, fmt.Errorf("query schedule: %w", err)
	}
	defer rows.Close()

	var schedule []model.ScheduleEntry
	for rows.Next() {
		var (
			e         model.ScheduleEntry
			statusStr string
		)
		if err := rows.Scan(&e.Sequence, &e.DueDate, &e.Principal, &e.Interest, &e.Total, &statusStr, &e.PaidAt); err != nil {
			return nil, fmt.Errorf("scan schedule entry: %w", err)
		}
		e.Status, err = valueobject.NewScheduleEntryStatus(statusStr)
		if err != nil {
			return nil, fmt.Errorf("parse entry status: %w", err)
		}
		schedule = append(schedule, e)
	}
	return schedule, rows.Err()
}

func (r *LoanRepo) loadHistory(ctx context.Context, loanID string) ([]model.StatusTransition, error) {
	query := `
		SELECT from_status, to_status, actor, reason, occurred_at
		FROM loan_status_history
		WHERE loan_id = $1
		ORDER BY position
	`
	rows, err := r.pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	defer rows.Close()

	var history []model.StatusTransition
	for rows.Next() {
		var (
			t                  model.StatusTransition
			fromStr, toStr     string
		)
		if err := rows.Scan(&fromStr, &toStr, &t.Actor, &t.Reason, &t.At); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		t.From, err = valueobject.NewLoanStatus(fromStr)
		if err != nil {
			return nil, fmt.Errorf("parse history status: %w", err)
		}
		t.To, err = valueobject.NewLoanStatus(toStr)
		if err != nil {
			return nil, fmt.Errorf("parse history status: %w", err)
		}
		history = append(history, t)
	}
	return history, rows.Err()
}
