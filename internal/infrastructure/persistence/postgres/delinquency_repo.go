package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// DelinquencyRepo implements port.DelinquencyRepository.
type DelinquencyRepo struct {
	pool *pgxpool.Pool
}

// NewDelinquencyRepo creates a new PostgreSQL-backed delinquency repository.
func NewDelinquencyRepo(pool *pgxpool.Pool) *DelinquencyRepo {
	return &DelinquencyRepo{pool: pool}
}

// Upsert writes one record per (loan, as-of date). A valuation rerun for the
// same date replaces that day's row, keeping the series idempotent.
func (r *DelinquencyRepo) Upsert(ctx context.Context, record model.DelinquencyRecord) error {
	query := `
		INSERT INTO delinquency_records (
			loan_id, as_of_date, days_past_due, bucket, outstanding, currency
		) VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (loan_id, as_of_date) DO UPDATE SET
			days_past_due = EXCLUDED.days_past_due,
			bucket        = EXCLUDED.bucket,
			outstanding   = EXCLUDED.outstanding,
			currency      = EXCLUDED.currency
	`
	_, err := r.pool.Exec(ctx, query,
		record.LoanID, record.AsOfDate, record.DaysPastDue,
		record.Bucket.String(), record.Outstanding.Amount(), record.Outstanding.Currency().Code(),
	)
	if err != nil {
		return fmt.Errorf("upsert delinquency record: %w", err)
	}
	return nil
}

// FindByLoanID returns a loan's full delinquency series, oldest first.
func (r *DelinquencyRepo) FindByLoanID(ctx context.Context, loanID string) ([]model.DelinquencyRecord, error) {
	query := selectRecords + ` WHERE loan_id = $1 ORDER BY as_of_date`
	return r.queryRecords(ctx, query, loanID)
}

// FindByAsOfDate returns every loan's record for one valuation date.
func (r *DelinquencyRepo) FindByAsOfDate(ctx context.Context, asOf time.Time) ([]model.DelinquencyRecord, error) {
	query := selectRecords + ` WHERE as_of_date = $1 ORDER BY loan_id`
	return r.queryRecords(ctx, query, asOf)
}

// FindLatestByLoanID returns the most recent record for a loan.
func (r *DelinquencyRepo) FindLatestByLoanID(ctx context.Context, loanID string) (model.DelinquencyRecord, error) {
	query := selectRecords + ` WHERE loan_id = $1 ORDER BY as_of_date DESC LIMIT 1`
	row := r.pool.QueryRow(ctx, query, loanID)
	record, err := scanRecord(row)
	if err != nil {
		return model.DelinquencyRecord{}, notFound(err, fmt.Sprintf("delinquency record for loan %s", loanID))
	}
	return record, nil
}

const selectRecords = `
	SELECT loan_id, as_of_date, days_past_due, bucket, outstanding, currency
	FROM delinquency_records`

func (r *DelinquencyRepo) queryRecords(ctx context.Context, query string, args ...any) ([]model.DelinquencyRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query delinquency records: %w", err)
	}
	defer rows.Close()

	var records []model.DelinquencyRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(s scannable) (model.DelinquencyRecord, error) {
	var (
		record                  model.DelinquencyRecord
		bucketStr, currencyStr  string
		outstanding             decimal.Decimal
	)
	err := s.Scan(&record.LoanID, &record.AsOfDate, &record.DaysPastDue, &bucketStr, &outstanding, &currencyStr)
	if err != nil {
		return model.DelinquencyRecord{}, err
	}

	record.Bucket, err = valueobject.NewDelinquencyBucket(bucketStr)
	if err != nil {
		return model.DelinquencyRecord{}, fmt.Errorf("parse bucket: %w", err)
	}
	currency, err := money.NewCurrency(currencyStr)
	if err != nil {
		return model.DelinquencyRecord{}, fmt.Errorf("parse currency: %w", err)
	}
	record.Outstanding = money.New(outstanding, currency)
	return record, nil
}
