package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/valueobject"
)

// ProvisioningRepo implements port.ProvisioningRepository. Bucket rows are
// stored as JSONB alongside the totals; the report is written and read as a
// whole.
type ProvisioningRepo struct {
	pool *pgxpool.Pool
}

// NewProvisioningRepo creates a new PostgreSQL-backed provisioning repository.
func NewProvisioningRepo(pool *pgxpool.Pool) *ProvisioningRepo {
	return &ProvisioningRepo{pool: pool}
}

// bucketRow is the JSONB shape of one bucket position.
type bucketRow struct {
	Bucket            string          `json:"bucket"`
	LoanCount         int             `json:"loan_count"`
	Outstanding       decimal.Decimal `json:"outstanding"`
	ProvisionRate     decimal.Decimal `json:"provision_rate"`
	RequiredProvision decimal.Decimal `json:"required_provision"`
}

// Save upserts the report for its as-of date. A valuation rerun for the same
// date replaces the earlier snapshot.
func (r *ProvisioningRepo) Save(ctx context.Context, report model.ProvisioningReport) error {
	rows := make([]bucketRow, 0, len(report.Buckets))
	for _, b := range report.Buckets {
		rows = append(rows, bucketRow{
			Bucket:            b.Bucket.String(),
			LoanCount:         b.LoanCount,
			Outstanding:       b.Outstanding,
			ProvisionRate:     b.ProvisionRate,
			RequiredProvision: b.RequiredProvision,
		})
	}
	bucketsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal buckets: %w", err)
	}

	query := `
		INSERT INTO provisioning_reports (
			id, as_of_date, currency, buckets,
			total_outstanding, total_provision, coverage_ratio, computed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (as_of_date) DO UPDATE SET
			id                = EXCLUDED.id,
			currency          = EXCLUDED.currency,
			buckets           = EXCLUDED.buckets,
			total_outstanding = EXCLUDED.total_outstanding,
			total_provision   = EXCLUDED.total_provision,
			coverage_ratio    = EXCLUDED.coverage_ratio,
			computed_at       = EXCLUDED.computed_at
	`
	_, err = r.pool.Exec(ctx, query,
		report.ID, report.AsOfDate, report.Currency, bucketsJSON,
		report.TotalOutstanding, report.TotalProvision, report.CoverageRatio, report.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("save provisioning report: %w", err)
	}
	return nil
}

// FindByAsOfDate retrieves the snapshot for one valuation date.
func (r *ProvisioningRepo) FindByAsOfDate(ctx context.Context, asOf time.Time) (model.ProvisioningReport, error) {
	query := selectReports + ` WHERE as_of_date = $1`
	row := r.pool.QueryRow(ctx, query, asOf)
	report, err := scanReport(row)
	if err != nil {
		return model.ProvisioningReport{}, notFound(err, fmt.Sprintf("provisioning report for %s", asOf.Format("2006-01-02")))
	}
	return report, nil
}

// FindLatest retrieves the most recent snapshot.
func (r *ProvisioningRepo) FindLatest(ctx context.Context) (model.ProvisioningReport, error) {
	query := selectReports + ` ORDER BY as_of_date DESC LIMIT 1`
	row := r.pool.QueryRow(ctx, query)
	report, err := scanReport(row)
	if err != nil {
		return model.ProvisioningReport{}, notFound(err, "latest provisioning report")
	}
	return report, nil
}

const selectReports = `
	SELECT id, as_of_date, currency, buckets,
	       total_outstanding, total_provision, coverage_ratio, computed_at
	FROM provisioning_reports`

func scanReport(s scannable) (model.ProvisioningReport, error) {
	var (
		report      model.ProvisioningReport
		bucketsJSON []byte
	)
	err := s.Scan(
		&report.ID, &report.AsOfDate, &report.Currency, &bucketsJSON,
		&report.TotalOutstanding, &report.TotalProvision, &report.CoverageRatio, &report.ComputedAt,
	)
	if err != nil {
		return model.ProvisioningReport{}, err
	}

	var rows []bucketRow
	if err := json.Unmarshal(bucketsJSON, &rows); err != nil {
		return model.ProvisioningReport{}, fmt.Errorf("unmarshal buckets: %w", err)
	}
	for _, row := range rows {
		bucket, err := valueobject.NewDelinquencyBucket(row.Bucket)
		if err != nil {
			return model.ProvisioningReport{}, fmt.Errorf("parse bucket: %w", err)
		}
		report.Buckets = append(report.Buckets, model.BucketProvision{
			Bucket:            bucket,
			LoanCount:         row.LoanCount,
			Outstanding:       row.Outstanding,
			ProvisionRate:     row.ProvisionRate,
			RequiredProvision: row.RequiredProvision,
		})
	}
	return report, nil
}
