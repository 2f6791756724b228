package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/valueobject"
)

// CollectionCaseRepo implements port.CollectionCaseRepository. The activity
// log is stored as JSONB; the version column serializes writers within a
// case so the log's ordering holds.
type CollectionCaseRepo struct {
	pool *pgxpool.Pool
}

// NewCollectionCaseRepo creates a new PostgreSQL-backed collection case repository.
func NewCollectionCaseRepo(pool *pgxpool.Pool) *CollectionCaseRepo {
	return &CollectionCaseRepo{pool: pool}
}

// activityRow is the JSONB shape of one activity log row.
type activityRow struct {
	At      time.Time `json:"at"`
	Stage   string    `json:"stage"`
	Channel string    `json:"channel,omitempty"`
	Note    string    `json:"note"`
}

// Save upserts a case behind the version guard.
func (r *CollectionCaseRepo) Save(ctx context.Context, c model.CollectionCase) error {
	rows := make([]activityRow, 0, len(c.Activities()))
	for _, a := range c.Activities() {
		rows = append(rows, activityRow{
			At:      a.At,
			Stage:   a.Stage.String(),
			Channel: string(a.Channel),
			Note:    a.Note,
		})
	}
	activitiesJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal activities: %w", err)
	}

	query := `
		INSERT INTO collection_cases (
			id, loan_id, stage, channel, intensity,
			last_contact_at, promise_to_pay_date, activities,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
			stage               = EXCLUDED.stage,
			channel             = EXCLUDED.channel,
			intensity           = EXCLUDED.intensity,
			last_contact_at     = EXCLUDED.last_contact_at,
			promise_to_pay_date = EXCLUDED.promise_to_pay_date,
			activities          = EXCLUDED.activities,
			version             = collection_cases.version + 1,
			updated_at          = EXCLUDED.updated_at
		WHERE collection_cases.version = $9
	`
	tag, err := r.pool.Exec(ctx, query,
		c.ID(), c.LoanID(), c.Stage().String(), string(c.Channel()), string(c.Intensity()),
		c.LastContactAt(), c.PromiseToPayDate(), activitiesJSON,
		c.Version(), c.CreatedAt(), c.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save collection case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: collection case %s was modified concurrently", valueobject.ErrStateConflict, c.ID())
	}
	return nil
}

// FindByID retrieves a case by ID.
func (r *CollectionCaseRepo) FindByID(ctx context.Context, id string) (model.CollectionCase, error) {
	query := selectCases + ` WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	c, err := scanCollectionCase(row)
	if err != nil {
		return model.CollectionCase{}, notFound(err, fmt.Sprintf("collection case %s", id))
	}
	return c, nil
}

// FindOpenByLoanID retrieves the loan's open case, if any.
func (r *CollectionCaseRepo) FindOpenByLoanID(ctx context.Context, loanID string) (model.CollectionCase, error) {
	query := selectCases + ` WHERE loan_id = $1 AND stage <> 'CLOSED' ORDER BY created_at DESC LIMIT 1`
	row := r.pool.QueryRow(ctx, query, loanID)
	c, err := scanCollectionCase(row)
	if err != nil {
		return model.CollectionCase{}, notFound(err, fmt.Sprintf("open collection case for loan %s", loanID))
	}
	return c, nil
}

// FindOpen retrieves every open case.
func (r *CollectionCaseRepo) FindOpen(ctx context.Context) ([]model.CollectionCase, error) {
	query := selectCases + ` WHERE stage <> 'CLOSED' ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query collection cases: %w", err)
	}
	defer rows.Close()

	var result []model.CollectionCase
	for rows.Next() {
		c, err := scanCollectionCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

const selectCases = `
	SELECT id, loan_id, stage, channel, intensity,
	       last_contact_at, promise_to_pay_date, activities,
	       version, created_at, updated_at
	FROM collection_cases`

func scanCollectionCase(s scannable) (model.CollectionCase, error) {
	var (
		id, loanID                      string
		stageStr, channelStr, intensity string
		lastContactAt, promiseToPay     *time.Time
		activitiesJSON                  []byte
		version                         int
		createdAt, updatedAt            time.Time
	)
	err := s.Scan(
		&id, &loanID, &stageStr, &channelStr, &intensity,
		&lastContactAt, &promiseToPay, &activitiesJSON,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.CollectionCase{}, err
	}

	stage, err := valueobject.NewCollectionStage(stageStr)
	if err != nil {
		return model.CollectionCase{}, fmt.Errorf("parse stage: %w", err)
	}

	var rows []activityRow
	if err := json.Unmarshal(activitiesJSON, &rows); err != nil {
		return model.CollectionCase{}, fmt.Errorf("unmarshal activities: %w", err)
	}
	activities := make([]model.CaseActivity, 0, len(rows))
	for _, row := range rows {
		rowStage, err := valueobject.NewCollectionStage(row.Stage)
		if err != nil {
			return model.CollectionCase{}, fmt.Errorf("parse activity stage: %w", err)
		}
		activities = append(activities, model.CaseActivity{
			At:      row.At,
			Stage:   rowStage,
			Channel: valueobject.ContactChannel(row.Channel),
			Note:    row.Note,
		})
	}

	return model.ReconstructCollectionCase(
		id, loanID, stage,
		valueobject.ContactChannel(channelStr), valueobject.ContactIntensity(intensity),
		lastContactAt, promiseToPay, activities,
		version, createdAt, updatedAt,
	), nil
}
