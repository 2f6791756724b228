package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// ---------------------------------------------------------------------------
// ProvisioningCalculator – portfolio reserve aggregation
// ---------------------------------------------------------------------------

// ProvisioningCalculator folds a valuation cycle's delinquency records into
// per-bucket reserves. Pure aggregation; the report is rebuilt wholesale
// each cycle.
type ProvisioningCalculator struct {
	buckets valueobject.BucketTable
	rates   map[string]decimal.Decimal
}

// DefaultProvisioningRates returns the regulatory-style rate schedule:
// standard assets 0.4%, substandard 15%, doubtful 25%, loss 100%.
func DefaultProvisioningRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		valueobject.BucketCurrent.String():    decimal.NewFromFloat(0.004),
		valueobject.BucketDPD1To30.String():   decimal.NewFromFloat(0.004),
		valueobject.BucketDPD31To60.String():  decimal.NewFromFloat(0.15),
		valueobject.BucketDPD61To90.String():  decimal.NewFromFloat(0.15),
		valueobject.BucketDPD91To180.String(): decimal.NewFromFloat(0.25),
		valueobject.BucketNPA.String():        decimal.NewFromInt(1),
	}
}

// NewProvisioningCalculator validates that every bucket in the policy table
// has a rate before first use.
func NewProvisioningCalculator(
	buckets valueobject.BucketTable,
	rates map[string]decimal.Decimal,
) (*ProvisioningCalculator, error) {
	for _, b := range buckets.Buckets() {
		r, ok := rates[b.String()]
		if !ok {
			return nil, fmt.Errorf("%w: no provisioning rate for bucket %s", valueobject.ErrValidation, b)
		}
		if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("%w: provisioning rate for bucket %s must be in [0,1], got %s",
				valueobject.ErrValidation, b, r)
		}
	}
	return &ProvisioningCalculator{buckets: buckets, rates: rates}, nil
}

// Compute aggregates one cycle's records into a report. All records must
// share the report currency. An empty book, or an empty NPA bucket, yields a
// coverage ratio of 1 rather than a division by zero.
func (c *ProvisioningCalculator) Compute(
	records []model.DelinquencyRecord,
	asOf time.Time,
	currency money.Currency,
) (model.ProvisioningReport, error) {
	type position struct {
		count       int
		outstanding decimal.Decimal
	}
	positions := make(map[string]*position)
	for _, b := range c.buckets.Buckets() {
		positions[b.String()] = &position{outstanding: decimal.Zero}
	}

	for _, r := range records {
		if r.Outstanding.Currency() != currency {
			return model.ProvisioningReport{}, fmt.Errorf(
				"%w: record for loan %s is in %s, report currency is %s",
				valueobject.ErrValidation, r.LoanID, r.Outstanding.Currency(), currency)
		}
		p, ok := positions[r.Bucket.String()]
		if !ok {
			return model.ProvisioningReport{}, fmt.Errorf(
				"%w: record for loan %s carries bucket %s outside the policy table",
				valueobject.ErrComputation, r.LoanID, r.Bucket)
		}
		p.count++
		p.outstanding = p.outstanding.Add(r.Outstanding.Amount())
	}

	rows := make([]model.BucketProvision, 0, len(positions))
	totalOutstanding := decimal.Zero
	totalProvision := decimal.Zero
	npaOutstanding := decimal.Zero

	for _, b := range c.buckets.Buckets() {
		p := positions[b.String()]
		rate := c.rates[b.String()]
		provision := money.RoundCurrency(p.outstanding.Mul(rate))

		rows = append(rows, model.BucketProvision{
			Bucket:            b,
			LoanCount:         p.count,
			Outstanding:       p.outstanding,
			ProvisionRate:     rate,
			RequiredProvision: provision,
		})
		totalOutstanding = totalOutstanding.Add(p.outstanding)
		totalProvision = totalProvision.Add(provision)
		if b.Equal(valueobject.BucketNPA) {
			npaOutstanding = p.outstanding
		}
	}

	coverage := decimal.NewFromInt(1)
	if npaOutstanding.IsPositive() {
		coverage = totalProvision.Div(npaOutstanding).Round(4)
	}

	return model.ProvisioningReport{
		ID:               uuid.New().String(),
		AsOfDate:         truncateToDate(asOf),
		Currency:         currency.Code(),
		Buckets:          rows,
		TotalOutstanding: totalOutstanding,
		TotalProvision:   totalProvision,
		CoverageRatio:    coverage,
		ComputedAt:       asOf,
	}, nil
}
