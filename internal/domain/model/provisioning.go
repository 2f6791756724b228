package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbank/lending-core/internal/domain/valueobject"
)

// BucketProvision is the aggregate position of one delinquency bucket.
type BucketProvision struct {
	Bucket            valueobject.DelinquencyBucket
	LoanCount         int
	Outstanding       decimal.Decimal
	ProvisionRate     decimal.Decimal
	RequiredProvision decimal.Decimal
}

// ProvisioningReport is a portfolio-level snapshot derived wholly from one
// valuation cycle's delinquency records. It is recomputed from scratch each
// cycle, never patched.
type ProvisioningReport struct {
	ID               string
	AsOfDate         time.Time
	Currency         string
	Buckets          []BucketProvision
	TotalOutstanding decimal.Decimal
	TotalProvision   decimal.Decimal
	CoverageRatio    decimal.Decimal
	ComputedAt       time.Time
}

// BucketPosition returns the report row for the given bucket; the second
// return is false when the bucket carried no loans.
func (r ProvisioningReport) BucketPosition(b valueobject.DelinquencyBucket) (BucketProvision, bool) {
	for _, bp := range r.Buckets {
		if bp.Bucket.Equal(b) {
			return bp, true
		}
	}
	return BucketProvision{}, false
}
