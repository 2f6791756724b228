package service

import (
	"time"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// DelinquencyClassifier – DPD bucketing
// ---------------------------------------------------------------------------

// DelinquencyClassifier buckets a loan by days past due as of a given date.
// Classification is pure and idempotent; the same loan state and as-of date
// always yield the same record.
type DelinquencyClassifier struct {
	buckets valueobject.BucketTable
}

// NewDelinquencyClassifier builds a classifier over the given bucket policy.
func NewDelinquencyClassifier(buckets valueobject.BucketTable) *DelinquencyClassifier {
	return &DelinquencyClassifier{buckets: buckets}
}

// Classify computes the loan's delinquency record as of the given date.
// DPD is the age in days of the oldest unpaid installment, floored at zero;
// a fully paid schedule classifies as CURRENT with zero outstanding.
func (c *DelinquencyClassifier) Classify(loan model.Loan, asOf time.Time) model.DelinquencyRecord {
	dpd := 0
	if due, ok := loan.EarliestUnpaidDue(); ok {
		if d := daysBetween(due, asOf); d > 0 {
			dpd = d
		}
	}
	return model.DelinquencyRecord{
		LoanID:      loan.ID(),
		AsOfDate:    truncateToDate(asOf),
		DaysPastDue: dpd,
		Bucket:      c.buckets.Classify(dpd),
		Outstanding: loan.Outstanding(),
	}
}

// Buckets exposes the policy table in force.
func (c *DelinquencyClassifier) Buckets() valueobject.BucketTable {
	return c.buckets
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	return int(truncateToDate(b).Sub(truncateToDate(a)).Hours() / 24)
}
