package model

import (
	"time"

	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// DelinquencyRecord is one point in a loan's delinquency time series.
// Records are append-only across as-of dates; rerunning a valuation for the
// same date replaces that date's record rather than appending a second one.
type DelinquencyRecord struct {
	LoanID      string
	AsOfDate    time.Time
	DaysPastDue int
	Bucket      valueobject.DelinquencyBucket
	Outstanding money.Money
}

// IsPastDue reports whether the record places the loan beyond CURRENT.
func (r DelinquencyRecord) IsPastDue() bool {
	return r.Bucket.IsPastDue()
}
