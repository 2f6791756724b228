package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/service"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// servicingLoan builds an ACTIVE loan disbursed at the given time.
func servicingLoan(t *testing.T, disbursedAt time.Time) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(
		"applicant-1",
		valueobject.LoanTypePersonal,
		"",
		money.FromMinorUnits(12_000_00, money.INR),
		12,
		disbursedAt,
	)
	require.NoError(t, err)
	loan, err = loan.Submit(disbursedAt)
	require.NoError(t, err)

	schedule, err := model.GenerateSchedule(loan.RequestedAmount().Amount(), 1200, 12, disbursedAt)
	require.NoError(t, err)
	loan, err = loan.Approve(loan.RequestedAmount(), 1200, money.Zero(money.INR), 700, true, schedule, "system", disbursedAt)
	require.NoError(t, err)
	loan, err = loan.ConfirmDisbursement(disbursedAt)
	require.NoError(t, err)
	loan, err = loan.Activate(disbursedAt)
	require.NoError(t, err)
	return loan
}

func TestDelinquencyClassifier_Classify(t *testing.T) {
	classifier := service.NewDelinquencyClassifier(valueobject.DefaultBucketTable())
	disbursed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	loan := servicingLoan(t, disbursed)

	t.Run("before first due date is current", func(t *testing.T) {
		record := classifier.Classify(loan, disbursed.AddDate(0, 0, 20))
		assert.Equal(t, 0, record.DaysPastDue)
		assert.True(t, record.Bucket.Equal(valueobject.BucketCurrent))
		assert.False(t, record.IsPastDue())
	})

	t.Run("45 days past the first due date", func(t *testing.T) {
		// First installment due 2026-02-01.
		asOf := time.Date(2026, 3, 18, 10, 30, 0, 0, time.UTC)
		record := classifier.Classify(loan, asOf)
		assert.Equal(t, 45, record.DaysPastDue)
		assert.True(t, record.Bucket.Equal(valueobject.BucketDPD31To60))
		assert.True(t, record.IsPastDue())
		assert.Equal(t, time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC), record.AsOfDate)
	})

	t.Run("time of day does not change the answer", func(t *testing.T) {
		morning := classifier.Classify(loan, time.Date(2026, 3, 18, 0, 0, 1, 0, time.UTC))
		night := classifier.Classify(loan, time.Date(2026, 3, 18, 23, 59, 59, 0, time.UTC))
		assert.Equal(t, morning.DaysPastDue, night.DaysPastDue)
		assert.True(t, morning.Bucket.Equal(night.Bucket))
	})

	t.Run("classification is idempotent", func(t *testing.T) {
		asOf := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
		a := classifier.Classify(loan, asOf)
		b := classifier.Classify(loan, asOf)
		assert.Equal(t, a.DaysPastDue, b.DaysPastDue)
		assert.True(t, a.Bucket.Equal(b.Bucket))
		assert.True(t, a.Outstanding.Equal(b.Outstanding))
	})

	t.Run("DPD tracks the oldest unpaid installment", func(t *testing.T) {
		// Pay the first installment; DPD now measures from the second
		// due date, 2026-03-01.
		first := loan.Schedule()[0]
		paid, err := loan.ApplyPayment(1, money.New(first.Total, money.INR), disbursed.AddDate(0, 1, 0))
		require.NoError(t, err)

		record := classifier.Classify(paid, time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, 17, record.DaysPastDue)
		assert.True(t, record.Bucket.Equal(valueobject.BucketDPD1To30))
	})

	t.Run("deep delinquency reaches NPA", func(t *testing.T) {
		record := classifier.Classify(loan, disbursed.AddDate(2, 0, 0))
		assert.True(t, record.Bucket.Equal(valueobject.BucketNPA))
	})

	t.Run("fully paid schedule is current with zero outstanding", func(t *testing.T) {
		settled := loan
		for _, e := range loan.Schedule() {
			var err error
			settled, err = settled.ApplyPayment(e.Sequence, money.New(e.Total, money.INR), disbursed.AddDate(0, e.Sequence, 0))
			require.NoError(t, err)
		}
		record := classifier.Classify(settled, disbursed.AddDate(1, 0, 0))
		assert.Equal(t, 0, record.DaysPastDue)
		assert.True(t, record.Bucket.Equal(valueobject.BucketCurrent))
		assert.True(t, record.Outstanding.IsZero())
	})
}
