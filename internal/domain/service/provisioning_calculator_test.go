package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/service"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

func record(loanID string, bucket valueobject.DelinquencyBucket, outstanding int64) model.DelinquencyRecord {
	return model.DelinquencyRecord{
		LoanID:      loanID,
		AsOfDate:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Bucket:      bucket,
		Outstanding: money.New(decimal.NewFromInt(outstanding), money.INR),
	}
}

func newCalculator(t *testing.T) *service.ProvisioningCalculator {
	t.Helper()
	calc, err := service.NewProvisioningCalculator(valueobject.DefaultBucketTable(), service.DefaultProvisioningRates())
	require.NoError(t, err)
	return calc
}

func TestNewProvisioningCalculator(t *testing.T) {
	t.Run("requires a rate for every bucket", func(t *testing.T) {
		rates := service.DefaultProvisioningRates()
		delete(rates, valueobject.BucketNPA.String())
		_, err := service.NewProvisioningCalculator(valueobject.DefaultBucketTable(), rates)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})

	t.Run("rejects rates outside the unit interval", func(t *testing.T) {
		rates := service.DefaultProvisioningRates()
		rates[valueobject.BucketNPA.String()] = decimal.NewFromFloat(1.5)
		_, err := service.NewProvisioningCalculator(valueobject.DefaultBucketTable(), rates)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})
}

func TestProvisioningCalculator_Compute(t *testing.T) {
	calc := newCalculator(t)
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty book yields zero totals and coverage of one", func(t *testing.T) {
		report, err := calc.Compute(nil, asOf, money.INR)
		require.NoError(t, err)

		assert.True(t, report.TotalOutstanding.IsZero())
		assert.True(t, report.TotalProvision.IsZero())
		assert.True(t, report.CoverageRatio.Equal(decimal.NewFromInt(1)))
		assert.Len(t, report.Buckets, 6, "every policy bucket appears, zeros included")
		for _, b := range report.Buckets {
			assert.Zero(t, b.LoanCount)
			assert.True(t, b.Outstanding.IsZero())
		}
	})

	t.Run("provisions follow the rate schedule", func(t *testing.T) {
		records := []model.DelinquencyRecord{
			record("loan-1", valueobject.BucketCurrent, 100_000),
			record("loan-2", valueobject.BucketDPD31To60, 50_000),
			record("loan-3", valueobject.BucketNPA, 20_000),
			record("loan-4", valueobject.BucketNPA, 30_000),
		}
		report, err := calc.Compute(records, asOf, money.INR)
		require.NoError(t, err)

		assert.True(t, report.TotalOutstanding.Equal(decimal.NewFromInt(200_000)))

		current, ok := report.BucketPosition(valueobject.BucketCurrent)
		require.True(t, ok)
		assert.Equal(t, 1, current.LoanCount)
		assert.True(t, current.RequiredProvision.Equal(decimal.NewFromInt(400)), "0.4%% of 100,000")

		watch, ok := report.BucketPosition(valueobject.BucketDPD31To60)
		require.True(t, ok)
		assert.True(t, watch.RequiredProvision.Equal(decimal.NewFromInt(7_500)), "15%% of 50,000")

		npa, ok := report.BucketPosition(valueobject.BucketNPA)
		require.True(t, ok)
		assert.Equal(t, 2, npa.LoanCount)
		assert.True(t, npa.RequiredProvision.Equal(decimal.NewFromInt(50_000)), "NPA provisions in full")

		// 400 + 7500 + 50000 over NPA outstanding 50000.
		assert.True(t, report.TotalProvision.Equal(decimal.NewFromInt(57_900)))
		assert.True(t, report.CoverageRatio.Equal(decimal.RequireFromString("1.158")),
			"coverage %s", report.CoverageRatio)
	})

	t.Run("rejects mixed currencies", func(t *testing.T) {
		mixed := []model.DelinquencyRecord{
			record("loan-1", valueobject.BucketCurrent, 1_000),
			{
				LoanID:      "loan-2",
				AsOfDate:    asOf,
				Bucket:      valueobject.BucketCurrent,
				Outstanding: money.New(decimal.NewFromInt(1_000), money.USD),
			},
		}
		_, err := calc.Compute(mixed, asOf, money.INR)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})

	t.Run("rejects bucket outside the policy table", func(t *testing.T) {
		narrow := valueobject.MustBucketTable([]valueobject.BucketRange{
			{Bucket: valueobject.BucketCurrent, MinDPD: 0, MaxDPD: 0},
			{Bucket: valueobject.BucketNPA, MinDPD: 1, MaxDPD: -1},
		})
		rates := map[string]decimal.Decimal{
			valueobject.BucketCurrent.String(): decimal.RequireFromString("0.004"),
			valueobject.BucketNPA.String():     decimal.NewFromInt(1),
		}
		calc, err := service.NewProvisioningCalculator(narrow, rates)
		require.NoError(t, err)

		_, err = calc.Compute([]model.DelinquencyRecord{
			record("loan-1", valueobject.BucketDPD61To90, 1_000),
		}, asOf, money.INR)
		assert.ErrorIs(t, err, valueobject.ErrComputation)
	})
}
