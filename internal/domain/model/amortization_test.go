package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/valueobject"
)

func TestGenerateSchedule(t *testing.T) {
	disbursed := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("12 month loan at 18 percent", func(t *testing.T) {
		principal := decimal.NewFromInt(100_000)
		schedule, err := model.GenerateSchedule(principal, 1800, 12, disbursed)
		require.NoError(t, err)
		require.Len(t, schedule, 12)

		// EMI for 100,000 at 1.5% monthly over 12 periods is about 9,168.
		emi := schedule[0].Total
		assert.True(t, emi.GreaterThan(decimal.NewFromInt(9_160)), "EMI %s too low", emi)
		assert.True(t, emi.LessThan(decimal.NewFromInt(9_175)), "EMI %s too high", emi)

		// Principal components reconcile exactly to the minor unit.
		sum := decimal.Zero
		for _, e := range schedule {
			sum = sum.Add(e.Principal)
			assert.True(t, e.Interest.GreaterThanOrEqual(decimal.Zero))
			assert.True(t, e.Total.Equal(e.Principal.Add(e.Interest)))
			assert.True(t, e.Status.Equal(valueobject.ScheduleEntryStatusPending))
		}
		assert.True(t, sum.Equal(principal), "principal components sum to %s, want %s", sum, principal)

		// Interest declines as the balance declines.
		for i := 1; i < len(schedule); i++ {
			assert.True(t, schedule[i].Interest.LessThanOrEqual(schedule[i-1].Interest),
				"interest should not grow, period %d", schedule[i].Sequence)
		}
	})

	t.Run("due dates are monthly from disbursement", func(t *testing.T) {
		schedule, err := model.GenerateSchedule(decimal.NewFromInt(12_000), 1200, 3, disbursed)
		require.NoError(t, err)
		require.Len(t, schedule, 3)
		assert.Equal(t, disbursed.AddDate(0, 1, 0), schedule[0].DueDate)
		assert.Equal(t, disbursed.AddDate(0, 2, 0), schedule[1].DueDate)
		assert.Equal(t, disbursed.AddDate(0, 3, 0), schedule[2].DueDate)
		assert.Equal(t, 1, schedule[0].Sequence)
		assert.Equal(t, 3, schedule[2].Sequence)
	})

	t.Run("zero rate splits principal evenly", func(t *testing.T) {
		schedule, err := model.GenerateSchedule(decimal.NewFromInt(10_000), 0, 12, disbursed)
		require.NoError(t, err)
		require.Len(t, schedule, 12)

		sum := decimal.Zero
		for _, e := range schedule {
			assert.True(t, e.Interest.IsZero())
			sum = sum.Add(e.Principal)
		}
		assert.True(t, sum.Equal(decimal.NewFromInt(10_000)))
	})

	t.Run("rounding residue lands in the final period", func(t *testing.T) {
		// 100 over 3 periods at zero rate: 33.33 + 33.33 + 33.34.
		schedule, err := model.GenerateSchedule(decimal.NewFromInt(100), 0, 3, disbursed)
		require.NoError(t, err)
		assert.True(t, schedule[0].Principal.Equal(decimal.RequireFromString("33.33")))
		assert.True(t, schedule[1].Principal.Equal(decimal.RequireFromString("33.33")))
		assert.True(t, schedule[2].Principal.Equal(decimal.RequireFromString("33.34")))
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		_, err := model.GenerateSchedule(decimal.NewFromInt(1000), 1200, 0, disbursed)
		assert.ErrorIs(t, err, valueobject.ErrValidation)

		_, err = model.GenerateSchedule(decimal.Zero, 1200, 12, disbursed)
		assert.ErrorIs(t, err, valueobject.ErrValidation)

		_, err = model.GenerateSchedule(decimal.NewFromInt(1000), -100, 12, disbursed)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})
}

func TestScheduleEntry_Outstanding(t *testing.T) {
	entry := model.ScheduleEntry{
		Sequence:  1,
		Principal: decimal.NewFromInt(900),
		Interest:  decimal.NewFromInt(100),
		Total:     decimal.NewFromInt(1000),
		Status:    valueobject.ScheduleEntryStatusPending,
	}
	assert.True(t, entry.Outstanding().Equal(decimal.NewFromInt(1000)))

	entry.Status = valueobject.ScheduleEntryStatusPaid
	assert.True(t, entry.Outstanding().IsZero())
}
