package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCurrency(t *testing.T) {
	t.Run("accepts valid ISO code", func(t *testing.T) {
		c, err := NewCurrency("INR")
		require.NoError(t, err)
		assert.Equal(t, "INR", c.Code())
	})

	t.Run("rejects lowercase and wrong length", func(t *testing.T) {
		for _, code := range []string{"usd", "US", "USDX", ""} {
			_, err := NewCurrency(code)
			assert.Error(t, err, "code %q should be rejected", code)
		}
	})
}

func TestMoneyMinorUnits(t *testing.T) {
	m := FromMinorUnits(1234567, INR)
	assert.Equal(t, "12345.67 INR", m.String())
	assert.Equal(t, int64(1234567), m.MinorUnits())
}

func TestMoneyArithmetic(t *testing.T) {
	a := FromMinorUnits(1050, USD)
	b := FromMinorUnits(250, USD)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1300), sum.MinorUnits())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(800), diff.MinorUnits())

	_, err = a.Add(FromMinorUnits(100, EUR))
	assert.Error(t, err, "cross-currency add must fail")
}

func TestAnnualRateToPeriodRate(t *testing.T) {
	r := AnnualRateToPeriodRate(1800, 12)
	assert.True(t, r.Equal(decimal.RequireFromString("0.015")), "1800 bps monthly should be 0.015, got %s", r)

	assert.True(t, AnnualRateToPeriodRate(0, 12).IsZero())
	assert.True(t, AnnualRateToPeriodRate(500, 0).IsZero())
}

func TestSumPreservingRounding(t *testing.T) {
	t.Run("absorbs residue into last part", func(t *testing.T) {
		third := decimal.NewFromInt(100).Div(decimal.NewFromInt(3))
		parts := []decimal.Decimal{third, third, third}

		out := SumPreservingRounding(parts, decimal.NewFromInt(100))
		require.Len(t, out, 3)

		total := decimal.Zero
		for _, p := range out {
			total = total.Add(p)
		}
		assert.True(t, total.Equal(decimal.NewFromInt(100)), "parts must sum to target, got %s", total)
		assert.True(t, out[0].Equal(decimal.RequireFromString("33.33")))
		assert.True(t, out[2].Equal(decimal.RequireFromString("33.34")))
	})

	t.Run("empty input yields nil", func(t *testing.T) {
		assert.Nil(t, SumPreservingRounding(nil, decimal.NewFromInt(10)))
	})

	t.Run("single part equals target", func(t *testing.T) {
		out := SumPreservingRounding([]decimal.Decimal{decimal.RequireFromString("9.999")}, decimal.NewFromInt(10))
		require.Len(t, out, 1)
		assert.True(t, out[0].Equal(decimal.NewFromInt(10)))
	})
}
