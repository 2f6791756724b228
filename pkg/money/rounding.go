package money

import (
	"github.com/shopspring/decimal"
)

var bpsBase = decimal.NewFromInt(10_000)

// RoundCurrency rounds a decimal amount to the minor-unit scale using
// half-up rounding. Apply only at entry boundaries, never mid-calculation.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyScale)
}

// AnnualRateToPeriodRate converts an annual interest rate expressed in basis
// points into a per-period decimal rate. 1800 bps with 12 periods per year
// yields 0.015.
func AnnualRateToPeriodRate(annualRateBps int, periodsPerYear int) decimal.Decimal {
	if periodsPerYear <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(annualRateBps)).
		Div(bpsBase).
		Div(decimal.NewFromInt(int64(periodsPerYear)))
}

// SumPreservingRounding rounds every part to the minor-unit scale and absorbs
// the rounding residue into the last part so the rounded parts sum exactly to
// target. The input slice is not modified. Returns nil for an empty input.
func SumPreservingRounding(parts []decimal.Decimal, target decimal.Decimal) []decimal.Decimal {
	if len(parts) == 0 {
		return nil
	}

	out := make([]decimal.Decimal, len(parts))
	running := decimal.Zero
	for i, p := range parts[:len(parts)-1] {
		out[i] = RoundCurrency(p)
		running = running.Add(out[i])
	}

	// Last element takes whatever is left of the target.
	out[len(parts)-1] = RoundCurrency(target).Sub(running)
	return out
}
