package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// ScheduleEntry is one period of a repayment schedule. Principal and
// interest are held at currency scale; Total is always their sum.
type ScheduleEntry struct {
	Sequence  int
	DueDate   time.Time
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Total     decimal.Decimal
	Status    valueobject.ScheduleEntryStatus
	PaidAt    *time.Time
}

// Outstanding returns principal+interest for an unpaid entry and zero for a
// paid one.
func (e ScheduleEntry) Outstanding() decimal.Decimal {
	if e.Status.IsUnpaid() {
		return e.Total
	}
	return decimal.Zero
}

// GenerateSchedule computes a reducing-balance repayment schedule.
//
// The fixed payment uses the standard formula
//
//	emi = P * r * (1+r)^n / ((1+r)^n - 1)
//
// with r derived from annualRateBps over monthly periods. The power term is
// computed in float64, then all monetary arithmetic switches back to decimal.
// A zero rate degrades to an even principal split. The final period absorbs
// the rounding residue so the principal components sum exactly to the
// principal and the running balance reaches exactly zero.
//
// Due dates are spaced one month apart starting one month after disbursedAt.
func GenerateSchedule(
	principal decimal.Decimal,
	annualRateBps int,
	termMonths int,
	disbursedAt time.Time,
) ([]ScheduleEntry, error) {
	if termMonths <= 0 {
		return nil, fmt.Errorf("%w: term months must be positive, got %d", valueobject.ErrValidation, termMonths)
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: principal must be positive, got %s", valueobject.ErrValidation, principal)
	}
	if annualRateBps < 0 {
		return nil, fmt.Errorf("%w: annual rate must not be negative, got %d bps", valueobject.ErrValidation, annualRateBps)
	}

	periodRate := money.AnnualRateToPeriodRate(annualRateBps, 12)

	if periodRate.IsZero() {
		return zeroRateSchedule(principal, termMonths, disbursedAt)
	}

	// (1+r)^n in float64, monetary arithmetic in decimal.
	r := periodRate.InexactFloat64()
	factor := math.Pow(1+r, float64(termMonths))
	emiFloat := principal.InexactFloat64() * r * factor / (factor - 1)
	emi := money.RoundCurrency(decimal.NewFromFloat(emiFloat))

	schedule := make([]ScheduleEntry, 0, termMonths)
	balance := principal

	for seq := 1; seq <= termMonths; seq++ {
		interest := money.RoundCurrency(balance.Mul(periodRate))
		principalPart := emi.Sub(interest)

		// Final period: the remaining balance is the principal component,
		// whatever rounding left over.
		if seq == termMonths {
			principalPart = balance
		}
		if principalPart.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: non-positive principal component %s in period %d",
				valueobject.ErrComputation, principalPart, seq)
		}

		balance = balance.Sub(principalPart)

		schedule = append(schedule, ScheduleEntry{
			Sequence:  seq,
			DueDate:   disbursedAt.AddDate(0, seq, 0),
			Principal: principalPart,
			Interest:  interest,
			Total:     principalPart.Add(interest),
			Status:    valueobject.ScheduleEntryStatusPending,
		})
	}

	return schedule, nil
}

// zeroRateSchedule splits the principal evenly across the term with no
// interest, absorbing the rounding residue in the last entry.
func zeroRateSchedule(principal decimal.Decimal, termMonths int, disbursedAt time.Time) ([]ScheduleEntry, error) {
	even := principal.Div(decimal.NewFromInt(int64(termMonths)))
	parts := make([]decimal.Decimal, termMonths)
	for i := range parts {
		parts[i] = even
	}
	parts = money.SumPreservingRounding(parts, principal)

	schedule := make([]ScheduleEntry, 0, termMonths)
	for seq := 1; seq <= termMonths; seq++ {
		p := parts[seq-1]
		if p.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: non-positive principal component %s in period %d",
				valueobject.ErrComputation, p, seq)
		}
		schedule = append(schedule, ScheduleEntry{
			Sequence:  seq,
			DueDate:   disbursedAt.AddDate(0, seq, 0),
			Principal: p,
			Interest:  decimal.Zero,
			Total:     p,
			Status:    valueobject.ScheduleEntryStatusPending,
		})
	}
	return schedule, nil
}
