package valueobject

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// DelinquencyBucket – immutable value object
// ---------------------------------------------------------------------------

// DelinquencyBucket is the days-past-due classification of a loan.
type DelinquencyBucket struct {
	value string
}

const (
	bucketCurrent  = "CURRENT"
	bucketDPD1_30  = "DPD_1_30"
	bucketDPD31_60 = "DPD_31_60"
	bucketDPD61_90 = "DPD_61_90"
	bucketDPD91180 = "DPD_91_180"
	bucketNPA      = "NPA"
)

var (
	BucketCurrent    = DelinquencyBucket{value: bucketCurrent}
	BucketDPD1To30   = DelinquencyBucket{value: bucketDPD1_30}
	BucketDPD31To60  = DelinquencyBucket{value: bucketDPD31_60}
	BucketDPD61To90  = DelinquencyBucket{value: bucketDPD61_90}
	BucketDPD91To180 = DelinquencyBucket{value: bucketDPD91180}
	BucketNPA        = DelinquencyBucket{value: bucketNPA}
)

var validBuckets = map[string]DelinquencyBucket{
	bucketCurrent:  BucketCurrent,
	bucketDPD1_30:  BucketDPD1To30,
	bucketDPD31_60: BucketDPD31To60,
	bucketDPD61_90: BucketDPD61To90,
	bucketDPD91180: BucketDPD91To180,
	bucketNPA:      BucketNPA,
}

// NewDelinquencyBucket creates a DelinquencyBucket from a raw string.
func NewDelinquencyBucket(s string) (DelinquencyBucket, error) {
	v, ok := validBuckets[s]
	if !ok {
		return DelinquencyBucket{}, fmt.Errorf("%w: invalid delinquency bucket %q", ErrValidation, s)
	}
	return v, nil
}

// String returns the string representation of the bucket.
func (b DelinquencyBucket) String() string { return b.value }

// IsZero returns true if the bucket has not been initialised.
func (b DelinquencyBucket) IsZero() bool { return b.value == "" }

// Equal returns true when both buckets carry the same value.
func (b DelinquencyBucket) Equal(other DelinquencyBucket) bool { return b.value == other.value }

// IsPastDue reports whether the bucket represents any delinquency at all.
func (b DelinquencyBucket) IsPastDue() bool { return b.value != bucketCurrent && b.value != "" }

// ---------------------------------------------------------------------------
// BucketTable – ordered DPD range table
// ---------------------------------------------------------------------------

// BucketRange maps a closed DPD interval onto a bucket. MaxDPD < 0 marks an
// open-ended final range.
type BucketRange struct {
	Bucket DelinquencyBucket
	MinDPD int
	MaxDPD int
}

// BucketTable is an ordered, non-overlapping, gap-free DPD range table.
// Construct once at startup; Classify is read-only and safe for concurrent
// use.
type BucketTable struct {
	ranges []BucketRange
}

// NewBucketTable validates that the ranges start at zero, are contiguous and
// ordered, and end with an open-ended range.
func NewBucketTable(ranges []BucketRange) (BucketTable, error) {
	if len(ranges) == 0 {
		return BucketTable{}, fmt.Errorf("%w: bucket table must not be empty", ErrValidation)
	}
	if ranges[0].MinDPD != 0 {
		return BucketTable{}, fmt.Errorf("%w: bucket table must start at DPD 0, starts at %d", ErrValidation, ranges[0].MinDPD)
	}
	for i, r := range ranges {
		if r.Bucket.IsZero() {
			return BucketTable{}, fmt.Errorf("%w: bucket table range %d has no bucket", ErrValidation, i)
		}
		last := i == len(ranges)-1
		if last {
			if r.MaxDPD >= 0 {
				return BucketTable{}, fmt.Errorf("%w: final bucket range must be open-ended", ErrValidation)
			}
			continue
		}
		if r.MaxDPD < r.MinDPD {
			return BucketTable{}, fmt.Errorf("%w: bucket range %d has max %d below min %d", ErrValidation, i, r.MaxDPD, r.MinDPD)
		}
		if ranges[i+1].MinDPD != r.MaxDPD+1 {
			return BucketTable{}, fmt.Errorf("%w: bucket table has a gap or overlap after DPD %d", ErrValidation, r.MaxDPD)
		}
	}
	out := make([]BucketRange, len(ranges))
	copy(out, ranges)
	return BucketTable{ranges: out}, nil
}

// MustBucketTable builds a table and panics on error. Intended for
// package-level defaults only.
func MustBucketTable(ranges []BucketRange) BucketTable {
	t, err := NewBucketTable(ranges)
	if err != nil {
		panic(err)
	}
	return t
}

// Classify returns the bucket for a DPD value. Negative DPD classifies as the
// first range.
func (t BucketTable) Classify(dpd int) DelinquencyBucket {
	if dpd < 0 {
		dpd = 0
	}
	for _, r := range t.ranges {
		if r.MaxDPD < 0 || dpd <= r.MaxDPD {
			if dpd >= r.MinDPD {
				return r.Bucket
			}
		}
	}
	// Unreachable for a validated table.
	return t.ranges[len(t.ranges)-1].Bucket
}

// Ranges returns a defensive copy of the table's ranges.
func (t BucketTable) Ranges() []BucketRange {
	out := make([]BucketRange, len(t.ranges))
	copy(out, t.ranges)
	return out
}

// Buckets returns the buckets of the table in range order.
func (t BucketTable) Buckets() []DelinquencyBucket {
	out := make([]DelinquencyBucket, len(t.ranges))
	for i, r := range t.ranges {
		out[i] = r.Bucket
	}
	return out
}

// DefaultBucketTable is the policy table used unless configuration overrides
// it. The 91-180 band is provisioned as doubtful; NPA starts past 180 days.
func DefaultBucketTable() BucketTable {
	return MustBucketTable([]BucketRange{
		{Bucket: BucketCurrent, MinDPD: 0, MaxDPD: 0},
		{Bucket: BucketDPD1To30, MinDPD: 1, MaxDPD: 30},
		{Bucket: BucketDPD31To60, MinDPD: 31, MaxDPD: 60},
		{Bucket: BucketDPD61To90, MinDPD: 61, MaxDPD: 90},
		{Bucket: BucketDPD91To180, MinDPD: 91, MaxDPD: 180},
		{Bucket: BucketNPA, MinDPD: 181, MaxDPD: -1},
	})
}
