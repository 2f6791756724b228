package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBucketTable(t *testing.T) {
	t.Run("rejects table not starting at zero", func(t *testing.T) {
		_, err := NewBucketTable([]BucketRange{
			{Bucket: BucketDPD1To30, MinDPD: 1, MaxDPD: -1},
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects closed final range", func(t *testing.T) {
		_, err := NewBucketTable([]BucketRange{
			{Bucket: BucketCurrent, MinDPD: 0, MaxDPD: 30},
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects gap", func(t *testing.T) {
		_, err := NewBucketTable([]BucketRange{
			{Bucket: BucketCurrent, MinDPD: 0, MaxDPD: 0},
			{Bucket: BucketDPD1To30, MinDPD: 2, MaxDPD: -1},
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects range with no bucket", func(t *testing.T) {
		_, err := NewBucketTable([]BucketRange{
			{MinDPD: 0, MaxDPD: -1},
		})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestBucketTable_Classify(t *testing.T) {
	table := DefaultBucketTable()

	tests := []struct {
		dpd  int
		want DelinquencyBucket
	}{
		{0, BucketCurrent},
		{1, BucketDPD1To30},
		{30, BucketDPD1To30},
		{31, BucketDPD31To60},
		{45, BucketDPD31To60},
		{60, BucketDPD31To60},
		{61, BucketDPD61To90},
		{90, BucketDPD61To90},
		{91, BucketDPD91To180},
		{180, BucketDPD91To180},
		{181, BucketNPA},
		{5_000, BucketNPA},
	}
	for _, tt := range tests {
		got := table.Classify(tt.dpd)
		assert.True(t, got.Equal(tt.want), "dpd %d: got %s, want %s", tt.dpd, got, tt.want)
	}

	// Negative DPD clamps to the first range.
	assert.True(t, table.Classify(-1).Equal(BucketCurrent))
}

func TestDelinquencyBucket_IsPastDue(t *testing.T) {
	assert.False(t, BucketCurrent.IsPastDue())
	for _, b := range []DelinquencyBucket{BucketDPD1To30, BucketDPD31To60, BucketDPD61To90, BucketDPD91To180, BucketNPA} {
		assert.True(t, b.IsPastDue(), "%s should be past due", b)
	}
}

func TestNewDelinquencyBucket(t *testing.T) {
	b, err := NewDelinquencyBucket("NPA")
	require.NoError(t, err)
	assert.True(t, b.Equal(BucketNPA))

	_, err = NewDelinquencyBucket("DPD_9000")
	assert.ErrorIs(t, err, ErrValidation)
}
