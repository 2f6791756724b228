package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// BandTable – ordered integer range table
// ---------------------------------------------------------------------------
//
// Scoring deltas, tenure adjustments and score-band pricing are all "first
// matching range wins" lookups. BandTable validates ordering, gaps and
// overlaps once at construction so the engines never carry inline
// conditional chains.

// Band maps a closed integer interval onto an adjustment value. Max < 0
// marks an open-ended final band.
type Band struct {
	Min        int
	Max        int
	Adjustment int
}

// BandTable is an ordered, non-overlapping, gap-free integer range table.
type BandTable struct {
	name  string
	bands []Band
}

// NewBandTable validates contiguity and ordering. The name is used in error
// messages only.
func NewBandTable(name string, bands []Band) (BandTable, error) {
	if len(bands) == 0 {
		return BandTable{}, fmt.Errorf("%w: %s band table must not be empty", ErrValidation, name)
	}
	for i, b := range bands {
		last := i == len(bands)-1
		if last {
			if b.Max >= 0 && b.Max < b.Min {
				return BandTable{}, fmt.Errorf("%w: %s band %d has max %d below min %d", ErrValidation, name, i, b.Max, b.Min)
			}
			continue
		}
		if b.Max < 0 {
			return BandTable{}, fmt.Errorf("%w: %s band %d is open-ended but not last", ErrValidation, name, i)
		}
		if b.Max < b.Min {
			return BandTable{}, fmt.Errorf("%w: %s band %d has max %d below min %d", ErrValidation, name, i, b.Max, b.Min)
		}
		if bands[i+1].Min != b.Max+1 {
			return BandTable{}, fmt.Errorf("%w: %s band table has a gap or overlap after %d", ErrValidation, name, b.Max)
		}
	}
	out := make([]Band, len(bands))
	copy(out, bands)
	return BandTable{name: name, bands: out}, nil
}

// MustBandTable builds a table and panics on error. Intended for
// package-level defaults only.
func MustBandTable(name string, bands []Band) BandTable {
	t, err := NewBandTable(name, bands)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the adjustment for v. Values below the first band's minimum
// are an error; the table's validation guarantees everything at or above it
// matches exactly one band.
func (t BandTable) Lookup(v int) (int, error) {
	if v < t.bands[0].Min {
		return 0, fmt.Errorf("%w: value %d below %s band table minimum %d", ErrValidation, v, t.name, t.bands[0].Min)
	}
	for _, b := range t.bands {
		if b.Max < 0 || v <= b.Max {
			if v >= b.Min {
				return b.Adjustment, nil
			}
		}
	}
	// Unreachable for a validated table.
	return 0, fmt.Errorf("%w: value %d matched no %s band", ErrComputation, v, t.name)
}

// Name returns the table's diagnostic name.
func (t BandTable) Name() string { return t.name }
