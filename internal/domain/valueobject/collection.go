package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// CollectionStage – immutable value object
// ---------------------------------------------------------------------------

// CollectionStage is the escalation level of a collection case.
type CollectionStage struct {
	value string
	rank  int
}

const (
	stageSoft       = "SOFT"
	stageHard       = "HARD"
	stageLegal      = "LEGAL"
	stageSettlement = "SETTLEMENT"
	stageClosed     = "CLOSED"
)

var (
	StageSoft       = CollectionStage{value: stageSoft, rank: 1}
	StageHard       = CollectionStage{value: stageHard, rank: 2}
	StageLegal      = CollectionStage{value: stageLegal, rank: 3}
	StageSettlement = CollectionStage{value: stageSettlement, rank: 4}
	StageClosed     = CollectionStage{value: stageClosed, rank: 5}
)

var validStages = map[string]CollectionStage{
	stageSoft:       StageSoft,
	stageHard:       StageHard,
	stageLegal:      StageLegal,
	stageSettlement: StageSettlement,
	stageClosed:     StageClosed,
}

// NewCollectionStage creates a CollectionStage from a raw string.
func NewCollectionStage(s string) (CollectionStage, error) {
	v, ok := validStages[s]
	if !ok {
		return CollectionStage{}, fmt.Errorf("%w: invalid collection stage %q", ErrValidation, s)
	}
	return v, nil
}

// String returns the string representation of the stage.
func (s CollectionStage) String() string { return s.value }

// IsZero returns true if the stage has not been initialised.
func (s CollectionStage) IsZero() bool { return s.value == "" }

// Equal returns true when both stages carry the same value.
func (s CollectionStage) Equal(other CollectionStage) bool { return s.value == other.value }

// Outranks reports whether s is a later escalation level than other. A case
// only ever escalates; de-escalation means closing on cure.
func (s CollectionStage) Outranks(other CollectionStage) bool { return s.rank > other.rank }

// ---------------------------------------------------------------------------
// ContactChannel and ContactIntensity
// ---------------------------------------------------------------------------

// ContactChannel is a way of reaching the borrower.
type ContactChannel string

const (
	ChannelSMS         ContactChannel = "SMS"
	ChannelEmail       ContactChannel = "EMAIL"
	ChannelCall        ContactChannel = "CALL"
	ChannelFieldVisit  ContactChannel = "FIELD_VISIT"
	ChannelLegalNotice ContactChannel = "LEGAL_NOTICE"
)

// ContactIntensity is how aggressively a case is worked.
type ContactIntensity string

const (
	IntensityLow    ContactIntensity = "LOW"
	IntensityMedium ContactIntensity = "MEDIUM"
	IntensityHigh   ContactIntensity = "HIGH"
)
