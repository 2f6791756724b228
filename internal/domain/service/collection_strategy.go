package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/finbank/lending-core/internal/domain/model"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/money"
)

// ---------------------------------------------------------------------------
// CollectionStrategy – next-action policy for past-due loans
// ---------------------------------------------------------------------------

// CollectionAction is one row of a collector's work queue.
type CollectionAction struct {
	LoanID        string
	CaseID        string
	Stage         valueobject.CollectionStage
	Channel       valueobject.ContactChannel
	Intensity     valueobject.ContactIntensity
	DaysPastDue   int
	Outstanding   money.Money
	LastContactAt *time.Time
}

// channelPlan is the outreach configuration for one stage.
type channelPlan struct {
	channel   valueobject.ContactChannel
	intensity valueobject.ContactIntensity
}

// CollectionStrategy maps delinquency buckets onto collection stages and
// stages onto outreach plans. The policy is static and validated once.
type CollectionStrategy struct {
	stageByBucket map[string]valueobject.CollectionStage
	playbook      map[string]channelPlan
}

// NewCollectionStrategy returns the default escalation policy.
func NewCollectionStrategy() *CollectionStrategy {
	return &CollectionStrategy{
		stageByBucket: map[string]valueobject.CollectionStage{
			valueobject.BucketDPD1To30.String():   valueobject.StageSoft,
			valueobject.BucketDPD31To60.String():  valueobject.StageHard,
			valueobject.BucketDPD61To90.String():  valueobject.StageHard,
			valueobject.BucketDPD91To180.String(): valueobject.StageLegal,
			valueobject.BucketNPA.String():        valueobject.StageSettlement,
		},
		playbook: map[string]channelPlan{
			valueobject.StageSoft.String():       {channel: valueobject.ChannelSMS, intensity: valueobject.IntensityLow},
			valueobject.StageHard.String():       {channel: valueobject.ChannelCall, intensity: valueobject.IntensityMedium},
			valueobject.StageLegal.String():      {channel: valueobject.ChannelLegalNotice, intensity: valueobject.IntensityHigh},
			valueobject.StageSettlement.String(): {channel: valueobject.ChannelFieldVisit, intensity: valueobject.IntensityHigh},
		},
	}
}

// Assign derives the next collection action for a past-due loan. The
// existing case, when present, contributes its identity and contact history;
// a case never de-escalates, so an existing stage that already outranks the
// bucket's stage is kept.
func (s *CollectionStrategy) Assign(
	record model.DelinquencyRecord,
	existing *model.CollectionCase,
) (CollectionAction, error) {
	stage, ok := s.stageByBucket[record.Bucket.String()]
	if !ok {
		return CollectionAction{}, fmt.Errorf("%w: no collection stage for bucket %s",
			valueobject.ErrValidation, record.Bucket)
	}

	action := CollectionAction{
		LoanID:      record.LoanID,
		Stage:       stage,
		DaysPastDue: record.DaysPastDue,
		Outstanding: record.Outstanding,
	}
	if existing != nil && !existing.IsClosed() {
		action.CaseID = existing.ID()
		action.LastContactAt = existing.LastContactAt()
		if existing.Stage().Outranks(stage) {
			action.Stage = existing.Stage()
		}
	}

	plan, ok := s.playbook[action.Stage.String()]
	if !ok {
		return CollectionAction{}, fmt.Errorf("%w: no outreach plan for stage %s",
			valueobject.ErrComputation, action.Stage)
	}
	action.Channel = plan.channel
	action.Intensity = plan.intensity
	return action, nil
}

// StageForBucket exposes the bucket-to-stage mapping; the second return is
// false for buckets with no collection work (CURRENT).
func (s *CollectionStrategy) StageForBucket(b valueobject.DelinquencyBucket) (valueobject.CollectionStage, bool) {
	stage, ok := s.stageByBucket[b.String()]
	return stage, ok
}

// OrderQueue sorts actions into working order: higher stages first, then
// longest since last contact (never-contacted cases lead), then outstanding
// amount descending.
func (s *CollectionStrategy) OrderQueue(actions []CollectionAction) []CollectionAction {
	out := make([]CollectionAction, len(actions))
	copy(out, actions)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Stage.Equal(b.Stage) {
			return a.Stage.Outranks(b.Stage)
		}
		if (a.LastContactAt == nil) != (b.LastContactAt == nil) {
			return a.LastContactAt == nil
		}
		if a.LastContactAt != nil && !a.LastContactAt.Equal(*b.LastContactAt) {
			return a.LastContactAt.Before(*b.LastContactAt)
		}
		return a.Outstanding.Amount().GreaterThan(b.Outstanding.Amount())
	})
	return out
}
