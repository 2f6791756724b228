package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finbank/lending-core/internal/domain/event"
	"github.com/finbank/lending-core/internal/domain/valueobject"
)

// CaseActivity is one row of a collection case's append-only activity log.
type CaseActivity struct {
	At      time.Time
	Stage   valueobject.CollectionStage
	Channel valueobject.ContactChannel
	Note    string
}

// CollectionCase tracks recovery work on a past-due loan. One open case per
// loan; activity ordering within a case is preserved by the append-only log.
// Like Loan, the aggregate is immutable and mutations return copies.
type CollectionCase struct {
	id               string
	loanID           string
	stage            valueobject.CollectionStage
	channel          valueobject.ContactChannel
	intensity        valueobject.ContactIntensity
	lastContactAt    *time.Time
	promiseToPayDate *time.Time
	activities       []CaseActivity
	version          int
	createdAt        time.Time
	updatedAt        time.Time
	domainEvents     []event.DomainEvent
}

// NewCollectionCase opens a case on a loan's first post-due bucket entry.
func NewCollectionCase(
	loanID string,
	stage valueobject.CollectionStage,
	channel valueobject.ContactChannel,
	intensity valueobject.ContactIntensity,
	now time.Time,
) (CollectionCase, error) {
	if loanID == "" {
		return CollectionCase{}, fmt.Errorf("%w: loan ID is required", valueobject.ErrValidation)
	}
	if stage.IsZero() || stage.Equal(valueobject.StageClosed) {
		return CollectionCase{}, fmt.Errorf("%w: a new case needs an open stage, got %q", valueobject.ErrValidation, stage)
	}

	id := uuid.New().String()
	c := CollectionCase{
		id:        id,
		loanID:    loanID,
		stage:     stage,
		channel:   channel,
		intensity: intensity,
		activities: []CaseActivity{{
			At:      now,
			Stage:   stage,
			Channel: channel,
			Note:    "case opened",
		}},
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
	c.domainEvents = append(c.domainEvents, event.NewCollectionCaseOpened(id, loanID, stage.String()))
	return c, nil
}

// ReconstructCollectionCase rebuilds a case from persistence.
func ReconstructCollectionCase(
	id, loanID string,
	stage valueobject.CollectionStage,
	channel valueobject.ContactChannel,
	intensity valueobject.ContactIntensity,
	lastContactAt, promiseToPayDate *time.Time,
	activities []CaseActivity,
	version int,
	createdAt, updatedAt time.Time,
) CollectionCase {
	return CollectionCase{
		id:               id,
		loanID:           loanID,
		stage:            stage,
		channel:          channel,
		intensity:        intensity,
		lastContactAt:    lastContactAt,
		promiseToPayDate: promiseToPayDate,
		activities:       activities,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// Escalate moves the case to a higher stage with a new channel and intensity.
// De-escalation is not a thing; a cured loan closes its case instead.
func (c CollectionCase) Escalate(
	stage valueobject.CollectionStage,
	channel valueobject.ContactChannel,
	intensity valueobject.ContactIntensity,
	reason string,
	now time.Time,
) (CollectionCase, error) {
	if c.IsClosed() {
		return c, fmt.Errorf("%w: case is closed", valueobject.ErrStateConflict)
	}
	if !stage.Outranks(c.stage) {
		return c, fmt.Errorf("%w: stage %s does not outrank %s", valueobject.ErrStateConflict, stage, c.stage)
	}
	next := c
	next.stage = stage
	next.channel = channel
	next.intensity = intensity
	next.updatedAt = now
	next.activities = append(copyActivities(c.activities), CaseActivity{
		At:      now,
		Stage:   stage,
		Channel: channel,
		Note:    reason,
	})
	next.domainEvents = append(copyEvents(c.domainEvents),
		event.NewCollectionCaseEscalated(c.id, c.loanID, c.stage.String(), stage.String()))
	return next, nil
}

// Reassign changes the channel and intensity within the current stage.
func (c CollectionCase) Reassign(
	channel valueobject.ContactChannel,
	intensity valueobject.ContactIntensity,
	now time.Time,
) (CollectionCase, error) {
	if c.IsClosed() {
		return c, fmt.Errorf("%w: case is closed", valueobject.ErrStateConflict)
	}
	next := c
	next.channel = channel
	next.intensity = intensity
	next.updatedAt = now
	next.activities = append(copyActivities(c.activities), CaseActivity{
		At:      now,
		Stage:   c.stage,
		Channel: channel,
		Note:    "reassigned",
	})
	next.domainEvents = copyEvents(c.domainEvents)
	return next, nil
}

// RecordContact logs an outreach attempt and updates the last-contact time.
func (c CollectionCase) RecordContact(
	channel valueobject.ContactChannel,
	note string,
	now time.Time,
) (CollectionCase, error) {
	if c.IsClosed() {
		return c, fmt.Errorf("%w: case is closed", valueobject.ErrStateConflict)
	}
	next := c
	t := now
	next.lastContactAt = &t
	next.updatedAt = now
	next.activities = append(copyActivities(c.activities), CaseActivity{
		At:      now,
		Stage:   c.stage,
		Channel: channel,
		Note:    note,
	})
	next.domainEvents = copyEvents(c.domainEvents)
	return next, nil
}

// RecordPromiseToPay logs a borrower commitment date.
func (c CollectionCase) RecordPromiseToPay(date time.Time, now time.Time) (CollectionCase, error) {
	if c.IsClosed() {
		return c, fmt.Errorf("%w: case is closed", valueobject.ErrStateConflict)
	}
	next := c
	d := date
	next.promiseToPayDate = &d
	next.updatedAt = now
	next.activities = append(copyActivities(c.activities), CaseActivity{
		At:    now,
		Stage: c.stage,
		Note:  fmt.Sprintf("promise to pay by %s", date.Format("2006-01-02")),
	})
	next.domainEvents = copyEvents(c.domainEvents)
	return next, nil
}

// Close ends the case on cure or terminal loan resolution.
func (c CollectionCase) Close(reason string, now time.Time) (CollectionCase, error) {
	if c.IsClosed() {
		return c, fmt.Errorf("%w: case is already closed", valueobject.ErrStateConflict)
	}
	next := c
	next.stage = valueobject.StageClosed
	next.updatedAt = now
	next.activities = append(copyActivities(c.activities), CaseActivity{
		At:    now,
		Stage: valueobject.StageClosed,
		Note:  reason,
	})
	next.domainEvents = append(copyEvents(c.domainEvents),
		event.NewCollectionCaseClosed(c.id, c.loanID, reason))
	return next, nil
}

// IsClosed reports whether the case has reached CLOSED.
func (c CollectionCase) IsClosed() bool {
	return c.stage.Equal(valueobject.StageClosed)
}

func (c CollectionCase) ID() string                              { return c.id }
func (c CollectionCase) LoanID() string                          { return c.loanID }
func (c CollectionCase) Stage() valueobject.CollectionStage      { return c.stage }
func (c CollectionCase) Channel() valueobject.ContactChannel     { return c.channel }
func (c CollectionCase) Intensity() valueobject.ContactIntensity { return c.intensity }
func (c CollectionCase) LastContactAt() *time.Time               { return c.lastContactAt }
func (c CollectionCase) PromiseToPayDate() *time.Time            { return c.promiseToPayDate }
func (c CollectionCase) Version() int                            { return c.version }
func (c CollectionCase) CreatedAt() time.Time                    { return c.createdAt }
func (c CollectionCase) UpdatedAt() time.Time                    { return c.updatedAt }
func (c CollectionCase) DomainEvents() []event.DomainEvent       { return c.domainEvents }

// Activities returns a defensive copy of the activity log.
func (c CollectionCase) Activities() []CaseActivity {
	return copyActivities(c.activities)
}

// ClearEvents returns a copy with an empty event list.
func (c CollectionCase) ClearEvents() CollectionCase {
	next := c
	next.domainEvents = nil
	return next
}

func copyActivities(in []CaseActivity) []CaseActivity {
	if in == nil {
		return nil
	}
	out := make([]CaseActivity, len(in))
	copy(out, in)
	return out
}
