package domain

import (
	"sort"

	"github.com/unburdy/scheduler-module/internal/apperr"
)

// ReminderConfig is the optional reminder attached to an event (§3, §4.4).
type ReminderConfig struct {
	DeltaMinutes int
	Identifier   string
}

// CalendarEvent is a single or recurring event (§3).
type CalendarEvent struct {
	ID          ID
	CalendarID  ID
	UserID      ID
	AccountID   ID
	StartTs     Timestamp
	DurationMs  int64
	Busy        bool
	Recurrence  *RRuleOptions
	Exdates     []Timestamp // sorted, deduplicated
	Reminder    *ReminderConfig
	Version     int64 // monotonically increasing, bumped on every mutation
	Metadata    Metadata
}

// EndTs returns start_ts + duration_ms for the base occurrence (§3).
func (e *CalendarEvent) EndTs() Timestamp { return e.StartTs + e.DurationMs }

// NewCalendarEvent validates and constructs a CalendarEvent at version 1.
func NewCalendarEvent(calendarID, userID, accountID ID, startTs Timestamp, durationMs int64, busy bool, recurrence *RRuleOptions, exdates []Timestamp, reminder *ReminderConfig, metadata map[string]string) (*CalendarEvent, error) {
	if durationMs <= 0 {
		return nil, apperr.NewBadInput("duration_ms must be > 0, got %d", durationMs)
	}
	if recurrence != nil {
		if err := recurrence.Validate(); err != nil {
			return nil, err
		}
	}
	md, err := NewMetadata(metadata)
	if err != nil {
		return nil, err
	}
	e := &CalendarEvent{
		ID:         NewID(),
		CalendarID: calendarID,
		UserID:     userID,
		AccountID:  accountID,
		StartTs:    startTs,
		DurationMs: durationMs,
		Busy:       busy,
		Recurrence: recurrence,
		Reminder:   reminder,
		Version:    1,
		Metadata:   md,
	}
	e.SetExdates(exdates)
	return e, nil
}

// SetExdates normalizes exdates into a sorted, deduplicated set.
func (e *CalendarEvent) SetExdates(exdates []Timestamp) {
	seen := make(map[Timestamp]struct{}, len(exdates))
	out := make([]Timestamp, 0, len(exdates))
	for _, t := range exdates {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	e.Exdates = out
}

// Touch bumps the event's version, fencing any in-flight reminder
// expansion keyed on the prior version (§4.4, §5, invariant 6).
func (e *CalendarEvent) Touch() {
	e.Version++
}

// EventInstance is one concrete occurrence of a (possibly recurring)
// event in UTC (§3, §4.1).
type EventInstance struct {
	StartTs Timestamp
	EndTs   Timestamp
	Busy    bool
}

// Span returns the instance as a TimeSpan.
func (i EventInstance) Span() TimeSpan { return TimeSpan{Start: i.StartTs, End: i.EndTs} }
