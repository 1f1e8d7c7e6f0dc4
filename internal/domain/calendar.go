package domain

import (
	"time"

	"github.com/unburdy/scheduler-module/internal/apperr"
)

// CalendarSettings is validated at construction per §3/§9: week_start
// outside 0..=6 and unknown timezones are rejected at the domain
// boundary, not deferred to use time. Grounded on the original source's
// CalendarSettings::set_week_start/set_timezone (original_source
// scheduler/crates/domain/src/calendar.rs).
type CalendarSettings struct {
	WeekStart int // 0..=6, 0 = Sunday
	Timezone  string
}

// NewCalendarSettings validates weekStart and timezone.
func NewCalendarSettings(weekStart int, timezone string) (CalendarSettings, error) {
	if weekStart < 0 || weekStart > 6 {
		return CalendarSettings{}, apperr.NewBadInput("week_start must be in 0..=6, got %d", weekStart)
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return CalendarSettings{}, apperr.WrapBadInput(err, "unknown timezone %q", timezone)
	}
	return CalendarSettings{WeekStart: weekStart, Timezone: timezone}, nil
}

// Location resolves the settings' IANA timezone.
func (s CalendarSettings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Calendar is a per-user container of events (§3).
type Calendar struct {
	ID        ID
	UserID    ID
	AccountID ID
	Settings  CalendarSettings
	Metadata  Metadata
}

// NewCalendar creates a Calendar for userID/accountID with validated settings.
func NewCalendar(userID, accountID ID, weekStart int, timezone string, metadata map[string]string) (*Calendar, error) {
	settings, err := NewCalendarSettings(weekStart, timezone)
	if err != nil {
		return nil, err
	}
	md, err := NewMetadata(metadata)
	if err != nil {
		return nil, err
	}
	return &Calendar{
		ID:        NewID(),
		UserID:    userID,
		AccountID: accountID,
		Settings:  settings,
		Metadata:  md,
	}, nil
}
