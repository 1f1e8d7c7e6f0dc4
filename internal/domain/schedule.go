package domain

import (
	"time"

	"github.com/unburdy/scheduler-module/internal/apperr"
)

// DayInterval is a [start,end) window within a single day, expressed as
// minutes since local midnight: start in [0, 1440), end in (0, 1440],
// with start < end (§3).
type DayInterval struct {
	StartMinute int
	EndMinute   int
}

func (iv DayInterval) validate() error {
	if iv.StartMinute < 0 || iv.StartMinute >= 24*60 {
		return apperr.NewBadInput("interval start minute %d out of [0,1440)", iv.StartMinute)
	}
	if iv.EndMinute <= 0 || iv.EndMinute > 24*60 {
		return apperr.NewBadInput("interval end minute %d out of (0,1440]", iv.EndMinute)
	}
	if iv.StartMinute >= iv.EndMinute {
		return apperr.NewBadInput("interval start (%d) must be before end (%d)", iv.StartMinute, iv.EndMinute)
	}
	return nil
}

// ScheduleRule is either a weekday rule or a date override (§3).
// Exactly one of Weekday (with IsWeekdayRule true) or Date is set.
type ScheduleRule struct {
	IsWeekdayRule bool
	Weekday       Weekday   // valid when IsWeekdayRule
	Date          string    // "YYYY-MM-DD", valid when !IsWeekdayRule
	Intervals     []DayInterval
}

func (r ScheduleRule) validate() error {
	if !r.IsWeekdayRule {
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			return apperr.WrapBadInput(err, "invalid date override %q", r.Date)
		}
	} else if r.Weekday < 0 || r.Weekday > 6 {
		return apperr.NewBadInput("invalid weekday %d", r.Weekday)
	}
	for _, iv := range r.Intervals {
		if err := iv.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Schedule is a weekly availability template in a given timezone (§3).
type Schedule struct {
	ID        ID
	UserID    ID
	AccountID ID
	Timezone  string
	Rules     []ScheduleRule
	Metadata  Metadata
}

// NewSchedule validates timezone and rules.
func NewSchedule(userID, accountID ID, timezone string, rules []ScheduleRule, metadata map[string]string) (*Schedule, error) {
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, apperr.WrapBadInput(err, "unknown schedule timezone %q", timezone)
	}
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return nil, err
		}
	}
	md, err := NewMetadata(metadata)
	if err != nil {
		return nil, err
	}
	return &Schedule{
		ID:        NewID(),
		UserID:    userID,
		AccountID: accountID,
		Timezone:  timezone,
		Rules:     rules,
		Metadata:  md,
	}, nil
}

// Location resolves the schedule's IANA timezone.
func (s *Schedule) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RuleForDate returns the applicable rule's intervals for the given
// local date, honoring date-override precedence over weekday rules for
// that calendar date (§4.2's algorithm step 5).
func (s *Schedule) RuleForDate(date time.Time) []DayInterval {
	dateStr := date.Format("2006-01-02")
	for _, r := range s.Rules {
		if !r.IsWeekdayRule && r.Date == dateStr {
			return r.Intervals
		}
	}
	wd := Weekday(date.Weekday())
	var out []DayInterval
	for _, r := range s.Rules {
		if r.IsWeekdayRule && r.Weekday == wd {
			out = append(out, r.Intervals...)
		}
	}
	return out
}
