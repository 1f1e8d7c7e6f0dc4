package availability

import (
	"time"

	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/recurrence"
)

// ExpandEvent expands a CalendarEvent's recurrence into EventInstances
// intersecting span, stamping each with the event's busy flag. It is the
// sole caller of recurrence.Expand on behalf of the AvailabilityEngine.
func ExpandEvent(ev *domain.CalendarEvent, ownerTimezone string, span domain.TimeSpan, maxWindow time.Duration) ([]domain.EventInstance, error) {
	instances, err := recurrence.Expand(ev.StartTs, ev.Recurrence, ev.Exdates, ev.DurationMs, ownerTimezone, span, maxWindow)
	if err != nil {
		return nil, err
	}
	for i := range instances {
		instances[i].Busy = ev.Busy
	}
	return instances, nil
}

// Busy expands every event source and merges the busy=true instances
// into the sorted, non-overlapping form of §4.2's FreeBusy.busy.
func Busy(events []*domain.CalendarEvent, ownerTimezone string, span domain.TimeSpan, maxWindow time.Duration) ([]domain.TimeSpan, error) {
	var spans []domain.TimeSpan
	for _, ev := range events {
		instances, err := ExpandEvent(ev, ownerTimezone, span, maxWindow)
		if err != nil {
			return nil, err
		}
		for _, inst := range instances {
			if inst.Busy {
				spans = append(spans, inst.Span())
			}
		}
	}
	return Merge(Truncate(spans, span)), nil
}

// FreeFromSchedule materializes a Schedule's rules into the span, in the
// schedule's own timezone: the weekday rule is replicated per matching
// date, and a date-override rule replaces the weekday rule for that
// calendar date (§4.2 algorithm step 5).
func FreeFromSchedule(schedule *domain.Schedule, span domain.TimeSpan) []domain.TimeSpan {
	loc := schedule.Location()
	var spans []domain.TimeSpan

	start := time.UnixMilli(span.Start).In(loc)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	end := time.UnixMilli(span.End).In(loc)

	for !day.After(end) {
		intervals := schedule.RuleForDate(day)
		for _, iv := range intervals {
			s := day.Add(time.Duration(iv.StartMinute) * time.Minute).UnixMilli()
			e := day.Add(time.Duration(iv.EndMinute) * time.Minute).UnixMilli()
			spans = append(spans, domain.TimeSpan{Start: s, End: e})
		}
		day = day.AddDate(0, 0, 1)
	}
	return Merge(Truncate(spans, span))
}

// Free computes FreeBusy.free(schedule, tz) = schedule-materialized time
// minus busy (§4.2).
func Free(schedule *domain.Schedule, busy []domain.TimeSpan, span domain.TimeSpan) []domain.TimeSpan {
	scheduled := FreeFromSchedule(schedule, span)
	return Subtract(scheduled, busy, span)
}

// FreeFromCalendar treats a Calendar's own (busy=false) events as the
// "green" available source instead of a Schedule — the Calendar variant
// of TimePlan (§3, §4.3).
func FreeFromCalendar(events []*domain.CalendarEvent, ownerTimezone string, busy []domain.TimeSpan, span domain.TimeSpan, maxWindow time.Duration) ([]domain.TimeSpan, error) {
	var spans []domain.TimeSpan
	for _, ev := range events {
		if ev.Busy {
			continue
		}
		instances, err := ExpandEvent(ev, ownerTimezone, span, maxWindow)
		if err != nil {
			return nil, err
		}
		for _, inst := range instances {
			spans = append(spans, inst.Span())
		}
	}
	available := Merge(Truncate(spans, span))
	return Subtract(available, busy, span), nil
}
