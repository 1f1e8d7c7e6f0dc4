package reminder

import (
	"context"
	"time"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/availability"
	"github.com/unburdy/scheduler-module/internal/domain"
)

// eventTimezone resolves the timezone RecurrenceEngine should expand the
// event in: the recurrence's own (already-resolved) timezone, or UTC for
// a non-recurring event.
func eventTimezone(ev *domain.CalendarEvent) string {
	if ev.Recurrence != nil && ev.Recurrence.Timezone != "" {
		return ev.Recurrence.Timezone
	}
	return "UTC"
}

// expandReminders expands ev's occurrences in [now, now+horizon] and
// upserts one Reminder per instance at the given priority, applying the
// (event_id, remind_at) deduplication rule (§4.4): an existing row with
// strictly lower priority is superseded; equal or higher priority wins
// and the new write is skipped.
func expandReminders(ctx context.Context, store ReminderStore, ev *domain.CalendarEvent, priority domain.Priority, now domain.Timestamp, horizon, maxWindow time.Duration) (int, error) {
	if ev.Reminder == nil {
		return 0, nil
	}
	window := domain.TimeSpan{Start: now, End: now + int64(horizon/time.Millisecond)}
	instances, err := availability.ExpandEvent(ev, eventTimezone(ev), window, maxWindow)
	if err != nil {
		return 0, err
	}

	deltaMs := int64(ev.Reminder.DeltaMinutes) * 60 * 1000
	written := 0
	for _, inst := range instances {
		remindAt := inst.StartTs - deltaMs
		candidate := domain.NewReminder(ev.ID, ev.AccountID, ev.Reminder.Identifier, remindAt, priority, ev.Version)
		ok, err := upsertReminder(ctx, store, candidate)
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
	}
	return written, nil
}

// upsertReminder applies the dedup rule for a single (event_id, remind_at)
// key, returning whether candidate was written.
func upsertReminder(ctx context.Context, store ReminderStore, candidate *domain.Reminder) (bool, error) {
	existing, err := store.FindByEventAndRemindAt(ctx, candidate.EventID, candidate.RemindAt)
	if err != nil && !apperr.Is(err, apperr.NotFound) {
		return false, err
	}
	if existing != nil {
		if existing.Priority >= candidate.Priority {
			return false, nil
		}
		if err := store.Delete(ctx, existing.ID); err != nil {
			return false, err
		}
	}
	if err := store.Save(ctx, candidate); err != nil {
		return false, err
	}
	return true, nil
}
