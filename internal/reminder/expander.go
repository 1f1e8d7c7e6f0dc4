package reminder

import (
	"context"
	"time"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/clockport"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/logging"
)

// Expander runs the periodic expander tick and the mutation-driven inline
// expansion described in §4.4.
type Expander struct {
	Jobs      JobStore
	Reminders ReminderStore
	Events    EventLoader
	Clock     clockport.Clock
	Horizon   time.Duration
	MaxWindow time.Duration
	Logger    logging.Logger
}

// Tick processes every ExpansionJob due within Horizon: reload the event,
// discard stale/deleted jobs, expand at JobPriority, and roll the job
// window forward (§4.4 "Expander loop").
func (x *Expander) Tick(ctx context.Context) error {
	now := x.Clock.Now().UnixMilli()
	due, err := x.Jobs.DueForExpansion(ctx, now+int64(x.Horizon/time.Millisecond))
	if err != nil {
		return err
	}

	for _, job := range due {
		if err := x.processJob(ctx, job, now); err != nil {
			x.Logger.Error("reminder expansion failed, job retained for next tick", "job_id", job.ID, "event_id", job.EventID, "err", err)
		}
	}
	return nil
}

func (x *Expander) processJob(ctx context.Context, job *domain.EventRemindersExpansionJob, now domain.Timestamp) error {
	ev, err := x.Events.FindEvent(ctx, job.EventID)
	if apperr.Is(err, apperr.NotFound) {
		return x.Jobs.Delete(ctx, job.ID)
	}
	if err != nil {
		return err
	}
	if ev.Version > job.Version || ev.Reminder == nil {
		// A fresher mutation has already (or will) enqueue its own job.
		return x.Jobs.Delete(ctx, job.ID)
	}

	if _, err := expandReminders(ctx, x.Reminders, ev, domain.JobPriority, now, x.Horizon, x.MaxWindow); err != nil {
		return err
	}
	if err := x.Jobs.Delete(ctx, job.ID); err != nil {
		return err
	}
	next := domain.NewExpansionJob(ev.ID, now+int64(x.Horizon/time.Millisecond), ev.Version)
	return x.Jobs.Upsert(ctx, next)
}

// OnEventMutated runs the mutation-driven inline expansion at
// MutationPriority and (re-)enqueues the rolling ExpansionJob, so an edit
// published just before a reminder fires takes effect immediately instead
// of waiting for the next tick (§4.4).
func (x *Expander) OnEventMutated(ctx context.Context, ev *domain.CalendarEvent) error {
	if ev.Reminder == nil {
		return nil
	}
	now := x.Clock.Now().UnixMilli()
	if _, err := expandReminders(ctx, x.Reminders, ev, domain.MutationPriority, now, x.Horizon, x.MaxWindow); err != nil {
		return err
	}
	job := domain.NewExpansionJob(ev.ID, now+int64(x.Horizon/time.Millisecond), ev.Version)
	return x.Jobs.Upsert(ctx, job)
}
