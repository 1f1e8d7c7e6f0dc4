package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/clockport"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/logging"
)

type fakeReminderStore struct {
	byKey map[string]*domain.Reminder
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{byKey: make(map[string]*domain.Reminder)}
}

func key(eventID domain.ID, remindAt domain.Timestamp) string {
	return string(eventID) + "|" + time.UnixMilli(remindAt).String()
}

func (s *fakeReminderStore) FindByEventAndRemindAt(_ context.Context, eventID domain.ID, remindAt domain.Timestamp) (*domain.Reminder, error) {
	r, ok := s.byKey[key(eventID, remindAt)]
	if !ok {
		return nil, apperr.NewNotFound("reminder not found")
	}
	return r, nil
}

func (s *fakeReminderStore) Save(_ context.Context, r *domain.Reminder) error {
	s.byKey[key(r.EventID, r.RemindAt)] = r
	return nil
}

func (s *fakeReminderStore) Delete(_ context.Context, id domain.ID) error {
	for k, r := range s.byKey {
		if r.ID == id {
			delete(s.byKey, k)
		}
	}
	return nil
}

func (s *fakeReminderStore) DeleteDueReturning(_ context.Context, before domain.Timestamp) ([]*domain.Reminder, error) {
	var due []*domain.Reminder
	for k, r := range s.byKey {
		if r.RemindAt <= before {
			due = append(due, r)
			delete(s.byKey, k)
		}
	}
	return due, nil
}

type fakeJobStore struct {
	jobs map[domain.ID]*domain.EventRemindersExpansionJob
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[domain.ID]*domain.EventRemindersExpansionJob)}
}

func (s *fakeJobStore) DueForExpansion(_ context.Context, before domain.Timestamp) ([]*domain.EventRemindersExpansionJob, error) {
	var due []*domain.EventRemindersExpansionJob
	for _, j := range s.jobs {
		if j.Timestamp <= before {
			due = append(due, j)
		}
	}
	return due, nil
}

func (s *fakeJobStore) Upsert(_ context.Context, job *domain.EventRemindersExpansionJob) error {
	s.jobs[job.ID] = job
	return nil
}

func (s *fakeJobStore) Delete(_ context.Context, id domain.ID) error {
	delete(s.jobs, id)
	return nil
}

type fakeEventLoader struct {
	events map[domain.ID]*domain.CalendarEvent
}

func (l *fakeEventLoader) FindEvent(_ context.Context, id domain.ID) (*domain.CalendarEvent, error) {
	ev, ok := l.events[id]
	if !ok {
		return nil, apperr.NewNotFound("event not found")
	}
	return ev, nil
}

func newEvent(t *testing.T, start domain.Timestamp, deltaMinutes int) *domain.CalendarEvent {
	t.Helper()
	ev, err := domain.NewCalendarEvent(domain.NewID(), domain.NewID(), domain.NewID(),
		start, 1800000, false,
		&domain.RRuleOptions{Frequency: domain.Daily, Interval: 1, Timezone: "UTC"},
		nil, &domain.ReminderConfig{DeltaMinutes: deltaMinutes, Identifier: "evt-reminder"}, nil)
	require.NoError(t, err)
	return ev
}

// TestReminderSupersession covers §8's "reminder supersession" scenario:
// a job-priority expansion writes R1, then a mutation bumps the event's
// start and re-expands at mutation priority — the old row must be
// replaced, not duplicated.
func TestReminderSupersession(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC).UnixMilli()
	ev := newEvent(t, start, 10)

	reminders := newFakeReminderStore()
	jobs := newFakeJobStore()
	loader := &fakeEventLoader{events: map[domain.ID]*domain.CalendarEvent{ev.ID: ev}}
	clock := clockport.NewManual(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	expander := &Expander{
		Jobs: jobs, Reminders: reminders, Events: loader,
		Clock: clock, Horizon: 28 * 24 * time.Hour, MaxWindow: 62 * 24 * time.Hour,
		Logger: logging.New(),
	}

	job := domain.NewExpansionJob(ev.ID, clock.Now().UnixMilli(), ev.Version)
	require.NoError(t, jobs.Upsert(ctx, job))
	require.NoError(t, expander.Tick(ctx))

	r1, err := reminders.FindByEventAndRemindAt(ctx, ev.ID, start-10*60*1000)
	require.NoError(t, err)
	assert.Equal(t, domain.JobPriority, r1.Priority)
	oldID := r1.ID

	// Mutation shifts start +5m and bumps version.
	ev.StartTs = start + 5*60*1000
	ev.Touch()
	require.NoError(t, expander.OnEventMutated(ctx, ev))

	newRemindAt := ev.StartTs - 10*60*1000
	r2, err := reminders.FindByEventAndRemindAt(ctx, ev.ID, newRemindAt)
	require.NoError(t, err)
	assert.Equal(t, domain.MutationPriority, r2.Priority)
	assert.NotEqual(t, oldID, r2.ID)

	_, err = reminders.FindByEventAndRemindAt(ctx, ev.ID, start-10*60*1000)
	assert.True(t, apperr.Is(err, apperr.NotFound), "old reminder row must be gone")
}

func TestUpsertReminder_EqualOrHigherPrioritySkipsNewWrite(t *testing.T) {
	ctx := context.Background()
	store := newFakeReminderStore()
	eventID := domain.NewID()
	remindAt := domain.Timestamp(1000)

	first := domain.NewReminder(eventID, domain.NewID(), "id1", remindAt, domain.MutationPriority, 1)
	ok, err := upsertReminder(ctx, store, first)
	require.NoError(t, err)
	assert.True(t, ok)

	second := domain.NewReminder(eventID, domain.NewID(), "id1", remindAt, domain.JobPriority, 1)
	ok, err = upsertReminder(ctx, store, second)
	require.NoError(t, err)
	assert.False(t, ok, "lower-priority candidate must not replace an existing higher-priority row")

	got, err := store.FindByEventAndRemindAt(ctx, eventID, remindAt)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestJobDiscardedWhenEventVersionAdvanced(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC).UnixMilli()
	ev := newEvent(t, start, 10)
	ev.Touch() // version is now 2

	reminders := newFakeReminderStore()
	jobs := newFakeJobStore()
	loader := &fakeEventLoader{events: map[domain.ID]*domain.CalendarEvent{ev.ID: ev}}
	clock := clockport.NewManual(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	expander := &Expander{
		Jobs: jobs, Reminders: reminders, Events: loader,
		Clock: clock, Horizon: 28 * 24 * time.Hour, MaxWindow: 62 * 24 * time.Hour,
		Logger: logging.New(),
	}

	staleJob := domain.NewExpansionJob(ev.ID, clock.Now().UnixMilli(), 1) // stale version
	require.NoError(t, jobs.Upsert(ctx, staleJob))
	require.NoError(t, expander.Tick(ctx))

	_, ok := jobs.jobs[staleJob.ID]
	assert.False(t, ok, "stale job must be discarded")
	assert.Empty(t, reminders.byKey, "no reminders should be written from a discarded stale job")
}
