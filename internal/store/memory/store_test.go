package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unburdy/scheduler-module/internal/domain"
)

func TestEventCascade_PurgesRemindersAndJobs(t *testing.T) {
	ctx := context.Background()
	s := New()

	ev, err := domain.NewCalendarEvent(domain.NewID(), domain.NewID(), domain.NewID(), 1000, 3600000, false, nil, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Events.Save(ctx, ev))

	job := domain.NewExpansionJob(ev.ID, 2000, ev.Version)
	require.NoError(t, s.Jobs.Upsert(ctx, job))
	rem := domain.NewReminder(ev.ID, ev.AccountID, "id1", 1500, domain.JobPriority, ev.Version)
	require.NoError(t, s.Reminders.Save(ctx, rem))

	require.NoError(t, s.DeleteEventCascade(ctx, ev.ID))

	_, err = s.Events.FindEvent(ctx, ev.ID)
	assert.Error(t, err)
	due, err := s.Jobs.DueForExpansion(ctx, 10000)
	require.NoError(t, err)
	assert.Empty(t, due)
	_, err = s.Reminders.FindByEventAndRemindAt(ctx, ev.ID, 1500)
	assert.Error(t, err)
}

func TestCalendarCascade_DeletesEventsAndTheirReminders(t *testing.T) {
	ctx := context.Background()
	s := New()

	cal, err := domain.NewCalendar(domain.NewID(), domain.NewID(), 0, "UTC", nil)
	require.NoError(t, err)
	require.NoError(t, s.Calendars.Save(ctx, cal))

	ev, err := domain.NewCalendarEvent(cal.ID, cal.UserID, cal.AccountID, 1000, 3600000, false, nil, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Events.Save(ctx, ev))
	rem := domain.NewReminder(ev.ID, ev.AccountID, "id1", 1500, domain.JobPriority, ev.Version)
	require.NoError(t, s.Reminders.Save(ctx, rem))

	require.NoError(t, s.DeleteCalendarCascade(ctx, cal.ID))

	_, err = s.Calendars.Find(ctx, cal.ID)
	assert.Error(t, err)
	_, err = s.Events.FindEvent(ctx, ev.ID)
	assert.Error(t, err)
	_, err = s.Reminders.FindByEventAndRemindAt(ctx, ev.ID, 1500)
	assert.Error(t, err)
}

func TestReservationStore_CapIsRaceFreeUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	rs := newReservationStore()
	serviceID := domain.NewID()
	slotStart := domain.Timestamp(1000)

	const attempts = 20
	var wg sync.WaitGroup
	results := make([]bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := rs.CreateIntentIfBelowCap(ctx, serviceID, slotStart, 1)
			require.NoError(t, err)
			results[i] = ok
		}(i)
	}
	wg.Wait()

	successCount := 0
	for _, ok := range results {
		if ok {
			successCount++
		}
	}
	assert.Equal(t, 1, successCount, "exactly one concurrent intent should succeed under cap=1")

	count, err := rs.CountAt(ctx, serviceID, slotStart)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
