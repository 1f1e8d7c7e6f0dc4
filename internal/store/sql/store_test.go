package sql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	return New(db)
}

func TestAccountStore_SaveFind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := domain.NewAccount("")
	require.NoError(t, err)
	require.NoError(t, a.SetWebhook("https://example.com/hook", "verify-key"))
	require.NoError(t, s.Accounts.Save(ctx, a))

	got, err := s.Accounts.FindAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.SecretAPIKey, got.SecretAPIKey)
	require.NotNil(t, got.Webhook)
	assert.Equal(t, "https://example.com/hook", got.Webhook.URL)

	require.NoError(t, s.Accounts.Delete(ctx, a.ID))
	_, err = s.Accounts.FindAccount(ctx, a.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestEventStore_RoundTripsRecurrenceAndReminder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	recurrence := &domain.RRuleOptions{Frequency: domain.Weekly, Interval: 1}
	reminderCfg := &domain.ReminderConfig{DeltaMinutes: 10, Identifier: "email"}
	ev, err := domain.NewCalendarEvent(domain.NewID(), domain.NewID(), domain.NewID(), 1000, 3600000, true, recurrence, []domain.Timestamp{500}, reminderCfg, map[string]string{"room": "101"})
	require.NoError(t, err)
	require.NoError(t, s.Events.Save(ctx, ev))

	got, err := s.Events.FindEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Weekly, got.Recurrence.Frequency)
	assert.Equal(t, []domain.Timestamp{500}, got.Exdates)
	require.NotNil(t, got.Reminder)
	assert.Equal(t, "email", got.Reminder.Identifier)
	assert.Equal(t, "101", got.Metadata["room"])
}

func TestEventStore_FindByMetadataFiltersExactValue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	accountID := domain.NewID()

	match, err := domain.NewCalendarEvent(domain.NewID(), domain.NewID(), accountID, 1000, 60000, false, nil, nil, nil, map[string]string{"room": "101"})
	require.NoError(t, err)
	require.NoError(t, s.Events.Save(ctx, match))

	other, err := domain.NewCalendarEvent(domain.NewID(), domain.NewID(), accountID, 1000, 60000, false, nil, nil, nil, map[string]string{"room": "102"})
	require.NoError(t, err)
	require.NoError(t, s.Events.Save(ctx, other))

	found, err := s.Events.FindByMetadata(ctx, store.MetadataFilter{AccountID: accountID, Key: "room", Value: "101"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, match.ID, found[0].ID)
}

func TestCalendarCascade_DeletesEventsAndTheirReminders(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cal, err := domain.NewCalendar(domain.NewID(), domain.NewID(), 0, "UTC", nil)
	require.NoError(t, err)
	require.NoError(t, s.Calendars.Save(ctx, cal))

	ev, err := domain.NewCalendarEvent(cal.ID, cal.UserID, cal.AccountID, 1000, 3600000, false, nil, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Events.Save(ctx, ev))

	rem := domain.NewReminder(ev.ID, ev.AccountID, "id1", 1500, domain.JobPriority, ev.Version)
	require.NoError(t, s.Reminders.Save(ctx, rem))
	job := domain.NewExpansionJob(ev.ID, 2000, ev.Version)
	require.NoError(t, s.Jobs.Upsert(ctx, job))

	require.NoError(t, s.DeleteCalendarCascade(ctx, cal.ID))

	_, err = s.Calendars.Find(ctx, cal.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = s.Events.FindEvent(ctx, ev.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = s.Reminders.FindByEventAndRemindAt(ctx, ev.ID, 1500)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	due, err := s.Jobs.DueForExpansion(ctx, 10000)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestReservationStore_CapBlocksOverflow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	serviceID := domain.NewID()

	ok1, err := s.Reservations.CreateIntentIfBelowCap(ctx, serviceID, 1000, 1)
	require.NoError(t, err)
	assert.True(t, ok1)

	ok2, err := s.Reservations.CreateIntentIfBelowCap(ctx, serviceID, 1000, 1)
	require.NoError(t, err)
	assert.False(t, ok2)

	count, err := s.Reservations.CountAt(ctx, serviceID, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.Reservations.Remove(ctx, serviceID, 1000))
	count, err = s.Reservations.CountAt(ctx, serviceID, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestReminderStore_DeleteDueReturningClaimsAndRemoves(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	eventID := domain.NewID()
	accountID := domain.NewID()

	due := domain.NewReminder(eventID, accountID, "id1", 1000, domain.JobPriority, 1)
	notYet := domain.NewReminder(eventID, accountID, "id2", 5000, domain.JobPriority, 1)
	require.NoError(t, s.Reminders.Save(ctx, due))
	require.NoError(t, s.Reminders.Save(ctx, notYet))

	claimed, err := s.Reminders.DeleteDueReturning(ctx, 2000)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, due.ID, claimed[0].ID)

	_, err = s.Reminders.FindByEventAndRemindAt(ctx, eventID, 1000)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = s.Reminders.FindByEventAndRemindAt(ctx, eventID, 5000)
	require.NoError(t, err)
}
