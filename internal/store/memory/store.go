// Package memory implements the DomainStore port entirely in-process.
// It exists as test infrastructure (§9), not a second production
// backend — see the sql package for that. Each entity gets its own
// small mutex-guarded map, matching the "one interface set per entity"
// design note; Store just wires them together for convenient injection.
package memory

import (
	"context"

	"github.com/unburdy/scheduler-module/internal/domain"
)

// Store bundles one in-memory repository per entity.
type Store struct {
	Accounts     *AccountStore
	Users        *UserStore
	Calendars    *CalendarStore
	Events       *EventStore
	Schedules    *ScheduleStore
	Services     *ServiceStore
	ServiceUsers *ServiceUserStore
	Reservations *ReservationStore
	Jobs         *JobStore
	Reminders    *ReminderStore
}

// New constructs an empty Store with every repository initialized.
func New() *Store {
	return &Store{
		Accounts:     newAccountStore(),
		Users:        newUserStore(),
		Calendars:    newCalendarStore(),
		Events:       newEventStore(),
		Schedules:    newScheduleStore(),
		Services:     newServiceStore(),
		ServiceUsers: newServiceUserStore(),
		Reservations: newReservationStore(),
		Jobs:         newJobStore(),
		Reminders:    newReminderStore(),
	}
}

// DeleteEventCascade removes an event along with its reminders and
// expansion jobs, per the lifecycle & ownership note ("deleting an Event
// purges its reminders and jobs").
func (s *Store) DeleteEventCascade(ctx context.Context, eventID domain.ID) error {
	s.purgeEventReminders(eventID)
	s.purgeEventJobs(eventID)
	return s.Events.Delete(ctx, eventID)
}

// DeleteCalendarCascade removes a calendar, deleting every event on it
// (and, transitively, their reminders/jobs), per the lifecycle &
// ownership note ("deletion of a Calendar cascades").
func (s *Store) DeleteCalendarCascade(ctx context.Context, calendarID domain.ID) error {
	events, err := s.Events.FindByCalendar(ctx, calendarID)
	if err != nil {
		return err
	}
	for _, ev := range events {
		s.purgeEventReminders(ev.ID)
		s.purgeEventJobs(ev.ID)
		if err := s.Events.Delete(ctx, ev.ID); err != nil {
			return err
		}
	}
	return s.Calendars.Delete(ctx, calendarID)
}

func (s *Store) purgeEventReminders(eventID domain.ID) {
	s.Reminders.mu.Lock()
	defer s.Reminders.mu.Unlock()
	for k, r := range s.Reminders.rows {
		if r.EventID == eventID {
			delete(s.Reminders.rows, k)
		}
	}
}

func (s *Store) purgeEventJobs(eventID domain.ID) {
	s.Jobs.mu.Lock()
	defer s.Jobs.mu.Unlock()
	for k, j := range s.Jobs.rows {
		if j.EventID == eventID {
			delete(s.Jobs.rows, k)
		}
	}
}
