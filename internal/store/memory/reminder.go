package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/reminder"
)

// ReminderStore implements reminder.ReminderStore.
type ReminderStore struct {
	mu   sync.Mutex
	rows map[string]*domain.Reminder // key: event_id|remind_at
}

func newReminderStore() *ReminderStore {
	return &ReminderStore{rows: make(map[string]*domain.Reminder)}
}

var _ reminder.ReminderStore = (*ReminderStore)(nil)

func reminderKey(eventID domain.ID, remindAt domain.Timestamp) string {
	return string(eventID) + "|" + strconv.FormatInt(remindAt, 10)
}

func (s *ReminderStore) FindByEventAndRemindAt(_ context.Context, eventID domain.ID, remindAt domain.Timestamp) (*domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[reminderKey(eventID, remindAt)]
	if !ok {
		return nil, apperr.NewNotFound("reminder not found")
	}
	return r, nil
}

func (s *ReminderStore) Save(_ context.Context, r *domain.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[reminderKey(r.EventID, r.RemindAt)] = r
	return nil
}

func (s *ReminderStore) Delete(_ context.Context, id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.rows {
		if r.ID == id {
			delete(s.rows, k)
		}
	}
	return nil
}

func (s *ReminderStore) DeleteDueReturning(_ context.Context, before domain.Timestamp) ([]*domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*domain.Reminder
	for k, r := range s.rows {
		if r.RemindAt <= before {
			due = append(due, r)
			delete(s.rows, k)
		}
	}
	return due, nil
}
