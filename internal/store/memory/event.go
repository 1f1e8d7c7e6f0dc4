package memory

import (
	"context"
	"sync"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

type EventStore struct {
	mu   sync.Mutex
	rows map[domain.ID]*domain.CalendarEvent
}

func newEventStore() *EventStore {
	return &EventStore{rows: make(map[domain.ID]*domain.CalendarEvent)}
}

var _ store.EventStore = (*EventStore)(nil)

func (s *EventStore) Save(_ context.Context, e *domain.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[e.ID] = e
	return nil
}

func (s *EventStore) FindEvent(_ context.Context, id domain.ID) (*domain.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[id]
	if !ok {
		return nil, apperr.NewNotFound("event %s not found", id)
	}
	return e, nil
}

func (s *EventStore) FindByCalendar(_ context.Context, calendarID domain.ID) ([]*domain.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.CalendarEvent
	for _, e := range s.rows {
		if e.CalendarID == calendarID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *EventStore) Delete(_ context.Context, id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *EventStore) FindByMetadata(_ context.Context, f store.MetadataFilter) ([]*domain.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []*domain.CalendarEvent
	for _, e := range s.rows {
		if e.AccountID == f.AccountID && e.Metadata[f.Key] == f.Value {
			matches = append(matches, e)
		}
	}
	return paginate(matches, f.Page, f.PerPage), nil
}
