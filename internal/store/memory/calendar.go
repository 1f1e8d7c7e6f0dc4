package memory

import (
	"context"
	"sync"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

type CalendarStore struct {
	mu   sync.Mutex
	rows map[domain.ID]*domain.Calendar
}

func newCalendarStore() *CalendarStore {
	return &CalendarStore{rows: make(map[domain.ID]*domain.Calendar)}
}

var _ store.CalendarStore = (*CalendarStore)(nil)

func (s *CalendarStore) Save(_ context.Context, c *domain.Calendar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[c.ID] = c
	return nil
}

func (s *CalendarStore) Find(_ context.Context, id domain.ID) (*domain.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return nil, apperr.NewNotFound("calendar %s not found", id)
	}
	return c, nil
}

func (s *CalendarStore) FindByUser(_ context.Context, userID domain.ID) ([]*domain.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Calendar
	for _, c := range s.rows {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Delete removes the calendar row itself. Cascading its events (and
// their reminders/jobs) is orchestrated by Store.DeleteCalendarCascade,
// since that spans multiple repositories (lifecycle & ownership note).
func (s *CalendarStore) Delete(_ context.Context, id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *CalendarStore) FindByMetadata(_ context.Context, f store.MetadataFilter) ([]*domain.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []*domain.Calendar
	for _, c := range s.rows {
		if c.AccountID == f.AccountID && c.Metadata[f.Key] == f.Value {
			matches = append(matches, c)
		}
	}
	return paginate(matches, f.Page, f.PerPage), nil
}
