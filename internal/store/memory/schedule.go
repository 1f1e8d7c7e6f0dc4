package memory

import (
	"context"
	"sync"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

type ScheduleStore struct {
	mu   sync.Mutex
	rows map[domain.ID]*domain.Schedule
}

func newScheduleStore() *ScheduleStore {
	return &ScheduleStore{rows: make(map[domain.ID]*domain.Schedule)}
}

var _ store.ScheduleStore = (*ScheduleStore)(nil)

func (s *ScheduleStore) Save(_ context.Context, sc *domain.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[sc.ID] = sc
	return nil
}

func (s *ScheduleStore) Find(_ context.Context, id domain.ID) (*domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.rows[id]
	if !ok {
		return nil, apperr.NewNotFound("schedule %s not found", id)
	}
	return sc, nil
}

func (s *ScheduleStore) FindByUser(_ context.Context, userID domain.ID) ([]*domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Schedule
	for _, sc := range s.rows {
		if sc.UserID == userID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *ScheduleStore) Delete(_ context.Context, id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *ScheduleStore) FindByMetadata(_ context.Context, f store.MetadataFilter) ([]*domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []*domain.Schedule
	for _, sc := range s.rows {
		if sc.AccountID == f.AccountID && sc.Metadata[f.Key] == f.Value {
			matches = append(matches, sc)
		}
	}
	return paginate(matches, f.Page, f.PerPage), nil
}
