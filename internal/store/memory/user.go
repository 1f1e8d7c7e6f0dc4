package memory

import (
	"context"
	"sync"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

type UserStore struct {
	mu   sync.Mutex
	rows map[domain.ID]*domain.User
}

func newUserStore() *UserStore { return &UserStore{rows: make(map[domain.ID]*domain.User)} }

var _ store.UserStore = (*UserStore)(nil)

func (s *UserStore) Save(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[u.ID] = u
	return nil
}

func (s *UserStore) Find(_ context.Context, id domain.ID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, apperr.NewNotFound("user %s not found", id)
	}
	return u, nil
}

func (s *UserStore) FindByAccount(_ context.Context, accountID domain.ID) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.User
	for _, u := range s.rows {
		if u.AccountID == accountID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *UserStore) Delete(_ context.Context, id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *UserStore) FindByMetadata(_ context.Context, f store.MetadataFilter) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []*domain.User
	for _, u := range s.rows {
		if u.AccountID == f.AccountID && u.Metadata[f.Key] == f.Value {
			matches = append(matches, u)
		}
	}
	return paginate(matches, f.Page, f.PerPage), nil
}
