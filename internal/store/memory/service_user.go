package memory

import (
	"context"
	"sync"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

type ServiceUserStore struct {
	mu   sync.Mutex
	rows map[string]*domain.ServiceUser
}

func newServiceUserStore() *ServiceUserStore {
	return &ServiceUserStore{rows: make(map[string]*domain.ServiceUser)}
}

var _ store.ServiceUserStore = (*ServiceUserStore)(nil)

func (s *ServiceUserStore) Save(_ context.Context, su *domain.ServiceUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[memberKey(su.ServiceID, su.UserID)] = su
	return nil
}

func (s *ServiceUserStore) Find(_ context.Context, serviceID, userID domain.ID) (*domain.ServiceUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	su, ok := s.rows[memberKey(serviceID, userID)]
	if !ok {
		return nil, apperr.NewNotFound("service_user %s/%s not found", serviceID, userID)
	}
	return su, nil
}

func (s *ServiceUserStore) FindByService(_ context.Context, serviceID domain.ID) ([]*domain.ServiceUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.ServiceUser
	for _, su := range s.rows {
		if su.ServiceID == serviceID {
			out = append(out, su)
		}
	}
	return out, nil
}

func (s *ServiceUserStore) Delete(_ context.Context, serviceID, userID domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, memberKey(serviceID, userID))
	return nil
}

func memberKey(serviceID, userID domain.ID) string { return string(serviceID) + "|" + string(userID) }
