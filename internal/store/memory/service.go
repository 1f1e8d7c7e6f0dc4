package memory

import (
	"context"
	"sync"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

type ServiceStore struct {
	mu   sync.Mutex
	rows map[domain.ID]*domain.Service
}

func newServiceStore() *ServiceStore {
	return &ServiceStore{rows: make(map[domain.ID]*domain.Service)}
}

var _ store.ServiceStore = (*ServiceStore)(nil)

func (s *ServiceStore) Save(_ context.Context, svc *domain.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[svc.ID] = svc
	return nil
}

func (s *ServiceStore) Find(_ context.Context, id domain.ID) (*domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.rows[id]
	if !ok {
		return nil, apperr.NewNotFound("service %s not found", id)
	}
	return svc, nil
}

func (s *ServiceStore) Delete(_ context.Context, id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *ServiceStore) FindByMetadata(_ context.Context, f store.MetadataFilter) ([]*domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []*domain.Service
	for _, svc := range s.rows {
		if svc.AccountID == f.AccountID && svc.Metadata[f.Key] == f.Value {
			matches = append(matches, svc)
		}
	}
	return paginate(matches, f.Page, f.PerPage), nil
}
