package memory

import (
	"context"
	"sync"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// AccountStore is the in-memory AccountStore/reminder.AccountLoader.
type AccountStore struct {
	mu   sync.Mutex
	rows map[domain.ID]*domain.Account
}

func newAccountStore() *AccountStore {
	return &AccountStore{rows: make(map[domain.ID]*domain.Account)}
}

var _ store.AccountStore = (*AccountStore)(nil)

func (s *AccountStore) Save(_ context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[a.ID] = a
	return nil
}

func (s *AccountStore) FindAccount(_ context.Context, id domain.ID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, apperr.NewNotFound("account %s not found", id)
	}
	return a, nil
}

func (s *AccountStore) FindBySecretAPIKey(_ context.Context, key string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.rows {
		if a.SecretAPIKey == key {
			return a, nil
		}
	}
	return nil, apperr.NewNotFound("account with given api key not found")
}

func (s *AccountStore) Delete(_ context.Context, id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}
