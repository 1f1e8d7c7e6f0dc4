package sql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// AccountStore is the GORM-backed store.AccountStore/reminder.AccountLoader.
type AccountStore struct{ db *gorm.DB }

func newAccountStore(db *gorm.DB) *AccountStore { return &AccountStore{db: db} }

var _ store.AccountStore = (*AccountStore)(nil)

func (s *AccountStore) Save(ctx context.Context, a *domain.Account) error {
	row, err := accountToRow(a)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return apperr.NewInternal(err, "save account")
	}
	return nil
}

func (s *AccountStore) FindAccount(ctx context.Context, id domain.ID) (*domain.Account, error) {
	var row accountRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("account %s not found", id)
		}
		return nil, apperr.NewInternal(err, "find account")
	}
	return rowToAccount(&row)
}

func (s *AccountStore) FindBySecretAPIKey(ctx context.Context, key string) (*domain.Account, error) {
	var row accountRow
	if err := s.db.WithContext(ctx).First(&row, "secret_api_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("account with given api key not found")
		}
		return nil, apperr.NewInternal(err, "find account by api key")
	}
	return rowToAccount(&row)
}

func (s *AccountStore) Delete(ctx context.Context, id domain.ID) error {
	if err := s.db.WithContext(ctx).Delete(&accountRow{}, "id = ?", id).Error; err != nil {
		return apperr.NewInternal(err, "delete account")
	}
	return nil
}
