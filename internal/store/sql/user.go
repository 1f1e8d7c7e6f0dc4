package sql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// UserStore is the GORM-backed store.UserStore.
type UserStore struct{ db *gorm.DB }

func newUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

var _ store.UserStore = (*UserStore)(nil)

func (s *UserStore) Save(ctx context.Context, u *domain.User) error {
	if err := s.db.WithContext(ctx).Save(userToRow(u)).Error; err != nil {
		return apperr.NewInternal(err, "save user")
	}
	return nil
}

func (s *UserStore) Find(ctx context.Context, id domain.ID) (*domain.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("user %s not found", id)
		}
		return nil, apperr.NewInternal(err, "find user")
	}
	return rowToUser(&row), nil
}

func (s *UserStore) FindByAccount(ctx context.Context, accountID domain.ID) ([]*domain.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Where("account_id = ?", accountID).Find(&rows).Error; err != nil {
		return nil, apperr.NewInternal(err, "find users by account")
	}
	out := make([]*domain.User, len(rows))
	for i := range rows {
		out[i] = rowToUser(&rows[i])
	}
	return out, nil
}

func (s *UserStore) Delete(ctx context.Context, id domain.ID) error {
	if err := s.db.WithContext(ctx).Delete(&userRow{}, "id = ?", id).Error; err != nil {
		return apperr.NewInternal(err, "delete user")
	}
	return nil
}

func (s *UserStore) FindByMetadata(ctx context.Context, f store.MetadataFilter) ([]*domain.User, error) {
	var rows []userRow
	q := s.db.WithContext(ctx).Where("account_id = ? AND metadata LIKE ?", f.AccountID, metadataLikePattern(f.Key, f.Value))
	q = applyPage(q, f.Page, f.PerPage)
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.NewInternal(err, "find users by metadata")
	}
	out := make([]*domain.User, 0, len(rows))
	for i := range rows {
		u := rowToUser(&rows[i])
		if u.Metadata[f.Key] == f.Value {
			out = append(out, u)
		}
	}
	return out, nil
}
