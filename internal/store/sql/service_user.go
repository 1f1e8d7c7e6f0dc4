package sql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// ServiceUserStore is the GORM-backed store.ServiceUserStore, keyed by
// the composite (service_id, user_id) primary key.
type ServiceUserStore struct{ db *gorm.DB }

func newServiceUserStore(db *gorm.DB) *ServiceUserStore { return &ServiceUserStore{db: db} }

var _ store.ServiceUserStore = (*ServiceUserStore)(nil)

func (s *ServiceUserStore) Save(ctx context.Context, su *domain.ServiceUser) error {
	row, err := serviceUserToRow(su)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return apperr.NewInternal(err, "save service_user")
	}
	return nil
}

func (s *ServiceUserStore) Find(ctx context.Context, serviceID, userID domain.ID) (*domain.ServiceUser, error) {
	var row serviceUserRow
	if err := s.db.WithContext(ctx).First(&row, "service_id = ? AND user_id = ?", serviceID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("service_user %s/%s not found", serviceID, userID)
		}
		return nil, apperr.NewInternal(err, "find service_user")
	}
	return rowToServiceUser(&row)
}

func (s *ServiceUserStore) FindByService(ctx context.Context, serviceID domain.ID) ([]*domain.ServiceUser, error) {
	var rows []serviceUserRow
	if err := s.db.WithContext(ctx).Where("service_id = ?", serviceID).Find(&rows).Error; err != nil {
		return nil, apperr.NewInternal(err, "find service_users by service")
	}
	out := make([]*domain.ServiceUser, 0, len(rows))
	for i := range rows {
		su, err := rowToServiceUser(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, su)
	}
	return out, nil
}

func (s *ServiceUserStore) Delete(ctx context.Context, serviceID, userID domain.ID) error {
	err := s.db.WithContext(ctx).Delete(&serviceUserRow{}, "service_id = ? AND user_id = ?", serviceID, userID).Error
	if err != nil {
		return apperr.NewInternal(err, "delete service_user")
	}
	return nil
}
