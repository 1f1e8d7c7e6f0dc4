package sql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// ServiceStore is the GORM-backed store.ServiceStore.
type ServiceStore struct{ db *gorm.DB }

func newServiceStore(db *gorm.DB) *ServiceStore { return &ServiceStore{db: db} }

var _ store.ServiceStore = (*ServiceStore)(nil)

func (s *ServiceStore) Save(ctx context.Context, svc *domain.Service) error {
	if err := s.db.WithContext(ctx).Save(serviceToRow(svc)).Error; err != nil {
		return apperr.NewInternal(err, "save service")
	}
	return nil
}

func (s *ServiceStore) Find(ctx context.Context, id domain.ID) (*domain.Service, error) {
	var row serviceRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("service %s not found", id)
		}
		return nil, apperr.NewInternal(err, "find service")
	}
	return rowToService(&row), nil
}

func (s *ServiceStore) Delete(ctx context.Context, id domain.ID) error {
	if err := s.db.WithContext(ctx).Delete(&serviceRow{}, "id = ?", id).Error; err != nil {
		return apperr.NewInternal(err, "delete service")
	}
	return nil
}

func (s *ServiceStore) FindByMetadata(ctx context.Context, f store.MetadataFilter) ([]*domain.Service, error) {
	var rows []serviceRow
	q := s.db.WithContext(ctx).Where("account_id = ? AND metadata LIKE ?", f.AccountID, metadataLikePattern(f.Key, f.Value))
	q = applyPage(q, f.Page, f.PerPage)
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.NewInternal(err, "find services by metadata")
	}
	out := make([]*domain.Service, 0, len(rows))
	for i := range rows {
		svc := rowToService(&rows[i])
		if svc.Metadata[f.Key] == f.Value {
			out = append(out, svc)
		}
	}
	return out, nil
}
