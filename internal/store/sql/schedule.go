package sql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// ScheduleStore is the GORM-backed store.ScheduleStore.
type ScheduleStore struct{ db *gorm.DB }

func newScheduleStore(db *gorm.DB) *ScheduleStore { return &ScheduleStore{db: db} }

var _ store.ScheduleStore = (*ScheduleStore)(nil)

func (s *ScheduleStore) Save(ctx context.Context, sc *domain.Schedule) error {
	row, err := scheduleToRow(sc)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return apperr.NewInternal(err, "save schedule")
	}
	return nil
}

func (s *ScheduleStore) Find(ctx context.Context, id domain.ID) (*domain.Schedule, error) {
	var row scheduleRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("schedule %s not found", id)
		}
		return nil, apperr.NewInternal(err, "find schedule")
	}
	return rowToSchedule(&row)
}

func (s *ScheduleStore) FindByUser(ctx context.Context, userID domain.ID) ([]*domain.Schedule, error) {
	var rows []scheduleRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, apperr.NewInternal(err, "find schedules by user")
	}
	out := make([]*domain.Schedule, 0, len(rows))
	for i := range rows {
		sc, err := rowToSchedule(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

func (s *ScheduleStore) Delete(ctx context.Context, id domain.ID) error {
	if err := s.db.WithContext(ctx).Delete(&scheduleRow{}, "id = ?", id).Error; err != nil {
		return apperr.NewInternal(err, "delete schedule")
	}
	return nil
}

func (s *ScheduleStore) FindByMetadata(ctx context.Context, f store.MetadataFilter) ([]*domain.Schedule, error) {
	var rows []scheduleRow
	q := s.db.WithContext(ctx).Where("account_id = ? AND metadata LIKE ?", f.AccountID, metadataLikePattern(f.Key, f.Value))
	q = applyPage(q, f.Page, f.PerPage)
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.NewInternal(err, "find schedules by metadata")
	}
	out := make([]*domain.Schedule, 0, len(rows))
	for i := range rows {
		sc, err := rowToSchedule(&rows[i])
		if err != nil {
			return nil, err
		}
		if sc.Metadata[f.Key] == f.Value {
			out = append(out, sc)
		}
	}
	return out, nil
}
