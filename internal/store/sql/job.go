package sql

import (
	"context"

	"gorm.io/gorm"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/reminder"
)

// JobStore is the GORM-backed reminder.JobStore.
type JobStore struct{ db *gorm.DB }

func newJobStore(db *gorm.DB) *JobStore { return &JobStore{db: db} }

var _ reminder.JobStore = (*JobStore)(nil)

func (s *JobStore) DueForExpansion(ctx context.Context, before domain.Timestamp) ([]*domain.EventRemindersExpansionJob, error) {
	var rows []expansionJobRow
	if err := s.db.WithContext(ctx).Where("timestamp <= ?", before).Find(&rows).Error; err != nil {
		return nil, apperr.NewInternal(err, "find due expansion jobs")
	}
	out := make([]*domain.EventRemindersExpansionJob, len(rows))
	for i := range rows {
		out[i] = rowToJob(&rows[i])
	}
	return out, nil
}

func (s *JobStore) Upsert(ctx context.Context, job *domain.EventRemindersExpansionJob) error {
	if err := s.db.WithContext(ctx).Save(jobToRow(job)).Error; err != nil {
		return apperr.NewInternal(err, "upsert expansion job")
	}
	return nil
}

func (s *JobStore) Delete(ctx context.Context, id domain.ID) error {
	if err := s.db.WithContext(ctx).Delete(&expansionJobRow{}, "id = ?", id).Error; err != nil {
		return apperr.NewInternal(err, "delete expansion job")
	}
	return nil
}
