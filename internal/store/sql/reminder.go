package sql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/reminder"
)

// ReminderStore is the GORM-backed reminder.ReminderStore.
type ReminderStore struct{ db *gorm.DB }

func newReminderStore(db *gorm.DB) *ReminderStore { return &ReminderStore{db: db} }

var _ reminder.ReminderStore = (*ReminderStore)(nil)

func (s *ReminderStore) FindByEventAndRemindAt(ctx context.Context, eventID domain.ID, remindAt domain.Timestamp) (*domain.Reminder, error) {
	var row reminderRow
	err := s.db.WithContext(ctx).First(&row, "event_id = ? AND remind_at = ?", eventID, remindAt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("reminder for event %s at %d not found", eventID, remindAt)
		}
		return nil, apperr.NewInternal(err, "find reminder")
	}
	return rowToReminder(&row), nil
}

func (s *ReminderStore) Save(ctx context.Context, r *domain.Reminder) error {
	if err := s.db.WithContext(ctx).Save(reminderToRow(r)).Error; err != nil {
		return apperr.NewInternal(err, "save reminder")
	}
	return nil
}

func (s *ReminderStore) Delete(ctx context.Context, id domain.ID) error {
	if err := s.db.WithContext(ctx).Delete(&reminderRow{}, "id = ?", id).Error; err != nil {
		return apperr.NewInternal(err, "delete reminder")
	}
	return nil
}

// DeleteDueReturning claims every reminder due at or before `before`:
// select then delete inside one transaction, so concurrent senders
// can't both claim the same row (at-most-once delivery, §4.4).
func (s *ReminderStore) DeleteDueReturning(ctx context.Context, before domain.Timestamp) ([]*domain.Reminder, error) {
	var due []*domain.Reminder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []reminderRow
		if err := tx.Clauses(lockingClause()).Where("remind_at <= ?", before).Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		ids := make([]domain.ID, len(rows))
		due = make([]*domain.Reminder, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
			due[i] = rowToReminder(&rows[i])
		}
		return tx.Delete(&reminderRow{}, "id IN ?", ids).Error
	})
	if err != nil {
		return nil, apperr.NewInternal(err, "claim due reminders")
	}
	return due, nil
}
