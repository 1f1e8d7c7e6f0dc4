package sql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// CalendarStore is the GORM-backed store.CalendarStore.
type CalendarStore struct{ db *gorm.DB }

func newCalendarStore(db *gorm.DB) *CalendarStore { return &CalendarStore{db: db} }

var _ store.CalendarStore = (*CalendarStore)(nil)

func (s *CalendarStore) Save(ctx context.Context, c *domain.Calendar) error {
	if err := s.db.WithContext(ctx).Save(calendarToRow(c)).Error; err != nil {
		return apperr.NewInternal(err, "save calendar")
	}
	return nil
}

func (s *CalendarStore) Find(ctx context.Context, id domain.ID) (*domain.Calendar, error) {
	var row calendarRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("calendar %s not found", id)
		}
		return nil, apperr.NewInternal(err, "find calendar")
	}
	return rowToCalendar(&row), nil
}

func (s *CalendarStore) FindByUser(ctx context.Context, userID domain.ID) ([]*domain.Calendar, error) {
	var rows []calendarRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, apperr.NewInternal(err, "find calendars by user")
	}
	out := make([]*domain.Calendar, len(rows))
	for i := range rows {
		out[i] = rowToCalendar(&rows[i])
	}
	return out, nil
}

// Delete removes the calendar row itself. Cascading its events (and
// their reminders/jobs) is orchestrated by Store.DeleteCalendarCascade,
// since that spans multiple repositories (lifecycle & ownership note).
func (s *CalendarStore) Delete(ctx context.Context, id domain.ID) error {
	if err := s.db.WithContext(ctx).Delete(&calendarRow{}, "id = ?", id).Error; err != nil {
		return apperr.NewInternal(err, "delete calendar")
	}
	return nil
}

func (s *CalendarStore) FindByMetadata(ctx context.Context, f store.MetadataFilter) ([]*domain.Calendar, error) {
	var rows []calendarRow
	q := s.db.WithContext(ctx).Where("account_id = ? AND metadata LIKE ?", f.AccountID, metadataLikePattern(f.Key, f.Value))
	q = applyPage(q, f.Page, f.PerPage)
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.NewInternal(err, "find calendars by metadata")
	}
	out := make([]*domain.Calendar, 0, len(rows))
	for i := range rows {
		c := rowToCalendar(&rows[i])
		if c.Metadata[f.Key] == f.Value {
			out = append(out, c)
		}
	}
	return out, nil
}
