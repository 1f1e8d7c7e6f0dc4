package sql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// EventStore is the GORM-backed store.EventStore/reminder.EventLoader.
type EventStore struct{ db *gorm.DB }

func newEventStore(db *gorm.DB) *EventStore { return &EventStore{db: db} }

var _ store.EventStore = (*EventStore)(nil)

func (s *EventStore) Save(ctx context.Context, e *domain.CalendarEvent) error {
	row, err := eventToRow(e)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return apperr.NewInternal(err, "save event")
	}
	return nil
}

func (s *EventStore) FindEvent(ctx context.Context, id domain.ID) (*domain.CalendarEvent, error) {
	var row eventRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("event %s not found", id)
		}
		return nil, apperr.NewInternal(err, "find event")
	}
	return rowToEvent(&row)
}

func (s *EventStore) FindByCalendar(ctx context.Context, calendarID domain.ID) ([]*domain.CalendarEvent, error) {
	var rows []eventRow
	if err := s.db.WithContext(ctx).Where("calendar_id = ?", calendarID).Find(&rows).Error; err != nil {
		return nil, apperr.NewInternal(err, "find events by calendar")
	}
	out := make([]*domain.CalendarEvent, 0, len(rows))
	for i := range rows {
		e, err := rowToEvent(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Delete removes the event row itself. Purging its reminders and jobs
// is orchestrated by Store.DeleteEventCascade.
func (s *EventStore) Delete(ctx context.Context, id domain.ID) error {
	if err := s.db.WithContext(ctx).Delete(&eventRow{}, "id = ?", id).Error; err != nil {
		return apperr.NewInternal(err, "delete event")
	}
	return nil
}

func (s *EventStore) FindByMetadata(ctx context.Context, f store.MetadataFilter) ([]*domain.CalendarEvent, error) {
	var rows []eventRow
	q := s.db.WithContext(ctx).Where("account_id = ? AND metadata LIKE ?", f.AccountID, metadataLikePattern(f.Key, f.Value))
	q = applyPage(q, f.Page, f.PerPage)
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.NewInternal(err, "find events by metadata")
	}
	out := make([]*domain.CalendarEvent, 0, len(rows))
	for i := range rows {
		e, err := rowToEvent(&rows[i])
		if err != nil {
			return nil, err
		}
		if e.Metadata[f.Key] == f.Value {
			out = append(out, e)
		}
	}
	return out, nil
}
