// Package store defines the DomainStore port: one interface per entity,
// each offering insert/save/find/delete/find_by_metadata, with two
// implementations living in the memory/ and sql/ subpackages (§9 "Storage
// as a port" — the in-memory variant is test infrastructure, the SQL
// variant via GORM is production).
package store

import (
	"context"

	"github.com/unburdy/scheduler-module/internal/domain"
)

// MetadataFilter is the key+value equality lookup with pagination the
// design notes call for (§9 "Metadata search").
type MetadataFilter struct {
	AccountID domain.ID
	Key       string
	Value     string
	Page      int
	PerPage   int
}

// AccountStore persists Accounts. FindAccount's signature matches
// reminder.AccountLoader so any AccountStore satisfies it structurally.
type AccountStore interface {
	Save(ctx context.Context, a *domain.Account) error
	FindAccount(ctx context.Context, id domain.ID) (*domain.Account, error)
	// FindBySecretAPIKey resolves the account owning an `x-api-key`
	// value, for the admin-route authentication scheme (§6).
	FindBySecretAPIKey(ctx context.Context, key string) (*domain.Account, error)
	Delete(ctx context.Context, id domain.ID) error
}

// UserStore persists Users.
type UserStore interface {
	Save(ctx context.Context, u *domain.User) error
	Find(ctx context.Context, id domain.ID) (*domain.User, error)
	FindByAccount(ctx context.Context, accountID domain.ID) ([]*domain.User, error)
	Delete(ctx context.Context, id domain.ID) error
	FindByMetadata(ctx context.Context, f MetadataFilter) ([]*domain.User, error)
}

// CalendarStore persists Calendars. Delete removes only the calendar
// itself; cascading to its events (and their reminders/jobs) is done by
// each backend's Store.DeleteCalendarCascade.
type CalendarStore interface {
	Save(ctx context.Context, c *domain.Calendar) error
	Find(ctx context.Context, id domain.ID) (*domain.Calendar, error)
	FindByUser(ctx context.Context, userID domain.ID) ([]*domain.Calendar, error)
	Delete(ctx context.Context, id domain.ID) error
	FindByMetadata(ctx context.Context, f MetadataFilter) ([]*domain.Calendar, error)
}

// EventStore persists CalendarEvents. FindEvent's signature matches
// reminder.EventLoader so any EventStore satisfies it structurally.
// Delete removes only the event; purging its reminders and jobs is done
// by each backend's Store.DeleteEventCascade.
type EventStore interface {
	Save(ctx context.Context, e *domain.CalendarEvent) error
	FindEvent(ctx context.Context, id domain.ID) (*domain.CalendarEvent, error)
	FindByCalendar(ctx context.Context, calendarID domain.ID) ([]*domain.CalendarEvent, error)
	Delete(ctx context.Context, id domain.ID) error
	FindByMetadata(ctx context.Context, f MetadataFilter) ([]*domain.CalendarEvent, error)
}

// ScheduleStore persists Schedules.
type ScheduleStore interface {
	Save(ctx context.Context, s *domain.Schedule) error
	Find(ctx context.Context, id domain.ID) (*domain.Schedule, error)
	FindByUser(ctx context.Context, userID domain.ID) ([]*domain.Schedule, error)
	Delete(ctx context.Context, id domain.ID) error
	FindByMetadata(ctx context.Context, f MetadataFilter) ([]*domain.Schedule, error)
}

// ServiceStore persists Services.
type ServiceStore interface {
	Save(ctx context.Context, s *domain.Service) error
	Find(ctx context.Context, id domain.ID) (*domain.Service, error)
	Delete(ctx context.Context, id domain.ID) error
	FindByMetadata(ctx context.Context, f MetadataFilter) ([]*domain.Service, error)
}

// ServiceUserStore persists ServiceUser memberships, keyed by
// (service_id, user_id).
type ServiceUserStore interface {
	Save(ctx context.Context, su *domain.ServiceUser) error
	Find(ctx context.Context, serviceID, userID domain.ID) (*domain.ServiceUser, error)
	FindByService(ctx context.Context, serviceID domain.ID) ([]*domain.ServiceUser, error)
	Delete(ctx context.Context, serviceID, userID domain.ID) error
}

// ReservationStore tracks per-slot reservation counters (§4.3, §8
// testable property 7: "Reservation cap").
type ReservationStore interface {
	// CreateIntentIfBelowCap atomically inserts a ServiceReservation for
	// (serviceID, slotStart) only if fewer than cap already exist,
	// reporting whether the intent was created.
	CreateIntentIfBelowCap(ctx context.Context, serviceID domain.ID, slotStart domain.Timestamp, cap int) (bool, error)
	Remove(ctx context.Context, serviceID domain.ID, slotStart domain.Timestamp) error
	CountAt(ctx context.Context, serviceID domain.ID, slotStart domain.Timestamp) (int, error)
}
