package sql

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/unburdy/scheduler-module/internal/domain"
)

// Config holds the Postgres connection settings, grounded on the
// teacher's database.Config.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Connect opens a Postgres connection and runs AutoMigrate.
func Connect(cfg Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// OpenSQLite opens an in-process sqlite database (file path or ":memory:")
// and runs AutoMigrate, for adapter tests — the same pattern the
// calendar module exercises against sqlite in its own tests.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// Store bundles one GORM-backed repository per entity, mirroring
// memory.Store's shape so callers can swap backends without touching
// wiring code.
type Store struct {
	Accounts     *AccountStore
	Users        *UserStore
	Calendars    *CalendarStore
	Events       *EventStore
	Schedules    *ScheduleStore
	Services     *ServiceStore
	ServiceUsers *ServiceUserStore
	Reservations *ReservationStore
	Jobs         *JobStore
	Reminders    *ReminderStore

	db *gorm.DB
}

// New wires a Store over an already-connected, already-migrated db.
func New(db *gorm.DB) *Store {
	return &Store{
		Accounts:     newAccountStore(db),
		Users:        newUserStore(db),
		Calendars:    newCalendarStore(db),
		Events:       newEventStore(db),
		Schedules:    newScheduleStore(db),
		Services:     newServiceStore(db),
		ServiceUsers: newServiceUserStore(db),
		Reservations: newReservationStore(db),
		Jobs:         newJobStore(db),
		Reminders:    newReminderStore(db),
		db:           db,
	}
}

// DeleteEventCascade removes an event along with its reminders and
// expansion jobs (lifecycle & ownership note: "deleting an Event purges
// its reminders and jobs").
func (s *Store) DeleteEventCascade(ctx context.Context, eventID domain.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&reminderRow{}, "event_id = ?", eventID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&expansionJobRow{}, "event_id = ?", eventID).Error; err != nil {
			return err
		}
		return tx.Delete(&eventRow{}, "id = ?", eventID).Error
	})
}

// DeleteCalendarCascade removes a calendar, deleting every event on it
// (and, transitively, their reminders/jobs) (lifecycle & ownership
// note: "deletion of a Calendar cascades").
func (s *Store) DeleteCalendarCascade(ctx context.Context, calendarID domain.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eventIDs []domain.ID
		if err := tx.Model(&eventRow{}).Where("calendar_id = ?", calendarID).Pluck("id", &eventIDs).Error; err != nil {
			return err
		}
		if len(eventIDs) > 0 {
			if err := tx.Delete(&reminderRow{}, "event_id IN ?", eventIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&expansionJobRow{}, "event_id IN ?", eventIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&eventRow{}, "id IN ?", eventIDs).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&calendarRow{}, "id = ?", calendarID).Error
	})
}
