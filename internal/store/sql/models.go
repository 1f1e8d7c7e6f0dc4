// Package sql implements the DomainStore port over GORM (§9): sqlite for
// adapter tests (matching the teacher's own calendar-module test
// pattern), postgres for production. Each entity keeps a GORM row model
// distinct from its domain.* type, converted at the repository boundary
// — the same separation modules/calendar/entities draws from its
// services layer. domain.ID and domain.Metadata already implement
// driver.Valuer/sql.Scanner (internal/domain/id.go, metadata.go), so
// rows embed them directly instead of re-deriving string columns.
package sql

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
)

type accountRow struct {
	ID              domain.ID `gorm:"primarykey;size:20"`
	SecretAPIKey    string    `gorm:"size:255"`
	PublicJWTKeyPEM string    `gorm:"type:text"`
	WebhookURL      string    `gorm:"size:500"`
	WebhookKey      string    `gorm:"size:255"`
	Integrations    string    `gorm:"type:text"` // JSON map[string]domain.IntegrationCredentials
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (accountRow) TableName() string { return "accounts" }

func accountToRow(a *domain.Account) (*accountRow, error) {
	integrations, err := marshalJSON(a.Integrations)
	if err != nil {
		return nil, err
	}
	r := &accountRow{ID: a.ID, SecretAPIKey: a.SecretAPIKey, PublicJWTKeyPEM: a.PublicJWTKeyPEM, Integrations: integrations}
	if a.Webhook != nil {
		r.WebhookURL = a.Webhook.URL
		r.WebhookKey = a.Webhook.VerificationKey
	}
	return r, nil
}

func rowToAccount(r *accountRow) (*domain.Account, error) {
	a := &domain.Account{ID: r.ID, SecretAPIKey: r.SecretAPIKey, PublicJWTKeyPEM: r.PublicJWTKeyPEM}
	if r.WebhookURL != "" {
		a.Webhook = &domain.AccountWebhook{URL: r.WebhookURL, VerificationKey: r.WebhookKey}
	}
	if err := unmarshalJSON(r.Integrations, &a.Integrations); err != nil {
		return nil, err
	}
	return a, nil
}

type userRow struct {
	ID        domain.ID       `gorm:"primarykey;size:20"`
	AccountID domain.ID       `gorm:"size:20;index"`
	Metadata  domain.Metadata `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRow) TableName() string { return "users" }

func userToRow(u *domain.User) *userRow {
	return &userRow{ID: u.ID, AccountID: u.AccountID, Metadata: u.Metadata}
}

func rowToUser(r *userRow) *domain.User {
	return &domain.User{ID: r.ID, AccountID: r.AccountID, Metadata: r.Metadata}
}

type calendarRow struct {
	ID        domain.ID `gorm:"primarykey;size:20"`
	UserID    domain.ID `gorm:"size:20;index"`
	AccountID domain.ID `gorm:"size:20;index"`
	WeekStart int
	Timezone  string          `gorm:"size:100"`
	Metadata  domain.Metadata `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (calendarRow) TableName() string { return "calendars" }

func calendarToRow(c *domain.Calendar) *calendarRow {
	return &calendarRow{
		ID: c.ID, UserID: c.UserID, AccountID: c.AccountID,
		WeekStart: c.Settings.WeekStart, Timezone: c.Settings.Timezone, Metadata: c.Metadata,
	}
}

func rowToCalendar(r *calendarRow) *domain.Calendar {
	return &domain.Calendar{
		ID: r.ID, UserID: r.UserID, AccountID: r.AccountID,
		Settings: domain.CalendarSettings{WeekStart: r.WeekStart, Timezone: r.Timezone},
		Metadata: r.Metadata,
	}
}

type eventRow struct {
	ID          domain.ID `gorm:"primarykey;size:20"`
	CalendarID  domain.ID `gorm:"size:20;index"`
	UserID      domain.ID `gorm:"size:20;index"`
	AccountID   domain.ID `gorm:"size:20;index"`
	StartTs     int64
	DurationMs  int64
	Busy        bool
	Recurrence  string `gorm:"type:text"` // JSON *domain.RRuleOptions, empty when nil
	Exdates     string `gorm:"type:text"` // JSON []domain.Timestamp
	ReminderCfg string `gorm:"type:text"` // JSON *domain.ReminderConfig, empty when nil
	Version     int64
	Metadata    domain.Metadata `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (eventRow) TableName() string { return "calendar_events" }

func eventToRow(e *domain.CalendarEvent) (*eventRow, error) {
	recurrence, err := marshalJSON(e.Recurrence)
	if err != nil {
		return nil, err
	}
	exdates, err := marshalJSON(e.Exdates)
	if err != nil {
		return nil, err
	}
	reminderCfg, err := marshalJSON(e.Reminder)
	if err != nil {
		return nil, err
	}
	return &eventRow{
		ID: e.ID, CalendarID: e.CalendarID, UserID: e.UserID, AccountID: e.AccountID,
		StartTs: e.StartTs, DurationMs: e.DurationMs, Busy: e.Busy,
		Recurrence: recurrence, Exdates: exdates, ReminderCfg: reminderCfg,
		Version: e.Version, Metadata: e.Metadata,
	}, nil
}

func rowToEvent(r *eventRow) (*domain.CalendarEvent, error) {
	var recurrence *domain.RRuleOptions
	if err := unmarshalJSON(r.Recurrence, &recurrence); err != nil {
		return nil, err
	}
	var exdates []domain.Timestamp
	if err := unmarshalJSON(r.Exdates, &exdates); err != nil {
		return nil, err
	}
	var reminderCfg *domain.ReminderConfig
	if err := unmarshalJSON(r.ReminderCfg, &reminderCfg); err != nil {
		return nil, err
	}
	return &domain.CalendarEvent{
		ID: r.ID, CalendarID: r.CalendarID, UserID: r.UserID, AccountID: r.AccountID,
		StartTs: r.StartTs, DurationMs: r.DurationMs, Busy: r.Busy,
		Recurrence: recurrence, Exdates: exdates, Reminder: reminderCfg,
		Version: r.Version, Metadata: r.Metadata,
	}, nil
}

type scheduleRow struct {
	ID        domain.ID `gorm:"primarykey;size:20"`
	UserID    domain.ID `gorm:"size:20;index"`
	AccountID domain.ID `gorm:"size:20;index"`
	Timezone  string          `gorm:"size:100"`
	Rules     string          `gorm:"type:text"` // JSON []domain.ScheduleRule
	Metadata  domain.Metadata `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (scheduleRow) TableName() string { return "schedules" }

func scheduleToRow(s *domain.Schedule) (*scheduleRow, error) {
	rules, err := marshalJSON(s.Rules)
	if err != nil {
		return nil, err
	}
	return &scheduleRow{
		ID: s.ID, UserID: s.UserID, AccountID: s.AccountID,
		Timezone: s.Timezone, Rules: rules, Metadata: s.Metadata,
	}, nil
}

func rowToSchedule(r *scheduleRow) (*domain.Schedule, error) {
	var rules []domain.ScheduleRule
	if err := unmarshalJSON(r.Rules, &rules); err != nil {
		return nil, err
	}
	return &domain.Schedule{
		ID: r.ID, UserID: r.UserID, AccountID: r.AccountID,
		Timezone: r.Timezone, Rules: rules, Metadata: r.Metadata,
	}, nil
}

type serviceRow struct {
	ID             domain.ID `gorm:"primarykey;size:20"`
	AccountID      domain.ID `gorm:"size:20;index"`
	Kind           string `gorm:"size:20"`
	Strategy       string `gorm:"size:30"`
	Capacity       int
	ReservationCap int
	Metadata       domain.Metadata `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (serviceRow) TableName() string { return "services" }

func serviceToRow(s *domain.Service) *serviceRow {
	return &serviceRow{
		ID: s.ID, AccountID: s.AccountID,
		Kind: string(s.MultiPersonOptions.Kind), Strategy: string(s.MultiPersonOptions.Strategy),
		Capacity: s.MultiPersonOptions.Capacity, ReservationCap: s.MultiPersonOptions.ReservationCap,
		Metadata: s.Metadata,
	}
}

func rowToService(r *serviceRow) *domain.Service {
	return &domain.Service{
		ID: r.ID, AccountID: r.AccountID,
		MultiPersonOptions: domain.MultiPersonOptions{
			Kind: domain.MultiPersonKind(r.Kind), Strategy: domain.RoundRobinStrategy(r.Strategy),
			Capacity: r.Capacity, ReservationCap: r.ReservationCap,
		},
		Metadata: r.Metadata,
	}
}

type serviceUserRow struct {
	ServiceID             domain.ID `gorm:"primarykey;size:20"`
	UserID                domain.ID `gorm:"primarykey;size:20"`
	AvailabilityKind      string    `gorm:"size:20"`
	ScheduleID            domain.ID `gorm:"size:20"`
	CalendarID            domain.ID `gorm:"size:20"`
	Busy                  string    `gorm:"type:text"` // JSON []domain.ID
	BufferAfterMs         int64
	ClosestBookingMs      int64
	FurthestBookingMs     *int64
	ExternalBusyCalendars string `gorm:"type:text"` // JSON []domain.ExternalBusyCalendar
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (serviceUserRow) TableName() string { return "service_users" }

func serviceUserToRow(su *domain.ServiceUser) (*serviceUserRow, error) {
	busy, err := marshalJSON(su.Busy)
	if err != nil {
		return nil, err
	}
	ext, err := marshalJSON(su.ExternalBusyCalendars)
	if err != nil {
		return nil, err
	}
	return &serviceUserRow{
		ServiceID: su.ServiceID, UserID: su.UserID,
		AvailabilityKind: string(su.Availability.Kind),
		ScheduleID:       su.Availability.ScheduleID,
		CalendarID:       su.Availability.CalendarID,
		Busy:             busy, BufferAfterMs: su.BufferAfterMs, ClosestBookingMs: su.ClosestBookingMs,
		FurthestBookingMs: su.FurthestBookingMs, ExternalBusyCalendars: ext,
	}, nil
}

func rowToServiceUser(r *serviceUserRow) (*domain.ServiceUser, error) {
	var busy []domain.ID
	if err := unmarshalJSON(r.Busy, &busy); err != nil {
		return nil, err
	}
	var ext []domain.ExternalBusyCalendar
	if err := unmarshalJSON(r.ExternalBusyCalendars, &ext); err != nil {
		return nil, err
	}
	return &domain.ServiceUser{
		ServiceID: r.ServiceID, UserID: r.UserID,
		Availability: domain.TimePlan{
			Kind:       domain.TimePlanKind(r.AvailabilityKind),
			ScheduleID: r.ScheduleID, CalendarID: r.CalendarID,
		},
		Busy: busy, BufferAfterMs: r.BufferAfterMs, ClosestBookingMs: r.ClosestBookingMs,
		FurthestBookingMs: r.FurthestBookingMs, ExternalBusyCalendars: ext,
	}, nil
}

// reservationRow is one granted reservation intent, mirroring
// domain.ServiceReservation directly: CreateIntentIfBelowCap counts
// rows matching (service_id, slot_start) inside a transaction and
// inserts a new row only while count < cap, rather than maintaining a
// separate counter row.
type reservationRow struct {
	ID        domain.ID `gorm:"primarykey;size:20"`
	ServiceID domain.ID `gorm:"size:20;index:idx_service_slot"`
	SlotStart int64     `gorm:"index:idx_service_slot"`
}

func (reservationRow) TableName() string { return "service_reservations" }

type expansionJobRow struct {
	ID        domain.ID `gorm:"primarykey;size:20"`
	EventID   domain.ID `gorm:"size:20;index"`
	Timestamp int64     `gorm:"index"`
	Version   int64
}

func (expansionJobRow) TableName() string { return "event_reminder_expansion_jobs" }

func jobToRow(j *domain.EventRemindersExpansionJob) *expansionJobRow {
	return &expansionJobRow{ID: j.ID, EventID: j.EventID, Timestamp: j.Timestamp, Version: j.Version}
}

func rowToJob(r *expansionJobRow) *domain.EventRemindersExpansionJob {
	return &domain.EventRemindersExpansionJob{ID: r.ID, EventID: r.EventID, Timestamp: r.Timestamp, Version: r.Version}
}

type reminderRow struct {
	ID         domain.ID `gorm:"primarykey;size:20"`
	EventID    domain.ID `gorm:"size:20;uniqueIndex:idx_event_remind_at"`
	AccountID  domain.ID `gorm:"size:20;index"`
	Identifier string    `gorm:"size:255"`
	RemindAt   int64     `gorm:"uniqueIndex:idx_event_remind_at;index"`
	Priority   int64
	Version    int64
}

func (reminderRow) TableName() string { return "reminders" }

func reminderToRow(r *domain.Reminder) *reminderRow {
	return &reminderRow{
		ID: r.ID, EventID: r.EventID, AccountID: r.AccountID, Identifier: r.Identifier,
		RemindAt: r.RemindAt, Priority: int64(r.Priority), Version: r.Version,
	}
}

func rowToReminder(r *reminderRow) *domain.Reminder {
	return &domain.Reminder{
		ID: r.ID, EventID: r.EventID, AccountID: r.AccountID, Identifier: r.Identifier,
		RemindAt: r.RemindAt, Priority: domain.Priority(r.Priority), Version: r.Version,
	}
}

// Models lists every row type, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&accountRow{}, &userRow{}, &calendarRow{}, &eventRow{}, &scheduleRow{},
		&serviceRow{}, &serviceUserRow{}, &reservationRow{}, &expansionJobRow{}, &reminderRow{},
	}
}

// Migrate auto-migrates every row model into db.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func marshalJSON(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", apperr.NewInternal(err, "marshal column")
	}
	return string(b), nil
}

func unmarshalJSON(s string, out interface{}) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), out); err != nil {
		return apperr.NewInternal(err, "unmarshal column")
	}
	return nil
}
