package httpapi

import (
	"github.com/unburdy/scheduler-module/internal/domain"
)

// Wire DTOs use lowerCamelCase keys and i64-millisecond timestamps (§6).
// Domain types use Go field names internally; these shapes are the only
// place that translates between the two.

type rruleDTO struct {
	Frequency  string               `json:"frequency"`
	Interval   int                  `json:"interval"`
	Count      *int                 `json:"count,omitempty"`
	UntilTs    *int64               `json:"untilTs,omitempty"`
	ByWeekday  []weekdayOccDTO      `json:"byWeekday,omitempty"`
	ByMonthDay []int                `json:"byMonthDay,omitempty"`
	ByYearDay  []int                `json:"byYearDay,omitempty"`
	ByMonth    []int                `json:"byMonth,omitempty"`
	WeekStart  int                  `json:"weekStart"`
	Timezone   string               `json:"timezone,omitempty"`
}

type weekdayOccDTO struct {
	Weekday int `json:"weekday"`
	Nth     int `json:"nth"`
}

func rruleFromDomain(r *domain.RRuleOptions) *rruleDTO {
	if r == nil {
		return nil
	}
	out := &rruleDTO{
		Frequency:  string(r.Frequency),
		Interval:   r.Interval,
		Count:      r.Count,
		UntilTs:    r.UntilTs,
		ByMonthDay: r.ByMonthDay,
		ByYearDay:  r.ByYearDay,
		ByMonth:    r.ByMonth,
		WeekStart:  int(r.WeekStart),
		Timezone:   r.Timezone,
	}
	for _, wd := range r.ByWeekday {
		out.ByWeekday = append(out.ByWeekday, weekdayOccDTO{Weekday: int(wd.Weekday), Nth: wd.Nth})
	}
	return out
}

func (d *rruleDTO) toDomain() *domain.RRuleOptions {
	if d == nil {
		return nil
	}
	out := &domain.RRuleOptions{
		Frequency:  domain.Frequency(d.Frequency),
		Interval:   d.Interval,
		Count:      d.Count,
		UntilTs:    d.UntilTs,
		ByMonthDay: d.ByMonthDay,
		ByYearDay:  d.ByYearDay,
		ByMonth:    d.ByMonth,
		WeekStart:  domain.Weekday(d.WeekStart),
		Timezone:   d.Timezone,
	}
	for _, wd := range d.ByWeekday {
		out.ByWeekday = append(out.ByWeekday, domain.WeekdayOccurrence{Weekday: domain.Weekday(wd.Weekday), Nth: wd.Nth})
	}
	return out
}

type reminderConfigDTO struct {
	DeltaMinutes int    `json:"deltaMinutes"`
	Identifier   string `json:"identifier"`
}

func reminderConfigFromDomain(r *domain.ReminderConfig) *reminderConfigDTO {
	if r == nil {
		return nil
	}
	return &reminderConfigDTO{DeltaMinutes: r.DeltaMinutes, Identifier: r.Identifier}
}

func (d *reminderConfigDTO) toDomain() *domain.ReminderConfig {
	if d == nil {
		return nil
	}
	return &domain.ReminderConfig{DeltaMinutes: d.DeltaMinutes, Identifier: d.Identifier}
}

type eventDTO struct {
	ID         domain.ID          `json:"id"`
	CalendarID domain.ID          `json:"calendarId"`
	UserID     domain.ID          `json:"userId"`
	AccountID  domain.ID          `json:"accountId"`
	StartTs    int64              `json:"startTs"`
	DurationMs int64              `json:"durationMs"`
	Busy       bool               `json:"busy"`
	Recurrence *rruleDTO          `json:"recurrence,omitempty"`
	Exdates    []int64            `json:"exdates,omitempty"`
	Reminder   *reminderConfigDTO `json:"reminder,omitempty"`
	Version    int64              `json:"version"`
	Metadata   map[string]string  `json:"metadata,omitempty"`
}

func eventFromDomain(e *domain.CalendarEvent) eventDTO {
	return eventDTO{
		ID:         e.ID,
		CalendarID: e.CalendarID,
		UserID:     e.UserID,
		AccountID:  e.AccountID,
		StartTs:    e.StartTs,
		DurationMs: e.DurationMs,
		Busy:       e.Busy,
		Recurrence: rruleFromDomain(e.Recurrence),
		Exdates:    e.Exdates,
		Reminder:   reminderConfigFromDomain(e.Reminder),
		Version:    e.Version,
		Metadata:   e.Metadata,
	}
}

type createEventRequest struct {
	CalendarID domain.ID          `json:"calendarId" binding:"required"`
	StartTs    int64              `json:"startTs" binding:"required"`
	DurationMs int64              `json:"durationMs" binding:"required"`
	Busy       bool               `json:"busy"`
	Recurrence *rruleDTO          `json:"recurrence,omitempty"`
	Exdates    []int64            `json:"exdates,omitempty"`
	Reminder   *reminderConfigDTO `json:"reminder,omitempty"`
	Metadata   map[string]string  `json:"metadata,omitempty"`
}

type updateEventRequest struct {
	StartTs    int64              `json:"startTs" binding:"required"`
	DurationMs int64              `json:"durationMs" binding:"required"`
	Busy       bool               `json:"busy"`
	Recurrence *rruleDTO          `json:"recurrence,omitempty"`
	Exdates    []int64            `json:"exdates,omitempty"`
	Reminder   *reminderConfigDTO `json:"reminder,omitempty"`
	Metadata   map[string]string  `json:"metadata,omitempty"`
}

type instanceDTO struct {
	StartTs int64 `json:"startTs"`
	EndTs   int64 `json:"endTs"`
	Busy    bool  `json:"busy"`
}

type calendarDTO struct {
	ID        domain.ID         `json:"id"`
	UserID    domain.ID         `json:"userId"`
	AccountID domain.ID         `json:"accountId"`
	WeekStart int               `json:"weekStart"`
	Timezone  string            `json:"timezone"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func calendarFromDomain(cal *domain.Calendar) calendarDTO {
	return calendarDTO{
		ID:        cal.ID,
		UserID:    cal.UserID,
		AccountID: cal.AccountID,
		WeekStart: cal.Settings.WeekStart,
		Timezone:  cal.Settings.Timezone,
		Metadata:  cal.Metadata,
	}
}

type createCalendarRequest struct {
	UserID    domain.ID         `json:"userId" binding:"required"`
	WeekStart int               `json:"weekStart"`
	Timezone  string            `json:"timezone" binding:"required"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type userDTO struct {
	ID        domain.ID         `json:"id"`
	AccountID domain.ID         `json:"accountId"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func userFromDomain(u *domain.User) userDTO {
	return userDTO{ID: u.ID, AccountID: u.AccountID, Metadata: u.Metadata}
}

type createUserRequest struct {
	Metadata map[string]string `json:"metadata,omitempty"`
}

type dayIntervalDTO struct {
	StartMinute int `json:"startMinute"`
	EndMinute   int `json:"endMinute"`
}

type scheduleRuleDTO struct {
	IsWeekdayRule bool             `json:"isWeekdayRule"`
	Weekday       int              `json:"weekday,omitempty"`
	Date          string           `json:"date,omitempty"`
	Intervals     []dayIntervalDTO `json:"intervals"`
}

type scheduleDTO struct {
	ID        domain.ID         `json:"id"`
	UserID    domain.ID         `json:"userId"`
	AccountID domain.ID         `json:"accountId"`
	Timezone  string            `json:"timezone"`
	Rules     []scheduleRuleDTO `json:"rules"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func scheduleFromDomain(s *domain.Schedule) scheduleDTO {
	out := scheduleDTO{
		ID:        s.ID,
		UserID:    s.UserID,
		AccountID: s.AccountID,
		Timezone:  s.Timezone,
		Metadata:  s.Metadata,
	}
	for _, r := range s.Rules {
		rd := scheduleRuleDTO{IsWeekdayRule: r.IsWeekdayRule, Weekday: int(r.Weekday), Date: r.Date}
		for _, iv := range r.Intervals {
			rd.Intervals = append(rd.Intervals, dayIntervalDTO{StartMinute: iv.StartMinute, EndMinute: iv.EndMinute})
		}
		out.Rules = append(out.Rules, rd)
	}
	return out
}

func (d scheduleRuleDTO) toDomain() domain.ScheduleRule {
	out := domain.ScheduleRule{IsWeekdayRule: d.IsWeekdayRule, Weekday: domain.Weekday(d.Weekday), Date: d.Date}
	for _, iv := range d.Intervals {
		out.Intervals = append(out.Intervals, domain.DayInterval{StartMinute: iv.StartMinute, EndMinute: iv.EndMinute})
	}
	return out
}

type createScheduleRequest struct {
	UserID   domain.ID         `json:"userId" binding:"required"`
	Timezone string            `json:"timezone" binding:"required"`
	Rules    []scheduleRuleDTO `json:"rules,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type multiPersonOptionsDTO struct {
	Kind           string `json:"kind"`
	Strategy       string `json:"strategy,omitempty"`
	Capacity       int    `json:"capacity,omitempty"`
	ReservationCap int    `json:"reservationCap,omitempty"`
}

func multiPersonFromDomain(o domain.MultiPersonOptions) multiPersonOptionsDTO {
	return multiPersonOptionsDTO{
		Kind:           string(o.Kind),
		Strategy:       string(o.Strategy),
		Capacity:       o.Capacity,
		ReservationCap: o.ReservationCap,
	}
}

func (d multiPersonOptionsDTO) toDomain() domain.MultiPersonOptions {
	return domain.MultiPersonOptions{
		Kind:           domain.MultiPersonKind(d.Kind),
		Strategy:       domain.RoundRobinStrategy(d.Strategy),
		Capacity:       d.Capacity,
		ReservationCap: d.ReservationCap,
	}
}

type serviceDTO struct {
	ID                 domain.ID             `json:"id"`
	AccountID          domain.ID             `json:"accountId"`
	MultiPersonOptions multiPersonOptionsDTO `json:"multiPersonOptions"`
	Metadata           map[string]string     `json:"metadata,omitempty"`
}

func serviceFromDomain(s *domain.Service) serviceDTO {
	return serviceDTO{
		ID:                 s.ID,
		AccountID:          s.AccountID,
		MultiPersonOptions: multiPersonFromDomain(s.MultiPersonOptions),
		Metadata:           s.Metadata,
	}
}

type createServiceRequest struct {
	MultiPersonOptions multiPersonOptionsDTO `json:"multiPersonOptions" binding:"required"`
	Metadata           map[string]string     `json:"metadata,omitempty"`
}

type accountDTO struct {
	ID              domain.ID `json:"id"`
	SecretAPIKey    string    `json:"secretApiKey"`
	PublicJWTKeyPEM string    `json:"publicJwtKey,omitempty"`
	WebhookURL      string    `json:"webhookUrl,omitempty"`
}

func accountFromDomain(a *domain.Account) accountDTO {
	out := accountDTO{ID: a.ID, SecretAPIKey: a.SecretAPIKey, PublicJWTKeyPEM: a.PublicJWTKeyPEM}
	if a.Webhook != nil {
		out.WebhookURL = a.Webhook.URL
	}
	return out
}

type createAccountRequest struct {
	Code            string `json:"code" binding:"required"`
	PublicJWTKeyPEM string `json:"publicJwtKey,omitempty"`
}

type setWebhookRequest struct {
	URL             string `json:"url"`
	VerificationKey string `json:"verificationKey,omitempty"`
}

type setPublicJWTKeyRequest struct {
	PublicJWTKeyPEM string `json:"publicJwtKey" binding:"required"`
}

type metadataQuery struct {
	Key     string `form:"key" binding:"required"`
	Value   string `form:"value" binding:"required"`
	Page    int    `form:"page"`
	PerPage int    `form:"perPage"`
}
