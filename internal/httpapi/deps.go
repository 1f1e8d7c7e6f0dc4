// Package httpapi is the HTTP boundary (§6): gin routes, authentication
// middleware, and request/response JSON shapes over the core components.
package httpapi

import (
	"context"
	"time"

	"github.com/unburdy/scheduler-module/internal/clockport"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/logging"
	"github.com/unburdy/scheduler-module/internal/reminder"
	"github.com/unburdy/scheduler-module/internal/store"
)

// CascadeStore is the subset of a DomainStore backend that orchestrates
// multi-entity deletes; both the memory and sql backends implement it.
type CascadeStore interface {
	DeleteEventCascade(ctx context.Context, eventID domain.ID) error
	DeleteCalendarCascade(ctx context.Context, calendarID domain.ID) error
}

// Stores bundles the per-entity DomainStore ports handlers need. It is
// filled in from either the memory or sql backend's named fields, so the
// HTTP layer never imports a concrete backend package.
type Stores struct {
	Accounts     store.AccountStore
	Users        store.UserStore
	Calendars    store.CalendarStore
	Events       store.EventStore
	Schedules    store.ScheduleStore
	Services     store.ServiceStore
	ServiceUsers store.ServiceUserStore
	Reservations store.ReservationStore
	Cascade      CascadeStore
}

// Deps is everything the router needs to build handlers.
type Deps struct {
	Stores           Stores
	Expander         *reminder.Expander
	Clock            clockport.Clock
	Logger           logging.Logger
	Validator        *RequestValidator
	CreateSecretCode string
	EventInstancesQueryDuration time.Duration
	BookingSlotsQueryDuration   time.Duration
}
