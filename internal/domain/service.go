package domain

import "github.com/unburdy/scheduler-module/internal/apperr"

// RoundRobinStrategy selects which available member is preferred for a
// slot in a RoundRobinAlgorithm service (§4.3).
type RoundRobinStrategy string

const (
	AvailabilityPreferred RoundRobinStrategy = "availability_preferred"
	EqualDistribution     RoundRobinStrategy = "equal_distribution"
)

// MultiPersonKind discriminates the three booking policies (§4.3).
type MultiPersonKind string

const (
	Collective  MultiPersonKind = "collective"
	RoundRobin  MultiPersonKind = "round_robin"
	GroupPolicy MultiPersonKind = "group"
)

// MultiPersonOptions is the service's member-composition policy (§4.3).
type MultiPersonOptions struct {
	Kind MultiPersonKind

	// RoundRobin
	Strategy RoundRobinStrategy

	// Group
	Capacity int

	// Reservation cap shared by all policies; 0 means unlimited.
	ReservationCap int
}

func (o MultiPersonOptions) validate() error {
	switch o.Kind {
	case Collective, GroupPolicy:
	case RoundRobin:
		if o.Strategy != AvailabilityPreferred && o.Strategy != EqualDistribution {
			return apperr.NewBadInput("invalid round robin strategy %q", o.Strategy)
		}
	default:
		return apperr.NewBadInput("invalid multi_person_options.kind %q", o.Kind)
	}
	if o.Kind == GroupPolicy && o.Capacity < 1 {
		return apperr.NewBadInput("group capacity must be >= 1, got %d", o.Capacity)
	}
	if o.ReservationCap < 0 {
		return apperr.NewBadInput("reservation cap must be >= 0, got %d", o.ReservationCap)
	}
	return nil
}

// Service is a bookable resource composed of one or more users' availability (§3).
type Service struct {
	ID                ID
	AccountID         ID
	MultiPersonOptions MultiPersonOptions
	Metadata          Metadata
}

// NewService validates the multi-person policy and constructs a Service.
func NewService(accountID ID, opts MultiPersonOptions, metadata map[string]string) (*Service, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	md, err := NewMetadata(metadata)
	if err != nil {
		return nil, err
	}
	return &Service{ID: NewID(), AccountID: accountID, MultiPersonOptions: opts, Metadata: md}, nil
}

// TimePlanKind discriminates ServiceUser's availability source (§3).
type TimePlanKind string

const (
	TimePlanSchedule TimePlanKind = "schedule"
	TimePlanCalendar TimePlanKind = "calendar"
)

// TimePlan is the "green" source for a ServiceUser.
type TimePlan struct {
	Kind       TimePlanKind
	ScheduleID ID // valid when Kind == TimePlanSchedule
	CalendarID ID // valid when Kind == TimePlanCalendar
}

// ExternalBusyCalendar references a busy calendar hosted by an external
// provider (§3); only the reference is modeled, sync itself is boundary code.
type ExternalBusyCalendar struct {
	Provider   string
	ExternalID string
}

// ServiceUser is a user's membership in a Service (§3).
type ServiceUser struct {
	ServiceID             ID
	UserID                ID
	Availability           TimePlan
	Busy                  []ID // additional blocking calendar IDs
	BufferAfterMs         int64
	ClosestBookingMs      int64 // lead time
	FurthestBookingMs     *int64
	ExternalBusyCalendars []ExternalBusyCalendar
}

// NewServiceUser constructs a ServiceUser membership with validated buffers.
func NewServiceUser(serviceID, userID ID, availability TimePlan, busy []ID, bufferAfterMs, closestBookingMs int64, furthestBookingMs *int64) (*ServiceUser, error) {
	if bufferAfterMs < 0 {
		return nil, apperr.NewBadInput("buffer_after_ms must be >= 0")
	}
	if closestBookingMs < 0 {
		return nil, apperr.NewBadInput("closest_booking_ms must be >= 0")
	}
	return &ServiceUser{
		ServiceID:         serviceID,
		UserID:            userID,
		Availability:      availability,
		Busy:              busy,
		BufferAfterMs:     bufferAfterMs,
		ClosestBookingMs:  closestBookingMs,
		FurthestBookingMs: furthestBookingMs,
	}, nil
}
