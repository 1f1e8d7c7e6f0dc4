// Package booking implements the BookingPlanner (§4.3): composing
// per-user availability across a Service's members into Service-level
// bookable slots, honoring buffers, lead windows, reservation caps, and
// multi-person policies.
package booking

import (
	"sort"
	"time"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/availability"
	"github.com/unburdy/scheduler-module/internal/domain"
)

// MemberAvailability is one ServiceUser's precomputed availability for a
// planning window: Free is the TimePlan-derived available set (already
// minus busy calendars and external-busy, per §4.3 contract clause 3);
// Busy is the member's raw busy instances, needed separately because the
// buffer check (clause 4) is about busy overlap, not schedule boundaries.
type MemberAvailability struct {
	UserID               domain.ID
	Free                 []domain.TimeSpan
	Busy                 []domain.TimeSpan
	BufferAfterMs        int64
	ClosestBookingMs     int64
	FurthestBookingMs    *int64
	ConfirmedReservations int // used by EqualDistribution
}

func (m MemberAvailability) totalFreeMs() int64 {
	var total int64
	for _, s := range m.Free {
		total += s.End - s.Start
	}
	return total
}

// isAvailable reports whether slot is entirely contained in m's free set
// and the buffer window after slot doesn't intersect m's busy set
// (§4.3 clauses 3-4), and the lead/horizon windows hold (clauses 1-2).
func (m MemberAvailability) isAvailable(slot domain.TimeSpan, now domain.Timestamp) bool {
	if slot.Start < now+m.ClosestBookingMs {
		return false
	}
	if m.FurthestBookingMs != nil && slot.End > now+*m.FurthestBookingMs {
		return false
	}
	contained := false
	for _, f := range m.Free {
		if f.Start <= slot.Start && slot.End <= f.End {
			contained = true
			break
		}
	}
	if !contained {
		return false
	}
	if m.BufferAfterMs > 0 {
		bufferSpan := domain.TimeSpan{Start: slot.End, End: slot.End + m.BufferAfterMs}
		for _, b := range m.Busy {
			if b.Overlaps(bufferSpan) {
				return false
			}
		}
	}
	return true
}

// Slot is one bookable Service-level slot (§4.3).
type Slot struct {
	Start   domain.Timestamp
	End     domain.Timestamp
	UserIDs []domain.ID // hosts attached to this slot
}

// PlanInput carries everything BookingPlanner.Plan needs for one call.
type PlanInput struct {
	Service        *domain.Service
	Members        []MemberAvailability // already filtered to host_user_ids if requested
	Now            domain.Timestamp
	Window         domain.TimeSpan // UTC window derived from the caller-tz date range
	CallerLocation *time.Location
	IntervalMs     int64
	DurationMs     int64
	ReservationCount func(slotStart domain.Timestamp) int
	MaxWindow        time.Duration
}

// Plan generates the Service's bookable slots for the window (§4.3).
func Plan(in PlanInput) ([]Slot, error) {
	if in.IntervalMs <= 0 || in.DurationMs <= 0 {
		return nil, apperr.NewBadInput("interval_ms and duration_ms must be > 0")
	}
	if int64(24*time.Hour/time.Millisecond)%in.IntervalMs != 0 {
		return nil, apperr.NewBadInput("interval_ms must divide evenly into 24h")
	}
	if time.Duration(in.Window.End-in.Window.Start)*time.Millisecond > in.MaxWindow {
		return nil, apperr.NewBadInput("query range exceeds booking-slots-query-duration-limit")
	}

	candidates := alignedSlots(in.Window, in.IntervalMs, in.DurationMs, in.CallerLocation)

	var out []Slot
	for _, slot := range candidates {
		available := availableMembers(in.Members, slot, in.Now)
		resolved, ok := applyPolicy(in.Service.MultiPersonOptions, in.Members, available, slot)
		if !ok {
			continue
		}
		reservationCap := in.Service.MultiPersonOptions.ReservationCap
		if reservationCap > 0 && in.ReservationCount != nil && in.ReservationCount(slot.Start) >= reservationCap {
			continue
		}
		out = append(out, Slot{Start: slot.Start, End: slot.End, UserIDs: resolved})
	}
	return out, nil
}

// alignedSlots generates candidate slot spans aligned to IntervalMs from
// midnight in loc, spanning the whole window (§4.3 "Slot generation").
func alignedSlots(window domain.TimeSpan, intervalMs, durationMs int64, loc *time.Location) []domain.TimeSpan {
	if loc == nil {
		loc = time.UTC
	}
	start := time.UnixMilli(window.Start).In(loc)
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	end := time.UnixMilli(window.End).In(loc)

	var out []domain.TimeSpan
	for day := dayStart; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayStartMs := day.UnixMilli()
		for k := int64(0); k*intervalMs < int64(24*time.Hour/time.Millisecond); k++ {
			slotStart := dayStartMs + k*intervalMs
			slotEnd := slotStart + durationMs
			if slotStart < window.Start || slotStart > window.End {
				continue
			}
			out = append(out, domain.TimeSpan{Start: slotStart, End: slotEnd})
		}
	}
	return out
}

func availableMembers(members []MemberAvailability, slot domain.TimeSpan, now domain.Timestamp) []int {
	var idxs []int
	for i, m := range members {
		if m.isAvailable(slot, now) {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// applyPolicy resolves the multi-person policy for one slot, returning
// the attached host user IDs and whether the slot is valid at all (§4.3).
func applyPolicy(opts domain.MultiPersonOptions, members []MemberAvailability, availableIdxs []int, slot domain.TimeSpan) ([]domain.ID, bool) {
	switch opts.Kind {
	case domain.Collective, domain.GroupPolicy:
		if len(availableIdxs) != len(members) {
			return nil, false
		}
		ids := make([]domain.ID, len(members))
		for i, m := range members {
			ids[i] = m.UserID
		}
		return ids, true
	case domain.RoundRobin:
		if len(availableIdxs) == 0 {
			return nil, false
		}
		return []domain.ID{pickRoundRobin(opts.Strategy, members, availableIdxs)}, true
	default:
		return nil, false
	}
}

func pickRoundRobin(strategy domain.RoundRobinStrategy, members []MemberAvailability, availableIdxs []int) domain.ID {
	best := availableIdxs[0]
	switch strategy {
	case domain.EqualDistribution:
		for _, idx := range availableIdxs[1:] {
			if members[idx].ConfirmedReservations < members[best].ConfirmedReservations {
				best = idx
			}
		}
	default: // AvailabilityPreferred
		for _, idx := range availableIdxs[1:] {
			if members[idx].totalFreeMs() > members[best].totalFreeMs() {
				best = idx
			}
		}
	}
	return members[best].UserID
}

// SortSlots sorts slots by start time, satisfying §4.3/§8 invariant 8's
// disjointness ordering expectations.
func SortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
}

// BuildMemberAvailability computes a ServiceUser's Free/Busy sets for the
// window by resolving its TimePlan (Schedule or Calendar) and combining
// its extra busy calendars, per §3's ServiceUser model.
func BuildMemberAvailability(su *domain.ServiceUser, schedule *domain.Schedule, planCalendarEvents []*domain.CalendarEvent, planCalendarTimezone string, busyCalendarEvents map[domain.ID][]*domain.CalendarEvent, busyCalendarTimezones map[domain.ID]string, window domain.TimeSpan, maxWindow time.Duration) (MemberAvailability, error) {
	var busy []domain.TimeSpan
	for calID, events := range busyCalendarEvents {
		b, err := availability.Busy(events, busyCalendarTimezones[calID], window, maxWindow)
		if err != nil {
			return MemberAvailability{}, err
		}
		busy = append(busy, b...)
	}
	busy = availability.Merge(availability.Truncate(busy, window))

	var free []domain.TimeSpan
	var err error
	switch su.Availability.Kind {
	case domain.TimePlanSchedule:
		free = availability.Free(schedule, busy, window)
	case domain.TimePlanCalendar:
		free, err = availability.FreeFromCalendar(planCalendarEvents, planCalendarTimezone, busy, window, maxWindow)
		if err != nil {
			return MemberAvailability{}, err
		}
	}

	return MemberAvailability{
		UserID:            su.UserID,
		Free:              free,
		Busy:              busy,
		BufferAfterMs:     su.BufferAfterMs,
		ClosestBookingMs:  su.ClosestBookingMs,
		FurthestBookingMs: su.FurthestBookingMs,
	}, nil
}
