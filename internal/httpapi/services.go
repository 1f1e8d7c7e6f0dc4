package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/booking"
	"github.com/unburdy/scheduler-module/internal/domain"
)

func createService(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := validateMetadataAndRecurrence(c, deps); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		var req createServiceRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid request body"))
			return
		}
		account := currentAccount(c)
		svc, err := domain.NewService(account.ID, req.MultiPersonOptions.toDomain(), req.Metadata)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if err := deps.Stores.Services.Save(c.Request.Context(), svc); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		ok(c, http.StatusCreated, serviceFromDomain(svc))
	}
}

func loadOwnedService(deps *Deps, c *gin.Context) (*domain.Service, bool) {
	id, err := domain.ParseID(c.Param("id"))
	if err != nil {
		fail(c, deps.Logger, apperr.WrapBadInput(err, "malformed service id"))
		return nil, false
	}
	svc, err := deps.Stores.Services.Find(c.Request.Context(), id)
	if err != nil {
		fail(c, deps.Logger, err)
		return nil, false
	}
	if svc.AccountID != currentAccount(c).ID {
		fail(c, deps.Logger, apperr.NewNotFound("service %s not found", id))
		return nil, false
	}
	return svc, true
}

func getService(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, okLoaded := loadOwnedService(deps, c)
		if !okLoaded {
			return
		}
		ok(c, http.StatusOK, serviceFromDomain(svc))
	}
}

func deleteService(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, okLoaded := loadOwnedService(deps, c)
		if !okLoaded {
			return
		}
		if err := deps.Stores.Services.Delete(c.Request.Context(), svc.ID); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type addServiceUserRequest struct {
	UserID            domain.ID `json:"userId" binding:"required"`
	TimePlanKind      string    `json:"timePlanKind" binding:"required"`
	ScheduleID        domain.ID `json:"scheduleId,omitempty"`
	CalendarID        domain.ID `json:"calendarId,omitempty"`
	Busy              []domain.ID `json:"busy,omitempty"`
	BufferAfterMs     int64     `json:"bufferAfterMs"`
	ClosestBookingMs  int64     `json:"closestBookingMs"`
	FurthestBookingMs *int64    `json:"furthestBookingMs,omitempty"`
}

func addServiceUser(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, okLoaded := loadOwnedService(deps, c)
		if !okLoaded {
			return
		}
		var req addServiceUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid request body"))
			return
		}
		plan := domain.TimePlan{Kind: domain.TimePlanKind(req.TimePlanKind), ScheduleID: req.ScheduleID, CalendarID: req.CalendarID}
		su, err := domain.NewServiceUser(svc.ID, req.UserID, plan, req.Busy, req.BufferAfterMs, req.ClosestBookingMs, req.FurthestBookingMs)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if err := deps.Stores.ServiceUsers.Save(c.Request.Context(), su); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		ok(c, http.StatusCreated, nil)
	}
}

func removeServiceUser(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, okLoaded := loadOwnedService(deps, c)
		if !okLoaded {
			return
		}
		userID, err := domain.ParseID(c.Param("userId"))
		if err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "malformed user id"))
			return
		}
		if err := deps.Stores.ServiceUsers.Delete(c.Request.Context(), svc.ID, userID); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// bookingSlots computes the Service's bookable slots for a window
// (§4.3), composing each member's availability from its Schedule or
// Calendar TimePlan plus extra busy calendars.
// @Summary List bookable slots for a service
// @Description Compute a service's bookable slots over a window from its members' availability
// @Tags services
// @Produce json
// @Param id path string true "Service ID"
// @Param start query int true "Window start, ms since epoch"
// @Param end query int true "Window end, ms since epoch"
// @Param intervalMs query int true "Slot grid interval, milliseconds"
// @Param durationMs query int true "Slot duration, milliseconds"
// @Param timezone query string false "Caller IANA timezone"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 404 {object} envelope
// @Router /service/{id}/booking-slots [get]
func bookingSlots(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, okLoaded := loadOwnedService(deps, c)
		if !okLoaded {
			return
		}
		ctx := c.Request.Context()

		start, err1 := strconv.ParseInt(c.Query("start"), 10, 64)
		end, err2 := strconv.ParseInt(c.Query("end"), 10, 64)
		intervalMs, err3 := strconv.ParseInt(c.Query("intervalMs"), 10, 64)
		durationMs, err4 := strconv.ParseInt(c.Query("durationMs"), 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			fail(c, deps.Logger, apperr.NewBadInput("start, end, intervalMs, durationMs query parameters are required"))
			return
		}
		loc := time.UTC
		if tz := c.Query("timezone"); tz != "" {
			l, err := time.LoadLocation(tz)
			if err != nil {
				fail(c, deps.Logger, apperr.WrapBadInput(err, "unknown timezone %q", tz))
				return
			}
			loc = l
		}

		members, err := deps.Stores.ServiceUsers.FindByService(ctx, svc.ID)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}

		window := domain.TimeSpan{Start: start, End: end}
		avail := make([]booking.MemberAvailability, 0, len(members))
		for _, su := range members {
			m, err := memberAvailabilityFor(deps, ctx, su, window)
			if err != nil {
				fail(c, deps.Logger, err)
				return
			}
			avail = append(avail, m)
		}

		slots, err := booking.Plan(booking.PlanInput{
			Service:        svc,
			Members:        avail,
			Now:            deps.Clock.Now().UnixMilli(),
			Window:         window,
			CallerLocation: loc,
			IntervalMs:     intervalMs,
			DurationMs:     durationMs,
			MaxWindow:      deps.BookingSlotsQueryDuration,
			ReservationCount: func(slotStart domain.Timestamp) int {
				n, err := deps.Stores.Reservations.CountAt(ctx, svc.ID, slotStart)
				if err != nil {
					deps.Logger.Error("reservation count lookup failed during slot planning", "service_id", svc.ID, "err", err)
					return 0
				}
				return n
			},
		})
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		booking.SortSlots(slots)

		type slotDTO struct {
			Start   int64       `json:"start"`
			End     int64       `json:"end"`
			UserIDs []domain.ID `json:"userIds"`
		}
		out := make([]slotDTO, len(slots))
		for i, s := range slots {
			out[i] = slotDTO{Start: s.Start, End: s.End, UserIDs: s.UserIDs}
		}
		ok(c, http.StatusOK, out)
	}
}

func memberAvailabilityFor(deps *Deps, ctx context.Context, su *domain.ServiceUser, window domain.TimeSpan) (booking.MemberAvailability, error) {
	busyEvents := map[domain.ID][]*domain.CalendarEvent{}
	busyTimezones := map[domain.ID]string{}
	for _, calID := range su.Busy {
		cal, err := deps.Stores.Calendars.Find(ctx, calID)
		if err != nil {
			return booking.MemberAvailability{}, err
		}
		events, err := deps.Stores.Events.FindByCalendar(ctx, calID)
		if err != nil {
			return booking.MemberAvailability{}, err
		}
		busyEvents[calID] = events
		busyTimezones[calID] = cal.Settings.Timezone
	}

	var schedule *domain.Schedule
	var planEvents []*domain.CalendarEvent
	var planTimezone string
	switch su.Availability.Kind {
	case domain.TimePlanSchedule:
		s, err := deps.Stores.Schedules.Find(ctx, su.Availability.ScheduleID)
		if err != nil {
			return booking.MemberAvailability{}, err
		}
		schedule = s
	case domain.TimePlanCalendar:
		cal, err := deps.Stores.Calendars.Find(ctx, su.Availability.CalendarID)
		if err != nil {
			return booking.MemberAvailability{}, err
		}
		events, err := deps.Stores.Events.FindByCalendar(ctx, su.Availability.CalendarID)
		if err != nil {
			return booking.MemberAvailability{}, err
		}
		planEvents = events
		planTimezone = cal.Settings.Timezone
	}

	return booking.BuildMemberAvailability(su, schedule, planEvents, planTimezone, busyEvents, busyTimezones, window, deps.BookingSlotsQueryDuration)
}

type createIntentRequest struct {
	SlotStart domain.Timestamp `json:"slotStart" binding:"required"`
}

// createReservationIntent atomically reserves a slot if the service's
// cap isn't exceeded (§4.3, §8 invariant 7), reporting Conflict
// otherwise.
// @Summary Reserve a slot
// @Description Atomically reserve a slot if the service's reservation cap isn't exceeded
// @Tags services
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param intent body createIntentRequest true "Reservation intent"
// @Success 201 {object} envelope
// @Failure 400 {object} envelope
// @Failure 404 {object} envelope
// @Failure 409 {object} envelope
// @Router /service/{id}/reservations [post]
func createReservationIntent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, okLoaded := loadOwnedService(deps, c)
		if !okLoaded {
			return
		}
		var req createIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid request body"))
			return
		}
		reservationCap := svc.MultiPersonOptions.ReservationCap
		if reservationCap <= 0 {
			ok(c, http.StatusCreated, gin.H{"reserved": true})
			return
		}
		created, err := deps.Stores.Reservations.CreateIntentIfBelowCap(c.Request.Context(), svc.ID, req.SlotStart, reservationCap)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if !created {
			fail(c, deps.Logger, apperr.NewConflict("reservation cap reached for this slot"))
			return
		}
		ok(c, http.StatusCreated, gin.H{"reserved": true})
	}
}

func removeReservationIntent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, okLoaded := loadOwnedService(deps, c)
		if !okLoaded {
			return
		}
		slotStart, err := strconv.ParseInt(c.Query("slotStart"), 10, 64)
		if err != nil {
			fail(c, deps.Logger, apperr.NewBadInput("slotStart query parameter must be an i64 millisecond timestamp"))
			return
		}
		if err := deps.Stores.Reservations.Remove(c.Request.Context(), svc.ID, slotStart); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
