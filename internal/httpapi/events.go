package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/availability"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// @Summary Create an event
// @Description Create a single or recurring event on a calendar
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Calendar ID"
// @Param event body createEventRequest true "Event creation request"
// @Success 201 {object} envelope{data=eventDTO}
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Failure 404 {object} envelope
// @Security AdminAuth
// @Router /calendar/{id}/event [post]
func createEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		calID, err := domain.ParseID(c.Param("id"))
		if err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "malformed calendar id"))
			return
		}
		cal, err := deps.Stores.Calendars.Find(c.Request.Context(), calID)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		account := currentAccount(c)
		if cal.AccountID != account.ID {
			fail(c, deps.Logger, apperr.NewNotFound("calendar %s not found", calID))
			return
		}

		if err := validateMetadataAndRecurrence(c, deps); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		var req createEventRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid request body"))
			return
		}
		ev, err := domain.NewCalendarEvent(cal.ID, cal.UserID, account.ID, req.StartTs, req.DurationMs, req.Busy,
			req.Recurrence.toDomain(), req.Exdates, req.Reminder.toDomain(), req.Metadata)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if err := deps.Stores.Events.Save(c.Request.Context(), ev); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if err := deps.Expander.OnEventMutated(c.Request.Context(), ev); err != nil {
			deps.Logger.Error("inline reminder expansion failed on create", "event_id", ev.ID, "err", err)
		}
		ok(c, http.StatusCreated, eventFromDomain(ev))
	}
}

func loadOwnedEvent(deps *Deps, c *gin.Context) (*domain.CalendarEvent, bool) {
	id, err := domain.ParseID(c.Param("id"))
	if err != nil {
		fail(c, deps.Logger, apperr.WrapBadInput(err, "malformed event id"))
		return nil, false
	}
	ev, err := deps.Stores.Events.FindEvent(c.Request.Context(), id)
	if err != nil {
		fail(c, deps.Logger, err)
		return nil, false
	}
	if ev.AccountID != currentAccount(c).ID {
		fail(c, deps.Logger, apperr.NewNotFound("event %s not found", id))
		return nil, false
	}
	return ev, true
}

func getEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ev, okLoaded := loadOwnedEvent(deps, c)
		if !okLoaded {
			return
		}
		ok(c, http.StatusOK, eventFromDomain(ev))
	}
}

// updateEvent mutates an event's fields and bumps its version, then runs
// the mutation-driven inline expansion (§4.4, §8 invariant 6) so a
// reminder written before the edit never fires with a stale version.
func updateEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ev, okLoaded := loadOwnedEvent(deps, c)
		if !okLoaded {
			return
		}
		if err := validateMetadataAndRecurrence(c, deps); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		var req updateEventRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid request body"))
			return
		}
		updated, err := domain.NewCalendarEvent(ev.CalendarID, ev.UserID, ev.AccountID, req.StartTs, req.DurationMs, req.Busy,
			req.Recurrence.toDomain(), req.Exdates, req.Reminder.toDomain(), req.Metadata)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		updated.ID = ev.ID
		updated.Version = ev.Version
		updated.Touch()

		if err := deps.Stores.Events.Save(c.Request.Context(), updated); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if err := deps.Expander.OnEventMutated(c.Request.Context(), updated); err != nil {
			deps.Logger.Error("inline reminder expansion failed on update", "event_id", updated.ID, "err", err)
		}
		ok(c, http.StatusOK, eventFromDomain(updated))
	}
}

func deleteEvent(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ev, okLoaded := loadOwnedEvent(deps, c)
		if !okLoaded {
			return
		}
		if err := deps.Stores.Cascade.DeleteEventCascade(c.Request.Context(), ev.ID); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// eventInstances expands an event's occurrences intersecting [start,end]
// (§4.1), bounded by the configured event-instances-query-duration-limit.
// @Summary List an event's instances
// @Description Expand an event's occurrences intersecting [start,end]
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Param start query int true "Window start, ms since epoch"
// @Param end query int true "Window end, ms since epoch"
// @Success 200 {object} envelope{data=[]instanceDTO}
// @Failure 400 {object} envelope
// @Failure 404 {object} envelope
// @Security AdminAuth
// @Router /event/{id}/instances [get]
func eventInstances(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ev, okLoaded := loadOwnedEvent(deps, c)
		if !okLoaded {
			return
		}
		start, err1 := strconv.ParseInt(c.Query("start"), 10, 64)
		end, err2 := strconv.ParseInt(c.Query("end"), 10, 64)
		if err1 != nil || err2 != nil {
			fail(c, deps.Logger, apperr.NewBadInput("start and end query parameters must be i64 millisecond timestamps"))
			return
		}
		cal, err := deps.Stores.Calendars.Find(c.Request.Context(), ev.CalendarID)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		instances, err := availability.ExpandEvent(ev, cal.Settings.Timezone, domain.TimeSpan{Start: start, End: end}, deps.EventInstancesQueryDuration)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		out := make([]instanceDTO, len(instances))
		for i, inst := range instances {
			out[i] = instanceDTO{StartTs: inst.StartTs, EndTs: inst.EndTs, Busy: inst.Busy}
		}
		ok(c, http.StatusOK, out)
	}
}

func findEventsByMetadata(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q metadataQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid query parameters"))
			return
		}
		found, err := deps.Stores.Events.FindByMetadata(c.Request.Context(), store.MetadataFilter{
			AccountID: currentAccount(c).ID, Key: q.Key, Value: q.Value, Page: q.Page, PerPage: q.PerPage,
		})
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		out := make([]eventDTO, len(found))
		for i, e := range found {
			out[i] = eventFromDomain(e)
		}
		ok(c, http.StatusOK, out)
	}
}
