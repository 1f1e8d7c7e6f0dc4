package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// @Summary Create a calendar
// @Description Create a per-user event container
// @Tags calendars
// @Accept json
// @Produce json
// @Param calendar body createCalendarRequest true "Calendar creation request"
// @Success 201 {object} envelope{data=calendarDTO}
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Security AdminAuth
// @Router /calendar [post]
func createCalendar(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := validateMetadataAndRecurrence(c, deps); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		var req createCalendarRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid request body"))
			return
		}
		account := currentAccount(c)
		cal, err := domain.NewCalendar(req.UserID, account.ID, req.WeekStart, req.Timezone, req.Metadata)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if err := deps.Stores.Calendars.Save(c.Request.Context(), cal); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		ok(c, http.StatusCreated, calendarFromDomain(cal))
	}
}

func loadOwnedCalendar(deps *Deps, c *gin.Context) (*domain.Calendar, bool) {
	id, err := domain.ParseID(c.Param("id"))
	if err != nil {
		fail(c, deps.Logger, apperr.WrapBadInput(err, "malformed calendar id"))
		return nil, false
	}
	cal, err := deps.Stores.Calendars.Find(c.Request.Context(), id)
	if err != nil {
		fail(c, deps.Logger, err)
		return nil, false
	}
	if cal.AccountID != currentAccount(c).ID {
		fail(c, deps.Logger, apperr.NewNotFound("calendar %s not found", id))
		return nil, false
	}
	return cal, true
}

// @Summary Get a calendar by ID
// @Description Retrieve a calendar owned by the authenticated account
// @Tags calendars
// @Produce json
// @Param id path string true "Calendar ID"
// @Success 200 {object} envelope{data=calendarDTO}
// @Failure 400 {object} envelope
// @Failure 404 {object} envelope
// @Security AdminAuth
// @Router /calendar/{id} [get]
func getCalendar(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cal, okLoaded := loadOwnedCalendar(deps, c)
		if !okLoaded {
			return
		}
		ok(c, http.StatusOK, calendarFromDomain(cal))
	}
}

func deleteCalendar(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cal, okLoaded := loadOwnedCalendar(deps, c)
		if !okLoaded {
			return
		}
		if err := deps.Stores.Cascade.DeleteCalendarCascade(c.Request.Context(), cal.ID); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func findCalendarsByMetadata(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q metadataQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid query parameters"))
			return
		}
		found, err := deps.Stores.Calendars.FindByMetadata(c.Request.Context(), store.MetadataFilter{
			AccountID: currentAccount(c).ID, Key: q.Key, Value: q.Value, Page: q.Page, PerPage: q.PerPage,
		})
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		out := make([]calendarDTO, len(found))
		for i, cal := range found {
			out[i] = calendarFromDomain(cal)
		}
		ok(c, http.StatusOK, out)
	}
}
