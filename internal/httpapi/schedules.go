package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

func rulesToDomain(in []scheduleRuleDTO) []domain.ScheduleRule {
	out := make([]domain.ScheduleRule, len(in))
	for i, r := range in {
		out[i] = r.toDomain()
	}
	return out
}

func createSchedule(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := validateMetadataAndRecurrence(c, deps); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		var req createScheduleRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid request body"))
			return
		}
		account := currentAccount(c)
		sched, err := domain.NewSchedule(req.UserID, account.ID, req.Timezone, rulesToDomain(req.Rules), req.Metadata)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if err := deps.Stores.Schedules.Save(c.Request.Context(), sched); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		ok(c, http.StatusCreated, scheduleFromDomain(sched))
	}
}

func loadOwnedSchedule(deps *Deps, c *gin.Context) (*domain.Schedule, bool) {
	id, err := domain.ParseID(c.Param("id"))
	if err != nil {
		fail(c, deps.Logger, apperr.WrapBadInput(err, "malformed schedule id"))
		return nil, false
	}
	sched, err := deps.Stores.Schedules.Find(c.Request.Context(), id)
	if err != nil {
		fail(c, deps.Logger, err)
		return nil, false
	}
	if sched.AccountID != currentAccount(c).ID {
		fail(c, deps.Logger, apperr.NewNotFound("schedule %s not found", id))
		return nil, false
	}
	return sched, true
}

func getSchedule(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sched, okLoaded := loadOwnedSchedule(deps, c)
		if !okLoaded {
			return
		}
		ok(c, http.StatusOK, scheduleFromDomain(sched))
	}
}

func updateSchedule(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sched, okLoaded := loadOwnedSchedule(deps, c)
		if !okLoaded {
			return
		}
		if err := validateMetadataAndRecurrence(c, deps); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		var req createScheduleRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid request body"))
			return
		}
		updated, err := domain.NewSchedule(sched.UserID, sched.AccountID, req.Timezone, rulesToDomain(req.Rules), req.Metadata)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		updated.ID = sched.ID
		if err := deps.Stores.Schedules.Save(c.Request.Context(), updated); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		ok(c, http.StatusOK, scheduleFromDomain(updated))
	}
}

func deleteSchedule(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sched, okLoaded := loadOwnedSchedule(deps, c)
		if !okLoaded {
			return
		}
		if err := deps.Stores.Schedules.Delete(c.Request.Context(), sched.ID); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func findSchedulesByMetadata(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q metadataQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid query parameters"))
			return
		}
		found, err := deps.Stores.Schedules.FindByMetadata(c.Request.Context(), store.MetadataFilter{
			AccountID: currentAccount(c).ID, Key: q.Key, Value: q.Value, Page: q.Page, PerPage: q.PerPage,
		})
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		out := make([]scheduleDTO, len(found))
		for i, s := range found {
			out[i] = scheduleFromDomain(s)
		}
		ok(c, http.StatusOK, out)
	}
}
