package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/store"
)

// @Summary Create a user
// @Description Create a user owned by the authenticated account
// @Tags users
// @Accept json
// @Produce json
// @Param user body createUserRequest true "User creation request"
// @Success 201 {object} envelope{data=userDTO}
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Security AdminAuth
// @Router /user [post]
func createUser(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := validateMetadataAndRecurrence(c, deps); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		var req createUserRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid request body"))
			return
		}
		account := currentAccount(c)
		user, err := domain.NewUser(account.ID, req.Metadata)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if err := deps.Stores.Users.Save(c.Request.Context(), user); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		ok(c, http.StatusCreated, userFromDomain(user))
	}
}

// @Summary Get a user by ID
// @Description Retrieve a user owned by the authenticated account
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} envelope{data=userDTO}
// @Failure 400 {object} envelope
// @Failure 404 {object} envelope
// @Security AdminAuth
// @Router /user/{id} [get]
func getUser(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := domain.ParseID(c.Param("id"))
		if err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "malformed user id"))
			return
		}
		user, err := deps.Stores.Users.Find(c.Request.Context(), id)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if user.AccountID != currentAccount(c).ID {
			fail(c, deps.Logger, apperr.NewNotFound("user %s not found", id))
			return
		}
		ok(c, http.StatusOK, userFromDomain(user))
	}
}

func deleteUser(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := domain.ParseID(c.Param("id"))
		if err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "malformed user id"))
			return
		}
		user, err := deps.Stores.Users.Find(c.Request.Context(), id)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if user.AccountID != currentAccount(c).ID {
			fail(c, deps.Logger, apperr.NewNotFound("user %s not found", id))
			return
		}
		if err := deps.Stores.Users.Delete(c.Request.Context(), id); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func findUsersByMetadata(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q metadataQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid query parameters"))
			return
		}
		found, err := deps.Stores.Users.FindByMetadata(c.Request.Context(), store.MetadataFilter{
			AccountID: currentAccount(c).ID, Key: q.Key, Value: q.Value, Page: q.Page, PerPage: q.PerPage,
		})
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		out := make([]userDTO, len(found))
		for i, u := range found {
			out[i] = userFromDomain(u)
		}
		ok(c, http.StatusOK, out)
	}
}
