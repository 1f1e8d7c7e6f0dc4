package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
)

// createAccount registers a new Account, gated by the pre-shared
// CREATE_ACCOUNT_SECRET_CODE (§6).
//
// @Summary Create an account
// @Description Register a new tenant account, gated by the pre-shared account-creation code
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body createAccountRequest true "Account creation request"
// @Success 201 {object} envelope{data=accountDTO}
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /account [post]
func createAccount(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid request body"))
			return
		}
		if req.Code != deps.CreateSecretCode {
			fail(c, deps.Logger, apperr.NewUnauthorized("invalid account creation code"))
			return
		}
		account, err := domain.NewAccount(req.PublicJWTKeyPEM)
		if err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if err := deps.Stores.Accounts.Save(c.Request.Context(), account); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		ok(c, http.StatusCreated, accountFromDomain(account))
	}
}

// getAccount returns the authenticated account's own record.
//
// @Summary Get the authenticated account
// @Description Return the account record identified by x-api-key
// @Tags accounts
// @Produce json
// @Success 200 {object} envelope{data=accountDTO}
// @Failure 401 {object} envelope
// @Security AdminAuth
// @Router /account [get]
func getAccount(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok(c, http.StatusOK, accountFromDomain(currentAccount(c)))
	}
}

// setAccountWebhook configures or clears the account's reminder webhook.
func setAccountWebhook(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setWebhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid request body"))
			return
		}
		account := currentAccount(c)
		if err := account.SetWebhook(req.URL, req.VerificationKey); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if err := deps.Stores.Accounts.Save(c.Request.Context(), account); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		ok(c, http.StatusOK, accountFromDomain(account))
	}
}

// setAccountPublicJWTKey sets the RSA public key end-user bearer tokens
// must be signed with.
func setAccountPublicJWTKey(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setPublicJWTKeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "invalid request body"))
			return
		}
		account := currentAccount(c)
		if err := account.SetPublicJWTKey(req.PublicJWTKeyPEM); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		if err := deps.Stores.Accounts.Save(c.Request.Context(), account); err != nil {
			fail(c, deps.Logger, err)
			return
		}
		ok(c, http.StatusOK, accountFromDomain(account))
	}
}
