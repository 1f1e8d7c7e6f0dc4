package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	limiterMemory "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/unburdy/scheduler-module/internal/apperr"
	"github.com/unburdy/scheduler-module/internal/domain"
)

const (
	ctxAccount = "account"
	ctxUserID  = "userID"
	ctxPolicy  = "policy"
)

// AdminAuth authenticates account-admin routes via `x-api-key:
// <Account.secret_api_key>` (§6), loading the Account into context.
func AdminAuth(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("x-api-key")
		if key == "" {
			fail(c, deps.Logger, apperr.NewUnauthorized("missing x-api-key header"))
			c.Abort()
			return
		}
		account, err := deps.Stores.Accounts.FindBySecretAPIKey(c.Request.Context(), key)
		if err != nil {
			fail(c, deps.Logger, apperr.NewUnauthorized("invalid x-api-key"))
			c.Abort()
			return
		}
		c.Set(ctxAccount, account)
		c.Next()
	}
}

// UserAuth authenticates end-user routes via `Authorization: Bearer
// <JWT>` signed by the account's public_jwt_key (§6). The account must
// already be resolved into context — mount this behind AdminAuth for the
// `/user/...` mirror, or behind a route that otherwise establishes the
// account (e.g. a prior path/body lookup) for direct end-user routes.
func UserAuth(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			fail(c, deps.Logger, apperr.NewUnauthorized("missing or malformed Authorization header"))
			c.Abort()
			return
		}

		accountVal, exists := c.Get(ctxAccount)
		if !exists {
			fail(c, deps.Logger, apperr.NewUnauthorized("account not resolved for bearer auth"))
			c.Abort()
			return
		}
		account := accountVal.(*domain.Account)
		if account.PublicJWTKeyPEM == "" {
			fail(c, deps.Logger, apperr.NewUnauthorized("account has no public_jwt_key configured"))
			c.Abort()
			return
		}
		pub, err := domain.ParseRSAPublicKeyPEM(account.PublicJWTKeyPEM)
		if err != nil {
			fail(c, deps.Logger, apperr.NewUnauthorized("account public_jwt_key is invalid"))
			c.Abort()
			return
		}

		var claims domain.UserClaims
		_, err = jwt.ParseWithClaims(parts[1], &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, apperr.NewUnauthorized("unexpected signing method")
			}
			return pub, nil
		})
		if err != nil {
			fail(c, deps.Logger, apperr.NewUnauthorized("invalid bearer token"))
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxPolicy, claims.Policy)
		c.Next()
	}
}

// RequirePolicy aborts with Unauthorized if the bearer claims' Policy
// rejects this route (§6, §7's policy-deny mapping to Unauthorized).
func RequirePolicy(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		policyVal, _ := c.Get(ctxPolicy)
		policy, _ := policyVal.(*domain.Policy)
		if !policy.Allows(route) {
			c.JSON(http.StatusUnauthorized, envelope{Error: "policy denies route " + route})
			c.Abort()
			return
		}
		c.Next()
	}
}

// PublicAccount resolves the Account for a public-account route from the
// `nettu-account` header, for origin identification only — no secret is
// checked (§6).
func PublicAccount(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("nettu-account")
		if id == "" {
			fail(c, deps.Logger, apperr.NewUnauthorized("missing nettu-account header"))
			c.Abort()
			return
		}
		accountID, err := domain.ParseID(id)
		if err != nil {
			fail(c, deps.Logger, apperr.WrapBadInput(err, "malformed nettu-account header"))
			c.Abort()
			return
		}
		account, err := deps.Stores.Accounts.FindAccount(c.Request.Context(), accountID)
		if err != nil {
			fail(c, deps.Logger, apperr.NewUnauthorized("unknown account"))
			c.Abort()
			return
		}
		c.Set(ctxAccount, account)
		c.Next()
	}
}

// currentAccount retrieves the Account AdminAuth/PublicAccount placed in
// context.
func currentAccount(c *gin.Context) *domain.Account {
	v, _ := c.Get(ctxAccount)
	a, _ := v.(*domain.Account)
	return a
}

// RateLimiter builds a gin rate-limiting middleware backed by an
// in-memory store, mirroring the teacher's
// internal/middleware/rate_limiter.go NewRateLimiter.
func RateLimiter(enabled bool, requests int64, duration time.Duration) gin.HandlerFunc {
	if !enabled {
		requests = 1_000_000
		duration = time.Second
	}
	rate := limiter.Rate{Period: duration, Limit: requests}
	store := limiterMemory.NewStore()
	instance := limiter.New(store, rate, limiter.WithTrustForwardHeader(true))
	return mgin.NewMiddleware(instance)
}
