package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unburdy/scheduler-module/internal/apperr"
)

// envelope is the standard response shape, grounded on the teacher's
// APIResponse/ErrorResponse (base-server/modules/base/models/responses.go).
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Success: true, Data: data})
}

// fail maps err to the HTTP status its apperr.Kind prescribes (§7) and
// writes the envelope. Anything that isn't an *apperr.Error is logged
// and reported Internal, per the propagation policy.
func fail(c *gin.Context, logger interface{ Error(args ...interface{}) }, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		logger.Error("unhandled error at http boundary", "err", err)
		c.JSON(http.StatusInternalServerError, envelope{Error: "internal error"})
		return
	}
	if ae.Kind == apperr.Internal {
		logger.Error("internal error at http boundary", "err", ae)
	}
	c.JSON(ae.Kind.HTTPStatus(), envelope{Error: ae.Message})
}
