// README: Base handler utilities (JSON helpers, caller lookup, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ada/internal/http/middleware"
	"ada/internal/maps"
	"ada/internal/modules/pricing"
	"ada/internal/modules/profile"
	"ada/internal/modules/tenant"
	"ada/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// caller returns the authenticated caller or writes a 401.
func caller(c *gin.Context) (types.Caller, bool) {
	who, ok := middleware.CallerFrom(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "not authenticated")
	}
	return who, ok
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tenant.ErrBadRequest),
		errors.Is(err, profile.ErrBadRequest),
		errors.Is(err, tenant.ErrOwnerImmutable),
		errors.Is(err, pricing.ErrInvalidLoad),
		errors.Is(err, maps.ErrBadLane):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, tenant.ErrInvalidCredentials),
		errors.Is(err, tenant.ErrUnauthenticated):
		writeError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, tenant.ErrNotFound),
		errors.Is(err, pricing.ErrProfileNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, tenant.ErrEmailTaken),
		errors.Is(err, tenant.ErrTenantTaken):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, pricing.ErrInvalidProfile),
		errors.Is(err, maps.ErrNoRoute):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, maps.ErrUnavailable):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
