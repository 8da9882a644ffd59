// README: Cost profile handlers (list, get, upsert, delete).
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ada/internal/modules/pricing"
	"ada/internal/modules/profile"
	"ada/internal/types"
)

type profileService interface {
	List(ctx context.Context, caller types.Caller) ([]profile.Summary, error)
	Get(ctx context.Context, caller types.Caller, profileID string) (pricing.CostProfile, error)
	Upsert(ctx context.Context, caller types.Caller, in profile.Input) (pricing.CostProfile, error)
	Delete(ctx context.Context, caller types.Caller, profileID string) error
}

type ProfileHandler struct {
	profiles profileService
}

func NewProfileHandler(profiles profileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) List(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	out, err := h.profiles.List(c.Request.Context(), who)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	p, err := h.profiles.Get(c.Request.Context(), who, c.Param("profile_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

func (h *ProfileHandler) Upsert(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var in profile.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.profiles.Upsert(c.Request.Context(), who, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"ok": true, "profile_id": p.ProfileID})
}

func (h *ProfileHandler) Delete(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id := c.Param("profile_id")
	if err := h.profiles.Delete(c.Request.Context(), who, id); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"ok": true, "deleted": id})
}
