// README: Recommendation handler; evaluates a load against one of the caller's profiles.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ada/internal/modules/pricing"
	"ada/internal/types"
)

type recommender interface {
	Recommend(ctx context.Context, caller types.Caller, profileID string, load pricing.LoadRequest) (pricing.Recommendation, error)
}

type RecommendHandler struct {
	pricing recommender
}

func NewRecommendHandler(svc recommender) *RecommendHandler {
	return &RecommendHandler{pricing: svc}
}

type recommendReq struct {
	ProfileID string `json:"profile_id" binding:"required"`
	pricing.LoadRequest
}

func (h *RecommendHandler) Recommend(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req recommendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json or missing profile_id")
		return
	}
	if missing := missingLaneFields(req.LoadRequest); missing != "" {
		writeError(c, http.StatusBadRequest, "missing "+missing)
		return
	}
	rec, err := h.pricing.Recommend(c.Request.Context(), who, req.ProfileID, req.LoadRequest)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rec)
}

func missingLaneFields(l pricing.LoadRequest) string {
	var missing []string
	for _, f := range []struct{ name, v string }{
		{"origin_city", l.OriginCity},
		{"origin_state", l.OriginState},
		{"dest_city", l.DestCity},
		{"dest_state", l.DestState},
		{"broker_name", l.BrokerName},
	} {
		if strings.TrimSpace(f.v) == "" {
			missing = append(missing, f.name)
		}
	}
	return strings.Join(missing, ", ")
}
