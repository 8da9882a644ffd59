// README: Lane mileage lookup handler.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ada/internal/maps"
)

type mileageEstimator interface {
	LoadedMiles(ctx context.Context, origin, destination string) (float64, error)
}

type LaneHandler struct {
	mileage mileageEstimator
}

// NewLaneHandler accepts a nil estimator; the endpoint then answers 503.
func NewLaneHandler(mileage mileageEstimator) *LaneHandler {
	return &LaneHandler{mileage: mileage}
}

func (h *LaneHandler) Mileage(c *gin.Context) {
	if h.mileage == nil {
		writeServiceError(c, maps.ErrUnavailable)
		return
	}
	origin, destination := c.Query("origin"), c.Query("destination")
	if origin == "" || destination == "" {
		writeServiceError(c, maps.ErrBadLane)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	miles, err := h.mileage.LoadedMiles(ctx, origin, destination)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"origin":       origin,
		"destination":  destination,
		"loaded_miles": miles,
	})
}
