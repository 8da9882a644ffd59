// README: Recent recommendation log handler.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ada/internal/modules/auditlog"
)

type recentLogs interface {
	Recent(ctx context.Context, tenantID int64, limit int) ([]auditlog.Summary, error)
}

type LogHandler struct {
	logs recentLogs
}

func NewLogHandler(logs recentLogs) *LogHandler {
	return &LogHandler{logs: logs}
}

func (h *LogHandler) Recent(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	limit := auditlog.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	out, err := h.logs.Recent(c.Request.Context(), who.TenantID, auditlog.ClampLimit(limit))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}
