// README: Recovery middleware; logs the panic and returns a JSON 500.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("route", c.FullPath()),
					zap.ByteString("stack", debug.Stack()),
				)
				abort(c, http.StatusInternalServerError, "internal error")
			}
		}()
		c.Next()
	}
}
