// README: Bearer-token auth middleware and role gate.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ada/internal/infra"
	"ada/internal/types"
)

const callerKey = "ada.caller"

// CallerResolver maps verified token claims to the stored user.
type CallerResolver interface {
	Resolve(ctx context.Context, email string, tenantID int64) (types.Caller, error)
}

// Auth verifies the bearer token and re-resolves the user so role changes
// and deletions take effect before the token expires.
func Auth(verifier infra.TokenVerifier, users CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := verifier.VerifyToken(c.Request.Context(), raw)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		caller, err := users.Resolve(c.Request.Context(), claims.Email, claims.TenantID)
		if err != nil {
			abort(c, http.StatusUnauthorized, "user not found / tenant mismatch")
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...types.Role) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	msg := "Requires role: " + strings.Join(names, ", ")
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, msg)
	}
}

// CallerFrom returns the caller stored by Auth.
func CallerFrom(c *gin.Context) (types.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return types.Caller{}, false
	}
	caller, ok := v.(types.Caller)
	return caller, ok
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
