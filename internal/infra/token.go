// README: HS256 access tokens carrying email, tenant and role.
package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"

	"ada/internal/types"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims is the verified payload of an access token.
type TokenClaims struct {
	Email    string
	TenantID int64
	Role     types.Role
}

// TokenVerifier verifies a raw bearer token and returns its claims.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (*TokenClaims, error)
}

type accessClaims struct {
	TenantID int64  `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(caller types.Caller) (string, error) {
	now := t.now()
	claims := accessClaims{
		TenantID: caller.TenantID,
		Role:     string(caller.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) VerifyToken(_ context.Context, raw string) (*TokenClaims, error) {
	var claims accessClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !t.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Role == "" || claims.TenantID == 0 {
		return nil, ErrInvalidToken
	}
	return &TokenClaims{Email: claims.Subject, TenantID: claims.TenantID, Role: types.Role(claims.Role)}, nil
}
