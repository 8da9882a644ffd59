// README: Tenant and user aggregates plus module errors.
package tenant

import (
	"errors"
	"time"

	"ada/internal/types"
)

var (
	ErrNotFound           = errors.New("user not found in your tenant")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTenantTaken        = errors.New("tenant name already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBadRequest         = errors.New("bad request")
	ErrOwnerImmutable     = errors.New("cannot modify OWNER")
	ErrUnauthenticated    = errors.New("user not found / tenant mismatch")
)

const (
	minPasswordLen   = 8
	minTenantNameLen = 2
)

type Tenant struct {
	ID   int64
	Name string
}

type User struct {
	ID           int64
	TenantID     int64
	Email        string
	PasswordHash string
	Role         types.Role
	CreatedAt    time.Time
}

func (u User) Caller() types.Caller {
	return types.Caller{Email: u.Email, Role: u.Role, TenantID: u.TenantID}
}

// Account is what /me returns.
type Account struct {
	Email      string     `json:"email"`
	Role       types.Role `json:"role"`
	TenantName string     `json:"tenant"`
	TenantID   int64      `json:"tenant_id"`
}

// AssignableRoles are the roles that can be granted after registration.
var AssignableRoles = []types.Role{types.RoleAdmin, types.RoleDispatcher}

func CanAssign(r types.Role) bool {
	for _, a := range AssignableRoles {
		if a == r {
			return true
		}
	}
	return false
}
