// README: Authenticated caller identity shared by handlers and services.
package types

type Role string

const (
	RoleOwner      Role = "OWNER"
	RoleAdmin      Role = "ADMIN"
	RoleDispatcher Role = "DISPATCHER"
)

// Caller identifies who made a request. It is used for tenant scoping and
// attribution only; pricing never branches on it.
type Caller struct {
	Email    string
	Role     Role
	TenantID int64
}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleDispatcher:
		return true
	}
	return false
}
