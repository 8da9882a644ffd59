// README: Tenant service tests against an in-memory user store.
package tenant

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"ada/internal/types"
)

type memStore struct {
	mu      sync.Mutex
	tenants []Tenant
	users   []*User
}

func (m *memStore) CreateTenant(_ context.Context, name string) (Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.Name == name {
			return Tenant{}, ErrTenantTaken
		}
	}
	t := Tenant{ID: int64(len(m.tenants) + 1), Name: name}
	m.tenants = append(m.tenants, t)
	return t, nil
}

func (m *memStore) GetTenant(_ context.Context, id int64) (Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return Tenant{}, ErrNotFound
}

func (m *memStore) CreateUser(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	u.ID = int64(len(m.users) + 1)
	cp := *u
	m.users = append(m.users, &cp)
	return nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) ListUsers(_ context.Context, tenantID int64) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []User
	for _, u := range m.users {
		if u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memStore) UpdateRole(_ context.Context, tenantID int64, email string, role types.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.TenantID == tenantID && u.Email == email && u.Role != types.RoleOwner {
			u.Role = role
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) DeleteUser(_ context.Context, tenantID int64, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users {
		if u.TenantID == tenantID && u.Email == email && u.Role != types.RoleOwner {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type stubIssuer struct {
	issued []types.Caller
}

func (s *stubIssuer) Issue(c types.Caller) (string, error) {
	s.issued = append(s.issued, c)
	return "token-for-" + c.Email, nil
}

func newTestService() (*Service, *memStore, *stubIssuer) {
	store := &memStore{}
	issuer := &stubIssuer{}
	return NewService(store, issuer, WithHashCost(bcrypt.MinCost)), store, issuer
}

func mustRegister(t *testing.T, svc *Service, tenant, email string) types.Caller {
	t.Helper()
	if _, err := svc.Register(context.Background(), RegisterCommand{TenantName: tenant, Email: email, Password: "password123"}); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	caller, err := svc.Resolve(context.Background(), email, mustTenantID(t, svc, email))
	if err != nil {
		t.Fatalf("resolve %s: %v", email, err)
	}
	return caller
}

func mustTenantID(t *testing.T, svc *Service, email string) int64 {
	t.Helper()
	u, err := svc.store.GetUserByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("lookup %s: %v", email, err)
	}
	return u.TenantID
}

func TestRegister_FirstUserIsOwner(t *testing.T) {
	svc, _, issuer := newTestService()
	token, err := svc.Register(context.Background(), RegisterCommand{TenantName: "Lone Star Freight", Email: "Owner@LoneStar.test", Password: "password123"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if token != "token-for-owner@lonestar.test" {
		t.Errorf("token = %q", token)
	}
	if got := issuer.issued[0]; got.Role != types.RoleOwner || got.TenantID == 0 {
		t.Errorf("issued caller = %+v", got)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  RegisterCommand
		want error
	}{
		{"short tenant", RegisterCommand{TenantName: "A", Email: "a@b.test", Password: "password123"}, ErrBadRequest},
		{"short password", RegisterCommand{TenantName: "Acme", Email: "a@b.test", Password: "short"}, ErrBadRequest},
		{"bad email", RegisterCommand{TenantName: "Acme", Email: "not-an-email", Password: "password123"}, ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.cmd); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	mustRegister(t, svc, "Acme", "dup@acme.test")
	if _, err := svc.Register(ctx, RegisterCommand{TenantName: "Other", Email: "dup@acme.test", Password: "password123"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegister_ExistingTenantRejected(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	owner := mustRegister(t, svc, "Acme Freight", "boss@acme.test")

	_, err := svc.Register(ctx, RegisterCommand{TenantName: "Acme Freight", Email: "mallory@evil.test", Password: "password123"})
	if !errors.Is(err, ErrTenantTaken) {
		t.Fatalf("expected ErrTenantTaken, got %v", err)
	}
	if _, err := store.GetUserByEmail(ctx, "mallory@evil.test"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no user created, got %v", err)
	}
	users, err := svc.ListUsers(ctx, owner)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 || users[0].Email != "boss@acme.test" {
		t.Errorf("tenant membership changed: %+v", users)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	mustRegister(t, svc, "Acme", "owner@acme.test")
	ctx := context.Background()

	if _, err := svc.Login(ctx, "owner@acme.test", "password123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := svc.Login(ctx, "owner@acme.test", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost@acme.test", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestResolve_TenantMismatch(t *testing.T) {
	svc, _, _ := newTestService()
	owner := mustRegister(t, svc, "Acme", "owner@acme.test")
	if _, err := svc.Resolve(context.Background(), owner.Email, owner.TenantID+1); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Resolve(context.Background(), "ghost@acme.test", owner.TenantID); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestUserManagement(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := mustRegister(t, svc, "Acme", "owner@acme.test")
	outsider := mustRegister(t, svc, "Rival", "owner@rival.test")

	if _, err := svc.CreateUser(ctx, owner, CreateUserCommand{Email: "disp@acme.test", Password: "password123", Role: types.RoleDispatcher}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if _, err := svc.CreateUser(ctx, owner, CreateUserCommand{Email: "boss@acme.test", Password: "password123", Role: types.RoleOwner}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("creating OWNER: expected ErrBadRequest, got %v", err)
	}

	users, err := svc.ListUsers(ctx, owner)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 || users[0].Email != "owner@acme.test" {
		t.Errorf("users = %+v", users)
	}

	if err := svc.ChangeRole(ctx, owner, "disp@acme.test", types.RoleAdmin); err != nil {
		t.Fatalf("ChangeRole() error = %v", err)
	}
	caller, err := svc.Resolve(ctx, "disp@acme.test", owner.TenantID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if caller.Role != types.RoleAdmin {
		t.Errorf("role after change = %s", caller.Role)
	}

	if err := svc.ChangeRole(ctx, owner, "owner@acme.test", types.RoleAdmin); !errors.Is(err, ErrOwnerImmutable) {
		t.Errorf("changing OWNER: expected ErrOwnerImmutable, got %v", err)
	}
	if err := svc.DeleteUser(ctx, owner, "owner@acme.test"); !errors.Is(err, ErrOwnerImmutable) {
		t.Errorf("deleting OWNER: expected ErrOwnerImmutable, got %v", err)
	}
	if err := svc.DeleteUser(ctx, outsider, "disp@acme.test"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant delete: expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteUser(ctx, owner, "disp@acme.test"); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := svc.Resolve(ctx, "disp@acme.test", owner.TenantID); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("deleted user still resolves: %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, _, _ := newTestService()
	owner := mustRegister(t, svc, "Acme Freight", "owner@acme.test")
	acc, err := svc.Me(context.Background(), owner)
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if acc.TenantName != "Acme Freight" || acc.Role != types.RoleOwner {
		t.Errorf("account = %+v", acc)
	}
}
