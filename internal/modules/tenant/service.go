// README: Tenant service handles registration, login, caller resolution and user management.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ada/internal/types"
)

type userStore interface {
	CreateTenant(ctx context.Context, name string) (Tenant, error)
	GetTenant(ctx context.Context, id int64) (Tenant, error)
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, tenantID int64) ([]User, error)
	UpdateRole(ctx context.Context, tenantID int64, email string, role types.Role) error
	DeleteUser(ctx context.Context, tenantID int64, email string) error
}

// TokenIssuer signs access tokens for an authenticated user.
type TokenIssuer interface {
	Issue(caller types.Caller) (string, error)
}

type Service struct {
	store    userStore
	tokens   TokenIssuer
	logger   *zap.Logger
	hashCost int
	now      func() time.Time
}

type Option func(*Service)

func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(store userStore, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		store:    store,
		tokens:   tokens,
		logger:   zap.NewNop(),
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RegisterCommand struct {
	TenantName string
	Email      string
	Password   string
}

type CreateUserCommand struct {
	Email    string
	Password string
	Role     types.Role
}

// Register founds a new tenant with the caller as its OWNER. Existing tenants
// gain members only through CreateUser.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (string, error) {
	name := strings.TrimSpace(cmd.TenantName)
	if len(name) < minTenantNameLen {
		return "", fmt.Errorf("%w: tenant_name must be at least %d characters", ErrBadRequest, minTenantNameLen)
	}
	email := normalizeEmail(cmd.Email)
	if err := checkCredentials(email, cmd.Password); err != nil {
		return "", err
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	t, err := s.store.CreateTenant(ctx, name)
	if err != nil {
		return "", err
	}
	u, err := s.newUser(t.ID, email, cmd.Password, types.RoleOwner)
	if err != nil {
		return "", err
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return "", err
	}
	s.logger.Info("user registered", zap.Int64("tenant_id", t.ID), zap.String("email", email))
	return s.tokens.Issue(u.Caller())
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(u.Caller())
}

// Resolve maps verified token claims to the stored user. The returned caller
// carries the user's current role, which may differ from the token's.
func (s *Service) Resolve(ctx context.Context, email string, tenantID int64) (types.Caller, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return types.Caller{}, ErrUnauthenticated
	}
	if err != nil {
		return types.Caller{}, err
	}
	if u.TenantID != tenantID {
		return types.Caller{}, ErrUnauthenticated
	}
	return u.Caller(), nil
}

func (s *Service) Me(ctx context.Context, caller types.Caller) (Account, error) {
	acc := Account{Email: caller.Email, Role: caller.Role, TenantID: caller.TenantID}
	t, err := s.store.GetTenant(ctx, caller.TenantID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}
	acc.TenantName = t.Name
	return acc, nil
}

func (s *Service) ListUsers(ctx context.Context, caller types.Caller) ([]User, error) {
	return s.store.ListUsers(ctx, caller.TenantID)
}

func (s *Service) CreateUser(ctx context.Context, caller types.Caller, cmd CreateUserCommand) (*User, error) {
	if !CanAssign(cmd.Role) {
		return nil, fmt.Errorf("%w: role must be ADMIN or DISPATCHER", ErrBadRequest)
	}
	email := normalizeEmail(cmd.Email)
	if err := checkCredentials(email, cmd.Password); err != nil {
		return nil, err
	}
	u, err := s.newUser(caller.TenantID, email, cmd.Password, cmd.Role)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user created",
		zap.Int64("tenant_id", caller.TenantID),
		zap.String("email", email),
		zap.String("role", string(cmd.Role)),
		zap.String("by", caller.Email),
	)
	return u, nil
}

func (s *Service) ChangeRole(ctx context.Context, caller types.Caller, email string, role types.Role) error {
	if !CanAssign(role) {
		return fmt.Errorf("%w: role must be ADMIN or DISPATCHER", ErrBadRequest)
	}
	target, err := s.tenantUser(ctx, caller.TenantID, email)
	if err != nil {
		return err
	}
	if target.Role == types.RoleOwner {
		return ErrOwnerImmutable
	}
	return s.store.UpdateRole(ctx, caller.TenantID, target.Email, role)
}

func (s *Service) DeleteUser(ctx context.Context, caller types.Caller, email string) error {
	target, err := s.tenantUser(ctx, caller.TenantID, email)
	if err != nil {
		return err
	}
	if target.Role == types.RoleOwner {
		return ErrOwnerImmutable
	}
	return s.store.DeleteUser(ctx, caller.TenantID, target.Email)
}

func (s *Service) tenantUser(ctx context.Context, tenantID int64, email string) (*User, error) {
	u, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *Service) newUser(tenantID int64, email, password string, role types.Role) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &User{
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}, nil
}

func checkCredentials(email, password string) error {
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email", ErrBadRequest)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrBadRequest, minPasswordLen)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
