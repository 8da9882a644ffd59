// README: Tenant and user store backed by PostgreSQL.
package tenant

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ada/internal/types"
)

const uniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// CreateTenant inserts a new tenant. An existing name is ErrTenantTaken.
func (s *Store) CreateTenant(ctx context.Context, name string) (Tenant, error) {
	var t Tenant
	err := s.db.QueryRow(ctx, `
		INSERT INTO tenants (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name`, name,
	).Scan(&t.ID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tenant{}, ErrTenantTaken
	}
	return t, err
}

func (s *Store) GetTenant(ctx context.Context, id int64) (Tenant, error) {
	var t Tenant
	err := s.db.QueryRow(ctx, `SELECT id, name FROM tenants WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tenant{}, ErrNotFound
	}
	return t, err
}

func (s *Store) CreateUser(ctx context.Context, u *User) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (tenant_id, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		u.TenantID, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt,
	).Scan(&u.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		SELECT id, tenant_id, email, password_hash, role, created_at
		FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, tenantID int64) ([]User, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, tenant_id, email, password_hash, role, created_at
		FROM users WHERE tenant_id = $1
		ORDER BY created_at ASC, id ASC`, tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRole(ctx context.Context, tenantID int64, email string, role types.Role) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET role = $1
		WHERE tenant_id = $2 AND email = $3 AND role <> 'OWNER'`,
		string(role), tenantID, email,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, tenantID int64, email string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM users
		WHERE tenant_id = $1 AND email = $2 AND role <> 'OWNER'`,
		tenantID, email,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
