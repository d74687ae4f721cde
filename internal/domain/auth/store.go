package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID           string
	Role         string
	PasswordHash string
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, role, password_hash
    FROM users
    WHERE email = $1 AND active
  `, email).Scan(&out.ID, &out.Role, &out.PasswordHash)
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

// HasPermission satisfies the RBAC middleware contract. Permissions are
// seeded from RolePermissions at startup, so a role rename without a reseed
// simply denies everything.
func (s *Store) HasPermission(ctx context.Context, role, permission string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM role_permissions
    WHERE role = $1 AND permission = $2
  `, role, permission).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
