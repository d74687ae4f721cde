package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/criteria"
	"appraisal/internal/platform/config"
)

// Seed is idempotent: every step checks before inserting, so running it on
// each startup is safe.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureRolePermissions(ctx, pool); err != nil {
		return err
	}
	if err := ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}
	if cfg.SeedCriteria {
		if err := ensureDefaultCriteria(ctx, pool); err != nil {
			return err
		}
	}
	return nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	for role, perms := range auth.RolePermissions {
		for _, perm := range perms {
			_, err := pool.Exec(ctx, `
        INSERT INTO role_permissions (role, permission)
        VALUES ($1, $2)
        ON CONFLICT (role, permission) DO NOTHING
      `, role, perm)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (first_name, last_name, email, password_hash, role, active)
    VALUES ('System', 'Administrator', $1, $2, $3, true)
  `, email, hash, auth.RoleAdmin)
	return err
}

// ensureDefaultCriteria installs the stock questionnaire only into an empty
// catalog. Once an admin has touched criteria, seeding never interferes.
func ensureDefaultCriteria(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM criteria").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, c := range criteria.Defaults() {
		_, err := pool.Exec(ctx, `
      INSERT INTO criteria (name, description, category, audience, leaders_only, weight, active)
      VALUES ($1, $2, $3, $4, $5, $6, true)
    `, c.Name, c.Description, c.Category, c.Audience, c.LeadersOnly, c.Weight)
		if err != nil {
			return err
		}
	}
	return nil
}
