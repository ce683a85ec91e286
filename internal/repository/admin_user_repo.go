package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/pricelist_api/internal/models"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

// AdminUserRepository persists the administrator credential.
type AdminUserRepository struct {
	db *sqlx.DB
}

// NewAdminUserRepository creates a new AdminUserRepository.
func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// GetByUsername returns utils.ErrNotFound when no account has that username.
func (r *AdminUserRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.GetContext(ctx, &user, `
		SELECT id, username, password_hash, created_at, updated_at
		FROM admin_users
		WHERE username = $1
	`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("get admin user: %w", err)
	}
	return &user, nil
}

// UpsertPassword creates the account or replaces its password hash.
func (r *AdminUserRepository) UpsertPassword(ctx context.Context, username, passwordHash string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO admin_users (username, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			updated_at = NOW()
		RETURNING id, username, password_hash, created_at, updated_at
	`, username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("upsert admin user: %w", err)
	}
	return &user, nil
}
