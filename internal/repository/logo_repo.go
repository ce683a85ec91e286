package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/pricelist_api/internal/models"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

// ListLogos returns all logos ordered by name.
func (r *catalogQueries) ListLogos(ctx context.Context) ([]models.Logo, error) {
	logos := []models.Logo{}
	if err := sqlx.SelectContext(ctx, r.q, &logos, `
		SELECT id, name, file_path, created_at FROM logos ORDER BY name ASC
	`); err != nil {
		return nil, fmt.Errorf("list logos: %w", err)
	}
	return logos, nil
}

// LogoExists reports whether a logo row with id exists.
func (r *catalogQueries) LogoExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, r.q, &exists, `SELECT EXISTS (SELECT 1 FROM logos WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check logo: %w", err)
	}
	return exists, nil
}

// CreateLogo inserts logo and fills its id and created_at. A duplicate name
// yields utils.ErrConflict.
func (r *catalogQueries) CreateLogo(ctx context.Context, logo *models.Logo) error {
	err := r.q.QueryRowxContext(ctx, `
		INSERT INTO logos (name, file_path)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, logo.Name, logo.FilePath).Scan(&logo.ID, &logo.CreatedAt)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return fmt.Errorf("logo %q: %w", logo.Name, utils.ErrConflict)
		}
		return fmt.Errorf("create logo: %w", err)
	}
	return nil
}
