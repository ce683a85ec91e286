package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/pricelist_api/internal/models"
)

// EnsureBrand returns the brand named name, creating it if needed. The no-op
// DO UPDATE makes RETURNING yield the existing row on conflict, so concurrent
// callers never create duplicates.
func (r *catalogQueries) EnsureBrand(ctx context.Context, name string) (*models.Brand, error) {
	var brand models.Brand
	err := sqlx.GetContext(ctx, r.q, &brand, `
		INSERT INTO brands (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`, name)
	if err != nil {
		return nil, fmt.Errorf("ensure brand: %w", err)
	}
	return &brand, nil
}

// ListBrands returns all brands ordered by name.
func (r *catalogQueries) ListBrands(ctx context.Context) ([]models.Brand, error) {
	brands := []models.Brand{}
	if err := sqlx.SelectContext(ctx, r.q, &brands, `SELECT id, name FROM brands ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}
