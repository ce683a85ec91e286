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

const productSelect = `
	SELECT p.id, p.name, p.partner_name, p.registration_date, p.price, p.profit_percentage,
	       p.description, p.brand_id, p.logo_id, p.created_at, p.updated_at,
	       b.id AS "brand.id", b.name AS "brand.name",
	       l.id AS "logo.id", l.name AS "logo.name", l.file_path AS "logo.file_path", l.created_at AS "logo.created_at"
	FROM products p
	JOIN brands b ON b.id = p.brand_id
	JOIN logos l ON l.id = p.logo_id`

// ListProducts returns every product with brand and logo, newest first.
func (r *catalogQueries) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := sqlx.SelectContext(ctx, r.q, &products, productSelect+` ORDER BY p.created_at DESC, p.id DESC`); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct returns utils.ErrNotFound when no product has id.
func (r *catalogQueries) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	if err := sqlx.GetContext(ctx, r.q, &p, productSelect+` WHERE p.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, utils.ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// InsertProduct creates p and fills its id and timestamps.
func (r *catalogQueries) InsertProduct(ctx context.Context, p *models.Product) error {
	err := r.q.QueryRowxContext(ctx, `
		INSERT INTO products (name, partner_name, registration_date, price, profit_percentage, description, brand_id, logo_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, p.Name, p.PartnerName, p.RegistrationDate, p.Price, p.ProfitPercentage, p.Description, p.BrandID, p.LogoID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapProductWriteError("insert product", err)
	}
	return nil
}

// UpdateProduct overwrites the row with p.ID, returning utils.ErrNotFound if it does not exist.
func (r *catalogQueries) UpdateProduct(ctx context.Context, p *models.Product) error {
	err := r.q.QueryRowxContext(ctx, `
		UPDATE products
		SET name = $1, partner_name = $2, registration_date = $3, price = $4,
		    profit_percentage = $5, description = $6, brand_id = $7, logo_id = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING created_at, updated_at
	`, p.Name, p.PartnerName, p.RegistrationDate, p.Price, p.ProfitPercentage, p.Description, p.BrandID, p.LogoID, p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %d: %w", p.ID, utils.ErrNotFound)
		}
		return mapProductWriteError("update product", err)
	}
	return nil
}

// DeleteProduct removes the product, returning utils.ErrNotFound if it does not exist.
func (r *catalogQueries) DeleteProduct(ctx context.Context, id int) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, utils.ErrNotFound)
	}
	return nil
}

func mapProductWriteError(op string, err error) error {
	switch pqCode(err) {
	case pqForeignKeyViolation:
		return utils.NewValidationError("logoId", "logo does not exist")
	case pqUniqueViolation:
		return fmt.Errorf("%s: %w", op, utils.ErrConflict)
	}
	return fmt.Errorf("%s: %w: %w", op, utils.ErrStorageUnavailable, err)
}
