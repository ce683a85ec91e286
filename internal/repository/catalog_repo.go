package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/pricelist_api/internal/database"
	"github.com/GTDGit/pricelist_api/internal/models"
)

// CatalogWriter is the set of statements a product write runs inside one
// transaction.
type CatalogWriter interface {
	EnsureBrand(ctx context.Context, name string) (*models.Brand, error)
	LogoExists(ctx context.Context, id int) (bool, error)
	InsertProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id int) (*models.Product, error)
}

// catalogQueries runs catalog statements against either the pool or a transaction.
type catalogQueries struct {
	q sqlx.ExtContext
}

// CatalogRepository handles data access for brands, logos and products.
type CatalogRepository struct {
	catalogQueries
	db *sqlx.DB
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{catalogQueries: catalogQueries{q: db}, db: db}
}

// WithTx runs fn with a CatalogWriter bound to a single transaction.
func (r *CatalogRepository) WithTx(ctx context.Context, fn func(CatalogWriter) error) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&catalogQueries{q: tx})
	})
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
