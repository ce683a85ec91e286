package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/pricelist_api/internal/models"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

func newMockRepo(t *testing.T) (*CatalogRepository, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	t.Cleanup(func() { _ = db.Close() })
	return NewCatalogRepository(db), mock
}

func TestEnsureBrandIsSingleUpsertStatement(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name")).
		WithArgs("Acme").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(4, "Acme"))

	brand, err := repo.EnsureBrand(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, &models.Brand{ID: 4, Name: "Acme"}, brand)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductScansBrandAndLogo(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	cols := []string{
		"id", "name", "partner_name", "registration_date", "price", "profit_percentage",
		"description", "brand_id", "logo_id", "created_at", "updated_at",
		"brand.id", "brand.name", "logo.id", "logo.name", "logo.file_path", "logo.created_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			9, "Router", "Partner", time.Date(2023, 3, 21, 0, 0, 0, 0, time.UTC), 100.0, 50.0,
			nil, 4, 2, now, now,
			4, "Acme", 2, "acme-logo", "/uploads/logos/a.png", now,
		))

	p, err := repo.GetProduct(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "Router", p.Name)
	assert.Equal(t, "2023-03-21", p.RegistrationDate.String())
	assert.Nil(t, p.Description)
	assert.Equal(t, "Acme", p.Brand.Name)
	assert.Equal(t, "/uploads/logos/a.png", p.Logo.FilePath)
	assert.InDelta(t, 150.0, p.SalePrice(), 1e-9)
}

func TestGetProductNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(9999).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetProduct(context.Background(), 9999)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestDeleteProductMissingRowIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(9999).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteProduct(context.Background(), 9999)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.DeleteProduct(context.Background(), 3))
}

func TestCreateLogoDuplicateNameIsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO logos")).
		WithArgs("acme", "/uploads/logos/a.png").
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	err := repo.CreateLogo(context.Background(), &models.Logo{Name: "acme", FilePath: "/uploads/logos/a.png"})
	assert.ErrorIs(t, err, utils.ErrConflict)
}

func TestUpdateProductMissingRowIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE products")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	err := repo.UpdateProduct(context.Background(), &models.Product{ID: 42, Name: "x"})
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestInsertProductForeignKeyViolationNamesLogo(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation})

	err := repo.InsertProduct(context.Background(), &models.Product{Name: "x", LogoID: 77})
	var verr *utils.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "logoId", verr.Fields[0].Field)
}

func TestWithTxRollsBackWhenWriterFails(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO brands")).
		WithArgs("Acme").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Acme"))
	mock.ExpectRollback()

	boom := errors.New("later step failed")
	err := repo.WithTx(context.Background(), func(w CatalogWriter) error {
		if _, err := w.EnsureBrand(context.Background(), "Acme"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUsernameNotFound(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM admin_users")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewAdminUserRepository(db).GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}
