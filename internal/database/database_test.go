package database

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/GTDGit/pricelist_api/internal/config"
)

func TestDSNEscapesCredentials(t *testing.T) {
	dsn := DSN(&appconfig.DatabaseConfig{
		Host: "db", Port: "5432", User: "price list", Password: "p@ss:word", Name: "catalog", SSLMode: "disable",
	})
	assert.Equal(t, "postgres://price+list:p%40ss%3Aword@db:5432/catalog?sslmode=disable", dsn)
}

func TestBackoffDelayIsCapped(t *testing.T) {
	base := 500 * time.Millisecond
	assert.Equal(t, base, backoffDelay(1, base))
	assert.Equal(t, 2*time.Second, backoffDelay(3, base))
	assert.Equal(t, 5*time.Second, backoffDelay(10, base))
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	err = WithTx(t.Context(), db, func(tx *sqlx.Tx) error { return nil })
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = WithTx(t.Context(), db, func(tx *sqlx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
