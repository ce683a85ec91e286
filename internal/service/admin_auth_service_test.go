package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/pricelist_api/internal/repository/memstore"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

func newAuthService(t *testing.T) (*AdminAuthService, *utils.JWTManager) {
	t.Helper()
	tokens, err := utils.NewJWTManager("test-secret", 8*time.Hour)
	require.NoError(t, err)
	svc := NewAdminAuthService(memstore.New(), tokens)
	_, err = svc.SeedAdmin(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	return svc, tokens
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, tokens := newAuthService(t)

	res, err := svc.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), res.ExpiresAt, time.Minute)

	id, err := tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", id.Username)
	assert.NotZero(t, id.AccountID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, wrongPassword := svc.Login(ctx, "admin", "nope")
	_, unknownUser := svc.Login(ctx, "ghost", "s3cret")

	assert.ErrorIs(t, wrongPassword, utils.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, utils.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestSeedAdminResetsPassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.SeedAdmin(ctx, "admin", "rotated")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "admin", "s3cret")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "admin", "rotated")
	assert.NoError(t, err)
}

func TestSeedAdminRequiresCredentials(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.SeedAdmin(context.Background(), " ", "")
	assert.ElementsMatch(t, []string{"username", "password"}, fieldsOf(t, err))
}
