package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, now *time.Time) *JWTManager {
	t.Helper()
	m, err := NewJWTManager("test-secret", 8*time.Hour)
	require.NoError(t, err)
	m.SetClock(func() time.Time { return *now })
	return m
}

func rejectionOf(t *testing.T, err error) TokenRejection {
	t.Helper()
	var terr *TokenError
	require.ErrorAs(t, err, &terr)
	return terr.Reason
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager("", time.Hour)
	assert.Error(t, err)

	_, err = NewJWTManager("secret", 0)
	assert.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	m := newTestManager(t, &now)

	token, exp, err := m.Issue(Identity{AccountID: 1, Username: "admin"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(8*time.Hour), exp)

	id, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, 1, id.AccountID)
	assert.Equal(t, "admin", id.Username)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	issued := now
	m := newTestManager(t, &now)

	token, _, err := m.Issue(Identity{AccountID: 1, Username: "admin"})
	require.NoError(t, err)

	now = issued.Add(8*time.Hour - time.Second)
	_, err = m.Verify(token)
	require.NoError(t, err)

	now = issued.Add(8 * time.Hour)
	_, err = m.Verify(token)
	assert.Equal(t, TokenExpired, rejectionOf(t, err))

	now = issued.Add(72 * time.Hour)
	_, err = m.Verify(token)
	assert.Equal(t, TokenExpired, rejectionOf(t, err))
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, &now)

	other, err := NewJWTManager("another-secret", time.Hour)
	require.NoError(t, err)
	token, _, err := other.Issue(Identity{AccountID: 1, Username: "admin"})
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Equal(t, TokenSignatureInvalid, rejectionOf(t, err))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, &now)

	token, _, err := m.Issue(Identity{AccountID: 1, Username: "admin"})
	require.NoError(t, err)

	forged, _, err := m.Issue(Identity{AccountID: 2, Username: "mallory"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err = m.Verify(tampered)
	assert.Equal(t, TokenSignatureInvalid, rejectionOf(t, err))
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, &now)

	claims := Claims{
		AccountID: 1,
		Username:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(unsigned)
	assert.Equal(t, TokenSignatureInvalid, rejectionOf(t, err))
}

func TestVerifyRejectsMalformed(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, &now)

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		_, err := m.Verify(raw)
		assert.Equal(t, TokenMalformed, rejectionOf(t, err), raw)
	}
}
