package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenRejection classifies why a token failed verification.
type TokenRejection string

const (
	TokenMalformed        TokenRejection = "malformed"
	TokenSignatureInvalid TokenRejection = "signature_invalid"
	TokenExpired          TokenRejection = "expired"
)

// TokenError is returned by Verify. Reason is for server-side logs only.
type TokenError struct {
	Reason TokenRejection
	Err    error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("token rejected (%s): %v", e.Reason, e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

// Claims is the JWT payload issued to administrators.
type Claims struct {
	AccountID int    `json:"accountId"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 tokens with one process-wide secret.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager fails when secret is empty; there is no default secret.
func NewJWTManager(secret string, ttl time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// SetClock replaces the time source. Intended for tests.
func (m *JWTManager) SetClock(now func() time.Time) {
	m.now = now
}

// Issue signs a token for id that expires ttl from now.
func (m *JWTManager) Issue(id Identity) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)

	claims := Claims{
		AccountID: id.AccountID,
		Username:  id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(id.AccountID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// Verify checks the signature and that the current time is before expiry.
func (m *JWTManager) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, &TokenError{Reason: classify(err), Err: err}
	}
	return &Identity{AccountID: claims.AccountID, Username: claims.Username}, nil
}

func classify(err error) TokenRejection {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return TokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return TokenSignatureInvalid
	default:
		return TokenMalformed
	}
}
