package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/pricelist_api/internal/metrics"
	"github.com/GTDGit/pricelist_api/internal/models"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

// AdminStore is the credential store used by AdminAuthService.
type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	UpsertPassword(ctx context.Context, username, passwordHash string) (*models.AdminUser, error)
}

// TokenIssuer signs tokens for authenticated admins.
type TokenIssuer interface {
	Issue(id utils.Identity) (string, time.Time, error)
}

// dummyHash is compared against when the username is unknown so both
// failure paths pay for one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("pricelist-dummy-password"), bcrypt.DefaultCost)

type AdminAuthService struct {
	admins AdminStore
	tokens TokenIssuer
}

func NewAdminAuthService(admins AdminStore, tokens TokenIssuer) *AdminAuthService {
	return &AdminAuthService{admins: admins, tokens: tokens}
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login checks the credentials and issues a token. Unknown usernames and
// wrong passwords both return utils.ErrInvalidCredentials.
func (s *AdminAuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.admins.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, utils.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		log.Warn().Str("username", username).Msg("Login failed")
		metrics.RecordLogin("invalid")
		return nil, utils.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("load admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("username", username).Msg("Login failed")
		metrics.RecordLogin("invalid")
		return nil, utils.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(utils.Identity{AccountID: user.ID, Username: user.Username})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	log.Info().Int("admin_id", user.ID).Str("username", user.Username).Msg("Login successful")
	metrics.RecordLogin("success")
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// SeedAdmin creates the admin account or resets its password.
func (s *AdminAuthService) SeedAdmin(ctx context.Context, username, password string) (*models.AdminUser, error) {
	username = strings.TrimSpace(username)
	verr := &utils.ValidationError{}
	if username == "" {
		verr.Add("username", "username is required")
	}
	if password == "" {
		verr.Add("password", "password is required")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.admins.UpsertPassword(ctx, username, string(hash))
	if err != nil {
		return nil, fmt.Errorf("save admin: %w", err)
	}
	log.Info().Int("admin_id", user.ID).Str("username", user.Username).Msg("Admin account seeded")
	return user, nil
}
