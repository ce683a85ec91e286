package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/pricelist_api/internal/utils"
)

// TokenVerifier checks bearer tokens. *utils.JWTManager implements it.
type TokenVerifier interface {
	Verify(token string) (*utils.Identity, error)
}

type JWTMiddleware struct {
	verifier TokenVerifier
}

func NewJWTMiddleware(verifier TokenVerifier) *JWTMiddleware {
	return &JWTMiddleware{verifier: verifier}
}

// Handle rejects the request with one generic 401 whatever the cause; the
// cause is only logged.
func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.reject(c, "missing_bearer", nil)
			return
		}

		id, err := m.verifier.Verify(token)
		if err != nil {
			reason := "invalid"
			var tokErr *utils.TokenError
			if errors.As(err, &tokErr) {
				reason = string(tokErr.Reason)
			}
			m.reject(c, reason, err)
			return
		}

		c.Set("admin_id", id.AccountID)
		c.Set("username", id.Username)
		c.Request = c.Request.WithContext(utils.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func (m *JWTMiddleware) reject(c *gin.Context, reason string, err error) {
	log.Warn().
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("reason", reason).
		Str("path", c.Request.URL.Path).
		Msg("Rejected bearer token")
	utils.RespondError(c, utils.ErrUnauthorized)
	c.Abort()
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
