package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/pricelist_api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func guardedRouter(t *testing.T, tokens *utils.JWTManager) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.GET("/private", NewJWTMiddleware(tokens).Handle(), func(c *gin.Context) {
		id, ok := utils.IdentityFromContext(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"username": id.Username, "adminId": c.GetInt("admin_id")})
	})
	return r
}

func TestJWTMiddleware(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	tokens, err := utils.NewJWTManager("test-secret", 8*time.Hour)
	require.NoError(t, err)
	tokens.SetClock(func() time.Time { return now })

	valid, _, err := tokens.Issue(utils.Identity{AccountID: 7, Username: "admin"})
	require.NoError(t, err)

	other, err := utils.NewJWTManager("other-secret", 8*time.Hour)
	require.NoError(t, err)
	other.SetClock(func() time.Time { return now })
	foreign, _, err := other.Issue(utils.Identity{AccountID: 7, Username: "admin"})
	require.NoError(t, err)

	r := guardedRouter(t, tokens)
	do := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("Bearer " + valid)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"admin","adminId":7}`, w.Body.String())

	var bodies []string
	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer not.a.token", "Bearer " + foreign} {
		w := do(header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)

		var resp utils.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		bodies = append(bodies, resp.Error.Code+"|"+resp.Error.Message)
	}
	for _, b := range bodies {
		assert.Equal(t, bodies[0], b)
	}

	now = now.Add(8 * time.Hour)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+valid).Code)
}

func TestLoginThrottle(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	throttle := NewLoginThrottle()
	throttle.SetClock(func() time.Time { return now })

	for i := 0; i < maxFailedLogins; i++ {
		assert.True(t, throttle.Allow("1.2.3.4"))
		throttle.Fail("1.2.3.4")
	}
	assert.False(t, throttle.Allow("1.2.3.4"))
	assert.True(t, throttle.Allow("5.6.7.8"))

	now = now.Add(failedLoginWindow + time.Second)
	assert.True(t, throttle.Allow("1.2.3.4"))
}

func TestLoginThrottleHandleCountsOnlyFailures(t *testing.T) {
	throttle := NewLoginThrottle()
	status := http.StatusUnauthorized

	r := gin.New()
	r.POST("/auth/login", throttle.Handle(), func(c *gin.Context) { c.Status(status) })
	do := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		return w.Code
	}

	status = http.StatusOK
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, do())
	}

	status = http.StatusUnauthorized
	for i := 0; i < maxFailedLogins; i++ {
		assert.Equal(t, http.StatusUnauthorized, do())
	}
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://admin.example.com", "http://localhost:5173"}))
	r.GET("/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Origin", "https://admin.example.com:443")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://admin.example.com:443", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLoggingMiddlewareSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, w.Body.String(), 8)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
}
