package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/pricelist_api/internal/metrics"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

const (
	maxFailedLogins   = 5
	failedLoginWindow = time.Minute
)

// LoginThrottle counts failed logins per IP. Only failures count; once an IP
// has maxFailedLogins failures inside the window, further attempts from it
// are refused until the window has passed.
type LoginThrottle struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	now      func() time.Time
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

func NewLoginThrottle() *LoginThrottle {
	return &LoginThrottle{
		attempts: make(map[string]*attemptInfo),
		now:      time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (r *LoginThrottle) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Allow reports whether ip may attempt another login.
func (r *LoginThrottle) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.attempts[ip]
	if !ok {
		return true
	}
	if r.now().Sub(info.firstAt) > failedLoginWindow {
		delete(r.attempts, ip)
		return true
	}
	return info.count < maxFailedLogins
}

// Fail records a failed login for ip.
func (r *LoginThrottle) Fail(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	info, ok := r.attempts[ip]
	if !ok || now.Sub(info.firstAt) > failedLoginWindow {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return
	}
	info.count++
}

// Cleanup drops expired entries.
func (r *LoginThrottle) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for ip, info := range r.attempts {
		if now.Sub(info.firstAt) > failedLoginWindow {
			delete(r.attempts, ip)
		}
	}
}

// Run calls Cleanup every interval until stop is closed.
func (r *LoginThrottle) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Cleanup()
		case <-stop:
			return
		}
	}
}

// Handle refuses throttled IPs with 429 and records a failure whenever the
// login handler answers 401.
func (r *LoginThrottle) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !r.Allow(ip) {
			log.Warn().Str("ip", ip).Msg("Login throttled")
			metrics.RecordLogin("throttled")
			utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "Too many failed login attempts, try again later")
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusUnauthorized {
			r.Fail(ip)
		}
	}
}
