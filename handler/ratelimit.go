// file: handler/ratelimit.go

package handler

import (
	"lead-crm-api/common"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// CredentialRateLimiter throttles the unauthenticated credential endpoints
// (login, signup, password reset) per client IP: 10 requests per minute with
// a burst of 10. Stale entries are dropped by a background cleanup loop.
type CredentialRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	stopCh   chan struct{}
}

type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

const (
	credentialRate    = rate.Limit(10.0 / 60.0)
	credentialBurst   = 10
	limiterCleanupTTL = 10 * time.Minute
)

func NewCredentialRateLimiter() *CredentialRateLimiter {
	rl := &CredentialRateLimiter{
		limiters: make(map[string]*ipLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *CredentialRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *CredentialRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "6")
			common.NewAppError(http.StatusTooManyRequests, "Too many requests. Please try again later.", nil).Send(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *CredentialRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(credentialRate, credentialBurst)}
		rl.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()
	return entry.limiter.Allow()
}

func (rl *CredentialRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *CredentialRateLimiter) cleanup() {
	now := time.Now()
	rl.mu.Lock()
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastAccess) > limiterCleanupTTL {
			delete(rl.limiters, ip)
		}
	}
	rl.mu.Unlock()
}
