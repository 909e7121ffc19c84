package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterRate    = rate.Limit(2) // 120 req/min per client
	limiterBurst   = 60
	limiterMaxIdle = 5 * time.Minute
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter applies a per-client request budget keyed by remote address
// (chi's RealIP middleware runs first, so this is the end-client address).
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// NewRateLimiter creates a RateLimiter and starts its idle-entry cleanup.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{clients: make(map[string]*clientLimiter)}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, exists := rl.clients[key]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(limiterRate, limiterBurst)}
		rl.clients[key] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterMaxIdle)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-limiterMaxIdle)
		rl.mu.Lock()
		for key, cl := range rl.clients {
			if cl.lastAccess.Before(cutoff) {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Handler wraps next with the rate limit check.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			respondError(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
