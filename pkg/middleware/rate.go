// Package middleware holds the HTTP middleware chain: recovery, request
// logging, CORS, per-IP rate limiting and bearer authentication.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

// bucket tracks a fixed-window request count for one IP.
type bucket struct {
	count   int
	resetAt time.Time
}

// RateLimiter allows each client IP max requests per window.
type RateLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiter starts a janitor goroutine that evicts expired buckets
// every window; call Stop to end it.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		max:     max,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := rl.now()
			rl.mu.Lock()
			for ip, b := range rl.buckets {
				if now.After(b.resetAt) {
					delete(rl.buckets, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Allow counts one request for ip and reports whether it is within the limit.
func (rl *RateLimiter) Allow(ip string) (bool, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[ip]
	if !ok || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(rl.window)}
		rl.buckets[ip] = b
	}
	b.count++
	return b.count <= rl.max, b.resetAt
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, reset := rl.Allow(ctx.ClientIP(r))
		if !ok {
			secs := int(time.Until(reset).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			response.TooManyRequests(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
