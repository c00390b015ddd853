package web

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// errRateLimited maps to RATE001.
var errRateLimited = errors.New("rate limit exceeded")

// rateLimiter holds a token bucket per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newRateLimiter allows perMinute requests per IP, refilled evenly, with a
// burst of perMinute. Idle visitors are dropped until ctx is cancelled.
func newRateLimiter(ctx context.Context, perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		idle:     3 * time.Minute,
	}
	go rl.cleanup(ctx, time.Minute)
	return rl
}

// cleanup removes stale visitor entries every interval.
func (rl *rateLimiter) cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep(time.Now())
		}
	}
}

func (rl *rateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idle {
			delete(rl.visitors, ip)
		}
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()

	return v.limiter.Allow()
}

// rateLimit returns middleware that rejects requests over the IP's budget.
// RemoteAddr has already been resolved by TrustedRealIP.
func (s *Server) rateLimit(rl *rateLimiter) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(1 / float64(rl.limit))))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientIP(r)) {
				w.Header().Set("Retry-After", retryAfter)
				s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
