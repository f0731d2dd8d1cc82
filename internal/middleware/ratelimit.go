package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
)

const (
	rateLimitPrefix = "ratelimit:"
	maxLocalWindows = 10000
)

// Counter is a shared fixed-window counter, e.g. *cache.RedisCache.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimiter caps requests per client IP and path within a fixed window.
// With a Counter the window is shared across replicas; otherwise it is kept
// in process.
type RateLimiter struct {
	limit  int
	window time.Duration
	shared Counter
	log    *slog.Logger

	mu    sync.Mutex
	local map[string]*window
	now   func() time.Time
}

type window struct {
	hits  int
	until time.Time
}

func NewRateLimiter(limit int, every time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: every,
		local:  make(map[string]*window),
		now:    time.Now,
	}
}

// WithCounter shares the windows through c. Counter errors are logged and
// the request is let through.
func (rl *RateLimiter) WithCounter(c Counter, log *slog.Logger) *RateLimiter {
	rl.shared = c
	rl.log = log
	return rl
}

// Allow records a hit for key and reports whether it fits the window, plus
// how long until the window resets.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if rl.shared != nil {
		n, left, err := rl.shared.Incr(ctx, rateLimitPrefix+key, rl.window)
		if err == nil {
			return n <= int64(rl.limit), left
		}
		if rl.log != nil {
			rl.log.Warn("rate limit: shared counter failed", slog.String("error", err.Error()))
		}
		return true, 0
	}
	return rl.allowLocal(key)
}

func (rl *RateLimiter) allowLocal(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.local[key]
	if !ok || !now.Before(w.until) {
		if len(rl.local) >= maxLocalWindows {
			rl.evictExpired(now)
		}
		w = &window{until: now.Add(rl.window)}
		rl.local[key] = w
	}
	w.hits++
	return w.hits <= rl.limit, w.until.Sub(now)
}

func (rl *RateLimiter) evictExpired(now time.Time) {
	for k, w := range rl.local {
		if !now.Before(w.until) {
			delete(rl.local, k)
		}
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, left := rl.Allow(r.Context(), remoteHost(r)+":"+r.URL.Path)
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(left.Seconds()))))
			transport.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// remoteHost relies on chi's RealIP having already applied the forwarding
// headers to RemoteAddr.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
