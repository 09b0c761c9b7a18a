package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cherrycherry3/crt-backend/internal/auth"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	msgRateLimitExceeded = "Too many requests"

	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRetryAfter         = "Retry-After"

	// DefaultLimiterIdleTTL is long enough for any bucket to refill, so
	// dropping an idle entry never grants a caller extra tokens.
	DefaultLimiterIdleTTL = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// RateLimiter implements token bucket rate limiting per caller. Authenticated
// callers are keyed by user id, everyone else by client IP.
type RateLimiter struct {
	limiters sync.Map // key -> *limiterEntry
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

// NewRateLimiter allows requestsPerSecond on average with bursts up to burst.
func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		rate:    rate.Limit(requestsPerSecond),
		burst:   burst,
		idleTTL: DefaultLimiterIdleTTL,
		now:     time.Now,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	value, ok := rl.limiters.Load(key)
	if !ok {
		value, _ = rl.limiters.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	}
	entry := value.(*limiterEntry)
	entry.lastSeen.Store(rl.now().UnixNano())
	return entry.limiter
}

// Prune drops limiters not used within the idle TTL and returns how many
// were removed.
func (rl *RateLimiter) Prune() int {
	cutoff := rl.now().Add(-rl.idleTTL).UnixNano()
	removed := 0
	rl.limiters.Range(func(key, value any) bool {
		if value.(*limiterEntry).lastSeen.Load() < cutoff {
			rl.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

func (rl *RateLimiter) Len() int {
	n := 0
	rl.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

func limiterKey(c echo.Context) string {
	if identity, err := auth.GetIdentity(c); err == nil {
		return "user:" + strconv.Itoa(identity.ID)
	}
	return "ip:" + c.RealIP()
}

func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter(limiterKey(c))
			header := c.Response().Header()
			header.Set(headerRateLimitLimit, strconv.Itoa(rl.burst))

			if !limiter.Allow() {
				header.Set(headerRateLimitRemaining, "0")
				header.Set(headerRetryAfter, "1")
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"detail": msgRateLimitExceeded,
				})
			}

			header.Set(headerRateLimitRemaining, strconv.Itoa(int(limiter.Tokens())))
			return next(c)
		}
	}
}

// NewStrictRateLimiter guards credential endpoints: 5 req/sec, burst of 10.
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// NewGlobalRateLimiter applies to every request: 100 req/sec, burst of 200.
func NewGlobalRateLimiter() *RateLimiter {
	return NewRateLimiter(100, 200)
}
