package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/claims/internal/errors"
	"github.com/allisson/claims/internal/httputil"
)

const (
	limiterIdleTTL       = time.Hour
	limiterSweepInterval = 5 * time.Minute
)

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// keyedLimiter holds one token bucket per key. Idle buckets are swept during lookups, so
// no background goroutine outlives the middleware.
type keyedLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newKeyedLimiter(rps float64, burst int) *keyedLimiter {
	return &keyedLimiter{
		limiters:  make(map[string]*limiterEntry),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// reserve reports whether a request for key is allowed and, if not, how long to wait.
func (k *keyedLimiter) reserve(key string) (bool, time.Duration) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) >= limiterSweepInterval {
		for staleKey, entry := range k.limiters {
			if now.Sub(entry.lastAccess) >= limiterIdleTTL {
				delete(k.limiters, staleKey)
			}
		}
		k.lastSweep = now
	}

	entry, ok := k.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(k.rps, k.burst)}
		k.limiters[key] = entry
	}
	entry.lastAccess = now

	if entry.limiter.AllowN(now, 1) {
		return true, 0
	}

	reservation := entry.limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	reservation.CancelAt(now)
	return false, delay
}

func (k *keyedLimiter) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

func (k *keyedLimiter) handle(c *gin.Context, key string, logger *slog.Logger) bool {
	allowed, delay := k.reserve(key)
	if allowed {
		return true
	}

	retryAfter := int(math.Ceil(delay.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	logger.Debug("rate limit exceeded", slog.String("key", key), slog.Int("retry_after", retryAfter))

	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.ErrorResponse{
		Error:   "rate_limit_exceeded",
		Message: "Too many requests. Please retry after the specified delay.",
	})
	return false
}

// RateLimitMiddleware limits authenticated requests per client. It must run after
// AuthenticationMiddleware.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	limiter := newKeyedLimiter(rps, burst)

	return func(c *gin.Context) {
		client, ok := GetClient(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware: no authenticated client in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if limiter.handle(c, client.ID.String(), logger) {
			c.Next()
		}
	}
}

// TokenRateLimitMiddleware limits the unauthenticated token endpoint per client IP.
func TokenRateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	limiter := newKeyedLimiter(rps, burst)

	return func(c *gin.Context) {
		if limiter.handle(c, c.ClientIP(), logger) {
			c.Next()
		}
	}
}
