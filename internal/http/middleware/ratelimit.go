package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// KeyFunc maps a request to the identity whose bucket it draws from.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys authenticated requests by user ("user:<id>") and
// everything else by client address ("ip:<addr>").
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if uid := UserID(c); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

// KeyByIP keys every request by client address. Used for the OTP routes,
// where the caller is not yet known.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + c.ClientIP() }
}

// defaultBucketTTL is how long an idle bucket is kept before eviction.
const defaultBucketTTL = 10 * time.Minute

// RateLimiter is a process-local, per-key token bucket. Buckets live in a
// go-cache with a sliding idle TTL, so keys that stop sending are evicted by
// the cache janitor. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn KeyFunc

	mu      sync.Mutex // serializes bucket creation
	buckets *gocache.Cache
}

// NewRateLimiter returns a limiter refilling rps tokens per second up to
// burst. A burst <= 0 is treated as 1.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByUserOrIP()
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: gocache.New(defaultBucketTTL, defaultBucketTTL/2),
	}
}

// bucket returns the limiter for key and refreshes its idle TTL.
func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.buckets.Get(key); ok {
		lim := v.(*rate.Limiter)
		rl.buckets.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets.SetDefault(key, lim)
	return lim
}

// IsRateBypass reports whether IdempotencyValidator flagged the request as a
// replay, which the limiter lets through for free.
func IsRateBypass(c *gin.Context) bool {
	return c.GetBool(ctxKeyRateBypass)
}

// Handler enforces the limit. Rejected requests get 429 with the error
// envelope and a Retry-After header in whole seconds, at least 1.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		res := rl.bucket(rl.keyFn(c)).Reserve()
		delay := res.Delay()
		if res.OK() && delay == 0 {
			c.Next()
			return
		}
		res.Cancel()

		wait := 1
		if res.OK() {
			wait = int(math.Ceil(delay.Seconds()))
			if wait < 1 {
				wait = 1
			}
		}
		LoggerFrom(c).Debug().Int("retry_after", wait).Msg("rate limited")
		c.Header("Retry-After", strconv.Itoa(wait))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.GetString(requestIDKey),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
