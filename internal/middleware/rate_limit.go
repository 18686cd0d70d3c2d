package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
	Window    time.Duration
}

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// NewLimiter returns the redis fixed-window limiter, or the in-process
// token bucket when redisClient is nil.
func NewLimiter(redisClient *redis.Client, config RateLimitConfig) Limiter {
	if redisClient == nil {
		return NewLocalRateLimiter(config)
	}
	return NewRateLimiter(redisClient, config)
}

// NewRecipeCreationLimiter limits recipe creation per user.
func NewRecipeCreationLimiter(redisClient *redis.Client, limit int, window time.Duration) Limiter {
	return NewLimiter(redisClient, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_creation",
	})
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		now:    time.Now,
	}
}

// Allow counts a request in the current fixed window.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: remaining,
		Reset:     windowStart.Add(rl.config.Window),
		Window:    rl.config.Window,
	}, nil
}

// LocalRateLimiter keeps one token bucket per key in memory. The bucket
// holds Limit tokens and refills one every Window/Limit. A bucket idle for
// a full window is back at capacity, so it is dropped on the next sweep.
type LocalRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*localBucket
	config    RateLimitConfig
	every     time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type localBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	limit := config.Limit
	if limit < 1 {
		limit = 1
	}
	return &LocalRateLimiter{
		limiters: make(map[string]*localBucket),
		config:   config,
		every:    config.Window / time.Duration(limit),
		now:      time.Now,
	}
}

func (l *LocalRateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.config.Window {
		l.sweep(now)
	}

	b, ok := l.limiters[key]
	if !ok {
		b = &localBucket{lim: rate.NewLimiter(rate.Every(l.every), l.config.Limit)}
		l.limiters[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// sweep must be called with mu held.
func (l *LocalRateLimiter) sweep(now time.Time) {
	for key, b := range l.limiters {
		if now.Sub(b.lastSeen) >= l.config.Window {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// Len reports how many keys currently hold a bucket.
func (l *LocalRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()
	lim := l.limiter(key, now)
	allowed := lim.AllowN(now, 1)

	tokens := lim.TokensAt(now)
	remaining := int(math.Max(0, math.Floor(tokens)))
	missing := float64(l.config.Limit) - tokens
	reset := now.Add(time.Duration(missing * float64(l.every)))

	return Decision{
		Allowed:   allowed,
		Limit:     l.config.Limit,
		Remaining: remaining,
		Reset:     reset,
		Window:    l.config.Window,
	}, nil
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
// per authenticated user. It must run after AuthMiddleware.
func RateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(UserIDKey)
		if !exists {
			abortWithError(c, http.StatusUnauthorized, "authentication credentials were not provided")
			return
		}

		decision, err := limiter.Allow(c.Request.Context(), fmt.Sprintf("%v", userID))
		if err != nil {
			// Log error but don't fail the request
			logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("rate limit check failed")
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(time.Until(decision.Reset).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.ErrorResponse{
				Message: fmt.Sprintf("request limit of %d per %v exceeded", decision.Limit, formatWindow(decision.Window)),
				Status:  "error",
			})
			return
		}

		c.Next()
	}
}

func formatWindow(d time.Duration) string {
	if d > 0 && d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	return d.String()
}
