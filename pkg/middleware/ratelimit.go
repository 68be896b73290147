package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gateline/gateline/pkg/config"
)

// RateLimiter applies a token-bucket limit per client IP. Idle entries are
// swept periodically so the map does not grow without bound.
type RateLimiter struct {
	cfg    config.RateLimitConfig
	logger *zap.Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	cleanupInterval time.Duration
	lastCleanup     time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a per-client rate limiter
func NewRateLimiter(cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		cfg:             cfg,
		logger:          logger.Named("ratelimit"),
		limiters:        make(map[string]*clientLimiter),
		cleanupInterval: 10 * time.Minute,
		lastCleanup:     time.Now(),
	}
}

// Allow reports whether a request from the identifier may proceed
func (r *RateLimiter) Allow(identifier string) bool {
	if !r.cfg.Enabled {
		return true
	}

	r.mu.Lock()
	if time.Since(r.lastCleanup) > r.cleanupInterval {
		r.cleanup()
	}

	cl, ok := r.limiters[identifier]
	if !ok {
		burst := r.cfg.Burst
		if burst < 1 {
			burst = 1
		}
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(r.cfg.RPS), burst)}
		r.limiters[identifier] = cl
	}
	cl.lastSeen = time.Now()
	r.mu.Unlock()

	allowed := cl.limiter.Allow()
	if !allowed {
		r.logger.Warn("Rate limit exceeded", zap.String("identifier", identifier))
	}
	return allowed
}

// cleanup removes limiters that have not been seen recently. Callers hold mu.
func (r *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-30 * time.Minute)
	for key, cl := range r.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(r.limiters, key)
		}
	}
	r.lastCleanup = time.Now()
}

// RateLimit returns a Gin middleware limiting requests per client IP
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
