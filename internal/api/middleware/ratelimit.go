package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidgrab/vidgrab/internal/models"
)

// RateLimiter tracks request timestamps per client over a sliding window.
type RateLimiter struct {
	requests map[string][]time.Time
	mutex    sync.Mutex
	limit    int
	window   time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()

	return rl
}

// IsAllowed checks if a request is allowed for the given key
func (rl *RateLimiter) IsAllowed(key string) (bool, int) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	var validRequests []time.Time
	for _, reqTime := range rl.requests[key] {
		if reqTime.After(cutoff) {
			validRequests = append(validRequests, reqTime)
		}
	}

	if len(validRequests) >= rl.limit {
		rl.requests[key] = validRequests
		return false, rl.limit - len(validRequests)
	}

	validRequests = append(validRequests, now)
	rl.requests[key] = validRequests

	return true, rl.limit - len(validRequests)
}

// cleanup removes old entries periodically
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mutex.Lock()
		cutoff := time.Now().Add(-rl.window)

		for key, requests := range rl.requests {
			var validRequests []time.Time
			for _, reqTime := range requests {
				if reqTime.After(cutoff) {
					validRequests = append(validRequests, reqTime)
				}
			}

			if len(validRequests) == 0 {
				delete(rl.requests, key)
			} else {
				rl.requests[key] = validRequests
			}
		}
		rl.mutex.Unlock()
	}
}

// RateLimit builds a route-scoped limiter keyed by client IP. Each route
// group carries its own budget and message.
func RateLimit(limit int, window time.Duration, message string) gin.HandlerFunc {
	limiter := NewRateLimiter(limit, window)

	return func(c *gin.Context) {
		allowed, remaining := limiter.IsAllowed(c.ClientIP())

		c.Header("X-Rate-Limit-Limit", strconv.Itoa(limit))
		c.Header("X-Rate-Limit-Remaining", strconv.Itoa(remaining))
		c.Header("X-Rate-Limit-Reset", strconv.FormatInt(time.Now().Add(window).Unix(), 10))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"message": message,
					"code":    models.CodeRateLimitExceeded,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// The three route-scoped budgets carried by the public surface.

func DownloadLimiter() gin.HandlerFunc {
	return RateLimit(10, time.Hour, "Download limit exceeded. Maximum 10 downloads per hour.")
}

func ValidateLimiter() gin.HandlerFunc {
	return RateLimit(30, time.Minute, "Validation limit exceeded. Maximum 30 validations per minute.")
}

func StatusLimiter() gin.HandlerFunc {
	return RateLimit(100, time.Minute, "Status check limit exceeded.")
}
