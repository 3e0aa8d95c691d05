package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiters hands out one token bucket per client key.
type clientLimiters struct {
	limiters map[string]*rate.Limiter
	mutex    sync.Mutex
	rate     rate.Limit
	burst    int
}

func (cl *clientLimiters) get(key string) *rate.Limiter {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	limiter, exists := cl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(cl.rate, cl.burst)
		cl.limiters[key] = limiter
	}
	return limiter
}

func (cl *clientLimiters) cleanup() {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	for key, limiter := range cl.limiters {
		// A limiter with tokens to spare has been idle; drop it.
		if limiter.Tokens() >= float64(cl.burst) {
			delete(cl.limiters, key)
		}
	}
}

// RateLimit throttles requests per authenticated user, falling back to the
// client IP before authentication.
func RateLimit(requestsPerMinute, burst int) gin.HandlerFunc {
	cl := &clientLimiters{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    burst,
	}

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cl.cleanup()
		}
	}()

	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID := UserID(c); userID != 0 {
			key = "u:" + strconv.FormatUint(userID, 10)
		}

		if !cl.get(key).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
