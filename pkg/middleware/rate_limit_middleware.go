package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// TaskRateLimitMiddleware throttles the LLM-backed task routes. Model calls
// are expensive; one shared limiter is enough for a single-operator
// deployment.
func TaskRateLimitMiddleware(requestsPerMinute int) gin.HandlerFunc {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many task requests; slow down"})
			c.Abort()
			return
		}
		c.Next()
	}
}
