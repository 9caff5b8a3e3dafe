package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/moyoez/calibre-panel/tool"
)

// RateLimit rejects requests beyond the limiter's budget with 429.
// A nil limiter disables limiting.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, tool.FastReturnError("Too many requests, try again later"))
			return
		}
		c.Next()
	}
}
