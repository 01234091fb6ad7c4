package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "wdmmg/internal/errors"
	"wdmmg/internal/logger"
	"wdmmg/internal/ratelimit"
)

// RateLimit gates a route on the given class, keyed by client IP. A limiter
// failure lets the request through.
func RateLimit(limiter ratelimit.Limiter, class ratelimit.Class) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), class, c.ClientIP())
		if err != nil {
			logger.Get().Warnw("rate limiter unavailable, allowing request",
				"class", class,
				"client_ip", c.ClientIP(),
				"error", err,
			)
			c.Next()
			return
		}
		if !decision.Allowed {
			abort(c, apperrors.RateLimited(decision.RetryAfter))
			return
		}
		c.Next()
	}
}
