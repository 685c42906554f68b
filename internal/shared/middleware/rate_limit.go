package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"library-backend/internal/metrics"
	"library-backend/internal/shared/response"
	"library-backend/pkg/ratelimit"
)

// RateLimit rejects callers that exceed limiter's budget, keyed by client IP.
// When the limiter itself fails the request is let through.
func RateLimit(name string, limiter ratelimit.Limiter) gin.HandlerFunc {
	// An unreachable Redis fails every request; log it once a minute.
	unavailable := &rate.Sometimes{First: 1, Interval: time.Minute}

	return func(c *gin.Context) {
		ip := ClientIP(c)

		allowed, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			metrics.RateLimitErrors.WithLabelValues(name).Inc()
			unavailable.Do(func() {
				log.Warn().Err(err).Str("limiter", name).Str("ip", ip).Msg("Rate limiter unavailable")
			})
			c.Next()
			return
		}

		if !allowed {
			metrics.RateLimitRejections.WithLabelValues(name).Inc()
			response.TooManyRequests(c, "Too many requests. Please wait a minute and try again.")
			c.Abort()
			return
		}

		c.Next()
	}
}
