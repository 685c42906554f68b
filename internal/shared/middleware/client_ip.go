package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/utils"
	"library-backend/pkg/logger"
)

type contextKey string

const (
	// ClientIPKey is the gin context key holding the caller's address.
	ClientIPKey = "client_ip"

	clientIPCtxKey contextKey = "client_ip"
)

// ClientIPMiddleware extracts the client IP address from the request
// and injects it into the context for downstream handlers to use.
//
// Usage:
//
//	router.Use(middleware.ClientIPMiddleware())
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.ExtractClientIP(c)

		c.Set(ClientIPKey, clientIP)

		ctx := context.WithValue(c.Request.Context(), clientIPCtxKey, clientIP)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("Client IP extracted: " + clientIP)

		c.Next()
	}
}

// GetClientIPFromContext retrieves the client IP from context
// Returns empty string if not found
func GetClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPCtxKey).(string); ok {
		return ip
	}
	return ""
}

// ClientIP returns the address stored by ClientIPMiddleware, falling back to
// extracting it from the request when the middleware did not run.
func ClientIP(c *gin.Context) string {
	if ip := c.GetString(ClientIPKey); ip != "" {
		return ip
	}
	return utils.ExtractClientIP(c)
}
