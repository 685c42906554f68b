package utils

import (
	"net"

	"github.com/gin-gonic/gin"
)

// fallbackIP is used when the peer address cannot be parsed, e.g. a unix socket.
const fallbackIP = "127.0.0.1"

// ExtractClientIP returns the caller's network address.
//
// X-Forwarded-For and X-Real-IP are honoured only when the direct peer is
// one of the engine's trusted proxies (see gin.Engine.SetTrustedProxies).
// Otherwise the socket peer address is used, so a client cannot pick its
// own identity by sending headers.
func ExtractClientIP(c *gin.Context) string {
	if ip := c.ClientIP(); isValidIP(ip) {
		return ip
	}
	return fallbackIP
}

// isValidIP validates if a string is a valid IPv4 or IPv6 address
func isValidIP(ip string) bool {
	if ip == "" {
		return false
	}

	// Parse and validate
	parsed := net.ParseIP(ip)
	return parsed != nil
}
