package middleware

import (
	"github.com/gin-gonic/gin"
)

// securityHeaders go on every response. The API only serves JSON, so the CSP
// forbids everything, and stats change on every mark so nothing is cacheable.
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Permissions-Policy", "geolocation=(), microphone=(), camera=()"},
	{"Cache-Control", "no-store"},
	{"Pragma", "no-cache"},
}

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeaders sets the fixed response headers. HSTS is only sent in
// production, where TLS terminates in front of the server.
func SecurityHeaders(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		if production {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		c.Next()
	}
}
