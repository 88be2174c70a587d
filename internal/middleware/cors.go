package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/fittrack/backend/internal/apierror"
)

// wildcardOrigin is a single-label subdomain pattern like https://*.example.com
type wildcardOrigin struct {
	scheme string // "https://"
	suffix string // ".example.com"
}

// parseWildcardOrigin returns nil unless pattern is scheme://*.domain.tld with
// exactly one wildcard as the leftmost label.
func parseWildcardOrigin(pattern string) *wildcardOrigin {
	idx := strings.Index(pattern, "://")
	if idx < 0 {
		return nil
	}
	scheme := pattern[:idx+3]
	host := pattern[idx+3:]

	if strings.Count(host, "*") != 1 || !strings.HasPrefix(host, "*.") {
		return nil
	}
	suffix := host[1:]
	// at least domain.tld after the wildcard
	if !strings.Contains(suffix[1:], ".") {
		return nil
	}
	return &wildcardOrigin{scheme: scheme, suffix: suffix}
}

// matches reports whether origin is exactly one label under the pattern's domain
func (w *wildcardOrigin) matches(origin string) bool {
	if !strings.HasPrefix(origin, w.scheme) || !strings.HasSuffix(origin, w.suffix) {
		return false
	}
	label := strings.TrimSuffix(strings.TrimPrefix(origin, w.scheme), w.suffix)
	return label != "" && !strings.ContainsAny(label, "./:")
}

// CORS middleware to handle cross-origin requests.
// An empty list allows every origin. Entries may be exact origins or
// single-label wildcards (https://*.example.com).
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0

	exact := make(map[string]struct{})
	var wildcards []*wildcardOrigin
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			allowAll = true
			continue
		}
		if w := parseWildcardOrigin(o); w != nil {
			wildcards = append(wildcards, w)
			continue
		}
		exact[o] = struct{}{}
	}

	isAllowed := func(origin string) bool {
		if _, ok := exact[origin]; ok {
			return true
		}
		for _, w := range wildcards {
			if w.matches(origin) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" && isAllowed(origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		} else if c.Request.Method == http.MethodOptions {
			apierror.WriteProblem(c, apierror.NewForbiddenError(apierror.GetRequestID(c), "origin "+origin+" is not allowed"))
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Idempotency-Key, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
