package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/fittrack/backend/internal/apierror"
	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
)

// RateLimiter is a fixed-window counter per client key. Authenticated
// requests are keyed by user id, anonymous ones by client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	rate    int
	window  time.Duration
	name    string
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

// NewRateLimiter allows rate requests per window for each client. name is
// only used in logs ("general", "mutations").
func NewRateLimiter(rate int, win time.Duration, name string) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		rate:    rate,
		window:  win,
		name:    name,
		now:     time.Now,
	}
	go rl.sweep()

	logger.Default().Debug("rate limiter initialized",
		logger.String("name", name),
		logger.Int("rate", rate),
		logger.Duration("window", win),
	)
	return rl
}

// sweep drops clients whose window ended more than one window ago
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := rl.now().Add(-2 * rl.window)
		dropped := 0
		for key, w := range rl.clients {
			if w.start.Before(cutoff) {
				delete(rl.clients, key)
				dropped++
			}
		}
		remaining := len(rl.clients)
		rl.mu.Unlock()

		if dropped > 0 {
			logger.Default().Debug("rate limiter sweep",
				logger.String("name", rl.name),
				logger.Int("dropped", dropped),
				logger.Int("remaining", remaining),
			)
		}
	}
}

// allow counts one request for key and reports whether it fits in the
// current window, along with how many requests remain in it.
func (rl *RateLimiter) allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.window {
		w = &window{start: now}
		rl.clients[key] = w
	}
	w.count++

	remaining := rl.rate - w.count
	if remaining < 0 {
		remaining = 0
	}
	return w.count <= rl.rate, remaining
}

// retryAfter is the number of whole seconds until key's window resets
func (rl *RateLimiter) retryAfter(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[key]
	if !ok {
		return 0
	}
	left := w.start.Add(rl.window).Sub(rl.now())
	return int(math.Ceil(left.Seconds()))
}

// RateLimit limits every route to rate requests per window
func RateLimit(rate int, win time.Duration) gin.HandlerFunc {
	return rateLimitMiddleware(NewRateLimiter(rate, win, "general"))
}

// RateLimitMutations is the stricter limit for the habit mark endpoints, each
// of which triggers a full stats refresh. It runs after Auth, so it counts per user.
func RateLimitMutations(rate int, win time.Duration) gin.HandlerFunc {
	return rateLimitMiddleware(NewRateLimiter(rate, win, "mutations"))
}

func clientKey(c *gin.Context) string {
	if userID := c.GetString("user_id"); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

func rateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientKey(c)

		allowed, remaining := limiter.allow(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			logger.Ctx(c.Request.Context()).Warn("rate limit exceeded",
				logger.String("limiter", limiter.name),
				logger.String("client", key),
				logger.Int("limit", limiter.rate),
				logger.Duration("window", limiter.window),
			)
			apierror.WriteProblem(c, apierror.NewRateLimitError(apierror.GetRequestID(c), limiter.retryAfter(key)))
			return
		}

		c.Next()
	}
}
