package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/fittrack/backend/internal/apierror"
	"github.com/JonnyWalker81/fittrack/backend/internal/logger"
	"github.com/JonnyWalker81/fittrack/backend/internal/repository"
)

const (
	// IdempotencyKeyHeader carries the client chosen key
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the store
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"

	maxIdempotencyKeyLen = 255
)

// capturingWriter tees the response body so it can be stored for replay
type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the first 2xx response of a POST for a repeated
// Idempotency-Key. Keys are scoped to the user and the concrete request path,
// so the same key sent for two different habits is two different requests.
// Must run after Auth. The store is the database table or Redis.
func Idempotency(store repository.IdempotencyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}

		log := logger.Ctx(c.Request.Context())
		requestID := apierror.GetRequestID(c)

		if len(key) > maxIdempotencyKeyLen {
			apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
				{Field: IdempotencyKeyHeader, Message: "must be at most 255 characters", Code: "out_of_range"},
			}))
			return
		}

		userID := c.GetString("user_id")
		if userID == "" {
			log.Warn("idempotency key sent without an authenticated user")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
			return
		}

		route := c.Request.Method + " " + c.Request.URL.Path
		ctx := c.Request.Context()

		existing, err := store.Get(ctx, key, route, userID)
		if err != nil {
			// the store being down must not block marking progress
			log.Error("idempotency lookup failed", logger.Err(err), logger.String("route", route))
			c.Next()
			return
		}
		if existing != nil {
			log.Info("replaying idempotent response",
				logger.String("route", route),
				logger.Int("status_code", existing.StatusCode),
			)
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(existing.StatusCode, "application/json; charset=utf-8", existing.ResponseBody)
			c.Abort()
			return
		}

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status < 200 || status >= 300 {
			return
		}
		if err := store.Store(ctx, key, route, userID, w.body.Bytes(), status); err != nil {
			log.Warn("failed to store idempotent response", logger.Err(err), logger.String("route", route))
		}
	}
}
