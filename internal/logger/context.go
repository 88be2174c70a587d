package logger

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	userIDKey
	fieldsKey
	loggerKey
)

func stringValue(ctx context.Context, key contextKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// WithRequestID stores the request id, generating a UUID when it is empty
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

// WithUserID tags every later entry logged through Ctx with the user id
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) string { return stringValue(ctx, userIDKey) }

// WithFields appends fields that Ctx adds to every entry, such as the habit
// a request operates on.
func WithFields(ctx context.Context, fields ...Field) context.Context {
	existing, _ := ctx.Value(fieldsKey).([]Field)
	merged := make([]Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey, merged)
}

// WithLogger pins a logger to the context, used by tests to capture output
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// contextFields lists request_id, user_id and any WithFields values present on ctx
func contextFields(ctx context.Context) []Field {
	var fields []Field
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, String("request_id", id))
	}
	if id := UserIDFromContext(ctx); id != "" {
		fields = append(fields, String("user_id", id))
	}
	if extra, ok := ctx.Value(fieldsKey).([]Field); ok {
		fields = append(fields, extra...)
	}
	return fields
}

// Ctx returns the context's logger (or the default) enriched with its fields
func Ctx(ctx context.Context) Logger {
	l, ok := ctx.Value(loggerKey).(Logger)
	if !ok {
		l = Default()
	}
	return l.WithContext(ctx)
}
