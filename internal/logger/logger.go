// Package logger is the structured logger used across the backend. Callers
// log through the Logger interface with typed fields; request scoped values
// (request id, user id) ride on the context and are added by Ctx.
package logger

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"time"
)

// Level is a log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "info"
	}
	return levelNames[l]
}

// ParseLevel is case-insensitive and falls back to info
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return LevelWarn
	}
	for i, name := range levelNames {
		if s == name {
			return Level(i)
		}
	}
	return LevelInfo
}

// Field is one structured key/value pair
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field                 { return Field{Key: key, Value: value} }
func Int(key string, value int) Field                { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field        { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field              { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Err records err under "error"; a nil error is logged as null
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Logger is implemented by the slog backend
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger that adds fields to every entry
	With(fields ...Field) Logger
	// WithContext returns a child logger carrying the context's request fields
	WithContext(ctx context.Context) Logger
}

// Config selects level, encoding and destinations
type Config struct {
	Level Level
	// Format is "json" (default) or "text"
	Format    string
	AddSource bool
	// Output replaces stdout as the primary destination
	Output io.Writer
	// File, when set, also writes entries to a size-rotated file
	File *FileConfig
}

// FileConfig configures the rotating log file
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func DefaultConfig() Config {
	return Config{Level: LevelInfo, Format: "json"}
}

var defaultLogger atomic.Pointer[Logger]

// SetDefault replaces the process wide logger
func SetDefault(l Logger) {
	defaultLogger.Store(&l)
}

// Default returns the process wide logger, creating a JSON stdout logger on
// first use if SetDefault was never called.
func Default() Logger {
	if l := defaultLogger.Load(); l != nil {
		return *l
	}
	l := NewSlogLogger(DefaultConfig())
	defaultLogger.CompareAndSwap(nil, &l)
	return *defaultLogger.Load()
}

func Debug(msg string, fields ...Field) { Default().Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { Default().Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { Default().Warn(msg, fields...) }
func Error(msg string, fields ...Field) { Default().Error(msg, fields...) }
