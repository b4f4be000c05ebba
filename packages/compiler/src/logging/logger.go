// Package logging provides the structured logger used across the compiler.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is the minimum level a logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps "debug", "info", "warn" and "error" to a Level. Unknown names give LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger interface for structured logging
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...any)
	Info(ctx context.Context, msg string, fields ...any)
	Warn(ctx context.Context, err error, msg string, fields ...any)
	Error(ctx context.Context, err error, msg string, fields ...any)

	With(fields ...any) Logger
	WithComponent(component string) Logger
}

// Config holds logger configuration
type Config struct {
	Level     Level
	Format    string // "json" or "text"
	Output    io.Writer
	Component string
}

// DefaultConfig logs text at info level to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

type slogLogger struct {
	logger *slog.Logger
}

// New creates a logger backed by log/slog.
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level.slog()}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	l := slog.New(handler)
	if cfg.Component != "" {
		l = l.With(slog.String("component", cfg.Component))
	}
	return &slogLogger{logger: l}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &slogLogger{logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...any) {
	l.log(ctx, slog.LevelDebug, nil, msg, fields)
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...any) {
	l.log(ctx, slog.LevelInfo, nil, msg, fields)
}

func (l *slogLogger) Warn(ctx context.Context, err error, msg string, fields ...any) {
	l.log(ctx, slog.LevelWarn, err, msg, fields)
}

func (l *slogLogger) Error(ctx context.Context, err error, msg string, fields ...any) {
	l.log(ctx, slog.LevelError, err, msg, fields)
}

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: l.logger.With(fields...)}
}

func (l *slogLogger) WithComponent(component string) Logger {
	return &slogLogger{logger: l.logger.With(slog.String("component", component))}
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, err error, msg string, fields []any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}
	if err != nil {
		fields = append(fields, slog.String("error", err.Error()))
	}
	l.logger.Log(ctx, level, msg, fields...)
}
