package core

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the structured logger used by the workflow.
type Logger interface {
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	Debug(msg string, fields ...any)
	With(fields ...any) Logger
}

type slogLogger struct {
	*slog.Logger
}

// ParseLevel maps a LOG_LEVEL value such as "debug" or "WARN" to a slog
// level. Empty or unknown values mean info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NewSlog creates a JSON slog.Logger writing to w.
func NewSlog(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// NewLogger logs JSON to stderr.
func NewLogger(level string) Logger {
	return NewLoggerTo(os.Stderr, level)
}

func NewLoggerTo(w io.Writer, level string) Logger {
	return FromSlog(NewSlog(w, level))
}

// FromSlog adapts an existing slog.Logger.
func FromSlog(l *slog.Logger) Logger {
	return slogLogger{l}
}

func NopLogger() Logger {
	return slogLogger{slog.New(slog.DiscardHandler)}
}

func (l slogLogger) With(fields ...any) Logger {
	return slogLogger{l.Logger.With(fields...)}
}
