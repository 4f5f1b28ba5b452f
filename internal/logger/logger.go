package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	logFile *os.File
)

// InitLogging routes log output to stderr and, when filePath is set, to a
// JSON log file as well. An unknown level falls back to info.
func InitLogging(filePath, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	var f *os.File
	if filePath != "" {
		f, err = os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, f)
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	base = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return nil
}

// SetOutput replaces the global logger with a JSON logger writing to w.
func SetOutput(w io.Writer, level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	base = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Logger returns the global logger, e.g. for libraries taking a zerolog.Logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithContext attaches the global logger, enriched with fields, to ctx.
func WithContext(ctx context.Context, fields map[string]interface{}) context.Context {
	l := Logger().With().Fields(fields).Logger()
	return l.WithContext(ctx)
}

func fromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	l := Logger()
	return &l
}

func InfoLog(ctx context.Context, format string, args ...interface{}) {
	fromContext(ctx).Info().Msgf(format, args...)
}

func DebugLog(ctx context.Context, format string, args ...interface{}) {
	fromContext(ctx).Debug().Msgf(format, args...)
}

func WarnLog(ctx context.Context, format string, args ...interface{}) {
	fromContext(ctx).Warn().Msgf(format, args...)
}

func ErrorLog(ctx context.Context, format string, args ...interface{}) {
	fromContext(ctx).Error().Msgf(format, args...)
}
