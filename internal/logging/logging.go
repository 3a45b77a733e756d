package logging

import (
	"io"
	"log"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// ParseLevel maps a config string onto a slog level, defaulting to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Setup installs the process-wide default logger.
func Setup(w io.Writer, level string) *slog.Logger {
	l := New(w, level)
	slog.SetDefault(l)
	return l
}

// Gorm returns a gorm logger whose verbosity follows the slog level.
// SQL statements are only traced at debug.
func Gorm(w io.Writer, level string) logger.Interface {
	var mode logger.LogLevel
	switch ParseLevel(level) {
	case slog.LevelDebug:
		mode = logger.Info
	case slog.LevelInfo, slog.LevelWarn:
		mode = logger.Warn
	default:
		mode = logger.Error
	}
	return logger.New(log.New(w, "", log.LstdFlags), logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  mode,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
