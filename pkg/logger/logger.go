package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const serviceName = "meteo-tuya"

// New constructs the process logger. LOG_FORMAT=text switches to a coloured console handler
// for local development; everything else gets JSON.
func New() *slog.Logger {
	return build(os.Stdout, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
}

func build(w io.Writer, format, level string) *slog.Logger {
	lvl := parseLevel(level)
	if strings.EqualFold(format, "text") {
		h := tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("service", serviceName)
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler).With("service", serviceName)
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
