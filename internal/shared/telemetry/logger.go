package telemetry

import (
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}))
}

// SetOutput redirects log lines to w. Tests use it to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// Logger returns the process-wide structured logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	Logger().Info(msg, attrs(fields)...)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	Logger().Warn(msg, attrs(fields)...)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	Logger().Error(msg, attrs(fields)...)
}

func attrs(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		out = append(out, slog.Any(k, v))
	}
	return out
}
