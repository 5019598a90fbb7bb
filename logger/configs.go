package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Log levels accepted by Config.Level.
const (
	// Debug logs everything, including per-consumer subscription changes.
	Debug = "debug"

	// Info logs stream lifecycle changes and sessions.
	Info = "info"

	// Warning logs failed connect attempts and lost shards.
	Warning = "warning"

	// Error logs failures only.
	Error = "error"
)

// Output encodings accepted by Config.Format.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config controls the process logger.
type Config struct {
	// Level is the minimum level written: "debug", "info", "warning" or "error".
	// Unknown values fall back to "info".
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`

	// Format is "json" (default) or "console".
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`

	// EnableTracing adds trace_id and span_id of the active span to *WithContext entries.
	EnableTracing bool `yaml:"enableTracing" envconfig:"LOG_ENABLE_TRACING"`

	// ServiceName populates the "service" field of every entry.
	ServiceName string `yaml:"serviceName" envconfig:"SERVICE_NAME"`

	// CallerSkip is the number of wrapper frames skipped when reporting the caller.
	// Values <= 0 mean 1, the right value when calling LoggerClient directly.
	CallerSkip int `yaml:"callerSkip" envconfig:"LOG_CALLER_SKIP"`
}

// ParseLevel maps a Config.Level value to a zap level.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case Debug:
		return zapcore.DebugLevel
	case Warning, "warn":
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
