package monitor

import (
	"context"
)

// Config configures an Observer.
type Config struct {
	// Name identifies the logical backend target (the database instance id).
	// It is used as the resource of observed operations and in log fields.
	Name string `yaml:"name" envconfig:"MONITOR_NAME"`
}

// Logger is an interface that matches the logger.Logger interface of this module.
// It provides context-aware structured logging with optional error and field parameters.
type Logger interface {
	// DebugWithContext logs a debug-level message with trace context.
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// InfoWithContext logs an informational message with trace context.
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// WarnWithContext logs a warning message with trace context.
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// ErrorWithContext logs an error message with trace context.
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
