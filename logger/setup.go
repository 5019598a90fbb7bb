package logger

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerClient wraps a zap.Logger with the map-based field API used across the profiler.
//
// LoggerClient implements the Logger interface and, through its *WithContext methods,
// the narrow Logger interfaces of the monitor, redisbackend and profiler packages.
type LoggerClient struct {
	// Zap is the underlying logger, exposed for zap-specific needs.
	Zap *zap.Logger

	tracingEnabled bool
}

// New builds a LoggerClient writing to stderr.
//
// Entries carry an ISO8601 "timestamp", a capitalised level, the caller, and the
// "pid" and "service" fields.
func New(cfg Config) (*LoggerClient, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	encoding := FormatJSON
	if cfg.Format == FormatConsole {
		encoding = FormatConsole
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(cfg.Level)),
		Encoding:         encoding,
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	callerSkip := cfg.CallerSkip
	if callerSkip <= 0 {
		callerSkip = 1
	}

	zl, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(callerSkip+1))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return &LoggerClient{Zap: zl, tracingEnabled: cfg.EnableTracing}, nil
}

// NewLoggerClient is New for callers that cannot continue without a logger.
// It terminates the process when the logger cannot be built.
func NewLoggerClient(cfg Config) *LoggerClient {
	l, err := New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	return l
}

// Named returns a child logger whose entries carry the "component" field.
func (l *LoggerClient) Named(component string) *LoggerClient {
	return &LoggerClient{
		Zap:            l.Zap.With(zap.String("component", component)),
		tracingEnabled: l.tracingEnabled,
	}
}

// Sync flushes buffered entries.
func (l *LoggerClient) Sync() error {
	return l.Zap.Sync()
}
