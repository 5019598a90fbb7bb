package profiler

import (
	"context"
	"time"
)

const (
	DefaultAddress        = ":8080"
	DefaultFlushInterval  = 10 * time.Millisecond
	DefaultMaxBatchSize   = 1000
	DefaultWriteTimeout   = 5 * time.Second
	DefaultReadLimit      = 4096
	DefaultPingInterval   = 30 * time.Second
	DefaultConnectTimeout = 15 * time.Second
)

// Config configures the websocket gateway and the consumers it creates.
type Config struct {
	// Address is the listen address of the gateway HTTP server.
	Address string `yaml:"address" envconfig:"PROFILER_ADDRESS"`

	// FlushInterval is how long a consumer collects events before sending them as one
	// batch. The first buffered event starts the interval.
	FlushInterval time.Duration `yaml:"flushInterval" envconfig:"PROFILER_FLUSH_INTERVAL"`

	// MaxBatchSize flushes a batch early once it holds this many events.
	MaxBatchSize int `yaml:"maxBatchSize" envconfig:"PROFILER_MAX_BATCH_SIZE"`

	// WriteTimeout bounds every websocket write.
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"PROFILER_WRITE_TIMEOUT"`

	// ReadLimit is the largest message accepted from a websocket client, in bytes.
	ReadLimit int64 `yaml:"readLimit" envconfig:"PROFILER_READ_LIMIT"`

	// PingInterval is how often the gateway pings idle clients. A client that does not
	// answer within two intervals is dropped.
	PingInterval time.Duration `yaml:"pingInterval" envconfig:"PROFILER_PING_INTERVAL"`

	// ConnectTimeout bounds acquiring the backend and opening the shard streams of an
	// instance on behalf of a client.
	ConnectTimeout time.Duration `yaml:"connectTimeout" envconfig:"PROFILER_CONNECT_TIMEOUT"`

	// AllowedOrigins restricts the Origin header of websocket upgrades. Empty or "*"
	// accepts any origin.
	AllowedOrigins []string `yaml:"allowedOrigins" envconfig:"PROFILER_ALLOWED_ORIGINS"`
}

func (cfg Config) withDefaults() Config {
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = DefaultReadLimit
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultPingInterval
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	return cfg
}

// Logger is the logging surface of the profiler package.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
