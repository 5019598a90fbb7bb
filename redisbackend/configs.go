package redisbackend

import (
	"context"
	"time"
)

const (
	// DefaultDialTimeout bounds establishing a connection to a node.
	DefaultDialTimeout = 5 * time.Second

	// DefaultReadTimeout bounds every regular command. Monitor streams never time out.
	DefaultReadTimeout = 3 * time.Second

	// DefaultHealthCheckInterval is how often a live stream pings its node.
	DefaultHealthCheckInterval = 5 * time.Second

	// DefaultClientNamePrefix is prepended to every CLIENT SETNAME the backend issues.
	DefaultClientNamePrefix = "redis-profiler"

	// DefaultStreamBuffer is the number of monitor lines buffered between the socket
	// reader and listener dispatch.
	DefaultStreamBuffer = 1024
)

// Config describes one Redis instance: a standalone node or a cluster.
type Config struct {
	// Addrs lists the node addresses (host:port). A standalone instance uses the first one,
	// a cluster uses all of them as seeds.
	Addrs []string `yaml:"addrs" envconfig:"REDIS_ADDRS"`

	// Cluster selects the cluster client.
	Cluster bool `yaml:"cluster" envconfig:"REDIS_CLUSTER"`

	// Username is the ACL user. Empty means the default user.
	Username string `yaml:"username" envconfig:"REDIS_USERNAME"`

	// Password authenticates Username.
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`

	// DB selects the logical database of a standalone instance.
	DB int `yaml:"db" envconfig:"REDIS_DB"`

	// TLS configures transport security.
	TLS TLSConfig `yaml:"tls"`

	// DialTimeout bounds establishing a connection.
	// Default: 5s
	DialTimeout time.Duration `yaml:"dialTimeout" envconfig:"REDIS_DIAL_TIMEOUT"`

	// ReadTimeout bounds regular commands, probes included.
	// Default: 3s
	ReadTimeout time.Duration `yaml:"readTimeout" envconfig:"REDIS_READ_TIMEOUT"`

	// HealthCheckInterval is how often a live stream pings its node to detect the end
	// of the stream.
	// Default: 5s
	HealthCheckInterval time.Duration `yaml:"healthCheckInterval" envconfig:"REDIS_HEALTH_CHECK_INTERVAL"`

	// ClientNamePrefix prefixes the connection names of probes and streams.
	// Default: "redis-profiler"
	ClientNamePrefix string `yaml:"clientNamePrefix" envconfig:"REDIS_CLIENT_NAME_PREFIX"`

	// StreamBuffer is the capacity of the line buffer of a stream.
	// Default: 1024
	StreamBuffer int `yaml:"streamBuffer" envconfig:"REDIS_STREAM_BUFFER"`
}

// TLSConfig contains TLS settings for the connection to Redis.
type TLSConfig struct {
	// Enabled turns TLS on.
	Enabled bool `yaml:"enabled" envconfig:"REDIS_TLS_ENABLED"`

	// CACertPath is the file path to the CA certificate for verifying the server.
	CACertPath string `yaml:"caCertPath" envconfig:"REDIS_TLS_CA_CERT_PATH"`

	// ClientCertPath is the file path to the client certificate.
	ClientCertPath string `yaml:"clientCertPath" envconfig:"REDIS_TLS_CLIENT_CERT_PATH"`

	// ClientKeyPath is the file path to the client certificate key.
	ClientKeyPath string `yaml:"clientKeyPath" envconfig:"REDIS_TLS_CLIENT_KEY_PATH"`

	// InsecureSkipVerify controls whether to skip verification of the server certificate.
	InsecureSkipVerify bool `yaml:"insecureSkipVerify" envconfig:"REDIS_TLS_INSECURE_SKIP_VERIFY"`
}

// withDefaults returns a copy of cfg with zero values replaced by the package defaults.
func (cfg Config) withDefaults() Config {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = DefaultHealthCheckInterval
	}
	if cfg.ClientNamePrefix == "" {
		cfg.ClientNamePrefix = DefaultClientNamePrefix
	}
	if cfg.StreamBuffer <= 0 {
		cfg.StreamBuffer = DefaultStreamBuffer
	}
	return cfg
}

// Validate reports configuration errors that would make every connect attempt fail.
func (cfg Config) Validate() error {
	if len(cfg.Addrs) == 0 {
		return ErrNoAddress
	}
	if cfg.Cluster && cfg.DB != 0 {
		return ErrClusterDB
	}
	return nil
}

// Logger is an interface that matches the logger.Logger interface of this module.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
