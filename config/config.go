package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/aalemi-dev/redis-profiler/logger"
	"github.com/aalemi-dev/redis-profiler/metrics"
	"github.com/aalemi-dev/redis-profiler/profiler"
	"github.com/aalemi-dev/redis-profiler/redisbackend"
	"github.com/aalemi-dev/redis-profiler/tracer"
)

// DefaultServiceName names the service in logs, metrics and traces.
const DefaultServiceName = "redis-profiler"

// EnvPrefix prefixes the long form of every environment variable, e.g.
// REDIS_PROFILER_LOGGER_LOG_LEVEL. The short names of the envconfig tags
// (LOG_LEVEL) are accepted too.
const EnvPrefix = "REDIS_PROFILER"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the configuration of the redis-profiler binary.
type Config struct {
	Logger   logger.Config   `yaml:"logger"`
	Metrics  metrics.Config  `yaml:"metrics"`
	Tracer   tracer.Config   `yaml:"tracer"`
	Profiler profiler.Config `yaml:"profiler"`

	// Redis holds the settings probes and streams are opened with.
	Redis redisbackend.Config `yaml:"redis"`

	// Instances maps an instance id, the {id} of the gateway route, to its Redis
	// connection settings. Only configurable through YAML.
	Instances map[string]redisbackend.Config `yaml:"instances" ignored:"true"`
}

// Default returns the configuration used when neither a file nor the environment
// set a value.
func Default() Config {
	return Config{
		Logger: logger.Config{
			Level:       logger.Info,
			Format:      logger.FormatJSON,
			ServiceName: DefaultServiceName,
		},
		Metrics: metrics.Config{ServiceName: DefaultServiceName},
		Tracer:  tracer.Config{ServiceName: DefaultServiceName},
	}
}

// Load reads the YAML file at path on top of Default, then applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(bytes.NewReader(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every configured instance.
func (c Config) Validate() error {
	var errs []error
	for _, id := range c.InstanceIDs() {
		if err := c.Instances[id].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("instance %q: %w", id, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// InstanceIDs returns the configured instance ids, sorted.
func (c Config) InstanceIDs() []string {
	ids := make([]string, 0, len(c.Instances))
	for id := range c.Instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Supply provides each section of c to an fx application.
func (c Config) Supply() fx.Option {
	instances := c.Instances
	if instances == nil {
		instances = map[string]redisbackend.Config{}
	}
	return fx.Supply(c.Logger, c.Metrics, c.Tracer, c.Profiler, c.Redis, instances)
}
