// Command redis-profiler serves Redis MONITOR streams of the configured instances to
// websocket clients.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/aalemi-dev/redis-profiler/config"
	"github.com/aalemi-dev/redis-profiler/logger"
	"github.com/aalemi-dev/redis-profiler/metrics"
	"github.com/aalemi-dev/redis-profiler/monitor"
	"github.com/aalemi-dev/redis-profiler/profiler"
	"github.com/aalemi-dev/redis-profiler/redisbackend"
	"github.com/aalemi-dev/redis-profiler/tracer"
)

func main() {
	flags := pflag.NewFlagSet("redis-profiler", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "path to the YAML configuration file")
	address := flags.String("address", "", "gateway listen address, overrides the configuration")
	logLevel := flags.String("log-level", "", "log level: debug, info, warning or error")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis-profiler: %v\n", err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Profiler.Address = *address
	}
	if *logLevel != "" {
		cfg.Logger.Level = *logLevel
	}

	fx.New(options(cfg)).Run()
}

// options composes the application from cfg.
func options(cfg config.Config) fx.Option {
	return fx.Options(
		cfg.Supply(),
		logger.FXModule,
		tracer.FXModule,
		metrics.FXModule,
		redisbackend.FXModule,
		monitor.FXModule,
		profiler.FXModule,
		fx.Provide(
			func(l *logger.LoggerClient) monitor.Logger { return l.Named("monitor") },
			func(l *logger.LoggerClient) redisbackend.Logger { return l.Named("redisbackend") },
			func(l *logger.LoggerClient) profiler.Logger { return l.Named("profiler") },
			func(l *logger.LoggerClient) metrics.Logger { return l.Named("metrics") },
		),
		fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap.Named("fx")}
		}),
	)
}
