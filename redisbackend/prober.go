package redisbackend

import (
	"context"

	"github.com/aalemi-dev/redis-profiler/monitor"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Prober checks that MONITOR is permitted on a node before a stream is opened.
//
// go-redis' MonitorCmd does not surface a NOPERM reply, so the command is sent raw on a
// disposable client with its own connection name. That client is closed whatever the
// outcome.
type Prober struct {
	cfg    Config
	logger Logger
}

// NewProber creates a Prober. cfg supplies the client name prefix.
func NewProber(cfg Config) *Prober {
	return &Prober{cfg: cfg.withDefaults()}
}

// WithLogger attaches a logger to the prober.
func (p *Prober) WithLogger(logger Logger) *Prober {
	p.logger = logger
	return p
}

// Probe sends MONITOR on a throwaway connection to node.
func (p *Prober) Probe(ctx context.Context, node monitor.Node) error {
	n, err := asNode(node)
	if err != nil {
		return monitor.NewUnavailableError(node.Descriptor(), err)
	}

	client := redis.NewClient(p.options(n))
	defer func() {
		_ = client.Close()
	}()

	err = TranslateError(client.Do(ctx, "monitor").Err())
	if err == nil {
		return nil
	}

	if p.logger != nil {
		p.logger.DebugWithContext(ctx, "Monitor probe rejected", err, map[string]interface{}{
			"shard": n.shard.Addr,
		})
	}
	return classifyProbeError(n.shard, err)
}

func (p *Prober) options(n *Node) *redis.Options {
	opts := n.options()
	opts.ClientName = p.cfg.ClientNamePrefix + "-monitor-perm-check-" + uuid.NewString()
	opts.MaxRetries = -1
	opts.PoolSize = 1
	opts.MinIdleConns = 0
	opts.MaxIdleConns = 0
	return opts
}

// classifyProbeError maps a translated probe failure onto the monitor error kinds.
func classifyProbeError(shard monitor.ShardDescriptor, err error) error {
	if IsNoPermission(err) {
		return monitor.NewUnauthorizedError(monitor.MonitorCommand, shard, err)
	}
	return monitor.NewUnavailableError(shard, err)
}
