package redisbackend

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/aalemi-dev/redis-profiler/monitor"
	"github.com/redis/go-redis/v9"
)

// Backend is a monitor.Backend on top of a go-redis standalone or cluster client.
type Backend struct {
	cfg     Config
	single  *redis.Client
	cluster *redis.ClusterClient
	logger  Logger
}

// NewBackend creates the go-redis client described by cfg. It does not connect.
func NewBackend(cfg Config) (*Backend, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var tlsConfig *tls.Config
	if cfg.TLS.Enabled {
		var err error
		tlsConfig, err = createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, err
		}
	}

	b := &Backend{cfg: cfg}
	if cfg.Cluster {
		b.cluster = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:       cfg.Addrs,
			ClientName:  cfg.ClientNamePrefix,
			Username:    cfg.Username,
			Password:    cfg.Password,
			DialTimeout: cfg.DialTimeout,
			ReadTimeout: cfg.ReadTimeout,
			TLSConfig:   tlsConfig,
		})
		return b, nil
	}

	b.single = redis.NewClient(&redis.Options{
		Addr:        cfg.Addrs[0],
		ClientName:  cfg.ClientNamePrefix,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
		TLSConfig:   tlsConfig,
	})
	return b, nil
}

// WithLogger attaches a logger to the backend.
func (b *Backend) WithLogger(logger Logger) *Backend {
	b.logger = logger
	return b
}

// Cluster reports whether the backend is a Redis Cluster.
func (b *Backend) Cluster() bool {
	return b.cluster != nil
}

// Ping checks that the backend answers.
func (b *Backend) Ping(ctx context.Context) error {
	if b.cluster != nil {
		return TranslateError(b.cluster.Ping(ctx).Err())
	}
	return TranslateError(b.single.Ping(ctx).Err())
}

// Nodes lists the standalone node, or every master and replica the cluster knows about,
// ordered by address.
func (b *Backend) Nodes(ctx context.Context) ([]monitor.Node, error) {
	if b.cluster == nil {
		return []monitor.Node{newNode(b.single)}, nil
	}

	var (
		mu    sync.Mutex
		nodes []monitor.Node
	)
	err := b.cluster.ForEachShard(ctx, func(ctx context.Context, client *redis.Client) error {
		mu.Lock()
		defer mu.Unlock()
		nodes = append(nodes, newNode(client))
		return nil
	})
	if err != nil {
		return nil, TranslateError(err)
	}

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Descriptor().Addr < nodes[j].Descriptor().Addr
	})
	return nodes, nil
}

// Close releases every connection of the backend.
func (b *Backend) Close() error {
	if b.cluster != nil {
		return b.cluster.Close()
	}
	return b.single.Close()
}

// NewAcquireFunc returns the handle acquisition for cfg: it creates the client and pings it.
// Failures are classified as monitor unavailability so an HTTP boundary answers with 503.
//
// Parameters:
//   - cfg: The instance to connect to
//   - logger: Receives a warning for every failed attempt; may be nil
//
// Example:
//
//	err := observer.Init(ctx, redisbackend.NewAcquireFunc(cfg, log))
func NewAcquireFunc(cfg Config, logger Logger) monitor.AcquireFunc {
	return func(ctx context.Context) (monitor.Backend, error) {
		backend, err := NewBackend(cfg)
		if err != nil {
			return nil, err
		}
		backend.WithLogger(logger)

		if err := backend.Ping(ctx); err != nil {
			_ = backend.Close()
			backend.logWarn(ctx, "Failed to connect to redis", err, map[string]interface{}{
				"addrs":   cfg.Addrs,
				"cluster": cfg.Cluster,
			})
			return nil, monitor.NewUnavailableError(monitor.ShardDescriptor{}, err)
		}
		return backend, nil
	}
}

func (b *Backend) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if b.logger != nil {
		b.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

// Node is one Redis server of a Backend.
type Node struct {
	client *redis.Client
	shard  monitor.ShardDescriptor
}

func newNode(client *redis.Client) *Node {
	return &Node{
		client: client,
		shard:  monitor.NewShardDescriptor(client.Options().Addr),
	}
}

// Descriptor identifies the node by address.
func (n *Node) Descriptor() monitor.ShardDescriptor {
	return n.shard
}

// Ready reports whether the node answers PING.
func (n *Node) Ready(ctx context.Context) bool {
	return n.client.Ping(ctx).Err() == nil
}

// options returns a copy of the node's client options that callers may modify.
func (n *Node) options() *redis.Options {
	opts := *n.client.Options()
	return &opts
}

func asNode(node monitor.Node) (*Node, error) {
	n, ok := node.(*Node)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedNode, node)
	}
	return n, nil
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}
