package redisbackend

import (
	"context"
	"testing"

	"github.com/aalemi-dev/redis-profiler/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{Addrs: []string{"localhost:6379"}}.withDefaults()

	assert.Equal(t, DefaultDialTimeout, cfg.DialTimeout)
	assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	assert.Equal(t, DefaultHealthCheckInterval, cfg.HealthCheckInterval)
	assert.Equal(t, DefaultClientNamePrefix, cfg.ClientNamePrefix)
	assert.Equal(t, DefaultStreamBuffer, cfg.StreamBuffer)

	custom := Config{ClientNamePrefix: "custom", StreamBuffer: 8}.withDefaults()
	assert.Equal(t, "custom", custom.ClientNamePrefix)
	assert.Equal(t, 8, custom.StreamBuffer)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, Config{}.Validate(), ErrNoAddress)
	assert.ErrorIs(t, Config{Addrs: []string{"a:1"}, Cluster: true, DB: 2}.Validate(), ErrClusterDB)
	assert.NoError(t, Config{Addrs: []string{"a:1"}, DB: 2}.Validate())
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	standalone, err := NewBackend(Config{Addrs: []string{"localhost:6379"}})
	require.NoError(t, err)
	assert.False(t, standalone.Cluster())
	nodes, err := standalone.Nodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "localhost", nodes[0].Descriptor().Host)
	assert.Equal(t, 6379, nodes[0].Descriptor().Port)
	require.NoError(t, standalone.Close())

	cluster, err := NewBackend(Config{Addrs: []string{"a:7000", "b:7000"}, Cluster: true})
	require.NoError(t, err)
	assert.True(t, cluster.Cluster())
	require.NoError(t, cluster.Close())

	_, err = NewBackend(Config{})
	assert.ErrorIs(t, err, ErrNoAddress)

	_, err = NewBackend(Config{
		Addrs: []string{"localhost:6379"},
		TLS:   TLSConfig{Enabled: true, CACertPath: "/does/not/exist.pem"},
	})
	assert.Error(t, err)
}

func TestNewAcquireFunc_Unreachable(t *testing.T) {
	t.Parallel()

	acquire := NewAcquireFunc(Config{Addrs: []string{"127.0.0.1:1"}}, nil)
	backend, err := acquire(context.Background())

	assert.Nil(t, backend)
	assert.True(t, monitor.IsUnavailable(err))
	assert.True(t, IsConnectionError(err))
}

type otherNode struct{}

func (otherNode) Descriptor() monitor.ShardDescriptor { return monitor.NewShardDescriptor("x:1") }
func (otherNode) Ready(ctx context.Context) bool      { return true }

func TestForeignNodesAreRejected(t *testing.T) {
	t.Parallel()

	err := NewProber(Config{}).Probe(context.Background(), otherNode{})
	assert.True(t, monitor.IsUnavailable(err))
	assert.ErrorIs(t, err, ErrUnsupportedNode)

	_, err = NewOpener(Config{}).Open(context.Background(), otherNode{})
	assert.ErrorIs(t, err, ErrUnsupportedNode)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry(map[string]Config{"b": {Addrs: []string{"b:6379"}}})
	require.NoError(t, r.Register("a", Config{Addrs: []string{"a:6379"}}))
	assert.ErrorIs(t, r.Register("broken", Config{}), ErrNoAddress)
	assert.Equal(t, []string{"a", "b"}, r.IDs())

	acquire, err := r.Resolve("a")
	require.NoError(t, err)
	assert.NotNil(t, acquire)

	_, err = r.Resolve("missing")
	assert.ErrorIs(t, err, monitor.ErrUnknownTarget)

	r.Remove("a")
	_, err = r.Resolve("a")
	assert.ErrorIs(t, err, monitor.ErrUnknownTarget)
}
