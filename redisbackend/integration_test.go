package redisbackend

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aalemi-dev/redis-profiler/monitor"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type collectingConsumer struct {
	id string

	mu           sync.Mutex
	events       []monitor.Event
	disconnected bool
}

func (c *collectingConsumer) ID() string { return c.id }

func (c *collectingConsumer) OnData(event monitor.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *collectingConsumer) OnDisconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
}

func (c *collectingConsumer) Destroy() {}

func (c *collectingConsumer) hasCommand(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if len(e.Args) > 0 && e.Args[0] == name {
			return true
		}
	}
	return false
}

func (c *collectingConsumer) isDisconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

// initializeRedis starts a Redis container and returns its address.
func initializeRedis(ctx context.Context, t *testing.T) (string, testcontainers.Container) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, mappedPort.Port()), container
}

func TestRedisMonitorStream(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	addr, container := initializeRedis(ctx, t)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	cfg := Config{Addrs: []string{addr}, HealthCheckInterval: 200 * time.Millisecond}
	connector := monitor.NewShardConnector(NewProber(cfg), NewOpener(cfg))
	observer := monitor.NewObserver(monitor.Config{Name: "integration"}, connector)
	require.NoError(t, observer.Init(ctx, NewAcquireFunc(cfg, nil)))
	defer func() {
		_ = observer.Close()
	}()

	consumer := &collectingConsumer{id: "c1"}
	require.NoError(t, observer.Subscribe(ctx, consumer))
	assert.Equal(t, monitor.StatusReady, observer.Status())
	assert.Equal(t, 1, observer.ShardCount())

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() {
		_ = client.Close()
	}()

	require.Eventually(t, func() bool {
		_ = client.Set(ctx, "profiler:key", "value", 0).Err()
		return consumer.hasCommand("set")
	}, 10*time.Second, 100*time.Millisecond)

	observer.Unsubscribe("c1")
	assert.Equal(t, monitor.StatusEnded, observer.Status())
}

func TestRedisMonitorProbeDenied(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	addr, container := initializeRedis(ctx, t)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	admin := redis.NewClient(&redis.Options{Addr: addr})
	defer func() {
		_ = admin.Close()
	}()
	require.NoError(t, admin.Do(ctx, "ACL", "SETUSER", "viewer", "on", ">secret", "~*", "+@all", "-monitor").Err())

	cfg := Config{Addrs: []string{addr}, Username: "viewer", Password: "secret"}
	connector := monitor.NewShardConnector(NewProber(cfg), NewOpener(cfg))
	observer := monitor.NewObserver(monitor.Config{Name: "integration"}, connector)
	defer func() {
		_ = observer.Close()
	}()

	err := observer.Init(ctx, NewAcquireFunc(cfg, nil))
	require.Error(t, err)
	assert.True(t, monitor.IsUnauthorized(err))
	assert.Equal(t, monitor.StatusError, observer.Status())
	assert.Equal(t, 0, observer.ShardCount())
}

func TestRedisMonitorEndsWhenServerGoesAway(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	addr, container := initializeRedis(ctx, t)

	cfg := Config{Addrs: []string{addr}, HealthCheckInterval: 200 * time.Millisecond, ReadTimeout: time.Second}
	connector := monitor.NewShardConnector(NewProber(cfg), NewOpener(cfg))
	observer := monitor.NewObserver(monitor.Config{Name: "integration"}, connector)
	require.NoError(t, observer.Init(ctx, NewAcquireFunc(cfg, nil)))
	defer func() {
		_ = observer.Close()
	}()

	consumer := &collectingConsumer{id: "c1"}
	require.NoError(t, observer.Subscribe(ctx, consumer))

	require.NoError(t, container.Terminate(ctx))

	require.Eventually(t, consumer.isDisconnected, 15*time.Second, 100*time.Millisecond)
	assert.Equal(t, monitor.StatusEnded, observer.Status())
}
