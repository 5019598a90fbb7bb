package profiler

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalemi-dev/redis-profiler/monitor"
)

func newTestManager(ids ...string) (*Manager, *fakeResolver, *fakeConnector) {
	connector := &fakeConnector{}
	resolver := &fakeResolver{ids: ids}
	return NewManager(monitor.NewFactory(connector), resolver), resolver, connector
}

func TestManager_GetObserverReusesReadyObserver(t *testing.T) {
	t.Parallel()

	m, resolver, connector := newTestManager("cache")
	ctx := context.Background()

	first, err := m.GetObserver(ctx, "cache")
	require.NoError(t, err)
	assert.Equal(t, monitor.StatusReady, first.Status())
	assert.Equal(t, "cache", first.Name())

	second, err := m.GetObserver(ctx, "cache")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), resolver.acquires.Load())
	assert.Equal(t, 1, connector.calls)
	assert.Equal(t, 1, m.Count())
}

func TestManager_ConcurrentGetObserver(t *testing.T) {
	t.Parallel()

	m, resolver, _ := newTestManager("cache")

	var wg sync.WaitGroup
	observers := make([]*monitor.Observer, 16)
	for i := range observers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			obs, err := m.GetObserver(context.Background(), "cache")
			assert.NoError(t, err)
			observers[i] = obs
		}(i)
	}
	wg.Wait()

	for _, obs := range observers {
		assert.Same(t, observers[0], obs)
	}
	assert.Equal(t, int32(1), resolver.acquires.Load())
}

func TestManager_UnknownInstance(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager("cache")

	_, err := m.GetObserver(context.Background(), "missing")
	assert.ErrorIs(t, err, monitor.ErrUnknownTarget)
	assert.ErrorIs(t, m.Known("missing"), monitor.ErrUnknownTarget)
	assert.NoError(t, m.Known("cache"))
	assert.Equal(t, 0, m.Count())
}

func TestManager_ReinitializesAfterFailureAndEnd(t *testing.T) {
	t.Parallel()

	m, resolver, connector := newTestManager("cache")
	ctx := context.Background()

	connector.setErr(monitor.NewUnauthorizedError(monitor.MonitorCommand, monitor.ShardDescriptor{}, errBoom))
	_, err := m.GetObserver(ctx, "cache")
	require.Error(t, err)
	assert.True(t, monitor.IsUnauthorized(err))
	assert.Equal(t, 1, m.Count(), "the failed observer is kept for the next attempt")

	connector.setErr(nil)
	obs, err := m.GetObserver(ctx, "cache")
	require.NoError(t, err)
	assert.Equal(t, monitor.StatusReady, obs.Status())
	assert.Equal(t, int32(2), resolver.acquires.Load())

	obs.Clear()
	again, err := m.GetObserver(ctx, "cache")
	require.NoError(t, err)
	assert.Same(t, obs, again)
	assert.Equal(t, monitor.StatusReady, again.Status())
	assert.Equal(t, int32(3), resolver.acquires.Load())
}

func TestManager_RemoveAndShutdown(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager("a", "b")
	ctx := context.Background()

	a, err := m.GetObserver(ctx, "a")
	require.NoError(t, err)
	b, err := m.GetObserver(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, m.Instances())

	m.RemoveObserver("a")
	m.RemoveObserver("a")
	assert.Equal(t, monitor.StatusEnded, a.Status())
	assert.Equal(t, 1, m.Count())

	m.Shutdown()
	assert.Equal(t, monitor.StatusEnded, b.Status())
	assert.Equal(t, 0, m.Count())
}
