package profiler

import (
	"net/http"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aalemi-dev/redis-profiler/monitor"
)

func TestClient_FlushesAfterInterval(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	clk := testclock.NewClock(time.Now())
	transport := &fakeTransport{}
	c := NewClient("c1", transport, Config{FlushInterval: 10 * time.Millisecond}, WithClock(clk))
	defer c.Destroy()

	c.OnData(testEvent("set", "k", "v"))
	c.OnData(testEvent("get", "k"))
	c.OnData(testEvent("del", "k"))
	assert.Empty(t, transport.Messages())
	assert.Equal(t, 3, c.Buffered())

	require.NoError(t, clk.WaitAdvance(10*time.Millisecond, time.Second, 1))
	require.Eventually(t, func() bool { return len(transport.Messages()) == 1 }, time.Second, time.Millisecond)

	msg := transport.Messages()[0]
	assert.Equal(t, TypeMonitor, msg.Type)
	require.Len(t, msg.Items, 3)
	assert.Equal(t, Item{
		Time:     "1339518083.107412",
		Args:     []string{"set", "k", "v"},
		Source:   "127.0.0.1:60866",
		Database: 2,
		Shard:    ShardOptions{Host: "10.0.0.1", Port: 6379},
	}, msg.Items[0])
	assert.Equal(t, []string{"del", "k"}, msg.Items[2].Args)
	assert.Equal(t, 0, c.Buffered())
}

func TestClient_FlushesFullBatchImmediately(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	clk := testclock.NewClock(time.Now())
	transport := &fakeTransport{}
	c := NewClient("c1", transport, Config{MaxBatchSize: 2}, WithClock(clk))
	defer c.Destroy()

	c.OnData(testEvent("get", "a"))
	c.OnData(testEvent("get", "b"))

	require.Eventually(t, func() bool { return len(transport.Messages()) == 1 }, time.Second, time.Millisecond)
	assert.Len(t, transport.Messages()[0].Items, 2)
}

func TestClient_PauseDropsLateEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	clk := testclock.NewClock(time.Now())
	transport := &fakeTransport{}
	c := NewClient("c1", transport, Config{FlushInterval: 10 * time.Millisecond}, WithClock(clk))
	defer c.Destroy()

	c.OnData(testEvent("set", "k", "v"))
	c.Pause()
	assert.True(t, c.Paused())

	// Dispatched by a stream after the client already paused.
	c.OnData(testEvent("get", "k"))
	assert.Equal(t, 1, c.Buffered())

	require.NoError(t, clk.WaitAdvance(10*time.Millisecond, time.Second, 1))
	require.Eventually(t, func() bool { return len(transport.Messages()) == 1 }, time.Second, time.Millisecond)
	require.Len(t, transport.Messages()[0].Items, 1)
	assert.Equal(t, []string{"set", "k", "v"}, transport.Messages()[0].Items[0].Args)

	c.Resume()
	assert.False(t, c.Paused())
	c.OnData(testEvent("del", "k"))
	assert.Equal(t, 1, c.Buffered())
}

func TestClient_OnDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	transport := &fakeTransport{}
	c := NewClient("c1", transport, Config{FlushInterval: time.Hour})
	defer c.Destroy()

	c.OnData(testEvent("ping"))
	c.OnDisconnect()

	messages := transport.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, TypeMonitor, messages[0].Type)
	assert.Equal(t, TypeException, messages[1].Type)
	require.NotNil(t, messages[1].Error)
	assert.Equal(t, http.StatusServiceUnavailable, messages[1].Error.Status)
	assert.Equal(t, 0, transport.Closes(), "the session owns the transport until Destroy")
}

func TestClient_Destroy(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	transport := &fakeTransport{}
	c := NewClient("c1", transport, Config{})
	assert.Equal(t, "c1", c.ID())

	c.Destroy()
	c.Destroy()
	assert.Equal(t, 1, transport.Closes())

	c.OnData(testEvent("get", "k"))
	assert.Equal(t, 0, c.Buffered())
}

func TestClient_SendFailureDropsBatch(t *testing.T) {
	transport := &fakeTransport{err: ErrTransportClosed}
	c := NewClient("c1", transport, Config{FlushInterval: time.Hour})
	defer c.Destroy()

	c.OnData(testEvent("get", "k"))
	c.flush()
	assert.Equal(t, 0, c.Buffered())
}

func TestNewException(t *testing.T) {
	t.Parallel()

	shard := monitor.NewShardDescriptor("10.0.0.1:6379")

	denied := NewException(monitor.NewUnauthorizedError(monitor.MonitorCommand, shard, errBoom))
	assert.Equal(t, http.StatusForbidden, denied.Status)
	assert.Equal(t, "NOPERM: this user has no permissions to run the 'monitor' command", denied.Message)
	assert.Equal(t, "Forbidden", denied.Error)

	down := NewException(monitor.NewUnavailableError(shard, errBoom))
	assert.Equal(t, http.StatusServiceUnavailable, down.Status)
	assert.NotContains(t, down.Message, "boom")

	unknown := NewException((&fakeResolver{}).resolveErr("x"))
	assert.Equal(t, http.StatusNotFound, unknown.Status)
	assert.Contains(t, unknown.Message, "unknown backend target")

	internal := NewException(errBoom)
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, "Internal Server Error", internal.Message)
}
