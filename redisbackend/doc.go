// Package redisbackend connects the monitor package to Redis.
//
// It provides:
//
//   - Backend, a monitor.Backend over a go-redis standalone client or cluster client
//   - Prober, which sends a raw MONITOR on a disposable connection so a NOPERM reply
//     is reported before a stream is committed to
//   - Opener and Stream, a monitor.ShardStream reading MONITOR output from a connection
//     of its own
//   - ParseMonitorLine, the parser of MONITOR output lines
//   - Registry, which resolves instance ids to handle acquisitions
//
// # Basic Usage
//
//	cfg := redisbackend.Config{Addrs: []string{"localhost:6379"}}
//	connector := monitor.NewShardConnector(redisbackend.NewProber(cfg), redisbackend.NewOpener(cfg))
//	observer := monitor.NewObserver(monitor.Config{Name: "local"}, connector)
//	if err := observer.Init(ctx, redisbackend.NewAcquireFunc(cfg, nil)); err != nil {
//	    return err
//	}
//
// A cluster is monitored on every node that answers PING:
//
//	cfg := redisbackend.Config{
//	    Addrs:   []string{"10.0.0.1:6379", "10.0.0.2:6379", "10.0.0.3:6379"},
//	    Cluster: true,
//	}
//
// # Configuration
//
// Config is read from YAML or from the environment:
//
//	REDIS_ADDRS=localhost:6379
//	REDIS_USERNAME=profiler
//	REDIS_PASSWORD=secret
//	REDIS_HEALTH_CHECK_INTERVAL=5s
//	REDIS_CLIENT_NAME_PREFIX=redis-profiler
//	REDIS_TLS_ENABLED=true
//	REDIS_TLS_CA_CERT_PATH=/etc/redis/ca.pem
//
// Probe connections are named "<prefix>-monitor-perm-check-<uuid>", stream connections
// "<prefix>-monitor-<uuid>", so both are easy to spot in CLIENT LIST.
//
// # Stream Lifecycle
//
// Opener.Open dials the node itself, authenticates, names the connection and sends MONITOR.
// One goroutine reads that connection and a second dispatches the parsed lines in arrival
// order. The stream ends with ErrStreamLost followed by the end signal when:
//
//   - the server closes the monitor connection (CLIENT KILL, output buffer limits, restarts)
//   - the connection fails underneath (resets, proxies cutting it)
//   - the node stops answering PING on Config.HealthCheckInterval
//
// Disconnect ends the stream from our side with the end signal only. Lines read before the
// connection failed are dispatched before the error.
//
// # Error Handling
//
// TranslateError maps go-redis replies and network failures onto the sentinels of this
// package while keeping the original error reachable:
//
//	err := observer.Init(ctx, acquire)
//	switch {
//	case redisbackend.IsNoPermission(err):
//	    // ACL denies MONITOR
//	case redisbackend.IsConnectionError(err):
//	    // unreachable, timed out or reset
//	}
//
// # FX Module Integration
//
// FXModule provides the Prober and Opener as their monitor interfaces and the Registry of
// configured instances. It expects a Config and a map[string]Config:
//
//	app := fx.New(
//	    fx.Supply(redisbackend.Config{}, map[string]redisbackend.Config{
//	        "local": {Addrs: []string{"localhost:6379"}},
//	    }),
//	    redisbackend.FXModule,
//	    monitor.FXModule,
//	)
package redisbackend
