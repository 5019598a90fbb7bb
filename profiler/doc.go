// Package profiler exposes Redis MONITOR streams to browser clients.
//
// A Gateway upgrades GET /instances/{id}/monitor to a websocket and creates a Client
// for it. The Client is the monitor.Consumer of that session: it batches events and
// writes them as
//
//	{"type":"monitor","items":[{"time":"1339518083.107412","args":["set","k","v"],
//	  "source":"127.0.0.1:60866","database":0,"shardOptions":{"host":"10.0.0.1","port":6379}}]}
//
// The browser sends {"type":"monitor"} to start streaming and {"type":"pause"} to stop
// without closing the socket. Failures arrive as
//
//	{"type":"exception","error":{"status":403,"message":"NOPERM: ...","error":"Forbidden"}}
//
// All clients of an instance share the Observer the Manager keeps for it, so an
// instance is monitored over one connection per shard however many browsers watch it.
//
// # Routes
//
//	GET /healthz                   204 while the process is up
//	GET /instances                 {"instances":["cache-eu","sessions"]}
//	GET /instances/{id}/monitor    websocket session; 404 before the upgrade for unknown ids
//
// # Batching
//
// The first event a Client buffers starts Config.FlushInterval (10ms by default). When it
// elapses the buffered events leave as one "monitor" message. A batch reaching
// Config.MaxBatchSize is sent at once. When a shard stream ends the Client sends what it
// buffered, then an exception with status 503. A paused Client drops events that were
// already on their way when the pause arrived.
//
// # Direct Usage (Without FX)
//
//	registry := redisbackend.NewRegistry(map[string]redisbackend.Config{
//	    "local": {Addrs: []string{"localhost:6379"}},
//	})
//	cfg := redisbackend.Config{}
//	factory := monitor.NewFactory(
//	    monitor.NewShardConnector(redisbackend.NewProber(cfg), redisbackend.NewOpener(cfg)),
//	)
//
//	manager := profiler.NewManager(factory, registry)
//	gateway := profiler.NewGateway(profiler.Config{Address: ":8080"}, manager)
//	defer manager.Shutdown()
//	defer gateway.Close()
//
//	log.Fatal(http.ListenAndServe(":8080", gateway.Router()))
//
// # FX Module Integration
//
// FXModule provides the Manager and the Gateway and serves the gateway on Config.Address
// between start and stop. On stop the HTTP server is shut down, open sessions are closed and
// every Observer is torn down:
//
//	app := fx.New(
//	    fx.Supply(profiler.Config{Address: ":8080"}),
//	    redisbackend.FXModule,
//	    monitor.FXModule,
//	    profiler.FXModule,
//	)
//	app.Run()
//
// # Keepalive
//
// The gateway pings every session on Config.PingInterval. A browser that neither answers
// nor sends anything within two intervals is dropped and detached from its Observer.
package profiler
