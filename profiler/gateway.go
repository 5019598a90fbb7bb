package profiler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/juju/clock"

	"github.com/aalemi-dev/redis-profiler/monitor"
	"github.com/aalemi-dev/redis-profiler/observability"
	"github.com/aalemi-dev/redis-profiler/tracer"
)

// Gateway serves profiler sessions over websockets:
//
//	GET /instances                 known instance ids
//	GET /instances/{id}/monitor    websocket session on instance id
//	GET /healthz                   liveness
type Gateway struct {
	instrumentation

	cfg      Config
	manager  *Manager
	clock    clock.Clock
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
	wg       sync.WaitGroup
}

// NewGateway creates a Gateway streaming through manager.
func NewGateway(cfg Config, manager *Manager) *Gateway {
	cfg = cfg.withDefaults()
	g := &Gateway{
		cfg:      cfg,
		manager:  manager,
		clock:    clock.WallClock,
		sessions: make(map[string]*session),
	}
	g.upgrader = websocket.Upgrader{
		CheckOrigin: g.checkOrigin,
	}
	return g
}

// WithLogger sets the logger of the gateway and of every client it creates.
func (g *Gateway) WithLogger(logger Logger) *Gateway {
	g.logger = logger
	return g
}

// WithObserver sets the operation observer of the gateway and its clients.
func (g *Gateway) WithObserver(observer observability.Observer) *Gateway {
	g.observer = observer
	return g
}

// WithTracer sets the tracer.
func (g *Gateway) WithTracer(t tracer.Tracer) *Gateway {
	g.tracer = t
	return g
}

// WithClock replaces the clock driving client batching.
func (g *Gateway) WithClock(clk clock.Clock) *Gateway {
	g.clock = clk
	return g
}

// Router returns the HTTP routes of the gateway.
func (g *Gateway) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", g.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/instances", g.handleInstances).Methods(http.MethodGet)
	r.HandleFunc("/instances/{id}/monitor", g.handleMonitor).Methods(http.MethodGet)
	return r
}

// Sessions returns the number of open websocket sessions.
func (g *Gateway) Sessions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

// Close ends every open session and waits for their handlers to return. New upgrades
// are refused afterwards.
func (g *Gateway) Close() {
	g.mu.Lock()
	g.closed = true
	sessions := make([]*session, 0, len(g.sessions))
	for _, s := range g.sessions {
		sessions = append(sessions, s)
	}
	g.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	g.wg.Wait()
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	if len(g.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range g.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) handleInstances(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"instances": g.manager.Instances()})
}

func (g *Gateway) handleMonitor(w http.ResponseWriter, r *http.Request) {
	instance := mux.Vars(r)["id"]
	if err := g.manager.Known(instance); err != nil {
		http.Error(w, err.Error(), monitor.HTTPStatus(err))
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the request.
		g.logWarn(r.Context(), "Websocket upgrade failed", err, map[string]interface{}{
			"instance": instance,
		})
		return
	}

	ctx := r.Context()
	if g.tracer != nil {
		ctx = g.tracer.SetCarrierOnContext(ctx, tracer.HeaderCarrier(r.Header))
	}

	s := g.newSession(instance, conn)
	if !g.register(s) {
		s.client.Destroy()
		return
	}
	defer g.unregister(s)

	ctx, endSpan := g.startSpan(ctx, "profiler.session", map[string]interface{}{
		"instance": instance,
		"client":   s.client.ID(),
	})
	start := time.Now()
	g.logInfo(ctx, "Profiler session started", map[string]interface{}{
		"instance": instance,
		"client":   s.client.ID(),
	})

	s.run(ctx)

	g.observeOperation("session", instance, s.client.ID(), time.Since(start), nil, 0)
	g.logInfo(ctx, "Profiler session ended", map[string]interface{}{
		"instance": instance,
		"client":   s.client.ID(),
		"duration": time.Since(start).String(),
	})
	endSpan(nil)
}

func (g *Gateway) register(s *session) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.sessions[s.client.ID()] = s
	g.wg.Add(1)
	return true
}

func (g *Gateway) unregister(s *session) {
	g.mu.Lock()
	delete(g.sessions, s.client.ID())
	g.mu.Unlock()
	g.wg.Done()
}

func (g *Gateway) newSession(instance string, conn *websocket.Conn) *session {
	transport := NewWebsocketTransport(conn, g.cfg.WriteTimeout)
	client := NewClient(uuid.NewString(), transport, g.cfg,
		WithClock(g.clock),
		WithInstance(instance),
		withInstrumentation(g.instrumentation),
	)
	return &session{
		gateway:   g,
		instance:  instance,
		conn:      conn,
		transport: transport,
		client:    client,
	}
}

// session is one websocket connection and its Client.
type session struct {
	gateway   *Gateway
	instance  string
	conn      *websocket.Conn
	transport *WebsocketTransport
	client    *Client

	// observer is only touched by the run goroutine.
	observer *monitor.Observer
}

// run reads client requests until the socket closes, then detaches the client.
func (s *session) run(ctx context.Context) {
	cfg := s.gateway.cfg
	pongWait := 2 * cfg.PingInterval

	s.conn.SetReadLimit(cfg.ReadLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.keepalive(done)

	defer s.detach()

	for {
		var req Request
		if err := s.conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.gateway.logDebug(ctx, "Profiler session read ended", map[string]interface{}{
					"client": s.client.ID(),
					"error":  err.Error(),
				})
			}
			return
		}
		// Any frame from the client proves it is alive.
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		s.handle(ctx, req)
	}
}

func (s *session) handle(ctx context.Context, req Request) {
	switch req.Type {
	case TypeMonitor:
		s.monitor(ctx)
	case TypePause:
		s.client.Pause()
		if s.observer != nil {
			s.observer.Unsubscribe(s.client.ID())
		}
	default:
		s.client.SendException(&ExceptionPayload{
			Status:  http.StatusBadRequest,
			Message: ErrUnknownMessage.Error() + ": " + req.Type,
			Error:   http.StatusText(http.StatusBadRequest),
		})
	}
}

func (s *session) monitor(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.gateway.cfg.ConnectTimeout)
	defer cancel()

	s.client.Resume()
	obs, err := s.gateway.manager.GetObserver(ctx, s.instance)
	if err == nil {
		s.observer = obs
		err = obs.Subscribe(ctx, s.client)
	}
	if err != nil {
		s.gateway.logWarn(ctx, "Profiler subscribe failed", err, map[string]interface{}{
			"instance": s.instance,
			"client":   s.client.ID(),
		})
		s.client.SendException(NewException(err))
	}
}

func (s *session) keepalive(done <-chan struct{}) {
	ticker := time.NewTicker(s.gateway.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := s.transport.Ping(); err != nil {
				// The read loop notices the dead connection through its deadline.
				return
			}
		}
	}
}

// detach removes the client from its Observer and releases it.
func (s *session) detach() {
	if s.observer != nil {
		s.observer.Disconnect(s.client.ID())
	}
	s.client.Destroy()
}

// close unblocks the read loop of run.
func (s *session) close() {
	_ = s.transport.Close()
}
