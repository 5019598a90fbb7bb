package profiler

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/fx"

	"github.com/aalemi-dev/redis-profiler/monitor"
	"github.com/aalemi-dev/redis-profiler/observability"
	"github.com/aalemi-dev/redis-profiler/redisbackend"
	"github.com/aalemi-dev/redis-profiler/tracer"
)

// FXModule provides the Manager and the Gateway and serves the gateway on
// Config.Address for the lifetime of the application.
//
// It expects a profiler.Config, a *monitor.Factory (monitor.FXModule) and a
// *redisbackend.Registry (redisbackend.FXModule).
var FXModule = fx.Module("profiler",
	fx.Provide(
		fx.Annotate(
			func(f *monitor.Factory) ObserverFactory { return f },
			fx.As(new(ObserverFactory)),
		),
		fx.Annotate(
			func(r *redisbackend.Registry) BackendResolver { return r },
			fx.As(new(BackendResolver)),
		),
		NewManagerWithDI,
		NewGatewayWithDI,
	),
	fx.Invoke(RegisterGatewayLifecycle),
)

// ManagerParams groups the dependencies of a Manager.
type ManagerParams struct {
	fx.In

	Factory  ObserverFactory
	Resolver BackendResolver
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   tracer.Tracer          `optional:"true"`
}

// NewManagerWithDI creates a Manager from injected dependencies.
func NewManagerWithDI(p ManagerParams) *Manager {
	m := NewManager(p.Factory, p.Resolver)
	m.instrumentation = instrumentation{logger: p.Logger, observer: p.Observer, tracer: p.Tracer}
	return m
}

// GatewayParams groups the dependencies of a Gateway.
type GatewayParams struct {
	fx.In

	Config   Config
	Manager  *Manager
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   tracer.Tracer          `optional:"true"`
}

// NewGatewayWithDI creates a Gateway from injected dependencies.
func NewGatewayWithDI(p GatewayParams) *Gateway {
	g := NewGateway(p.Config, p.Manager)
	if p.Logger != nil {
		g.WithLogger(p.Logger)
	}
	if p.Observer != nil {
		g.WithObserver(p.Observer)
	}
	if p.Tracer != nil {
		g.WithTracer(p.Tracer)
	}
	return g
}

// RegisterGatewayLifecycle listens on start and, on stop, shuts the HTTP server down,
// ends open sessions and tears down every Observer.
//
// Parameters:
//   - lc: The FX lifecycle to register hooks with
//   - g: The gateway served on its Config.Address
//   - m: The manager whose Observers are torn down after the sessions ended
//
// A port that is already taken fails the application start.
func RegisterGatewayLifecycle(lc fx.Lifecycle, g *Gateway, m *Manager) {
	srv := &http.Server{
		Addr:              g.cfg.Address,
		Handler:           g.Router(),
		ReadHeaderTimeout: g.cfg.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			g.logInfo(ctx, "Profiler gateway listening", map[string]interface{}{
				"address": ln.Addr().String(),
			})
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					g.logWarn(context.Background(), "Profiler gateway stopped", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := srv.Shutdown(ctx)
			g.Close()
			m.Shutdown()
			return err
		},
	})
}
