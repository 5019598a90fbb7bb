package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"

	"github.com/aalemi-dev/redis-profiler/observability"
)

// FXModule provides *Metrics, the MetricsCollector interface and an
// observability.Observer recording profiler operations, and runs both metrics
// servers for the lifetime of the application.
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		fx.Annotate(
			func(m *Metrics) MetricsCollector { return m },
			fx.As(new(MetricsCollector)),
		),
		fx.Annotate(
			func(m MetricsCollector) observability.Observer { return NewOperationObserver(m) },
			fx.As(new(observability.Observer)),
		),
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// LifecycleParams are the dependencies of RegisterMetricsLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Metrics   *Metrics
	Logger    Logger `optional:"true"`
}

// RegisterMetricsLifecycle starts the configured servers on start and shuts them
// down on stop.
func RegisterMetricsLifecycle(p LifecycleParams) {
	servers := map[string]*http.Server{
		"system":      p.Metrics.SystemServer,
		"application": p.Metrics.ApplicationServer,
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for name, srv := range servers {
				if srv == nil {
					continue
				}
				go serve(name, srv, p.Logger)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var errs []error
			for name, srv := range servers {
				if srv == nil {
					continue
				}
				if p.Logger != nil {
					p.Logger.Info("Shutting down metrics server", nil, map[string]interface{}{"endpoint": name})
				}
				if err := srv.Shutdown(ctx); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	})
}

func serve(name string, srv *http.Server, log Logger) {
	if log != nil {
		log.Info("Starting metrics server", nil, map[string]interface{}{
			"endpoint": name,
			"address":  srv.Addr,
		})
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && log != nil {
		log.Error("Metrics server stopped", err, map[string]interface{}{"endpoint": name})
	}
}
