package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *TracerClient and the Tracer interface from a tracer.Config and
// shuts the provider down, flushing pending spans, when the application stops.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
		fx.Annotate(
			func(t *TracerClient) Tracer { return t },
			fx.As(new(Tracer)),
		),
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle shuts the tracer provider down on stop.
//
// Parameters:
//   - lc: The FX lifecycle to register hooks with
//   - tracer: The tracer client whose provider is flushed and shut down
//
// It is invoked by FXModule and normally doesn't need to be called directly.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *TracerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if tracer.provider == nil {
				return nil
			}
			return tracer.Shutdown(ctx)
		},
	})
}
