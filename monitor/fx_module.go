package monitor

import (
	"github.com/aalemi-dev/redis-profiler/observability"
	"github.com/aalemi-dev/redis-profiler/tracer"
	"go.uber.org/fx"
)

// FXModule is an fx.Module that provides the shard connector and the Observer factory.
//
// The module expects a Prober and a StreamOpener to be provided by a backend module
// (see redisbackend.FXModule). A Logger, an observability.Observer and a tracer.Tracer
// are picked up when present.
//
// Usage:
//
//	app := fx.New(
//	    redisbackend.FXModule,
//	    monitor.FXModule,
//	    // other modules...
//	)
var FXModule = fx.Module("monitor",
	fx.Provide(
		NewConnectorWithDI,
		fx.Annotate(
			func(c *ShardConnector) Connector { return c },
			fx.As(new(Connector)),
		),
		NewFactoryWithDI,
	),
)

// ConnectorParams groups the dependencies needed to create a ShardConnector.
type ConnectorParams struct {
	fx.In

	Prober   Prober
	Opener   StreamOpener
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   tracer.Tracer          `optional:"true"`
}

// NewConnectorWithDI creates a ShardConnector from injected dependencies.
func NewConnectorWithDI(params ConnectorParams) *ShardConnector {
	connector := NewShardConnector(params.Prober, params.Opener)
	if params.Logger != nil {
		connector.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		connector.WithObserver(params.Observer)
	}
	if params.Tracer != nil {
		connector.WithTracer(params.Tracer)
	}
	return connector
}

// Factory creates Observers that share one connector and one set of instrumentation.
type Factory struct {
	connector Connector
	inst      instrumentation
}

// NewFactory creates a Factory for connector.
func NewFactory(connector Connector) *Factory {
	return &Factory{connector: connector}
}

// FactoryParams groups the dependencies needed to create a Factory.
type FactoryParams struct {
	fx.In

	Connector Connector
	Logger    Logger                 `optional:"true"`
	Observer  observability.Observer `optional:"true"`
	Tracer    tracer.Tracer          `optional:"true"`
}

// NewFactoryWithDI creates a Factory from injected dependencies.
func NewFactoryWithDI(params FactoryParams) *Factory {
	f := NewFactory(params.Connector)
	f.inst = instrumentation{
		logger:   params.Logger,
		observer: params.Observer,
		tracer:   params.Tracer,
	}
	return f
}

// New creates an Observer for the backend target name.
func (f *Factory) New(name string) *Observer {
	o := NewObserver(Config{Name: name}, f.connector)
	o.instrumentation = f.inst
	return o
}
