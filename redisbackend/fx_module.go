package redisbackend

import (
	"github.com/aalemi-dev/redis-profiler/monitor"
	"go.uber.org/fx"
)

// FXModule provides the Redis implementations of monitor.Prober and monitor.StreamOpener
// and the instance Registry.
//
// It expects a Config (used for probe and stream settings) and a map[string]Config of
// instances to be provided by the application.
var FXModule = fx.Module("redisbackend",
	fx.Provide(
		NewProberWithDI,
		NewOpenerWithDI,
		NewRegistryWithDI,
		fx.Annotate(
			func(p *Prober) monitor.Prober { return p },
			fx.As(new(monitor.Prober)),
		),
		fx.Annotate(
			func(o *Opener) monitor.StreamOpener { return o },
			fx.As(new(monitor.StreamOpener)),
		),
	),
)

// Params groups the dependencies of the Redis backend.
type Params struct {
	fx.In

	Config    Config
	Instances map[string]Config
	Logger    Logger `optional:"true"`
}

// NewProberWithDI creates a Prober from injected dependencies.
func NewProberWithDI(params Params) *Prober {
	p := NewProber(params.Config)
	if params.Logger != nil {
		p.WithLogger(params.Logger)
	}
	return p
}

// NewOpenerWithDI creates an Opener from injected dependencies.
func NewOpenerWithDI(params Params) *Opener {
	o := NewOpener(params.Config)
	if params.Logger != nil {
		o.WithLogger(params.Logger)
	}
	return o
}

// NewRegistryWithDI creates a Registry from injected dependencies.
func NewRegistryWithDI(params Params) *Registry {
	r := NewRegistry(params.Instances)
	if params.Logger != nil {
		r.WithLogger(params.Logger)
	}
	return r
}
