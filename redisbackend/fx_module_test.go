package redisbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/aalemi-dev/redis-profiler/monitor"
)

func TestFXModule(t *testing.T) {
	var prober monitor.Prober
	var opener monitor.StreamOpener
	var registry *Registry

	app := fxtest.New(t,
		FXModule,
		fx.Supply(Config{ClientNamePrefix: "fx"}),
		fx.Supply(map[string]Config{"cache": {Addrs: []string{"127.0.0.1:6379"}}}),
		fx.Populate(&prober, &opener, &registry),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.IsType(t, &Prober{}, prober)
	assert.IsType(t, &Opener{}, opener)
	assert.Equal(t, []string{"cache"}, registry.IDs())
}
