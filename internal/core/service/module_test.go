package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-nethealth/internal/core/eventbus"
	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
	"github.com/dep2p/go-nethealth/pkg/types"
)

func TestModule(t *testing.T) {
	var (
		sink pkgif.ErrorSink
		m    *Monitor
		bus  pkgif.EventBus
	)
	app := fxtest.New(t,
		eventbus.Module(),
		Module(),
		fx.Populate(&sink, &m, &bus),
	)
	app.RequireStart()
	defer app.RequireStop()

	degraded := 0
	_, err := bus.Subscribe(types.StatusDegraded, func(types.StatusEvent) { degraded++ })
	require.NoError(t, err)

	sink.HandleError("/x", 503)
	sink.HandleError("/x", 503)

	assert.Equal(t, 1, degraded)
	assert.Equal(t, 2, m.Count("*"))
}

func TestModule_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 0

	app := fx.New(
		fx.NopLogger,
		eventbus.Module(),
		fx.Supply(cfg),
		Module(),
		fx.Invoke(func(*Monitor) {}),
	)
	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), "service.failure_threshold")
}
