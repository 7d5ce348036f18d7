package factory

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() config.Config {
	return config.Config{
		ListenAddress:             "127.0.0.1:0",
		StreamEndpoint:            "ws://127.0.0.1:1/stream",
		HandshakeTimeoutInSeconds: 1,
		Simulator: config.SimulatorConfig{
			TickIntervalInMilliseconds: 50,
			SeedPoints:                 20,
		},
		InitialMetrics: config.MetricsConfig{
			TotalKeys:   125600,
			ActiveKeys:  98750,
			Unlocks:     450320,
			SuccessRate: 99.8,
		},
		Insight: config.InsightConfig{
			Endpoint:         "http://127.0.0.1:1",
			Model:            "gemini-2.5-flash",
			TimeoutInSeconds: 1,
		},
	}
}

func TestNewComponentsHandler(t *testing.T) {
	t.Parallel()

	t.Run("empty stream endpoint should error", func(t *testing.T) {
		cfg := createTestConfig()
		cfg.StreamEndpoint = ""

		handler, err := NewComponentsHandler("key", cfg)
		assert.Nil(t, handler)
		assert.Error(t, err)
	})
	t.Run("empty insight model should error", func(t *testing.T) {
		cfg := createTestConfig()
		cfg.Insight.Model = ""

		handler, err := NewComponentsHandler("key", cfg)
		assert.Nil(t, handler)
		assert.Error(t, err)
	})
	t.Run("should work", func(t *testing.T) {
		handler, err := NewComponentsHandler("key", createTestConfig())
		assert.NotNil(t, handler)
		assert.Nil(t, err)

		handler.Close()
	})
}

func TestComponentsHandlerMethods(t *testing.T) {
	t.Parallel()

	handler, err := NewComponentsHandler("key", createTestConfig())
	require.NoError(t, err)

	assert.Equal(t, "*store.reconciliationStore", fmt.Sprintf("%T", handler.GetStore()))
	assert.Equal(t, "*simulator.simulator", fmt.Sprintf("%T", handler.GetSimulator()))
	assert.Equal(t, "*stream.streamClient", fmt.Sprintf("%T", handler.GetStreamClient()))
	assert.Equal(t, "*engine.dashboardEngine", fmt.Sprintf("%T", handler.GetEngine()))
	assert.Equal(t, "*api.server", fmt.Sprintf("%T", handler.GetServer()))

	require.NoError(t, handler.Start())
	require.NoError(t, handler.Start())

	// the stream endpoint is unreachable so the simulator feeds the store
	st := handler.GetStore()
	require.Eventually(t, func() bool {
		return st.ConnectionState() == common.StateDisconnected && len(st.Events())+len(st.Errors()) > 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, len(st.UsageSeries()), 20)

	resp, err := http.Get("http://" + handler.GetServer().Address() + "/api/status")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	handler.Close()
	handler.Close()
}
