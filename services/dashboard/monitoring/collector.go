package monitoring

import (
	"net/http"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "keys_telemetry"

var connectionStates = []common.ConnectionState{
	common.StateConnecting,
	common.StateConnected,
	common.StateDisconnected,
}

// collector exposes the ingestion counters on its own registry
type collector struct {
	registry *prometheus.Registry

	frames          *prometheus.CounterVec
	malformedFrames prometheus.Counter
	simulatorTicks  prometheus.Counter
	rejectedCommits *prometheus.CounterVec
	connectionState *prometheus.GaugeVec
	transitions     prometheus.Counter
}

// NewCollector creates a new ingestion metrics collector
func NewCollector() *collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(registry)

	c := &collector{
		registry: registry,
	}

	c.frames = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_frames_total",
		Help:      "Decoded stream frames by type",
	}, []string{"type"})

	c.malformedFrames = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_malformed_frames_total",
		Help:      "Stream frames dropped because they could not be decoded",
	})

	c.simulatorTicks = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulator_ticks_total",
		Help:      "Simulator ticks executed",
	})

	c.rejectedCommits = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_rejected_commits_total",
		Help:      "Batches dropped because their producer was not authoritative",
	}, []string{"source"})

	c.connectionState = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_connection_state",
		Help:      "1 for the current stream connection state, 0 for the others",
	}, []string{"state"})

	c.transitions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_state_transitions_total",
		Help:      "Stream connection state changes",
	})

	c.setConnectionState(common.StateDisconnected)

	return c
}

// RecordFrame counts a decoded frame
func (c *collector) RecordFrame(frameType string) {
	c.frames.WithLabelValues(frameType).Inc()
}

// RecordMalformedFrame counts a dropped frame
func (c *collector) RecordMalformedFrame() {
	c.malformedFrames.Inc()
}

// RecordSimulatorTick counts a simulator tick
func (c *collector) RecordSimulatorTick() {
	c.simulatorTicks.Inc()
}

// RecordRejectedCommit counts a batch written by a non-authoritative producer
func (c *collector) RecordRejectedCommit(source common.Source) {
	c.rejectedCommits.WithLabelValues(string(source)).Inc()
}

// RecordConnectionState records a connection state change
func (c *collector) RecordConnectionState(state common.ConnectionState) {
	c.transitions.Inc()
	c.setConnectionState(state)
}

func (c *collector) setConnectionState(state common.ConnectionState) {
	for _, s := range connectionStates {
		value := 0.0
		if s == state {
			value = 1
		}
		c.connectionState.WithLabelValues(string(s)).Set(value)
	}
}

// Handler returns the Prometheus exposition handler for this collector's registry
func (c *collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// IsInterfaceNil returns true if the value under the interface is nil
func (c *collector) IsInterfaceNil() bool {
	return c == nil
}
