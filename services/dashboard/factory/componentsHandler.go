package factory

import (
	"context"
	"sync"
	"time"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/api"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/config"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/engine"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/insight"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/monitoring"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/simulator"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/store"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/stream"
	"github.com/jonboulle/clockwork"
)

type componentsHandler struct {
	store     api.Store
	simulator engine.Simulator
	stream    engine.StreamClient
	engine    Engine
	server    Server
	mutCancel sync.Mutex
	cancel    func()
}

// NewComponentsHandler creates all the dashboard components and wires them together
func NewComponentsHandler(
	insightAPIKey string,
	cfg config.Config,
) (*componentsHandler, error) {
	clock := clockwork.NewRealClock()
	collector := monitoring.NewCollector()

	st, err := store.NewReconciliationStore(store.ArgsReconciliationStore{
		InitialMetrics: common.Metrics{
			TotalKeys:   cfg.InitialMetrics.TotalKeys,
			ActiveKeys:  cfg.InitialMetrics.ActiveKeys,
			Unlocks:     cfg.InitialMetrics.Unlocks,
			SuccessRate: cfg.InitialMetrics.SuccessRate,
		},
		EventLogCapacity: cfg.Store.EventLogCapacity,
		ErrorLogCapacity: cfg.Store.ErrorLogCapacity,
		UsageWindow:      cfg.Store.UsageWindow,
		Recorder:         collector,
	})
	if err != nil {
		return nil, err
	}

	sim, err := simulator.NewSimulator(simulator.ArgsSimulator{
		Store:        st,
		Recorder:     collector,
		Clock:        clock,
		TickInterval: time.Duration(cfg.Simulator.TickIntervalInMilliseconds) * time.Millisecond,
		SeedPoints:   cfg.Simulator.SeedPoints,
	})
	if err != nil {
		return nil, err
	}

	client, err := stream.NewStreamClient(stream.ArgsStreamClient{
		Endpoint:         cfg.StreamEndpoint,
		Writer:           st,
		Recorder:         collector,
		HandshakeTimeout: time.Duration(cfg.HandshakeTimeoutInSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	eng, err := engine.NewDashboardEngine(engine.ArgsDashboardEngine{
		Store:             st,
		Stream:            client,
		Simulator:         sim,
		Clock:             clock,
		ReconnectInterval: time.Duration(cfg.ReconnectIntervalInSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	requestor, err := insight.NewInsightRequestor(insight.ArgsInsightRequestor{
		Endpoint: cfg.Insight.Endpoint,
		Model:    cfg.Insight.Model,
		APIKey:   insightAPIKey,
	})
	if err != nil {
		return nil, err
	}

	server, err := api.NewServer(api.ArgsWebServer{
		ListenAddress:            cfg.ListenAddress,
		Store:                    st,
		Insights:                 requestor,
		InsightTimeout:           time.Duration(cfg.Insight.TimeoutInSeconds) * time.Second,
		InsightRequestsPerMinute: cfg.Insight.MaxRequestsPerMinute,
		MetricsHandler:           collector.Handler(),
		GeneralHandler:           api.CORSMiddleware,
	})
	if err != nil {
		return nil, err
	}

	return &componentsHandler{
		store:     st,
		simulator: sim,
		stream:    client,
		engine:    eng,
		server:    server,
	}, nil
}

// GetStore returns the store component
func (ch *componentsHandler) GetStore() api.Store {
	return ch.store
}

// GetSimulator returns the simulator component
func (ch *componentsHandler) GetSimulator() engine.Simulator {
	return ch.simulator
}

// GetStreamClient returns the stream client component
func (ch *componentsHandler) GetStreamClient() engine.StreamClient {
	return ch.stream
}

// GetEngine returns the engine component
func (ch *componentsHandler) GetEngine() Engine {
	return ch.engine
}

// GetServer returns the server component
func (ch *componentsHandler) GetServer() Server {
	return ch.server
}

// Start starts the inner components
func (ch *componentsHandler) Start() error {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch.server.Start()

	err := ch.engine.Start(ctx)
	if err != nil {
		cancel()
		return err
	}
	ch.cancel = cancel

	return nil
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		ch.cancel()
		ch.cancel = nil
	}

	_ = ch.engine.Close()
	_ = ch.server.Close()
}
