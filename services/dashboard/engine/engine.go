package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	"github.com/jonboulle/clockwork"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("engine")

// ArgsDashboardEngine defines the dashboard engine arguments
type ArgsDashboardEngine struct {
	Store     Store
	Stream    StreamClient
	Simulator Simulator
	Clock     clockwork.Clock
	// ReconnectInterval is the delay before a new connect attempt after the stream was lost. 0 disables reconnects.
	ReconnectInterval time.Duration
}

// dashboardEngine switches the store between the live stream and the simulator as the connection state changes
type dashboardEngine struct {
	store             Store
	stream            StreamClient
	simulator         Simulator
	clock             clockwork.Clock
	reconnectInterval time.Duration

	mut            sync.Mutex
	ctx            context.Context
	reconnectTimer clockwork.Timer
	closed         bool
}

// NewDashboardEngine creates a new engine instance and registers it as the stream state handler
func NewDashboardEngine(args ArgsDashboardEngine) (*dashboardEngine, error) {
	if check.IfNil(args.Store) {
		return nil, errors.New("nil store")
	}
	if check.IfNil(args.Stream) {
		return nil, errors.New("nil stream client")
	}
	if check.IfNil(args.Simulator) {
		return nil, errors.New("nil simulator")
	}
	if args.Clock == nil {
		return nil, errors.New("nil clock")
	}

	e := &dashboardEngine{
		store:             args.Store,
		stream:            args.Stream,
		simulator:         args.Simulator,
		clock:             args.Clock,
		reconnectInterval: args.ReconnectInterval,
	}
	e.stream.SetStateHandler(e.HandleConnectionState)

	return e, nil
}

// Start seeds the usage series and opens the live stream. The simulator takes over right away, until the stream
// reports it is connected.
func (e *dashboardEngine) Start(ctx context.Context) error {
	e.mut.Lock()
	if e.closed {
		e.mut.Unlock()
		return errors.New("engine is closed")
	}
	if e.ctx != nil {
		e.mut.Unlock()
		return errors.New("engine already started")
	}
	e.ctx = ctx
	e.mut.Unlock()

	e.simulator.Seed()

	return e.stream.Connect(ctx)
}

// HandleConnectionState records the state in the store, then lets the authoritative producer run and suspends the
// other one
func (e *dashboardEngine) HandleConnectionState(state common.ConnectionState) {
	e.store.SetConnectionState(state)
	log.Debug("connection state", "state", state)

	switch state {
	case common.StateConnected:
		e.cancelReconnect()
		e.simulator.Stop()
	case common.StateConnecting:
		e.startSimulator()
	case common.StateDisconnected:
		e.startSimulator()
		e.scheduleReconnect()
	}
}

func (e *dashboardEngine) startSimulator() {
	if e.isClosed() {
		return
	}

	e.simulator.Start()
}

func (e *dashboardEngine) scheduleReconnect() {
	e.mut.Lock()
	defer e.mut.Unlock()

	if e.closed || e.reconnectInterval <= 0 || e.ctx == nil {
		return
	}
	if e.reconnectTimer != nil {
		e.reconnectTimer.Stop()
	}

	log.Debug("scheduling stream reconnect", "after", e.reconnectInterval)
	e.reconnectTimer = e.clock.AfterFunc(e.reconnectInterval, e.reconnect)
}

func (e *dashboardEngine) reconnect() {
	e.mut.Lock()
	if e.closed {
		e.mut.Unlock()
		return
	}
	ctx := e.ctx
	e.reconnectTimer = nil
	e.mut.Unlock()

	if ctx.Err() != nil {
		return
	}

	err := e.stream.Connect(ctx)
	if err != nil {
		log.Debug("stream reconnect skipped", "error", err)
	}
}

func (e *dashboardEngine) cancelReconnect() {
	e.mut.Lock()
	defer e.mut.Unlock()

	if e.reconnectTimer == nil {
		return
	}

	e.reconnectTimer.Stop()
	e.reconnectTimer = nil
}

func (e *dashboardEngine) isClosed() bool {
	e.mut.Lock()
	defer e.mut.Unlock()

	return e.closed
}

// Close releases the stream and suspends the simulator. Calling it more than once does nothing.
func (e *dashboardEngine) Close() error {
	e.mut.Lock()
	if e.closed {
		e.mut.Unlock()
		return nil
	}
	e.closed = true
	if e.reconnectTimer != nil {
		e.reconnectTimer.Stop()
		e.reconnectTimer = nil
	}
	e.mut.Unlock()

	e.stream.Disconnect()
	e.simulator.Stop()

	log.Debug("dashboard engine closed")

	return nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *dashboardEngine) IsInterfaceNil() bool {
	return e == nil
}
