package engine

import (
	"context"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
)

// StreamClient defines the live telemetry producer
type StreamClient interface {
	// Connect reports the connecting state synchronously and opens the stream in the background
	Connect(ctx context.Context) error
	// Disconnect returns after the stream stopped writing into the store
	Disconnect()
	SetStateHandler(handler func(state common.ConnectionState))
	IsInterfaceNil() bool
}

// Simulator defines the fallback producer
type Simulator interface {
	Seed() bool
	Start()
	// Stop returns after the simulator stopped writing into the store
	Stop()
	IsInterfaceNil() bool
}

// Store defines the connection state holder, which is also the producer gate
type Store interface {
	SetConnectionState(state common.ConnectionState)
	IsInterfaceNil() bool
}
