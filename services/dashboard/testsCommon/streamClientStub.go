package testsCommon

import (
	"context"
	"sync"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
)

// StreamClientStub -
type StreamClientStub struct {
	ConnectHandler    func(ctx context.Context) error
	DisconnectHandler func()

	mut          sync.Mutex
	stateHandler func(state common.ConnectionState)
}

// Connect -
func (stub *StreamClientStub) Connect(ctx context.Context) error {
	if stub.ConnectHandler != nil {
		return stub.ConnectHandler(ctx)
	}

	return nil
}

// Disconnect -
func (stub *StreamClientStub) Disconnect() {
	if stub.DisconnectHandler != nil {
		stub.DisconnectHandler()
	}
}

// SetStateHandler -
func (stub *StreamClientStub) SetStateHandler(handler func(state common.ConnectionState)) {
	stub.mut.Lock()
	defer stub.mut.Unlock()

	stub.stateHandler = handler
}

// Notify calls the registered state handler, if any
func (stub *StreamClientStub) Notify(state common.ConnectionState) {
	stub.mut.Lock()
	handler := stub.stateHandler
	stub.mut.Unlock()

	if handler != nil {
		handler(state)
	}
}

// IsInterfaceNil -
func (stub *StreamClientStub) IsInterfaceNil() bool {
	return stub == nil
}
