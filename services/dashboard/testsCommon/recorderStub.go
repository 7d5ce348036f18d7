package testsCommon

import (
	"sync"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
)

// RecorderStub -
type RecorderStub struct {
	mut              sync.Mutex
	Frames           map[string]int
	MalformedFrames  int
	SimulatorTicks   int
	RejectedCommits  map[common.Source]int
	ConnectionStates []common.ConnectionState
}

// NewRecorderStub -
func NewRecorderStub() *RecorderStub {
	return &RecorderStub{
		Frames:          make(map[string]int),
		RejectedCommits: make(map[common.Source]int),
	}
}

// RecordFrame -
func (stub *RecorderStub) RecordFrame(frameType string) {
	stub.mut.Lock()
	defer stub.mut.Unlock()

	if stub.Frames == nil {
		stub.Frames = make(map[string]int)
	}
	stub.Frames[frameType]++
}

// RecordMalformedFrame -
func (stub *RecorderStub) RecordMalformedFrame() {
	stub.mut.Lock()
	defer stub.mut.Unlock()

	stub.MalformedFrames++
}

// RecordSimulatorTick -
func (stub *RecorderStub) RecordSimulatorTick() {
	stub.mut.Lock()
	defer stub.mut.Unlock()

	stub.SimulatorTicks++
}

// RecordRejectedCommit -
func (stub *RecorderStub) RecordRejectedCommit(source common.Source) {
	stub.mut.Lock()
	defer stub.mut.Unlock()

	if stub.RejectedCommits == nil {
		stub.RejectedCommits = make(map[common.Source]int)
	}
	stub.RejectedCommits[source]++
}

// RecordConnectionState -
func (stub *RecorderStub) RecordConnectionState(state common.ConnectionState) {
	stub.mut.Lock()
	defer stub.mut.Unlock()

	stub.ConnectionStates = append(stub.ConnectionStates, state)
}

// NumMalformedFrames -
func (stub *RecorderStub) NumMalformedFrames() int {
	stub.mut.Lock()
	defer stub.mut.Unlock()

	return stub.MalformedFrames
}

// NumFrames -
func (stub *RecorderStub) NumFrames(frameType string) int {
	stub.mut.Lock()
	defer stub.mut.Unlock()

	return stub.Frames[frameType]
}

// NumSimulatorTicks -
func (stub *RecorderStub) NumSimulatorTicks() int {
	stub.mut.Lock()
	defer stub.mut.Unlock()

	return stub.SimulatorTicks
}

// NumRejectedCommits -
func (stub *RecorderStub) NumRejectedCommits(source common.Source) int {
	stub.mut.Lock()
	defer stub.mut.Unlock()

	return stub.RejectedCommits[source]
}

// IsInterfaceNil -
func (stub *RecorderStub) IsInterfaceNil() bool {
	return stub == nil
}
