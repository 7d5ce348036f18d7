package testsCommon

import (
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
)

// StoreStub -
type StoreStub struct {
	MetricsHandler            func() common.Metrics
	LastUsageSampleHandler    func() (common.UsageDataPoint, bool)
	CommitHandler             func(source common.Source, batch common.Batch) bool
	SeedUsageHandler          func(points []common.UsageDataPoint) bool
	SetConnectionStateHandler func(state common.ConnectionState)
	ConnectionStateHandler    func() common.ConnectionState
}

// Metrics -
func (stub *StoreStub) Metrics() common.Metrics {
	if stub.MetricsHandler != nil {
		return stub.MetricsHandler()
	}

	return common.Metrics{}
}

// LastUsageSample -
func (stub *StoreStub) LastUsageSample() (common.UsageDataPoint, bool) {
	if stub.LastUsageSampleHandler != nil {
		return stub.LastUsageSampleHandler()
	}

	return common.UsageDataPoint{}, false
}

// Commit -
func (stub *StoreStub) Commit(source common.Source, batch common.Batch) bool {
	if stub.CommitHandler != nil {
		return stub.CommitHandler(source, batch)
	}

	return true
}

// SeedUsage -
func (stub *StoreStub) SeedUsage(points []common.UsageDataPoint) bool {
	if stub.SeedUsageHandler != nil {
		return stub.SeedUsageHandler(points)
	}

	return true
}

// SetConnectionState -
func (stub *StoreStub) SetConnectionState(state common.ConnectionState) {
	if stub.SetConnectionStateHandler != nil {
		stub.SetConnectionStateHandler(state)
	}
}

// ConnectionState -
func (stub *StoreStub) ConnectionState() common.ConnectionState {
	if stub.ConnectionStateHandler != nil {
		return stub.ConnectionStateHandler()
	}

	return common.StateDisconnected
}

// IsInterfaceNil -
func (stub *StoreStub) IsInterfaceNil() bool {
	return stub == nil
}
