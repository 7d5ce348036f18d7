package simulator

import "github.com/iulianpascalau/keys-telemetry/services/dashboard/common"

// Store is the part of the reconciliation store the simulator reads from and commits into
type Store interface {
	Metrics() common.Metrics
	LastUsageSample() (common.UsageDataPoint, bool)
	Commit(source common.Source, batch common.Batch) bool
	SeedUsage(points []common.UsageDataPoint) bool
	IsInterfaceNil() bool
}
