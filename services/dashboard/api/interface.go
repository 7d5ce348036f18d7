package api

import (
	"context"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
)

// Store defines the read side of the reconciliation store
type Store interface {
	Snapshot() common.Snapshot
	Metrics() common.Metrics
	Events() []common.TelemetryEvent
	Errors() []common.TelemetryError
	UsageSeries() []common.UsageDataPoint
	ConnectionState() common.ConnectionState

	// Subscribe returns a channel receiving a snapshot after every committed change
	Subscribe() chan common.Snapshot
	Unsubscribe(ch chan common.Snapshot)

	IsInterfaceNil() bool
}

// InsightRequestor defines the summarization service wrapper. Analyze never fails, it returns a failure text instead.
type InsightRequestor interface {
	Analyze(ctx context.Context, metrics common.Metrics, telemetryErrors []common.TelemetryError) string
	IsInterfaceNil() bool
}
