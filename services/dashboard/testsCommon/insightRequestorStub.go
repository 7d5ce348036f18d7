package testsCommon

import (
	"context"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
)

// InsightRequestorStub -
type InsightRequestorStub struct {
	AnalyzeHandler func(ctx context.Context, metrics common.Metrics, telemetryErrors []common.TelemetryError) string
}

// Analyze -
func (stub *InsightRequestorStub) Analyze(ctx context.Context, metrics common.Metrics, telemetryErrors []common.TelemetryError) string {
	if stub.AnalyzeHandler != nil {
		return stub.AnalyzeHandler(ctx, metrics, telemetryErrors)
	}

	return ""
}

// IsInterfaceNil -
func (stub *InsightRequestorStub) IsInterfaceNil() bool {
	return stub == nil
}
