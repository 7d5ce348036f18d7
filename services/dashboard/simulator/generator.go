package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
)

const (
	clockLayout = "15:04:05"

	maxNewSuccesses        = 5
	newFailureProbability  = 0.02
	newKeyProbability      = 0.2
	activeKeyUpProbability = 0.6
	usageJitter            = 2
	seedMinUnlocks         = 10
	seedUnlocksSpread      = 20
	numUsers               = 1000
	numDevices             = 5000

	unlockFailureCode    = 401
	unlockFailureMessage = "Auth failed: Invalid credentials"
)

// unlockCounters tracks successes and failures separately so the success rate is derived from integers and never
// drifts from repeated float rounding
type unlockCounters struct {
	successes int64
	failures  int64
}

func countersFromMetrics(metrics common.Metrics) unlockCounters {
	if metrics.Unlocks <= 0 {
		return unlockCounters{}
	}

	rate := math.Min(math.Max(metrics.SuccessRate, 0), 100)
	successes := int64(math.Round(float64(metrics.Unlocks) * rate / 100))

	return unlockCounters{
		successes: successes,
		failures:  metrics.Unlocks - successes,
	}
}

func (uc unlockCounters) total() int64 {
	return uc.successes + uc.failures
}

func (uc unlockCounters) successRate() float64 {
	total := uc.total()
	if total == 0 {
		return 100
	}

	return float64(uc.successes) / float64(total) * 100
}

type generator struct {
	rnd *rand.Rand
}

func (g *generator) nextCounters(current unlockCounters) unlockCounters {
	next := current
	next.successes += int64(g.rnd.Intn(maxNewSuccesses) + 1)
	if g.rnd.Float64() < newFailureProbability {
		next.failures++
	}

	return next
}

func (g *generator) nextMetrics(previous common.Metrics, counters unlockCounters) common.Metrics {
	next := common.Metrics{
		TotalKeys:   previous.TotalKeys,
		ActiveKeys:  previous.ActiveKeys,
		Unlocks:     counters.total(),
		SuccessRate: counters.successRate(),
	}

	if g.rnd.Float64() < newKeyProbability {
		next.TotalKeys++
	}
	if g.rnd.Float64() < activeKeyUpProbability {
		next.ActiveKeys++
	} else if next.ActiveKeys > 0 {
		next.ActiveKeys--
	}

	return next
}

// nextRecord returns either an event or an error, never both
func (g *generator) nextRecord(now time.Time) (*common.TelemetryEvent, *common.TelemetryError) {
	platform := common.AllPlatforms[g.rnd.Intn(len(common.AllPlatforms))]
	eventType := common.AllEventTypes[g.rnd.Intn(len(common.AllEventTypes))]

	event := common.TelemetryEvent{
		ID:        fmt.Sprintf("evt_%d_%s", now.UnixMilli(), uuid.NewString()),
		Timestamp: now.Format(clockLayout),
		Type:      eventType,
		Metadata: common.EventMetadata{
			UserID:   fmt.Sprintf("user_%d", g.rnd.Intn(numUsers)),
			DeviceID: fmt.Sprintf("dev_%d", g.rnd.Intn(numDevices)),
			Platform: platform,
		},
	}

	switch eventType {
	case common.EventKeyCreated:
		event.Message = "New key provisioned for " + event.Metadata.UserID
	case common.EventUnlockSuccess:
		event.Message = "Access granted via device " + event.Metadata.DeviceID
	case common.EventSyncSuccess:
		event.Message = "Keychain sync complete for " + event.Metadata.UserID
	case common.EventUnlockFailure:
		event.Message = unlockFailureMessage
		return nil, &common.TelemetryError{
			TelemetryEvent: event,
			ErrorCode:      unlockFailureCode,
		}
	}

	return &event, nil
}

func (g *generator) nextUsage(last common.UsageDataPoint, now time.Time) common.UsageDataPoint {
	unlocks := last.Unlocks + int64(g.rnd.Intn(2*usageJitter+1)-usageJitter)
	if unlocks < 0 {
		unlocks = 0
	}

	return common.UsageDataPoint{
		Time:    now.Format(clockLayout),
		Unlocks: unlocks,
	}
}

// seedSeries returns numPoints samples spaced by interval, the last one being one interval before now
func (g *generator) seedSeries(now time.Time, numPoints int, interval time.Duration) []common.UsageDataPoint {
	points := make([]common.UsageDataPoint, 0, numPoints)
	for i := 0; i < numPoints; i++ {
		sampledAt := now.Add(-time.Duration(numPoints-i) * interval)
		points = append(points, common.UsageDataPoint{
			Time:    sampledAt.Format(clockLayout),
			Unlocks: int64(g.rnd.Intn(seedUnlocksSpread) + seedMinUnlocks),
		})
	}

	return points
}
