package insight

import (
	"testing"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	"github.com/stretchr/testify/assert"
)

func createTestError(id string, timestamp string, code int, platform common.Platform) common.TelemetryError {
	return common.TelemetryError{
		TelemetryEvent: common.TelemetryEvent{
			ID:        id,
			Timestamp: timestamp,
			Type:      common.EventUnlockFailure,
			Message:   "Auth failed: Invalid credentials",
			Metadata:  common.EventMetadata{UserID: "user_1", DeviceID: "dev_1", Platform: platform},
		},
		ErrorCode: code,
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	metrics := common.Metrics{TotalKeys: 125600, ActiveKeys: 98750, Unlocks: 450320, SuccessRate: 99.8}

	t.Run("with errors", func(t *testing.T) {
		prompt := BuildPrompt(metrics, []common.TelemetryError{
			createTestError("e1", "10:00:01", 401, common.PlatformIOS),
			createTestError("e2", "10:00:03", 503, common.PlatformWeb),
		})

		assert.Contains(t, prompt, "- Total Keys Issued: 125,600\n")
		assert.Contains(t, prompt, "- Active Keys: 98,750\n")
		assert.Contains(t, prompt, "- Total Unlocks Today: 450,320\n")
		assert.Contains(t, prompt, "- Success Rate: 99.80%\n")
		assert.Contains(t, prompt, "**Recent Errors (2 in the last few minutes):**\n")
		assert.Contains(t, prompt, "- 10:00:01: Auth failed: Invalid credentials (Code: 401) on iOS\n"+
			"- 10:00:03: Auth failed: Invalid credentials (Code: 503) on Web\n")
		assert.NotContains(t, prompt, noErrorsLine)
	})
	t.Run("without errors", func(t *testing.T) {
		prompt := BuildPrompt(metrics, nil)

		assert.Contains(t, prompt, "**Recent Errors (0 in the last few minutes):**\n"+noErrorsLine)
		assert.Contains(t, prompt, "what should I be looking at?")
	})
}
