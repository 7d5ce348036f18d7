package insight

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
)

const noErrorsLine = "No errors reported in the last few minutes."

// BuildPrompt composes the analyst prompt embedding the metrics and one line per error
func BuildPrompt(metrics common.Metrics, telemetryErrors []common.TelemetryError) string {
	builder := strings.Builder{}
	builder.WriteString("You are a senior telemetry analyst for a digital car key system. Your task is to analyze the " +
		"following real-time data snapshot and identify potential anomalies, interesting trends, or areas that need " +
		"further investigation.\n\n")
	builder.WriteString("Present your findings as a concise, markdown-formatted list with brief explanations. " +
		"Focus on actionable insights.\n\n")

	builder.WriteString("**Current Telemetry Data:**\n")
	builder.WriteString(fmt.Sprintf("- Total Keys Issued: %s\n", humanize.Comma(metrics.TotalKeys)))
	builder.WriteString(fmt.Sprintf("- Active Keys: %s\n", humanize.Comma(metrics.ActiveKeys)))
	builder.WriteString(fmt.Sprintf("- Total Unlocks Today: %s\n", humanize.Comma(metrics.Unlocks)))
	builder.WriteString(fmt.Sprintf("- Success Rate: %.2f%%\n\n", metrics.SuccessRate))

	builder.WriteString(fmt.Sprintf("**Recent Errors (%d in the last few minutes):**\n", len(telemetryErrors)))
	builder.WriteString(errorSummary(telemetryErrors))
	builder.WriteString("\n\nBased on this data, what should I be looking at?\n")

	return builder.String()
}

func errorSummary(telemetryErrors []common.TelemetryError) string {
	if len(telemetryErrors) == 0 {
		return noErrorsLine
	}

	lines := make([]string, 0, len(telemetryErrors))
	for _, e := range telemetryErrors {
		lines = append(lines, fmt.Sprintf("- %s: %s (Code: %d) on %s", e.Timestamp, e.Message, e.ErrorCode, e.Metadata.Platform))
	}

	return strings.Join(lines, "\n")
}
