package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
)

// AllPlatformsFilter disables the platform filter
const AllPlatformsFilter = "All"

const clockLayout = "15:04:05"

// ErrorFilter narrows down the error log. Empty fields match everything.
type ErrorFilter struct {
	Platform string
	Code     string
	From     string
	To       string
}

// FilterErrors returns the errors matching the filter, preserving their order. Errors with a timestamp that can not be
// parsed are kept when filtering by time.
func FilterErrors(telemetryErrors []common.TelemetryError, filter ErrorFilter) []common.TelemetryError {
	from, hasFrom := parseClock(filter.From)
	to, hasTo := parseClock(filter.To)

	result := make([]common.TelemetryError, 0, len(telemetryErrors))
	for _, telemetryError := range telemetryErrors {
		if !matchesPlatform(telemetryError, filter.Platform) {
			continue
		}
		if len(filter.Code) > 0 && !strings.Contains(strconv.Itoa(telemetryError.ErrorCode), filter.Code) {
			continue
		}
		if (hasFrom || hasTo) && !inTimeRange(telemetryError.Timestamp, from, hasFrom, to, hasTo) {
			continue
		}

		result = append(result, telemetryError)
	}

	return result
}

func matchesPlatform(telemetryError common.TelemetryError, platform string) bool {
	if len(platform) == 0 || platform == AllPlatformsFilter {
		return true
	}

	return string(telemetryError.Metadata.Platform) == platform
}

func inTimeRange(timestamp string, from time.Time, hasFrom bool, to time.Time, hasTo bool) bool {
	recordedAt, ok := parseClock(timestamp)
	if !ok {
		return true
	}
	if hasFrom && recordedAt.Before(from) {
		return false
	}
	if hasTo && recordedAt.After(to) {
		return false
	}

	return true
}

// parseClock accepts both HH:MM:SS and HH:MM
func parseClock(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return time.Time{}, false
	}

	parsed, err := time.Parse(clockLayout, value)
	if err == nil {
		return parsed, true
	}
	parsed, err = time.Parse("15:04", value)
	if err == nil {
		return parsed, true
	}

	return time.Time{}, false
}

// PlatformBreakdown counts the events and errors per platform, in display order
func PlatformBreakdown(events []common.TelemetryEvent, telemetryErrors []common.TelemetryError) []common.PlatformCount {
	counts := make(map[common.Platform]int, len(common.AllPlatforms))
	for _, event := range events {
		counts[event.Metadata.Platform]++
	}
	for _, telemetryError := range telemetryErrors {
		counts[telemetryError.Metadata.Platform]++
	}

	result := make([]common.PlatformCount, 0, len(common.AllPlatforms))
	for _, platform := range common.AllPlatforms {
		result = append(result, common.PlatformCount{
			Name:  platform,
			Value: counts[platform],
		})
	}

	return result
}
