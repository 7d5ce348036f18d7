package common

// ConnectionState is the state of the live telemetry stream
type ConnectionState string

const (
	// StateConnecting is reported from the moment a connect is requested until the handshake completes or fails
	StateConnecting ConnectionState = "connecting"
	// StateConnected is reported while the live stream is authoritative
	StateConnected ConnectionState = "connected"
	// StateDisconnected is reported after the stream was released
	StateDisconnected ConnectionState = "disconnected"
)

// Source identifies the producer writing into the store
type Source string

const (
	// SourceStream is the live telemetry stream
	SourceStream Source = "stream"
	// SourceSimulator is the local fallback simulator
	SourceSimulator Source = "simulator"
)

// AuthoritativeSource returns the only producer allowed to write for the provided connection state
func AuthoritativeSource(state ConnectionState) Source {
	if state == StateConnected {
		return SourceStream
	}

	return SourceSimulator
}

// Platform is the client platform that emitted a telemetry event
type Platform string

const (
	PlatformIOS     Platform = "iOS"
	PlatformAndroid Platform = "Android"
	PlatformWeb     Platform = "Web"
)

// AllPlatforms lists the known platforms in display order
var AllPlatforms = []Platform{PlatformIOS, PlatformAndroid, PlatformWeb}

// EventType is the kind of a telemetry event
type EventType string

const (
	EventKeyCreated    EventType = "KEY_CREATED"
	EventUnlockSuccess EventType = "UNLOCK_SUCCESS"
	EventUnlockFailure EventType = "UNLOCK_FAILURE"
	EventSyncSuccess   EventType = "SYNC_SUCCESS"
)

// AllEventTypes lists the known event types
var AllEventTypes = []EventType{EventKeyCreated, EventUnlockSuccess, EventUnlockFailure, EventSyncSuccess}

// Metrics is the headline counters snapshot. It is always replaced as a whole.
type Metrics struct {
	TotalKeys   int64   `json:"totalKeys"`
	ActiveKeys  int64   `json:"activeKeys"`
	Unlocks     int64   `json:"unlocks"`
	SuccessRate float64 `json:"successRate"`
}

// EventMetadata describes who and what emitted an event
type EventMetadata struct {
	UserID   string   `json:"userId"`
	DeviceID string   `json:"deviceId"`
	Platform Platform `json:"platform"`
}

// TelemetryEvent is a single immutable event record
type TelemetryEvent struct {
	ID        string        `json:"id"`
	Timestamp string        `json:"timestamp"`
	Type      EventType     `json:"type"`
	Message   string        `json:"message"`
	Metadata  EventMetadata `json:"metadata"`
}

// TelemetryError is an event that carries an error code
type TelemetryError struct {
	TelemetryEvent
	ErrorCode int `json:"errorCode"`
}

// UsageDataPoint is one sample of the rolling usage series
type UsageDataPoint struct {
	Time    string `json:"time"`
	Unlocks int64  `json:"unlocks"`
}

// PlatformCount holds the number of log records seen for a platform
type PlatformCount struct {
	Name  Platform `json:"name"`
	Value int      `json:"value"`
}

// Batch groups the updates produced by one tick or one frame. Nil fields are skipped.
// Event and Error are mutually exclusive in practice but both are applied if set.
type Batch struct {
	Metrics *Metrics
	Event   *TelemetryEvent
	Error   *TelemetryError
	Usage   *UsageDataPoint
}

// IsEmpty returns true if the batch carries no update
func (b Batch) IsEmpty() bool {
	return b.Metrics == nil && b.Event == nil && b.Error == nil && b.Usage == nil
}

// Snapshot is a consistent, reader-owned copy of the whole view state
type Snapshot struct {
	Version         uint64           `json:"version"`
	ConnectionState ConnectionState  `json:"connectionState"`
	Metrics         Metrics          `json:"metrics"`
	Events          []TelemetryEvent `json:"events"`
	Errors          []TelemetryError `json:"errors"`
	Usage           []UsageDataPoint `json:"usage"`
}
