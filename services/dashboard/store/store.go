package store

import (
	"errors"
	"sync"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const (
	// DefaultEventLogCapacity is the number of events retained, newest first
	DefaultEventLogCapacity = 50
	// DefaultErrorLogCapacity is the number of errors retained, newest first
	DefaultErrorLogCapacity = 50
	// DefaultUsageWindow is the number of usage samples retained, oldest first
	DefaultUsageWindow = 30

	subscriberBufferSize = 100
)

var log = logger.GetOrCreate("store")

// ArgsReconciliationStore defines the reconciliation store arguments
type ArgsReconciliationStore struct {
	InitialMetrics   common.Metrics
	EventLogCapacity int
	ErrorLogCapacity int
	UsageWindow      int
	Recorder         common.IngestionRecorder
}

// reconciliationStore is the single in-memory owner of the dashboard view state.
// It holds no timers and does no I/O, producers push batches into it.
type reconciliationStore struct {
	mut         sync.RWMutex
	version     uint64
	state       common.ConnectionState
	metrics     common.Metrics
	events      []common.TelemetryEvent
	errors      []common.TelemetryError
	usage       []common.UsageDataPoint
	subscribers map[chan common.Snapshot]struct{}

	eventLogCapacity int
	errorLogCapacity int
	usageWindow      int
	recorder         common.IngestionRecorder
}

// NewReconciliationStore creates a new store. Non-positive capacities fall back to the defaults.
func NewReconciliationStore(args ArgsReconciliationStore) (*reconciliationStore, error) {
	if check.IfNil(args.Recorder) {
		return nil, errors.New("nil ingestion recorder")
	}

	return &reconciliationStore{
		state:            common.StateDisconnected,
		metrics:          args.InitialMetrics,
		events:           make([]common.TelemetryEvent, 0),
		errors:           make([]common.TelemetryError, 0),
		usage:            make([]common.UsageDataPoint, 0),
		subscribers:      make(map[chan common.Snapshot]struct{}),
		eventLogCapacity: valueOrDefault(args.EventLogCapacity, DefaultEventLogCapacity),
		errorLogCapacity: valueOrDefault(args.ErrorLogCapacity, DefaultErrorLogCapacity),
		usageWindow:      valueOrDefault(args.UsageWindow, DefaultUsageWindow),
		recorder:         args.Recorder,
	}, nil
}

func valueOrDefault(value int, defaultValue int) int {
	if value <= 0 {
		return defaultValue
	}

	return value
}

// ApplyMetrics replaces the metrics snapshot
func (s *reconciliationStore) ApplyMetrics(metrics common.Metrics) {
	s.mut.Lock()
	defer s.mut.Unlock()

	s.applyMetrics(metrics)
	s.publish()
}

// ApplyEvent prepends the event to the event log
func (s *reconciliationStore) ApplyEvent(event common.TelemetryEvent) {
	s.mut.Lock()
	defer s.mut.Unlock()

	s.applyEvent(event)
	s.publish()
}

// ApplyError prepends the error to the error log
func (s *reconciliationStore) ApplyError(telemetryError common.TelemetryError) {
	s.mut.Lock()
	defer s.mut.Unlock()

	s.applyError(telemetryError)
	s.publish()
}

// ApplyUsageSample appends the sample to the usage series, dropping the oldest samples over the window
func (s *reconciliationStore) ApplyUsageSample(sample common.UsageDataPoint) {
	s.mut.Lock()
	defer s.mut.Unlock()

	s.applyUsageSample(sample)
	s.publish()
}

// Commit applies all updates of a batch at once, in the metrics, event or error, usage order. Subscribers see a
// single snapshot for the whole batch. The batch is dropped if the source is not the producer allowed to write in the
// current connection state.
func (s *reconciliationStore) Commit(source common.Source, batch common.Batch) bool {
	s.mut.Lock()
	defer s.mut.Unlock()

	authoritative := common.AuthoritativeSource(s.state)
	if source != authoritative {
		s.recorder.RecordRejectedCommit(source)
		log.Debug("batch rejected", "source", source, "authoritative", authoritative, "state", s.state)
		return false
	}
	if batch.IsEmpty() {
		return true
	}

	if batch.Metrics != nil {
		s.applyMetrics(*batch.Metrics)
	}
	if batch.Event != nil {
		s.applyEvent(*batch.Event)
	}
	if batch.Error != nil {
		s.applyError(*batch.Error)
	}
	if batch.Usage != nil {
		s.applyUsageSample(*batch.Usage)
	}
	s.publish()

	return true
}

// SeedUsage sets the usage series only if it is empty. Returns true if the series was seeded.
func (s *reconciliationStore) SeedUsage(points []common.UsageDataPoint) bool {
	s.mut.Lock()
	defer s.mut.Unlock()

	if len(s.usage) > 0 || len(points) == 0 {
		return false
	}

	if len(points) > s.usageWindow {
		points = points[len(points)-s.usageWindow:]
	}
	s.usage = append(make([]common.UsageDataPoint, 0, len(points)), points...)
	s.publish()

	return true
}

// SetConnectionState records the stream connection state, which also selects the producer allowed to write
func (s *reconciliationStore) SetConnectionState(state common.ConnectionState) {
	s.mut.Lock()
	defer s.mut.Unlock()

	if s.state == state {
		return
	}

	log.Debug("connection state changed", "from", s.state, "to", state)
	s.state = state
	s.recorder.RecordConnectionState(state)
	s.publish()
}

// ConnectionState returns the current connection state
func (s *reconciliationStore) ConnectionState() common.ConnectionState {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return s.state
}

// Metrics returns the current metrics
func (s *reconciliationStore) Metrics() common.Metrics {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return s.metrics
}

// Events returns a copy of the event log, newest first
func (s *reconciliationStore) Events() []common.TelemetryEvent {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return copySlice(s.events)
}

// Errors returns a copy of the error log, newest first
func (s *reconciliationStore) Errors() []common.TelemetryError {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return copySlice(s.errors)
}

// UsageSeries returns a copy of the usage series, oldest first
func (s *reconciliationStore) UsageSeries() []common.UsageDataPoint {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return copySlice(s.usage)
}

// LastUsageSample returns the newest usage sample, if any
func (s *reconciliationStore) LastUsageSample() (common.UsageDataPoint, bool) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	if len(s.usage) == 0 {
		return common.UsageDataPoint{}, false
	}

	return s.usage[len(s.usage)-1], true
}

// Snapshot returns a consistent copy of the whole view state
func (s *reconciliationStore) Snapshot() common.Snapshot {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return s.snapshot()
}

// Subscribe returns a channel receiving a snapshot after every change. Slow subscribers miss snapshots instead of
// stalling the producers.
func (s *reconciliationStore) Subscribe() chan common.Snapshot {
	s.mut.Lock()
	defer s.mut.Unlock()

	ch := make(chan common.Snapshot, subscriberBufferSize)
	s.subscribers[ch] = struct{}{}

	return ch
}

// Unsubscribe removes a subscription and closes its channel
func (s *reconciliationStore) Unsubscribe(ch chan common.Snapshot) {
	s.mut.Lock()
	defer s.mut.Unlock()

	_, found := s.subscribers[ch]
	if !found {
		return
	}

	delete(s.subscribers, ch)
	close(ch)
}

func (s *reconciliationStore) applyMetrics(metrics common.Metrics) {
	s.metrics = metrics
}

func (s *reconciliationStore) applyEvent(event common.TelemetryEvent) {
	s.events = prependCapped(s.events, event, s.eventLogCapacity)
}

func (s *reconciliationStore) applyError(telemetryError common.TelemetryError) {
	s.errors = prependCapped(s.errors, telemetryError, s.errorLogCapacity)
}

func (s *reconciliationStore) applyUsageSample(sample common.UsageDataPoint) {
	s.usage = appendWindowed(s.usage, sample, s.usageWindow)
}

// publish must be called with the write lock held
func (s *reconciliationStore) publish() {
	s.version++
	if len(s.subscribers) == 0 {
		return
	}

	for ch := range s.subscribers {
		select {
		case ch <- s.snapshot():
		default:
		}
	}
}

func (s *reconciliationStore) snapshot() common.Snapshot {
	return common.Snapshot{
		Version:         s.version,
		ConnectionState: s.state,
		Metrics:         s.metrics,
		Events:          copySlice(s.events),
		Errors:          copySlice(s.errors),
		Usage:           copySlice(s.usage),
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *reconciliationStore) IsInterfaceNil() bool {
	return s == nil
}

func prependCapped[T any](list []T, item T, capacity int) []T {
	kept := len(list)
	if kept > capacity-1 {
		kept = capacity - 1
	}

	result := make([]T, 0, kept+1)
	result = append(result, item)

	return append(result, list[:kept]...)
}

func appendWindowed[T any](list []T, item T, window int) []T {
	start := 0
	if len(list)+1 > window {
		start = len(list) + 1 - window
	}

	result := make([]T, 0, len(list)+1-start)
	result = append(result, list[start:]...)

	return append(result, item)
}

func copySlice[T any](list []T) []T {
	result := make([]T, len(list))
	copy(result, list)

	return result
}
