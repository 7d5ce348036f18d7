package stream

import (
	"encoding/json"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	"github.com/tidwall/gjson"
)

// MessageType is the type tag of an inbound frame
type MessageType string

const (
	MetricsUpdateType MessageType = "METRICS_UPDATE"
	NewEventType      MessageType = "NEW_EVENT"
	NewErrorType      MessageType = "NEW_ERROR"
	UsageUpdateType   MessageType = "USAGE_UPDATE"
)

const (
	typePath      = "type"
	dataPath      = "data"
	errorCodePath = "errorCode"
)

// Message is a decoded frame. The concrete types are MetricsUpdate, NewEvent, NewError and UsageUpdate.
type Message interface {
	Type() MessageType
}

// MetricsUpdate replaces the metrics snapshot
type MetricsUpdate struct {
	Metrics common.Metrics
}

// Type -
func (m MetricsUpdate) Type() MessageType { return MetricsUpdateType }

// NewEvent prepends an event to the event log
type NewEvent struct {
	Event common.TelemetryEvent
}

// Type -
func (m NewEvent) Type() MessageType { return NewEventType }

// NewError prepends an error to the error log
type NewError struct {
	Error common.TelemetryError
}

// Type -
func (m NewError) Type() MessageType { return NewErrorType }

// UsageUpdate appends a sample to the usage series
type UsageUpdate struct {
	Sample common.UsageDataPoint
}

// Type -
func (m UsageUpdate) Type() MessageType { return UsageUpdateType }

// DecodeFrame parses one {"type": ..., "data": {...}} frame. It returns a nil message and a nil error for an
// unrecognized type. A NEW_EVENT payload carrying an errorCode field is decoded as an error.
func DecodeFrame(frame []byte) (Message, error) {
	if !gjson.ValidBytes(frame) {
		return nil, errMalformedFrame("invalid JSON")
	}

	root := gjson.ParseBytes(frame)
	if !root.IsObject() {
		return nil, errMalformedFrame("frame is not an object")
	}

	typeTag := root.Get(typePath)
	if typeTag.Type != gjson.String {
		return nil, errMalformedFrame("missing type tag")
	}

	data := root.Get(dataPath)
	messageType := MessageType(typeTag.Str)
	switch messageType {
	case MetricsUpdateType:
		msg := MetricsUpdate{}
		err := decodeData(messageType, data, &msg.Metrics)
		if err != nil {
			return nil, err
		}
		return msg, nil
	case NewEventType:
		if data.Get(errorCodePath).Exists() {
			return decodeError(messageType, data)
		}
		msg := NewEvent{}
		err := decodeData(messageType, data, &msg.Event)
		if err != nil {
			return nil, err
		}
		return msg, nil
	case NewErrorType:
		return decodeError(messageType, data)
	case UsageUpdateType:
		msg := UsageUpdate{}
		err := decodeData(messageType, data, &msg.Sample)
		if err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, nil
	}
}

func decodeError(messageType MessageType, data gjson.Result) (Message, error) {
	msg := NewError{}
	err := decodeData(messageType, data, &msg.Error)
	if err != nil {
		return nil, err
	}

	return msg, nil
}

func decodeData(messageType MessageType, data gjson.Result, dest interface{}) error {
	if !data.IsObject() {
		return errMissingPayload(messageType)
	}

	err := json.Unmarshal([]byte(data.Raw), dest)
	if err != nil {
		return errMalformedFrame(err.Error())
	}

	return nil
}

// ToBatch converts a decoded message into the store batch it stands for
func ToBatch(msg Message) (common.Batch, bool) {
	switch m := msg.(type) {
	case MetricsUpdate:
		return common.Batch{Metrics: &m.Metrics}, true
	case NewEvent:
		return common.Batch{Event: &m.Event}, true
	case NewError:
		return common.Batch{Error: &m.Error}, true
	case UsageUpdate:
		return common.Batch{Usage: &m.Sample}, true
	default:
		return common.Batch{}, false
	}
}
