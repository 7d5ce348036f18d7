package stream

import "errors"

// ErrSessionActive signals that Connect was called while a previous session is still running
var ErrSessionActive = errors.New("stream session already active")

type errMalformedFrame string

func (e errMalformedFrame) Error() string {
	return "malformed telemetry frame: " + string(e)
}

type errMissingPayload MessageType

func (e errMissingPayload) Error() string {
	return "missing or invalid data object for frame type " + string(e)
}
