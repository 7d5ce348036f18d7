package common

// IngestionRecorder counts what happens on the ingestion path
type IngestionRecorder interface {
	RecordFrame(frameType string)
	RecordMalformedFrame()
	RecordSimulatorTick()
	RecordRejectedCommit(source Source)
	RecordConnectionState(state ConnectionState)
	IsInterfaceNil() bool
}
