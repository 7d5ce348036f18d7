package stream

import "github.com/iulianpascalau/keys-telemetry/services/dashboard/common"

// Writer is the store side used by the stream client
type Writer interface {
	Commit(source common.Source, batch common.Batch) bool
	IsInterfaceNil() bool
}
