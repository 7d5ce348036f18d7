package stream

import (
	"errors"
	"testing"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame(t *testing.T) {
	t.Parallel()

	t.Run("metrics update", func(t *testing.T) {
		msg, err := DecodeFrame([]byte(`{"type":"METRICS_UPDATE","data":{"totalKeys":100,"activeKeys":90,"unlocks":7,"successRate":99.5}}`))
		require.NoError(t, err)

		expected := MetricsUpdate{Metrics: common.Metrics{TotalKeys: 100, ActiveKeys: 90, Unlocks: 7, SuccessRate: 99.5}}
		assert.Equal(t, expected, msg)
		assert.Equal(t, MetricsUpdateType, msg.Type())
	})
	t.Run("new event", func(t *testing.T) {
		msg, err := DecodeFrame([]byte(`{"type":"NEW_EVENT","data":{"id":"a1","timestamp":"10:00:00","type":"SYNC_SUCCESS","message":"m","metadata":{"userId":"user_1","deviceId":"dev_2","platform":"Web"}}}`))
		require.NoError(t, err)

		event, ok := msg.(NewEvent)
		require.True(t, ok)
		assert.Equal(t, "a1", event.Event.ID)
		assert.Equal(t, common.EventSyncSuccess, event.Event.Type)
		assert.Equal(t, common.PlatformWeb, event.Event.Metadata.Platform)
	})
	t.Run("new event carrying an error code is an error", func(t *testing.T) {
		msg, err := DecodeFrame([]byte(`{"type":"NEW_EVENT","data":{"id":"e9","type":"UNLOCK_FAILURE","errorCode":403}}`))
		require.NoError(t, err)

		telemetryError, ok := msg.(NewError)
		require.True(t, ok)
		assert.Equal(t, "e9", telemetryError.Error.ID)
		assert.Equal(t, 403, telemetryError.Error.ErrorCode)
	})
	t.Run("new error", func(t *testing.T) {
		msg, err := DecodeFrame([]byte(`{"type":"NEW_ERROR","data":{"id":"e1","errorCode":401,"metadata":{"platform":"iOS"}}}`))
		require.NoError(t, err)

		telemetryError, ok := msg.(NewError)
		require.True(t, ok)
		assert.Equal(t, 401, telemetryError.Error.ErrorCode)
		assert.Equal(t, common.PlatformIOS, telemetryError.Error.Metadata.Platform)
	})
	t.Run("usage update", func(t *testing.T) {
		msg, err := DecodeFrame([]byte(`{"type":"USAGE_UPDATE","data":{"time":"10:00:00","unlocks":5}}`))
		require.NoError(t, err)
		assert.Equal(t, UsageUpdate{Sample: common.UsageDataPoint{Time: "10:00:00", Unlocks: 5}}, msg)
	})
	t.Run("unknown type is ignored", func(t *testing.T) {
		msg, err := DecodeFrame([]byte(`{"type":"HEARTBEAT","data":{}}`))
		assert.NoError(t, err)
		assert.Nil(t, msg)
	})
	t.Run("malformed frames should error", func(t *testing.T) {
		frames := []string{
			`not json`,
			`[1,2,3]`,
			`{"data":{}}`,
			`{"type":12,"data":{}}`,
			`{"type":"METRICS_UPDATE","data":{"totalKeys":"many"}}`,
		}
		for _, frame := range frames {
			msg, err := DecodeFrame([]byte(frame))
			assert.Nil(t, msg, frame)
			var malformed errMalformedFrame
			assert.True(t, errors.As(err, &malformed), frame)
		}
	})
	t.Run("missing data should error", func(t *testing.T) {
		msg, err := DecodeFrame([]byte(`{"type":"USAGE_UPDATE"}`))
		assert.Nil(t, msg)
		assert.Equal(t, errMissingPayload(UsageUpdateType), err)
		assert.Contains(t, err.Error(), "USAGE_UPDATE")
	})
}

func TestToBatch(t *testing.T) {
	t.Parallel()

	batch, ok := ToBatch(MetricsUpdate{Metrics: common.Metrics{TotalKeys: 3}})
	require.True(t, ok)
	require.NotNil(t, batch.Metrics)
	assert.Equal(t, int64(3), batch.Metrics.TotalKeys)
	assert.Nil(t, batch.Event)

	batch, ok = ToBatch(NewError{Error: common.TelemetryError{ErrorCode: 500}})
	require.True(t, ok)
	require.NotNil(t, batch.Error)
	assert.Equal(t, 500, batch.Error.ErrorCode)

	batch, ok = ToBatch(nil)
	assert.False(t, ok)
	assert.True(t, batch.IsEmpty())
}
