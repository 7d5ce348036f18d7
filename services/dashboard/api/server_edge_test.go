package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/testsCommon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 5 * time.Second

func readSnapshotEvent(t *testing.T, reader *bufio.Reader) common.Snapshot {
	eventName := ""
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		if strings.HasPrefix(line, "event:") {
			eventName = strings.TrimPrefix(line, "event:")
			continue
		}
		if strings.HasPrefix(line, "data:") {
			require.Equal(t, snapshotEvent, eventName)

			var snapshot common.Snapshot
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &snapshot))
			return snapshot
		}
	}
}

func TestServer_StartAndClose(t *testing.T) {
	serv, _ := setupTestServer(t, &testsCommon.InsightRequestorStub{})

	serv.Start()
	assert.NotEqual(t, "127.0.0.1:0", serv.Address())

	resp, err := http.Get("http://" + serv.Address() + "/api/status")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, serv.Close())
	require.NoError(t, serv.Close())
}

func TestServer_CloseWithoutStart(t *testing.T) {
	serv, _ := setupTestServer(t, &testsCommon.InsightRequestorStub{})
	assert.NoError(t, serv.Close())
}

func TestStream(t *testing.T) {
	serv, st := setupTestServer(t, &testsCommon.InsightRequestorStub{})
	serv.Start()
	defer func() {
		_ = serv.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+serv.Address()+"/api/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	initial := readSnapshotEvent(t, reader)
	assert.Equal(t, st.Snapshot(), initial)

	event := common.TelemetryEvent{ID: "evt_live", Timestamp: "11:00:00", Type: common.EventUnlockSuccess}
	metrics := common.Metrics{TotalKeys: 1, ActiveKeys: 1, Unlocks: 1, SuccessRate: 100}
	require.True(t, st.Commit(common.SourceSimulator, common.Batch{Metrics: &metrics, Event: &event}))

	update := readSnapshotEvent(t, reader)
	assert.Equal(t, initial.Version+1, update.Version)
	assert.Equal(t, metrics, update.Metrics)
	require.Len(t, update.Events, 1)
	assert.Equal(t, "evt_live", update.Events[0].ID)
}

func TestStream_CloseEndsOpenStreams(t *testing.T) {
	serv, _ := setupTestServer(t, &testsCommon.InsightRequestorStub{})
	serv.Start()

	resp, err := http.Get("http://" + serv.Address() + "/api/stream")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	_ = readSnapshotEvent(t, bufio.NewReader(resp.Body))

	closed := make(chan error)
	go func() {
		closed <- serv.Close()
	}()

	select {
	case err = <-closed:
		assert.NoError(t, err)
	case <-time.After(waitTimeout):
		require.Fail(t, "close blocked on an open event stream")
	}
}

func TestCORSMiddleware(t *testing.T) {
	t.Parallel()

	numCalls := 0
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		numCalls++
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/insights", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 0, numCalls)

	req = httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 1, numCalls)
}
