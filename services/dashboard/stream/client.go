package stream

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const defaultHandshakeTimeout = 10 * time.Second

var log = logger.GetOrCreate("stream")

// ArgsStreamClient defines the stream client arguments
type ArgsStreamClient struct {
	Endpoint         string
	Writer           Writer
	Recorder         common.IngestionRecorder
	HandshakeTimeout time.Duration
	// Handshake, if set, runs on the freshly opened connection before it is reported as connected
	Handshake func(ctx context.Context, conn *websocket.Conn) error
}

type streamClient struct {
	endpoint  string
	writer    Writer
	recorder  common.IngestionRecorder
	dialer    *websocket.Dialer
	handshake func(ctx context.Context, conn *websocket.Conn) error

	mutState     sync.RWMutex
	state        common.ConnectionState
	stateHandler func(state common.ConnectionState)

	mutSession sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewStreamClient creates a websocket client that feeds the decoded frames into the writer
func NewStreamClient(args ArgsStreamClient) (*streamClient, error) {
	if len(args.Endpoint) == 0 {
		return nil, errors.New("empty stream endpoint")
	}
	if check.IfNil(args.Writer) {
		return nil, errors.New("nil writer")
	}
	if check.IfNil(args.Recorder) {
		return nil, errors.New("nil ingestion recorder")
	}

	handshakeTimeout := args.HandshakeTimeout
	if handshakeTimeout <= 0 {
		handshakeTimeout = defaultHandshakeTimeout
	}

	return &streamClient{
		endpoint:  args.Endpoint,
		writer:    args.Writer,
		recorder:  args.Recorder,
		handshake: args.Handshake,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: handshakeTimeout,
		},
		state: common.StateDisconnected,
	}, nil
}

// SetStateHandler registers the function called, in order, on every state transition
func (c *streamClient) SetStateHandler(handler func(state common.ConnectionState)) {
	c.mutState.Lock()
	defer c.mutState.Unlock()

	c.stateHandler = handler
}

// State returns the current connection state
func (c *streamClient) State() common.ConnectionState {
	c.mutState.RLock()
	defer c.mutState.RUnlock()

	return c.state
}

// Connect reports the connecting state before returning and dials the endpoint in the background
func (c *streamClient) Connect(ctx context.Context) error {
	c.mutSession.Lock()
	if c.cancel != nil {
		c.mutSession.Unlock()
		return ErrSessionActive
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.mutSession.Unlock()

	c.setState(common.StateConnecting)
	go c.run(sessionCtx, cancel, done)

	return nil
}

// Disconnect closes the connection and waits for the read loop to exit. Safe to call at any time, any number of times.
func (c *streamClient) Disconnect() {
	c.mutSession.Lock()
	cancel := c.cancel
	done := c.done
	c.mutSession.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

func (c *streamClient) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer func() {
		cancel()
		c.setState(common.StateDisconnected)

		c.mutSession.Lock()
		c.cancel = nil
		c.done = nil
		c.mutSession.Unlock()

		close(done)
	}()

	conn, err := c.open(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("telemetry stream unavailable", "endpoint", c.endpoint, "error", err)
		}
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	log.Info("telemetry stream connected", "endpoint", c.endpoint)
	c.setState(common.StateConnected)

	// unblocks ReadMessage on cancellation
	stopWatcher := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stopWatcher()

	for {
		_, frame, errRead := conn.ReadMessage()
		if errRead != nil {
			if ctx.Err() == nil {
				log.Warn("telemetry stream closed", "endpoint", c.endpoint, "error", errRead)
			}
			return
		}

		c.processFrame(frame)
	}
}

func (c *streamClient) open(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	if c.handshake == nil {
		return conn, nil
	}

	err = c.handshake(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}

func (c *streamClient) processFrame(frame []byte) {
	msg, err := DecodeFrame(frame)
	if err != nil {
		c.recorder.RecordMalformedFrame()
		log.Warn("failed to parse telemetry frame", "error", err)
		return
	}
	if msg == nil {
		log.Trace("ignoring frame with unknown type", "frame", string(frame))
		return
	}

	c.recorder.RecordFrame(string(msg.Type()))

	batch, ok := ToBatch(msg)
	if !ok {
		return
	}

	if !c.writer.Commit(common.SourceStream, batch) {
		log.Debug("stream frame dropped, stream is not authoritative", "type", msg.Type())
	}
}

func (c *streamClient) setState(state common.ConnectionState) {
	c.mutState.Lock()
	c.state = state
	handler := c.stateHandler
	c.mutState.Unlock()

	if handler != nil {
		handler(state)
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (c *streamClient) IsInterfaceNil() bool {
	return c == nil
}
