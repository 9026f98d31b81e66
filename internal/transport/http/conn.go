package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// wsConn wraps one client connection: an outbound queue drained by the write
// loop, plus ping/pong liveness bookkeeping for the heartbeat loop. Room and
// lobby sockets share this plumbing and differ only in where inbound frames
// are dispatched.
type wsConn struct {
	id       string
	conn     *websocket.Conn
	events   chan []byte
	interval time.Duration
	lastLive atomic.Int64 // unix nanos of the last ping/pong seen
	log      *zerolog.Logger
}

// acceptConn upgrades the request. Only ping and pong control frames count
// as liveness; data frames do not.
func acceptConn(w stdhttp.ResponseWriter, r *stdhttp.Request, interval time.Duration, logger *zerolog.Logger) (*wsConn, error) {
	c := &wsConn{
		id:       uuid.NewString(),
		events:   make(chan []byte, 16),
		interval: interval,
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
		OnPingReceived: func(context.Context, []byte) bool {
			c.refreshLiveness()
			return true
		},
		OnPongReceived: func(context.Context, []byte) {
			c.refreshLiveness()
		},
	})
	if err != nil {
		return nil, err
	}

	l := logger.With().Str("conn", c.id).Str("remote", r.RemoteAddr).Logger()
	c.conn = conn
	c.log = &l
	c.refreshLiveness()
	return c, nil
}

func (c *wsConn) refreshLiveness() {
	c.lastLive.Store(time.Now().UnixNano())
}

func (c *wsConn) liveness() time.Time {
	return time.Unix(0, c.lastLive.Load())
}

// run drives the connection until one of the loops fails: inbound frames go
// to handle, outbound snapshots drain from c.events, and the heartbeat loop
// force-closes peers that stop answering pings.
func (c *wsConn) run(ctx context.Context, handle func(json.RawMessage)) {
	defer c.conn.Close(websocket.StatusInternalError, "internal error")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.log.Info().Msg("client connected")

	errCh := make(chan error, 3)
	go func() {
		errCh <- c.readLoop(ctx, handle)
	}()
	go func() {
		errCh <- c.writeLoop(ctx)
	}()
	go func() {
		errCh <- heartbeatLoop(ctx, c.conn, c.interval, c.liveness)
	}()

	err := <-errCh
	cancel() // stop the other goroutines
	<-errCh
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch {
	case errors.Is(err, errHeartbeatExpired):
		status = websocket.StatusPolicyViolation
		reason = "heartbeat timeout"
		c.log.Warn().Msg("closing dead connection")
	case err != nil && !errors.Is(err, context.Canceled):
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			status = websocket.StatusInternalError
			reason = err.Error()
			c.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	c.conn.Close(status, reason)
	c.log.Info().Msg("client disconnected")
}

func (c *wsConn) readLoop(ctx context.Context, handle func(json.RawMessage)) error {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			c.log.Warn().Int("type", int(typ)).Msg("ignoring non-text frame")
			continue
		}
		handle(json.RawMessage(data))
	}
}

func (c *wsConn) writeLoop(ctx context.Context) error {
	for {
		select {
		case data := <-c.events:
			if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// push queues an outbound payload, dropping it if the queue is full. Used
// for the initial snapshot; broadcasts go through the subscriber channel
// directly.
func (c *wsConn) push(data []byte) {
	select {
	case c.events <- data:
	default:
		c.log.Warn().Msg("outbound queue full, dropping frame")
	}
}
