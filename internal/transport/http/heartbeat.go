package http

import (
	"context"
	"errors"
	"time"
)

// errHeartbeatExpired signals that the peer stopped answering pings.
var errHeartbeatExpired = errors.New("heartbeat expired")

// pinger is the slice of websocket.Conn the heartbeat needs.
type pinger interface {
	Ping(ctx context.Context) error
}

// heartbeatLoop pings the peer every interval and fails once no ping or pong
// has been observed for more than twice the interval. lastLive reports the
// most recent liveness signal.
func heartbeatLoop(ctx context.Context, p pinger, interval time.Duration, lastLive func() time.Time) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if time.Since(lastLive()) > 2*interval {
				return errHeartbeatExpired
			}
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			// The pong receipt refreshes liveness; a failed ping is caught
			// by the gap check on a later tick.
			_ = p.Ping(pingCtx)
			cancel()
		}
	}
}
