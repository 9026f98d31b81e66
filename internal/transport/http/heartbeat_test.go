package http

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakePinger struct {
	mu    sync.Mutex
	pings int
	err   error
}

func (p *fakePinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pings++
	return p.err
}

func (p *fakePinger) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pings
}

func TestHeartbeatExpiresWhenPeerGoesQuiet(t *testing.T) {
	stale := time.Now().Add(-time.Hour)

	err := heartbeatLoop(context.Background(), &fakePinger{}, 5*time.Millisecond, func() time.Time {
		return stale
	})
	if !errors.Is(err, errHeartbeatExpired) {
		t.Fatalf("expected heartbeat expiry, got %v", err)
	}
}

func TestHeartbeatToleratesGapUnderTwoIntervals(t *testing.T) {
	p := &fakePinger{}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	// Liveness lags by a bit more than one interval; that is still within the
	// allowed gap, so only the context stops the loop.
	err := heartbeatLoop(ctx, p, 10*time.Millisecond, func() time.Time {
		return time.Now().Add(-15 * time.Millisecond)
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline, got %v", err)
	}
	if p.count() == 0 {
		t.Fatal("expected at least one ping")
	}
}

func TestHeartbeatSurvivesFailedPings(t *testing.T) {
	p := &fakePinger{err: errors.New("broken pipe")}
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	err := heartbeatLoop(ctx, p, 10*time.Millisecond, time.Now)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ping failures should not stop the loop, got %v", err)
	}
}

func TestHeartbeatStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := heartbeatLoop(ctx, &fakePinger{}, time.Minute, time.Now)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
