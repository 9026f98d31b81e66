package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/antonvlasov/gameroom-server/internal/game"
	"github.com/antonvlasov/gameroom-server/internal/proto"
)

// stubGame is a minimal game for exercising room behavior.
type stubGame struct {
	players     []string
	ended       bool
	endOnAction bool
	actErr      error
	actions     int
}

func (g *stubGame) Status() string {
	if g.ended {
		return "ended"
	}
	return "in game"
}

func (g *stubGame) State() any {
	return map[string]int{"actions": g.actions}
}

func (g *stubGame) Ended() bool {
	return g.ended
}

func (g *stubGame) Action(json.RawMessage) error {
	if g.actErr != nil {
		return g.actErr
	}
	g.actions++
	if g.endOnAction {
		g.ended = true
	}
	return nil
}

func (g *stubGame) Winner() (string, bool) {
	if !g.ended || len(g.players) == 0 {
		return "", false
	}
	return g.players[0], true
}

// stubTracker remembers every instance its factory created.
type stubTracker struct {
	created []*stubGame
}

func (tr *stubTracker) factory(players []string) game.Game {
	g := &stubGame{players: players}
	tr.created = append(tr.created, g)
	return g
}

func (tr *stubTracker) last() *stubGame {
	return tr.created[len(tr.created)-1]
}

const stubType = "stub"

func testRegistry(t testing.TB) (*game.Registry, *stubTracker) {
	t.Helper()

	tr := &stubTracker{}
	reg := game.NewRegistry()
	if err := reg.Register(stubType, tr.factory); err != nil {
		t.Fatalf("register stub game: %v", err)
	}
	return reg, tr
}

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestRoom(t *testing.T) (*Room, *stubTracker) {
	t.Helper()

	reg, tr := testRegistry(t)
	return NewRoom("r1", stubType, reg, NewPalette(), nil, testLogger()), tr
}

func mustReceive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()

	select {
	case data := <-ch:
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("expected a broadcast, got none")
		return nil
	}
}

func mustNotReceive(t *testing.T, ch <-chan []byte) {
	t.Helper()

	select {
	case data := <-ch:
		t.Fatalf("unexpected broadcast: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func decodeRoomSnapshot(t *testing.T, data []byte) proto.RoomSnapshot {
	t.Helper()

	var snap proto.RoomSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal room snapshot: %v", err)
	}
	return snap
}

func decodeLobbySnapshot(t *testing.T, data []byte) proto.LobbySnapshot {
	t.Helper()

	var snap proto.LobbySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal lobby snapshot: %v", err)
	}
	return snap
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	coreErr, ok := err.(*CoreError)
	if !ok {
		t.Fatalf("expected *CoreError, got %T: %v", err, err)
	}
	if coreErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, coreErr.Code, coreErr.Message)
	}
}
