package core

import (
	"encoding/json"
	"slices"
	"sync"
	"testing"
)

func newTestLobby(t *testing.T) *Lobby {
	t.Helper()

	reg, _ := testRegistry(t)
	return NewLobby(reg, NewPalette(), nil, testLogger())
}

func TestLobbyCreateAndSnapshot(t *testing.T) {
	lobby := newTestLobby(t)

	if err := lobby.Create("r1", stubType); err != nil {
		t.Fatalf("create: %v", err)
	}

	snap := lobby.Snapshot()
	room, ok := snap.Rooms["r1"]
	if !ok {
		t.Fatalf("expected room r1 in snapshot, got %v", snap.Rooms)
	}
	if room.Type != stubType {
		t.Fatalf("expected type %s, got %s", stubType, room.Type)
	}
	if room.Status != statusWaiting {
		t.Fatalf("expected waiting status, got %q", room.Status)
	}
	if len(room.Players) != 0 {
		t.Fatalf("expected empty roster, got %v", room.Players)
	}
}

func TestLobbyCreateValidation(t *testing.T) {
	lobby := newTestLobby(t)

	assertCode(t, lobby.Create("", stubType), ErrCodeInvalidName)
	assertCode(t, lobby.Create("r1", "no_such_game"), ErrCodeUnknownRoomType)

	if err := lobby.Create("r1", stubType); err != nil {
		t.Fatalf("create: %v", err)
	}
	assertCode(t, lobby.Create("r1", stubType), ErrCodeAlreadyExists)

	if n := len(lobby.Snapshot().Rooms); n != 1 {
		t.Fatalf("expected exactly one room, got %d", n)
	}
}

func TestLobbyDestroy(t *testing.T) {
	lobby := newTestLobby(t)

	assertCode(t, lobby.Destroy("ghost"), ErrCodeNotFound)

	if err := lobby.Create("r1", stubType); err != nil {
		t.Fatal(err)
	}
	if err := lobby.Destroy("r1"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	assertCode(t, lobby.Destroy("r1"), ErrCodeNotFound)

	if n := len(lobby.Snapshot().Rooms); n != 0 {
		t.Fatalf("expected no rooms, got %d", n)
	}
}

func TestLobbyBroadcastsOnCreateAndDestroy(t *testing.T) {
	lobby := newTestLobby(t)

	ch := make(chan []byte, 4)
	lobby.Subscribe("watcher", ch)
	defer lobby.Unsubscribe("watcher")

	if err := lobby.Create("r1", stubType); err != nil {
		t.Fatal(err)
	}
	snap := decodeLobbySnapshot(t, mustReceive(t, ch))
	if _, ok := snap.Rooms["r1"]; !ok {
		t.Fatalf("expected r1 in broadcast, got %v", snap.Rooms)
	}

	if err := lobby.Destroy("r1"); err != nil {
		t.Fatal(err)
	}
	snap = decodeLobbySnapshot(t, mustReceive(t, ch))
	if len(snap.Rooms) != 0 {
		t.Fatalf("expected empty room list in broadcast, got %v", snap.Rooms)
	}
}

func TestLobbyNoBroadcastOnFailedCreate(t *testing.T) {
	lobby := newTestLobby(t)
	if err := lobby.Create("r1", stubType); err != nil {
		t.Fatal(err)
	}

	ch := make(chan []byte, 4)
	lobby.Subscribe("watcher", ch)
	defer lobby.Unsubscribe("watcher")

	if err := lobby.Create("r1", stubType); err == nil {
		t.Fatal("expected duplicate create to fail")
	}
	mustNotReceive(t, ch)
}

func TestLobbyDispatch(t *testing.T) {
	lobby := newTestLobby(t)

	if err := lobby.Dispatch(json.RawMessage(`{"action":"create_room","room_name":"r1","room_type":"stub"}`)); err != nil {
		t.Fatalf("dispatch create_room: %v", err)
	}
	if err := lobby.Dispatch(json.RawMessage(`{"action":"destroy_room","room_name":"r1"}`)); err != nil {
		t.Fatalf("dispatch destroy_room: %v", err)
	}
	assertCode(t, lobby.Dispatch(json.RawMessage(`{"action":"dance"}`)), ErrCodeBadAction)
	assertCode(t, lobby.Dispatch(json.RawMessage(`not json`)), ErrCodeBadAction)
}

func TestLobbySnapshotShowsRoomRoster(t *testing.T) {
	lobby := newTestLobby(t)
	if err := lobby.Create("r1", stubType); err != nil {
		t.Fatal(err)
	}

	room, _ := lobby.Room("r1")
	if err := room.Join("alice"); err != nil {
		t.Fatal(err)
	}
	if err := room.Join("bob"); err != nil {
		t.Fatal(err)
	}

	snap := lobby.Snapshot()
	if want := []string{"alice", "bob"}; !slices.Equal(snap.Rooms["r1"].Players, want) {
		t.Fatalf("expected roster %v, got %v", want, snap.Rooms["r1"].Players)
	}
}

func TestLobbyDestroyOnEmptyExactlyOnce(t *testing.T) {
	lobby := newTestLobby(t)
	if err := lobby.Create("r1", stubType); err != nil {
		t.Fatal(err)
	}
	room, _ := lobby.Room("r1")

	room.Subscribe("conn-1", make(chan []byte, 1))
	room.Subscribe("conn-2", make(chan []byte, 1))

	if empty := room.Unsubscribe("conn-1"); empty {
		t.Fatal("room should not report empty yet")
	}
	if empty := room.Unsubscribe("conn-2"); !empty {
		t.Fatal("room should report empty")
	}

	if err := lobby.Destroy("r1"); err != nil {
		t.Fatalf("destroy after last disconnect: %v", err)
	}

	// A concurrent disconnect notification for the already-removed room
	// observes not_found and leaves the registry intact.
	assertCode(t, lobby.Destroy("r1"), ErrCodeNotFound)
	if n := len(lobby.Snapshot().Rooms); n != 0 {
		t.Fatalf("expected empty registry, got %d rooms", n)
	}
}

func TestLobbyConcurrentCreateDestroy(t *testing.T) {
	lobby := newTestLobby(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_ = lobby.Create("r1", stubType)
				_ = lobby.Destroy("r1")
			}
		}()
	}
	wg.Wait()

	// Whatever interleaving happened, the registry must still be coherent.
	snap := lobby.Snapshot()
	if n := len(snap.Rooms); n > 1 {
		t.Fatalf("registry corrupted: %d rooms named r1", n)
	}
}

func benchmarkRoomBroadcast(b *testing.B, subscribers int) {
	reg, _ := testRegistry(b)
	room := NewRoom("bench", stubType, reg, NewPalette(), nil, testLogger())

	for i := range subscribers {
		ch := make(chan []byte, 64)
		room.Subscribe(string(rune('a'+i%26))+string(rune('0'+i/26)), ch)
		go func(c chan []byte) {
			for range c {
			}
		}(ch)
	}

	if err := room.Join("alice"); err != nil {
		b.Fatal(err)
	}
	if err := room.Start(); err != nil {
		b.Fatal(err)
	}

	payload := json.RawMessage(`{"action":"poke"}`)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := room.Dispatch(payload); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
