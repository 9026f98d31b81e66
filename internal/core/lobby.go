package core

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/antonvlasov/gameroom-server/internal/game"
	"github.com/antonvlasov/gameroom-server/internal/proto"
	"github.com/antonvlasov/gameroom-server/internal/store"
)

// Lobby is the process-wide registry of rooms plus the subscribers watching
// the room list. Constructed once at startup and handed to everything that
// needs it; lives for the process.
//
// Lock discipline: the lobby lock is never held while taking a room lock.
// Room snapshots are collected after releasing it.
type Lobby struct {
	games   *game.Registry
	palette *Palette
	results store.ResultStore // may be nil
	log     *zerolog.Logger

	mu       sync.Mutex
	rooms    map[string]*Room
	watchers map[string]chan<- []byte
}

// NewLobby builds an empty lobby over the given game registry.
func NewLobby(games *game.Registry, palette *Palette, results store.ResultStore, logger *zerolog.Logger) *Lobby {
	return &Lobby{
		games:    games,
		palette:  palette,
		results:  results,
		log:      logger,
		rooms:    make(map[string]*Room),
		watchers: make(map[string]chan<- []byte),
	}
}

// Create inserts a new empty room and broadcasts the updated room list.
func (l *Lobby) Create(roomName, roomType string) error {
	l.mu.Lock()
	if roomName == "" {
		l.mu.Unlock()
		return coreError(ErrCodeInvalidName, "can't create room without name")
	}
	if !l.games.Has(roomType) {
		l.mu.Unlock()
		return coreError(ErrCodeUnknownRoomType, "unknown room type "+roomType)
	}
	if _, exists := l.rooms[roomName]; exists {
		l.mu.Unlock()
		return coreError(ErrCodeAlreadyExists, "room already exists: "+roomName)
	}
	l.rooms[roomName] = NewRoom(roomName, roomType, l.games, l.palette, l.results, l.log)
	l.mu.Unlock()

	l.log.Info().Str("room", roomName).Str("type", roomType).Msg("room created")
	l.Broadcast()
	return nil
}

// Destroy removes a room and broadcasts the updated room list. Concurrent
// double-destroys are safe: the second caller gets a not_found error.
func (l *Lobby) Destroy(roomName string) error {
	l.mu.Lock()
	if _, exists := l.rooms[roomName]; !exists {
		l.mu.Unlock()
		return coreError(ErrCodeNotFound, "room does not exist: "+roomName)
	}
	delete(l.rooms, roomName)
	l.mu.Unlock()

	l.log.Info().Str("room", roomName).Msg("room destroyed")
	l.Broadcast()
	return nil
}

// Room looks up a room by name.
func (l *Lobby) Room(roomName string) (*Room, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rooms[roomName]
	return r, ok
}

// Snapshot maps each room name to its public summary.
func (l *Lobby) Snapshot() proto.LobbySnapshot {
	l.mu.Lock()
	rooms := make(map[string]*Room, len(l.rooms))
	for name, r := range l.rooms {
		rooms[name] = r
	}
	l.mu.Unlock()

	snap := proto.LobbySnapshot{Rooms: make(map[string]proto.RoomSummary, len(rooms))}
	for name, r := range rooms {
		snap.Rooms[name] = r.Summary()
	}
	return snap
}

// Subscribe registers an outbound channel for lobby broadcasts.
func (l *Lobby) Subscribe(id string, ch chan<- []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.watchers[id] = ch
}

// Unsubscribe removes a lobby subscriber.
func (l *Lobby) Unsubscribe(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.watchers, id)
}

// Broadcast pushes the current lobby snapshot to every watcher. Room actions
// call this too so the lobby's player counts stay current. Best effort: a
// full watcher channel is skipped.
func (l *Lobby) Broadcast() {
	data, err := json.Marshal(l.Snapshot())
	if err != nil {
		l.log.Warn().Err(err).Msg("marshal lobby snapshot")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for id, ch := range l.watchers {
		select {
		case ch <- data:
		default:
			l.log.Warn().Str("subscriber", id).Msg("dropping lobby update")
		}
	}
}

// Dispatch routes one inbound lobby action to create or destroy.
func (l *Lobby) Dispatch(payload json.RawMessage) error {
	var act proto.LobbyAction
	if err := json.Unmarshal(payload, &act); err != nil {
		return coreError(ErrCodeBadAction, "malformed action: "+err.Error())
	}

	switch act.Action {
	case proto.ActionCreateRoom:
		return l.Create(act.RoomName, act.RoomType)
	case proto.ActionDestroyRoom:
		return l.Destroy(act.RoomName)
	default:
		return coreError(ErrCodeBadAction, "unknown lobby action "+act.Action)
	}
}

// GameTypes returns the room-type tags rooms can be created with.
func (l *Lobby) GameTypes() []string {
	return l.games.Names()
}
