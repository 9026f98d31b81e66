package core

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/antonvlasov/gameroom-server/internal/game"
	"github.com/antonvlasov/gameroom-server/internal/proto"
	"github.com/antonvlasov/gameroom-server/internal/store"
)

// statusWaiting is shown in the lobby until a game has been started.
const statusWaiting = "waiting on players..."

// Room owns one room's roster, color assignments, active game instance and
// subscriber set. Every mutation and every broadcast happens under the room's
// single mutex, so subscribers observe state updates in the order mutations
// were accepted.
type Room struct {
	name string
	typ  string

	games   *game.Registry
	palette *Palette
	results store.ResultStore // may be nil
	log     *zerolog.Logger

	mu           sync.Mutex
	players      []string
	playerColors map[string]string
	game         game.Game
	subscribers  map[string]chan<- []byte
}

// NewRoom builds an empty room of the given type. The type tag must already
// be validated against the game registry.
func NewRoom(name, typ string, games *game.Registry, palette *Palette, results store.ResultStore, logger *zerolog.Logger) *Room {
	l := logger.With().Str("room", name).Logger()
	return &Room{
		name:         name,
		typ:          typ,
		games:        games,
		palette:      palette,
		results:      results,
		log:          &l,
		playerColors: make(map[string]string),
		subscribers:  make(map[string]chan<- []byte),
	}
}

// Name returns the room's registry name.
func (r *Room) Name() string {
	return r.name
}

// Subscribe registers an outbound channel for state broadcasts.
func (r *Room) Subscribe(id string, ch chan<- []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers[id] = ch
}

// Unsubscribe removes a subscriber and reports whether the room is now
// empty, so the caller can ask the lobby to destroy it.
func (r *Room) Unsubscribe(id string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscribers, id)
	return len(r.subscribers) == 0
}

// Join adds a player to the roster and assigns a color. Joining twice with
// the same name is a no-op.
func (r *Room) Join(name string) error {
	return r.apply(func() error { return r.joinLocked(name) })
}

// Start begins a new game with the current roster. If a game is already in
// play it does nothing: players mash the start button.
func (r *Room) Start() error {
	return r.apply(r.startLocked)
}

// Dispatch routes one inbound action: join_game and start_game are handled by
// the room itself, everything else goes to the active game. On success the
// updated room snapshot is broadcast to all subscribers; on failure nothing
// is sent.
func (r *Room) Dispatch(payload json.RawMessage) error {
	return r.apply(func() error { return r.dispatchLocked(payload) })
}

// Snapshot returns the full room state for broadcasting.
func (r *Room) Snapshot() proto.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Summary is the lobby's view of this room.
func (r *Room) Summary() proto.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := statusWaiting
	if r.game != nil {
		status = r.game.Status()
	}
	return proto.RoomSummary{
		Type:    r.typ,
		Players: slices.Clone(r.players),
		Status:  status,
	}
}

// apply runs one mutation under the lock and, if it succeeds, broadcasts the
// resulting snapshot. A game that just reached its end is archived outside
// the lock.
func (r *Room) apply(fn func() error) error {
	r.mu.Lock()
	wasEnded := r.game != nil && r.game.Ended()

	if err := fn(); err != nil {
		r.mu.Unlock()
		return err
	}

	r.broadcastLocked()
	res := r.finishedLocked(wasEnded)
	r.mu.Unlock()

	if res != nil {
		go r.record(res)
	}
	return nil
}

func (r *Room) joinLocked(name string) error {
	if name == "" {
		return coreError(ErrCodeInvalidName, "player name must not be empty")
	}
	if _, ok := r.playerColors[name]; ok {
		return nil
	}
	r.players = append(r.players, name)
	r.playerColors[name] = r.palette.Next()
	r.log.Info().Str("player", name).Msg("player joined")
	return nil
}

func (r *Room) startLocked() error {
	if r.game != nil && !r.game.Ended() {
		return nil
	}
	g, err := r.games.Create(r.typ, slices.Clone(r.players))
	if err != nil {
		return err
	}
	r.game = g
	r.log.Info().Str("type", r.typ).Int("players", len(r.players)).Msg("game started")
	return nil
}

func (r *Room) dispatchLocked(payload json.RawMessage) error {
	var env proto.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return coreError(ErrCodeBadAction, "malformed action: "+err.Error())
	}

	switch env.Action {
	case proto.ActionJoinGame:
		var act proto.RoomAction
		if err := json.Unmarshal(payload, &act); err != nil {
			return coreError(ErrCodeBadAction, "malformed join_game: "+err.Error())
		}
		return r.joinLocked(act.Name)
	case proto.ActionStartGame:
		return r.startLocked()
	default:
		if r.game == nil {
			return coreError(ErrCodeNoActiveGame, "no active game in room "+r.name)
		}
		return r.game.Action(payload)
	}
}

func (r *Room) snapshotLocked() proto.RoomSnapshot {
	snap := proto.RoomSnapshot{
		Players:      slices.Clone(r.players),
		PlayerColors: maps.Clone(r.playerColors),
	}
	if r.game != nil {
		data, err := json.Marshal(r.game.State())
		if err != nil {
			r.log.Warn().Err(err).Msg("marshal game state")
		} else {
			snap.Game = data
		}
	}
	return snap
}

func (r *Room) broadcastLocked() {
	data, err := json.Marshal(r.snapshotLocked())
	if err != nil {
		r.log.Warn().Err(err).Msg("marshal room snapshot")
		return
	}
	for id, ch := range r.subscribers {
		select {
		case ch <- data:
		default:
			// Slow consumer, drop. The next broadcast carries full state.
			r.log.Warn().Str("subscriber", id).Msg("dropping room update")
		}
	}
}

// finishedLocked returns an archive record when the active game transitioned
// to ended during this mutation, nil otherwise.
func (r *Room) finishedLocked(wasEnded bool) *store.GameResult {
	if r.results == nil || r.game == nil || wasEnded || !r.game.Ended() {
		return nil
	}
	res := &store.GameResult{
		Room:     r.name,
		GameType: r.typ,
		Status:   r.game.Status(),
		Players:  slices.Clone(r.players),
	}
	if w, ok := r.game.(game.WinnerReporter); ok {
		if winner, found := w.Winner(); found {
			res.Winner = winner
		}
	}
	return res
}

func (r *Room) record(res *store.GameResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := r.results.SaveResult(ctx, res); err != nil {
		r.log.Warn().Err(err).Msg("failed to record game result")
		return
	}
	r.log.Info().Str("winner", res.Winner).Msg("game result recorded")
}
