package game

import "encoding/json"

// Game is the contract a pluggable game implements. A room owns at most one
// instance at a time and serializes all calls into it, so implementations do
// not need their own locking.
type Game interface {
	// Status is a short human-readable phase description, shown in the lobby.
	Status() string

	// State reports the current game state. It is marshaled into every room
	// snapshot, including the initial push to late-joining subscribers.
	State() any

	// Ended reports whether the game reached a terminal condition. A room
	// only replaces its game instance once the previous one has ended.
	Ended() bool

	// Action validates and applies one game-specific payload. On failure the
	// observable state must be unchanged.
	Action(payload json.RawMessage) error
}

// WinnerReporter is optionally implemented by games that can name a winner
// once ended. Used when recording finished games.
type WinnerReporter interface {
	Winner() (string, bool)
}
