package store

import (
	"context"
	"time"
)

// GameResult is one finished game, recorded when a room's game ends.
type GameResult struct {
	ID        int64
	Room      string
	GameType  string
	Winner    string // empty if the game did not report one
	Status    string
	Players   []string
	CreatedAt time.Time
}

// ResultStore archives finished games. Live room and game state is never
// persisted; this is an append-only history.
type ResultStore interface {
	SaveResult(ctx context.Context, res *GameResult) error

	// ListResults returns the most recent results, newest first. An empty
	// room filters nothing.
	ListResults(ctx context.Context, room string, limit int) ([]GameResult, error)

	Close() error
}
