package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/antonvlasov/gameroom-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_results (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	room       TEXT NOT NULL,
	game_type  TEXT NOT NULL,
	winner     TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	players    TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_game_results_room ON game_results(room);
`

// SQLiteStore implements store.ResultStore for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (and if necessary creates) the results database.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveResult appends one finished game.
func (s *SQLiteStore) SaveResult(ctx context.Context, res *store.GameResult) error {
	players, err := json.Marshal(res.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}

	query := `
		INSERT INTO game_results (room, game_type, winner, status, players)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		res.Room, res.GameType, res.Winner, res.Status, string(players))
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		res.ID = id
	}
	return nil
}

// ListResults returns recent results, newest first.
func (s *SQLiteStore) ListResults(ctx context.Context, room string, limit int) ([]store.GameResult, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, room, game_type, winner, status, players, created_at
		FROM game_results
		WHERE (? = '' OR room = ?)
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, room, room, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []store.GameResult
	for rows.Next() {
		var res store.GameResult
		var players string
		if err := rows.Scan(&res.ID, &res.Room, &res.GameType, &res.Winner,
			&res.Status, &players, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(players), &res.Players); err != nil {
			return nil, fmt.Errorf("unmarshal players: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
