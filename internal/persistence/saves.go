// Package persistence stores in-flight games in SQLite.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"holdco/internal/game"
)

// DB wraps a SQLite connection holding one JSON document per game.
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

var _ game.GameStore = (*DB)(nil)

type saveRow struct {
	ID        string `db:"id"`
	Round     int    `db:"round"`
	Bankrupt  bool   `db:"bankrupt"`
	StateJSON string `db:"state_json"`
	UpdatedAt int64  `db:"updated_at"`
}

// SaveSummary is one line of the saved-games listing.
type SaveSummary struct {
	ID        string    `json:"id"`
	Round     int       `json:"round"`
	Bankrupt  bool      `json:"bankrupt"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open opens or creates a SQLite database at path. ":memory:" is accepted.
func Open(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("create saves dir: %w", err)
			}
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		round INTEGER NOT NULL,
		bankrupt INTEGER NOT NULL,
		state_json TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_games_updated ON games(updated_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

func (db *DB) GetGame(ctx context.Context, id string) (game.GameState, error) {
	var row saveRow
	err := db.conn.GetContext(ctx, &row, "SELECT id, round, bankrupt, state_json, updated_at FROM games WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return game.GameState{}, game.ErrGameNotFound
	}
	if err != nil {
		return game.GameState{}, fmt.Errorf("load game %s: %w", id, err)
	}
	var state game.GameState
	if err := json.Unmarshal([]byte(row.StateJSON), &state); err != nil {
		return game.GameState{}, fmt.Errorf("decode game %s: %w", id, err)
	}
	return game.NormalizeState(state), nil
}

func (db *DB) PutGame(ctx context.Context, state game.GameState) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", state.ID, err)
	}
	_, err = db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO games (id, round, bankrupt, state_json, updated_at) VALUES (?, ?, ?, ?, ?)",
		state.ID, state.Round, state.BankruptRound > 0, string(body), db.now().Unix(),
	)
	return err
}

// ListGames returns the most recently played saves first.
func (db *DB) ListGames(ctx context.Context, limit int) ([]SaveSummary, error) {
	var rows []saveRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT id, round, bankrupt, '' AS state_json, updated_at FROM games ORDER BY updated_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	out := make([]SaveSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, SaveSummary{ID: r.ID, Round: r.Round, Bankrupt: r.Bankrupt, UpdatedAt: time.Unix(r.UpdatedAt, 0).UTC()})
	}
	return out, nil
}

// DeleteGame removes a save; deleting a missing game is not an error.
func (db *DB) DeleteGame(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM games WHERE id = ?", id)
	return err
}
