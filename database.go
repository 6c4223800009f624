package main

import (
	"database/sql"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// MatchRecord is a completed match ready for persistence
type MatchRecord struct {
	ID          string
	Duration    float64 // seconds
	Winner      string  // nickname, empty on draw
	Draw        bool
	PlayerCount int
	Players     []MatchPlayerRecord
}

// MatchPlayerRecord is one participant's outcome in a match
type MatchPlayerRecord struct {
	Nickname     string
	LivesLeft    int
	Won          bool
	Disconnected bool
}

// StatsRow holds the per-nickname lifetime tallies
type StatsRow struct {
	Nickname string `json:"nickname"`
	Matches  int    `json:"matches"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
}

// LeaderboardEntry is one row of the winners board
type LeaderboardEntry struct {
	Nickname string `json:"nickname"`
	Wins     int    `json:"wins"`
	Matches  int    `json:"matches"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		duration REAL NOT NULL DEFAULT 0,
		winner TEXT NOT NULL DEFAULT '',
		draw INTEGER NOT NULL DEFAULT 0,
		player_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS match_players (
		match_id TEXT NOT NULL REFERENCES matches(id),
		nickname TEXT NOT NULL,
		lives_left INTEGER NOT NULL DEFAULT 0,
		won INTEGER NOT NULL DEFAULT 0,
		disconnected INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (match_id, nickname)
	);

	CREATE TABLE IF NOT EXISTS stats (
		nickname TEXT PRIMARY KEY,
		matches INTEGER NOT NULL DEFAULT 0,
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		draws INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		player_id TEXT,
		match_id TEXT,
		data TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_match_players_nickname ON match_players(nickname);
	CREATE INDEX IF NOT EXISTS idx_events_type ON analytics_events(event_type);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// GetSetting reads one settings value, empty string if absent
func (db *DB) GetSetting(key string) string {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return ""
	}
	return value
}

// SetSetting upserts one settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// RecordMatch persists a completed match and folds its outcome into the
// per-nickname stats, all in one transaction.
func (db *DB) RecordMatch(rec MatchRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	draw := 0
	if rec.Draw {
		draw = 1
	}
	_, err = tx.Exec(
		"INSERT INTO matches (id, duration, winner, draw, player_count, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Duration, rec.Winner, draw, rec.PlayerCount, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	for _, p := range rec.Players {
		won, disc := 0, 0
		if p.Won {
			won = 1
		}
		if p.Disconnected {
			disc = 1
		}
		_, err = tx.Exec(
			"INSERT INTO match_players (match_id, nickname, lives_left, won, disconnected) VALUES (?, ?, ?, ?, ?)",
			rec.ID, p.Nickname, p.LivesLeft, won, disc,
		)
		if err != nil {
			return err
		}

		wins, losses, draws := 0, 0, 0
		switch {
		case rec.Draw:
			draws = 1
		case p.Won:
			wins = 1
		default:
			losses = 1
		}
		_, err = tx.Exec(`
			INSERT INTO stats (nickname, matches, wins, losses, draws) VALUES (?, 1, ?, ?, ?)
			ON CONFLICT(nickname) DO UPDATE SET
				matches = matches + 1,
				wins = wins + excluded.wins,
				losses = losses + excluded.losses,
				draws = draws + excluded.draws`,
			p.Nickname, wins, losses, draws,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetStats returns the lifetime tallies for a nickname, nil if unseen
func (db *DB) GetStats(nickname string) (*StatsRow, error) {
	row := &StatsRow{Nickname: nickname}
	err := db.conn.QueryRow(
		"SELECT matches, wins, losses, draws FROM stats WHERE nickname = ?",
		nickname,
	).Scan(&row.Matches, &row.Wins, &row.Losses, &row.Draws)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// GetLeaderboard returns the top winners
func (db *DB) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := db.conn.Query(
		"SELECT nickname, wins, matches FROM stats ORDER BY wins DESC, matches ASC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Nickname, &e.Wins, &e.Matches); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
