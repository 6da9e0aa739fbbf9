// Package store persists room snapshots and hand history to a local SQLite
// database.
package store

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var instance *sql.DB

// Instance returns the process-wide database handle opened by LoadInstance;
// it panics if LoadInstance has not been called
func Instance() *sql.DB {
	if instance == nil {
		panic("store: LoadInstance must be called before Instance")
	}

	return instance
}

// LoadInstance opens the SQLite database at path and initializes its schema
func LoadInstance(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("could not ping database: %w", err)
	}

	instance = db

	return Init()
}

// Init creates the schema if it does not already exist
func Init() error {
	db := Instance()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			room_id TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			state BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS hands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id TEXT NOT NULL,
			hand_number INTEGER NOT NULL,
			pot_size INTEGER NOT NULL,
			winner_names TEXT NOT NULL,
			actions TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS player_stats (
			name TEXT PRIMARY KEY,
			hands_played INTEGER NOT NULL DEFAULT 0,
			hands_won INTEGER NOT NULL DEFAULT 0,
			total_profit INTEGER NOT NULL DEFAULT 0,
			biggest_pot INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS player_hand_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hand_id INTEGER NOT NULL REFERENCES hands(id),
			player_name TEXT NOT NULL,
			starting_stack INTEGER NOT NULL,
			ending_stack INTEGER NOT NULL,
			profit INTEGER NOT NULL,
			is_winner BOOLEAN NOT NULL,
			hole_cards TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS action_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hand_id INTEGER NOT NULL REFERENCES hands(id),
			player_name TEXT NOT NULL,
			action TEXT NOT NULL,
			amount INTEGER NOT NULL,
			phase TEXT NOT NULL,
			sequence INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hands_room_id ON hands(room_id)`,
		`CREATE INDEX IF NOT EXISTS idx_action_history_hand_id ON action_history(hand_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("could not run schema statement: %w", err)
		}
	}

	logrus.Debug("database schema initialized")

	return nil
}

// Scanner is an interface that sql should've provided
type Scanner interface {
	Scan(...interface{}) error
}
