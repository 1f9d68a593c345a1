package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultSQLiteFile = "plo_hands.db"

// NewSQLiteRecorder opens (and migrates) a pure-Go SQLite database for
// local/dev hand history, matching the teacher's no-cgo
// NewSQLiteServiceFromEnv pattern.
func NewSQLiteRecorder(path string) (Recorder, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultSQLiteFile
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &sqlRecorder{
		db:        db,
		cache:     newRecentCache(defaultTrackedTables, defaultPerTableRecent),
		insertSQL: sqliteInsertSQL,
	}, nil
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS hand_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    table_id TEXT NOT NULL,
    hand_id TEXT NOT NULL,
    small_blind INTEGER NOT NULL,
    big_blind INTEGER NOT NULL,
    played_at_ms INTEGER NOT NULL,
    dealer_seat INTEGER NOT NULL,
    payload_json TEXT NOT NULL,
    UNIQUE (table_id, hand_id)
)`)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_hand_history_recent ON hand_history(table_id, played_at_ms DESC)`)
	return err
}

func sqliteInsertSQL(int) string {
	return `INSERT OR REPLACE INTO hand_history
		(table_id, hand_id, small_blind, big_blind, played_at_ms, dealer_seat, payload_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
}
