package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// NewPostgresRecorder opens a Postgres-backed recorder for production
// deployments, matching the teacher's lib/pq PostgresService.
func NewPostgresRecorder(dsn string) (Recorder, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensurePostgresSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &sqlRecorder{
		db:        db,
		cache:     newRecentCache(defaultTrackedTables, defaultPerTableRecent),
		insertSQL: postgresInsertSQL,
	}, nil
}

func ensurePostgresSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS hand_history (
    id BIGSERIAL PRIMARY KEY,
    table_id TEXT NOT NULL,
    hand_id TEXT NOT NULL,
    small_blind BIGINT NOT NULL,
    big_blind BIGINT NOT NULL,
    played_at_ms BIGINT NOT NULL,
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

func postgresInsertSQL(int) string {
	return `INSERT INTO hand_history
		(table_id, hand_id, small_blind, big_blind, played_at_ms, dealer_seat, payload_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (table_id, hand_id) DO UPDATE SET payload_json = EXCLUDED.payload_json`
}
