package history

import (
	"log"
	"os"
	"strings"
)

// NewRecorderFromEnv mirrors the teacher's ledger.NewServiceFromEnv mode
// selection: HISTORY_DATABASE_URL (postgres) takes priority, then
// HISTORY_SQLITE_PATH (local/dev), then an in-memory-only fallback with
// no persistence beyond the recent-hands cache.
func NewRecorderFromEnv() (Recorder, string, error) {
	if dsn := strings.TrimSpace(os.Getenv("HISTORY_DATABASE_URL")); dsn != "" {
		rec, err := NewPostgresRecorder(dsn)
		if err != nil {
			return nil, "", err
		}
		return rec, "postgres", nil
	}
	if path := strings.TrimSpace(os.Getenv("HISTORY_SQLITE_PATH")); path != "" {
		rec, err := NewSQLiteRecorder(path)
		if err != nil {
			return nil, "", err
		}
		return rec, "sqlite:" + path, nil
	}
	log.Printf("[History] no HISTORY_DATABASE_URL/HISTORY_SQLITE_PATH set, using in-memory-only recorder")
	return &noopRecorder{cache: newRecentCache(defaultTrackedTables, defaultPerTableRecent)}, "memory-noop", nil
}
