// Package history implements the HandHistoryRecorder: fire-and-forget
// persistence of a completed hand, with a bounded in-process cache of
// recent summaries so spectator/admin tooling can answer "last N hands"
// without a database round trip.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okihara/plo-game-sub001/engine"
)

// PlayerSnapshot is one seat's recorded outcome within a hand.
type PlayerSnapshot struct {
	ExternalID     uint64 `json:"externalId"`
	StartingChips  int64  `json:"startingChips"`
	HoleCards      []string `json:"holeCards,omitempty"`
	FinishingChips int64  `json:"finishingChips"`
	Profit         int64  `json:"profit"`
	AllInEVProfit  *int64 `json:"allInEvProfit,omitempty"`
}

// Record is one completed hand, schema-opaque to engine/table per spec
// section 6 ("Persisted state... Schema is opaque to the core").
type Record struct {
	TableID    string           `json:"tableId"`
	HandID     string           `json:"handId"`
	SmallBlind int64            `json:"smallBlind"`
	BigBlind   int64            `json:"bigBlind"`
	PlayedAt   time.Time        `json:"playedAt"`
	DealerSeat uint16           `json:"dealerSeat"`
	ActionLog  []engine.HandHistoryEntry `json:"actionLog"`
	Board      []string         `json:"board"`
	Players    []PlayerSnapshot `json:"players"`
}

// Summary returns the humanized one-line description cached for fast
// "recent hands" lookups without re-parsing the full record.
func (r Record) Summary() string {
	var pot int64
	for _, p := range r.Players {
		if p.Profit > 0 {
			pot += p.Profit
		}
	}
	return fmt.Sprintf("hand %s %s: pot %s chips, %d players", r.HandID, humanize.Time(r.PlayedAt), humanize.Comma(pot), len(r.Players))
}

// Recorder persists completed hands. Persistence is always invoked
// fire-and-forget from internal/table; failures are logged and dropped,
// never propagated back into the hand lifecycle (spec section 7.4).
type Recorder interface {
	Record(rec Record)
	Recent(tableID string, limit int) []Record
	Close() error
}

// noopRecorder is used when no database is configured; it still serves
// the in-memory recent cache so spectator tooling keeps working.
type noopRecorder struct {
	cache *recentCache
}

func (n *noopRecorder) Record(rec Record) {
	n.cache.add(rec)
}
func (n *noopRecorder) Recent(tableID string, limit int) []Record { return n.cache.recent(tableID, limit) }
func (n *noopRecorder) Close() error                              { return nil }

// recentCache is the hashicorp LRU-backed bounded window of recently
// persisted hands, generalizing the teacher's ledger.Service
// recentLimit/savedLimit raw-slice approach into an actual LRU keyed by
// table id.
type recentCache struct {
	perTable *lru.Cache[string, []Record]
	cap      int
}

func newRecentCache(tables, perTableCap int) *recentCache {
	c, err := lru.New[string, []Record](tables)
	if err != nil {
		// Only returns an error for a non-positive size, which never
		// happens given the constant below; a one-entry fallback keeps
		// the recorder usable without crashing the process.
		c, _ = lru.New[string, []Record](1)
	}
	return &recentCache{perTable: c, cap: perTableCap}
}

func (c *recentCache) add(rec Record) {
	existing, _ := c.perTable.Get(rec.TableID)
	existing = append(existing, rec)
	if len(existing) > c.cap {
		existing = existing[len(existing)-c.cap:]
	}
	c.perTable.Add(rec.TableID, existing)
}

func (c *recentCache) recent(tableID string, limit int) []Record {
	existing, ok := c.perTable.Get(tableID)
	if !ok {
		return nil
	}
	if limit <= 0 || limit > len(existing) {
		limit = len(existing)
	}
	out := make([]Record, limit)
	copy(out, existing[len(existing)-limit:])
	return out
}

const (
	defaultTrackedTables  = 256
	defaultPerTableRecent = 50
)

// sqlRecorder persists through database/sql; the dialect differences
// between sqlite (?) and postgres ($1, $2, ...) are handled by the two
// constructors in sqlite.go and postgres.go, which each supply their own
// insert statement.
type sqlRecorder struct {
	db        *sql.DB
	cache     *recentCache
	insertSQL func(n int) string
}

func (s *sqlRecorder) Record(rec Record) {
	s.cache.add(rec)
	// Fire-and-forget: the table actor must never block on a write.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[History] panic persisting hand %s: %v", rec.HandID, r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.insert(ctx, rec); err != nil {
			log.Printf("[History] persist hand %s failed (dropped): %v", rec.HandID, err)
		}
	}()
}

func (s *sqlRecorder) insert(ctx context.Context, rec Record) error {
	actionLog, err := json.Marshal(rec.ActionLog)
	if err != nil {
		return err
	}
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return err
	}
	board, err := json.Marshal(rec.Board)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.insertSQL(7),
		rec.TableID, rec.HandID, rec.SmallBlind, rec.BigBlind,
		rec.PlayedAt.UnixMilli(), rec.DealerSeat, actionLogPack(actionLog, board, players))
	return err
}

// actionLogPack folds the three JSON blobs into a single payload column;
// callers that need individual columns should extend the schema rather
// than re-split this, since the core treats the schema as opaque.
func actionLogPack(actionLog, board, players []byte) string {
	blob := struct {
		ActionLog json.RawMessage `json:"actionLog"`
		Board     json.RawMessage `json:"board"`
		Players   json.RawMessage `json:"players"`
	}{actionLog, board, players}
	out, _ := json.Marshal(blob)
	return string(out)
}

func (s *sqlRecorder) Recent(tableID string, limit int) []Record {
	return s.cache.recent(tableID, limit)
}

func (s *sqlRecorder) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

