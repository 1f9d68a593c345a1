// Package lobby is the TableManager/matchmaking pool the design notes
// treat as a minimal external collaborator: quick-start seating (resume,
// join, or create) and idle-table cleanup. It also implements
// transport.Router, translating a connection's decoded envelopes into
// table.Event submissions so internal/transport never needs to know
// about internal/table directly.
package lobby

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okihara/plo-game-sub001/engine"
	"github.com/okihara/plo-game-sub001/internal/broadcast"
	"github.com/okihara/plo-game-sub001/internal/history"
	"github.com/okihara/plo-game-sub001/internal/table"
	"github.com/okihara/plo-game-sub001/internal/transport"
)

const (
	defaultIdleTableTTL    = 60 * time.Second
	defaultCleanupInterval = 30 * time.Second
)

// Lobby owns every live table and decides which one a quick-starting
// player lands on.
type Lobby struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
	byUser map[uint64]string

	defaultConfig table.TableConfig
	recorder      history.Recorder
	admin         table.AdminAuthenticator

	idleTableTTL    time.Duration
	cleanupInterval time.Duration
	done            chan struct{}
	stopOnce        sync.Once
}

func New(cfg table.TableConfig, recorder history.Recorder, admin table.AdminAuthenticator) *Lobby {
	l := &Lobby{
		tables:          make(map[string]*table.Table),
		byUser:          make(map[uint64]string),
		defaultConfig:   cfg,
		recorder:        recorder,
		admin:           admin,
		idleTableTTL:    defaultIdleTableTTL,
		cleanupInterval: defaultCleanupInterval,
		done:            make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// QuickStart resumes the player's existing seat if any, else joins a
// table with a free chair, else creates a fresh one.
func (l *Lobby) QuickStart(userID uint64, send broadcast.Sender) (*table.Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id, ok := l.byUser[userID]; ok {
		if t, ok := l.tables[id]; ok && !t.IsClosed() {
			return t, nil
		}
		delete(l.byUser, userID)
	}

	for id, t := range l.tables {
		if t.IsClosed() {
			delete(l.tables, id)
			continue
		}
		snap := t.Snapshot()
		if len(snap.Players) < int(t.Config.MaxPlayers) {
			log.Printf("[Lobby] user %d joining table %s", userID, id)
			l.byUser[userID] = id
			return t, nil
		}
	}

	id := uuid.NewString()
	t, err := table.New(id, l.defaultConfig, send, l.recorder, l.admin)
	if err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	l.tables[id] = t
	l.byUser[userID] = id
	log.Printf("[Lobby] user %d created table %s", userID, id)
	return t, nil
}

// Route implements transport.Router: it resolves (or creates) the
// player's table for a join_table envelope, and forwards every other
// envelope (sit_down included) straight to the table the player is
// already bound to.
func (l *Lobby) Route(userID uint64, send func(uint64, []byte), env *transport.ClientEnvelope) (string, error) {
	if env.Type == transport.ClientJoinTable {
		t, err := l.QuickStart(userID, broadcast.Sender(send))
		if err != nil {
			return "", err
		}
		return t.ID, t.SubmitEvent(table.Event{Type: table.EventJoinTable, UserID: userID})
	}

	t := l.tableForUser(userID)
	if t == nil {
		return "", fmt.Errorf("user %d is not bound to a table", userID)
	}

	switch env.Type {
	case transport.ClientSitDown:
		if env.SitDown == nil {
			return t.ID, fmt.Errorf("sit_down requires a payload")
		}
		return t.ID, t.SubmitEvent(table.Event{
			Type:           table.EventSitDown,
			UserID:         userID,
			Nickname:       env.SitDown.Nickname,
			Amount:         env.SitDown.BuyIn,
			PreferredChair: env.SitDown.Chair,
		})
	case transport.ClientStandUp:
		return t.ID, t.SubmitEvent(table.Event{Type: table.EventStandUp, UserID: userID})
	case transport.ClientLeave:
		return t.ID, t.SubmitEvent(table.Event{Type: table.EventStandUp, UserID: userID})
	case transport.ClientAction:
		if env.Action == nil {
			return t.ID, fmt.Errorf("player_action requires a payload")
		}
		kind, ok := parseActionKind(env.Action.Action)
		if !ok {
			return t.ID, fmt.Errorf("unknown action %q", env.Action.Action)
		}
		return t.ID, t.SubmitEvent(table.Event{Type: table.EventAction, UserID: userID, Action: kind, Amount: env.Action.Amount})
	case transport.ClientEarlyFold:
		return t.ID, t.SubmitEvent(table.Event{Type: table.EventEarlyFold, UserID: userID})
	case transport.ClientAdminChips:
		if env.AdminChips == nil {
			return t.ID, fmt.Errorf("debug_set_chips requires a payload")
		}
		return t.ID, t.SubmitEvent(table.Event{
			Type:       table.EventAdminSetChips,
			UserID:     env.AdminChips.PlayerID,
			Amount:     env.AdminChips.Chips,
			AdminToken: env.AdminChips.Token,
		})
	default:
		return t.ID, fmt.Errorf("unhandled event type %q", env.Type)
	}
}

// Disconnect marks the player's seat offline rather than standing them up
// immediately, so a brief network blip does not fold a live hand (spec
// 7.2's offline-seat grace period, enforced by the table's own TTL tick).
func (l *Lobby) Disconnect(userID uint64) {
	t := l.tableForUser(userID)
	if t == nil {
		return
	}
	if err := t.SubmitEvent(table.Event{Type: table.EventConnLost, UserID: userID}); err != nil {
		log.Printf("[Lobby] conn-lost for user %d failed: %v", userID, err)
	}
}

func (l *Lobby) tableForUser(userID uint64) *table.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.byUser[userID]
	if !ok {
		return nil
	}
	return l.tables[id]
}

func parseActionKind(s string) (engine.ActionKind, bool) {
	switch s {
	case "check":
		return engine.ActionCheck, true
	case "bet":
		return engine.ActionBet, true
	case "call":
		return engine.ActionCall, true
	case "raise":
		return engine.ActionRaise, true
	case "fold":
		return engine.ActionFold, true
	case "allin":
		return engine.ActionAllin, true
	default:
		return engine.ActionNone, false
	}
}

// GetTable returns a table by ID, for admin/debug HTTP endpoints.
func (l *Lobby) GetTable(tableID string) *table.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tables[tableID]
}

// ListTables returns every live table ID.
func (l *Lobby) ListTables() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.tables))
	for id := range l.tables {
		ids = append(ids, id)
	}
	return ids
}

func (l *Lobby) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.CleanupIdleTables()
		case <-l.done:
			return
		}
	}
}

// CleanupIdleTables evicts any table that has no seated players when the
// sweep runs, or that already closed itself, returning how many it
// removed. IsIdleFor does not measure how long a table has been empty,
// so idleTableTTL does not delay eviction.
func (l *Lobby) CleanupIdleTables() int {
	l.mu.Lock()
	idle := make([]*table.Table, 0)
	for id, t := range l.tables {
		if t.IsClosed() || t.IsIdleFor(l.idleTableTTL) {
			delete(l.tables, id)
			idle = append(idle, t)
		}
	}
	for userID, id := range l.byUser {
		if _, ok := l.tables[id]; !ok {
			delete(l.byUser, userID)
		}
	}
	l.mu.Unlock()

	for _, t := range idle {
		t.Stop()
		log.Printf("[Lobby] removed idle/closed table %s", t.ID)
	}
	return len(idle)
}

// Stop shuts down lobby housekeeping and every remaining table.
func (l *Lobby) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
		l.mu.Lock()
		tables := make([]*table.Table, 0, len(l.tables))
		for _, t := range l.tables {
			tables = append(tables, t)
		}
		l.tables = make(map[string]*table.Table)
		l.byUser = make(map[uint64]string)
		l.mu.Unlock()
		for _, t := range tables {
			t.Stop()
		}
	})
}
