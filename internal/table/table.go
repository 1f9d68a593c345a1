// Package table implements TableInstance: the per-table actor that
// orchestrates seat lifecycle (internal/seatmgr), the pure PLO engine
// (engine), the acting-turn FSM (internal/action), silent folds
// (internal/fold), fire-and-forget persistence (internal/history), the
// read-only projection (internal/spectator), and the all-in runout
// sequencer (runout.go). Every mutation happens on a single goroutine
// driven by an inbox channel, exactly like the teacher's Table actor.
package table

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/okihara/plo-game-sub001/engine"
	"github.com/okihara/plo-game-sub001/internal/action"
	"github.com/okihara/plo-game-sub001/internal/broadcast"
	"github.com/okihara/plo-game-sub001/internal/fold"
	"github.com/okihara/plo-game-sub001/internal/history"
	"github.com/okihara/plo-game-sub001/internal/seatmgr"
	"github.com/okihara/plo-game-sub001/internal/spectator"
	"github.com/okihara/plo-game-sub001/internal/transport"
)

// Frozen spec constants not already owned by internal/action.
const (
	MaxPlayers                = 6
	MinPlayersToStart         = 3
	MinPlayersToStartFastFold = MaxPlayers
	DefaultBuyInMultiple      = 200 // DEFAULT_BUYIN = 200*bigBlind
	offlineSeatTTL            = 30 * time.Second
	tickInterval              = 500 * time.Millisecond
)

var (
	ErrTableClosed  = errors.New("table closed")
	ErrNotSeated    = errors.New("player not seated at this table")
	ErrUnauthorized = errors.New("admin credential rejected")
)

type TableConfig struct {
	MaxPlayers uint16
	SmallBlind int64
	BigBlind   int64
	MinBuyIn   int64
	MaxBuyIn   int64
	IsFastFold bool
}

func (c TableConfig) minPlayersToStart() int {
	if c.IsFastFold {
		return MinPlayersToStartFastFold
	}
	return MinPlayersToStart
}

// EventType enumerates every ingress the table actor will dispatch.
type EventType int

const (
	EventJoinTable EventType = iota
	EventSitDown
	EventStandUp
	EventAction
	EventEarlyFold
	EventConnLost
	EventConnResume
	EventAdminSetChips
	EventClose
)

// Event is one message in the actor's inbox. Response, if non-nil, is
// sent to once handling completes, turning SubmitEvent into a
// synchronous call from the caller's side.
type Event struct {
	Type           EventType
	UserID         uint64
	Nickname       string
	Chair          uint16
	PreferredChair *uint16
	Amount         int64
	Action         engine.ActionKind
	AdminToken     string
	Timestamp      time.Time
	Response       chan error
}

// AdminAuthenticator is the subset of internal/adminauth.Authenticator
// the table needs, kept as an interface so table never imports
// adminauth directly (auth decisions belong to the operator process).
type AdminAuthenticator interface {
	Authenticate(token string) bool
}

// Table is the TableInstance actor.
type Table struct {
	ID     string
	Config TableConfig

	mu       sync.Mutex
	game     *engine.Game
	seats    *seatmgr.Manager
	bus      *broadcast.Service
	act      *action.Controller
	recorder history.Recorder
	admin    AdminAuthenticator

	closed   bool
	stopOnce sync.Once
	events   chan Event
	done     chan struct{}

	round     uint32
	handID    string
	serverSeq uint64

	nextHandAt      time.Time
	handStartStacks map[uint16]int64
	lastSeen        map[uint64]time.Time

	runout                   *runoutState
	showdownSentDuringRunOut bool
	scheduled                []scheduledCallback

	equity         EquityEstimator
	allInEVProfits map[uint16]int64

	// onFastFoldReassign, when set, receives the survivors at hand end
	// instead of the table starting its own next hand; the actual
	// cross-table routing is an external collaborator per spec section 1.
	onFastFoldReassign func([]ReassignPlayer)
}

// ReassignPlayer is one seat handed to the Fast-Fold router at hand end.
type ReassignPlayer struct {
	ExternalID  uint64
	DisplayName string
	Chips       int64
}

func New(id string, cfg TableConfig, send broadcast.Sender, recorder history.Recorder, admin AdminAuthenticator) (*Table, error) {
	g, err := engine.NewGame(engine.Config{
		MaxPlayers: int(cfg.MaxPlayers),
		MinPlayers: 2,
		SmallBlind: cfg.SmallBlind,
		BigBlind:   cfg.BigBlind,
	})
	if err != nil {
		return nil, fmt.Errorf("new table %s: %w", id, err)
	}
	t := &Table{
		ID:              id,
		Config:          cfg,
		game:            g,
		seats:           seatmgr.New(cfg.MaxPlayers),
		bus:             broadcast.New(id, send),
		act:             action.New(),
		recorder:        recorder,
		admin:           admin,
		events:          make(chan Event, 64),
		done:            make(chan struct{}),
		handStartStacks: make(map[uint16]int64),
		lastSeen:        make(map[uint64]time.Time),
	}
	go t.run()
	return t, nil
}

// OnFastFoldReassign registers the router hook; must be set before the
// table starts handling events if IsFastFold is true.
func (t *Table) OnFastFoldReassign(fn func([]ReassignPlayer)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onFastFoldReassign = fn
}

func (t *Table) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case e := <-t.events:
			err := t.handleEvent(e)
			if e.Response != nil {
				e.Response <- err
			}
		case <-ticker.C:
			t.tick()
		case <-t.done:
			return
		}
	}
}

// SubmitEvent enqueues e and blocks until the actor has processed it.
func (t *Table) SubmitEvent(e Event) error {
	e.Timestamp = time.Now()
	resp := make(chan error, 1)
	e.Response = resp
	select {
	case t.events <- e:
	case <-t.done:
		return ErrTableClosed
	}
	select {
	case err := <-resp:
		return err
	case <-t.done:
		return ErrTableClosed
	}
}

func (t *Table) handleEvent(e Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed && e.Type != EventClose {
		return ErrTableClosed
	}
	switch e.Type {
	case EventJoinTable:
		return t.handleJoinTableLocked(e.UserID, e.Nickname)
	case EventSitDown:
		return t.handleSitDownLocked(e.UserID, e.Nickname, e.Chair, e.Amount, e.PreferredChair)
	case EventStandUp:
		return t.handleStandUpLocked(e.UserID)
	case EventAction:
		return t.handleActionLocked(e.UserID, e.Action, e.Amount)
	case EventEarlyFold:
		return t.handleEarlyFoldLocked(e.UserID)
	case EventConnLost:
		return t.handleConnLostLocked(e.UserID, e.Timestamp)
	case EventConnResume:
		return t.handleConnResumeLocked(e.UserID, e.Timestamp)
	case EventAdminSetChips:
		return t.handleAdminSetChipsLocked(e.AdminToken, e.UserID, e.Amount)
	case EventClose:
		t.closeLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type %d", e.Type)
	}
}

func (t *Table) handleJoinTableLocked(userID uint64, nickname string) error {
	if chair, ok := t.seats.ChairOf(userID); ok {
		t.bus.Join(userID)
		t.sendTableJoinedLocked(userID, chair)
		return nil
	}
	return t.handleSitDownLocked(userID, nickname, 0, t.Config.MaxBuyIn, nil)
}

func (t *Table) handleSitDownLocked(userID uint64, nickname string, chair uint16, buyIn int64, preferred *uint16) error {
	if buyIn < t.Config.MinBuyIn || buyIn > t.Config.MaxBuyIn {
		return fmt.Errorf("buy-in %d outside [%d,%d]", buyIn, t.Config.MinBuyIn, t.Config.MaxBuyIn)
	}
	snap := t.game.Snapshot()
	handInProgress := !snap.Ended && snap.Round > 0
	if preferred == nil && chair != 0 {
		preferred = &chair
	}
	assigned, err := t.seats.SeatPlayer(userID, nickname, buyIn, preferred, handInProgress)
	if err != nil {
		return err
	}
	if !handInProgress {
		if err := t.game.SitDown(assigned, userID, buyIn); err != nil {
			_, _ = t.seats.RemoveSeat(assigned)
			return err
		}
	}
	t.lastSeen[userID] = time.Now()
	t.bus.Join(userID)
	log.Printf("[Table %s] player %d seated at chair %d (buyIn=%d, waiting=%v)", t.ID, userID, assigned, buyIn, handInProgress)
	t.sendTableJoinedLocked(userID, assigned)
	t.broadcastStateLocked()
	t.maybeStartHandLocked()
	return nil
}

func (t *Table) handleStandUpLocked(userID uint64) error {
	chair, ok := t.seats.ChairOf(userID)
	if !ok {
		return ErrNotSeated
	}
	snap := t.game.Snapshot()
	if !snap.Ended && snap.Round > 0 && snap.ActionChair != engine.InvalidChair {
		// Hand in progress: route through the normal fold path if this
		// seat is the acting player, otherwise queue a pending early
		// fold so we don't leak that their hand was weak before their
		// turn (spec 4.9 unseatPlayer).
		if snap.ActionChair == chair {
			t.act.ClearPending()
			res, err := fold.ProcessFold(t.game, chair, true)
			if err != nil {
				log.Printf("[Table %s] stand-up fold for chair %d failed: %v", t.ID, chair, err)
			} else {
				t.broadcastActionTakenLocked(userID, chair, engine.ActionFold, 0)
				t.applyActResultLocked(res.ActResult)
			}
		} else {
			_ = t.act.SubmitEarlyFold(t.game, chair, userID)
		}
		if err := t.seats.MarkLeftForFastFold(chair); err != nil {
			return err
		}
		t.bus.Leave(userID)
		return nil
	}

	if err := t.game.StandUp(chair); err != nil {
		return err
	}
	if _, err := t.seats.RemoveSeat(chair); err != nil {
		return err
	}
	t.bus.Leave(userID)
	delete(t.lastSeen, userID)
	t.broadcastStateLocked()
	if t.seats.Count(true) < t.Config.minPlayersToStart() {
		t.nextHandAt = time.Time{}
	}
	return nil
}

func (t *Table) handleActionLocked(userID uint64, kind engine.ActionKind, amount int64) error {
	if t.runout != nil && t.runout.active {
		return action.ErrRunoutInProgress
	}
	chair, ok := t.seats.ChairOf(userID)
	if !ok {
		return ErrNotSeated
	}
	res, err := t.act.HandleAction(t.game, chair, kind, amount)
	if err != nil {
		// Spec 7.1: illegal/out-of-turn actions are logged and silently
		// rejected; the client learns from the next authoritative state.
		log.Printf("[Table %s] rejected action chair=%d kind=%v amount=%d: %v", t.ID, chair, kind, amount, err)
		return err
	}
	t.broadcastActionTakenLocked(userID, chair, kind, amount)
	t.applyActResultLocked(res)
	return nil
}

func (t *Table) handleEarlyFoldLocked(userID uint64) error {
	chair, ok := t.seats.ChairOf(userID)
	if !ok {
		return ErrNotSeated
	}
	return t.act.SubmitEarlyFold(t.game, chair, userID)
}

func (t *Table) handleConnLostLocked(userID uint64, ts time.Time) error {
	chair, ok := t.seats.ChairOf(userID)
	if !ok {
		return nil
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	t.seats.SetOnline(chair, false)
	t.lastSeen[userID] = ts
	return nil
}

func (t *Table) handleConnResumeLocked(userID uint64, ts time.Time) error {
	chair, ok := t.seats.ChairOf(userID)
	if !ok {
		return nil
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	t.seats.SetOnline(chair, true)
	t.lastSeen[userID] = ts
	t.bus.SocketEmit(userID, string(transport.ServerGameState), t.encodeStateFor(userID))
	return nil
}

func (t *Table) handleAdminSetChipsLocked(token string, userID uint64, chips int64) error {
	if t.admin == nil || !t.admin.Authenticate(token) {
		return ErrUnauthorized
	}
	chair, ok := t.seats.ChairOf(userID)
	if !ok {
		return ErrNotSeated
	}
	if err := spectator.SetChips(t.game, chair, chips); err != nil {
		return err
	}
	t.seats.UpdateChips(chair, chips)
	t.broadcastStateLocked()
	return nil
}

func (t *Table) closeLocked() {
	if t.closed {
		return
	}
	t.closed = true
	close(t.done)
}

func (t *Table) Stop() {
	t.stopOnce.Do(func() {
		_ = t.SubmitEvent(Event{Type: EventClose})
		if t.recorder != nil {
			_ = t.recorder.Close()
		}
	})
}

func (t *Table) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Table) Snapshot() engine.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.Snapshot()
}

func (t *Table) IsIdleFor(time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seats.Count(true) == 0
}

func (t *Table) nextSeq() uint64 {
	t.serverSeq++
	return t.serverSeq
}

func (t *Table) buildHandID() string {
	return fmt.Sprintf("%s-%d-%d", t.ID, t.round, time.Now().UnixNano())
}
