// Package action is the ActionController: the acting-turn FSM. It
// computes pot-limit valid-action bounds (delegating the actual bound
// math to engine.GetValidActions), tracks the single outstanding
// per-turn timer, and holds the early-fold side channel.
package action

import (
	"errors"
	"time"

	"github.com/okihara/plo-game-sub001/engine"
)

// Frozen pacing constants (spec section 6).
const (
	ActionTimeout        = 20 * time.Second
	ActionAnimationDelay = 1200 * time.Millisecond
	StreetTransitionDelay = 800 * time.Millisecond
	ShowdownDelay        = 2000 * time.Millisecond
	HandCompleteDelay    = 2000 * time.Millisecond
	NextHandDelay        = 2000 * time.Millisecond
	NextHandShowdownDelay = 5000 * time.Millisecond
	RunoutStreetDelay    = 1500 * time.Millisecond
)

var (
	ErrNoPendingAction  = errors.New("no pending action for this seat")
	ErrNotActingSeat    = errors.New("seat is not the acting player")
	ErrRunoutInProgress = errors.New("all-in runout in progress")
	ErrEarlyFoldForbidden = errors.New("big blind cannot early-fold a live option")
)

// PendingAction mirrors the spec's PendingAction record: the acting seat,
// its legal actions this turn, and when the clock on it started.
type PendingAction struct {
	Chair       uint16
	PlayerID    uint64
	Valid       []engine.ValidAction
	RequestedAt time.Time
	Deadline    time.Time
}

// Controller holds the single live pendingAction/timer for one table and
// the pendingEarlyFolds side channel. It never talks to a transport
// directly; internal/table reads its state to decide what to broadcast.
type Controller struct {
	pending *PendingAction

	// pendingEarlyFolds maps chair -> external player id for folds
	// submitted before that seat's turn arrived.
	pendingEarlyFolds map[uint16]uint64
}

func New() *Controller {
	return &Controller{pendingEarlyFolds: make(map[uint16]uint64)}
}

// RequestNextAction computes validActions for chair and opens the
// timeout clock. The caller (internal/table) is responsible for sending
// game:action_required with the returned PendingAction.
func (c *Controller) RequestNextAction(g *engine.Game, chair uint16, playerID uint64, now time.Time) (*PendingAction, error) {
	valid, err := g.GetValidActions(chair)
	if err != nil {
		return nil, err
	}
	pa := &PendingAction{
		Chair:       chair,
		PlayerID:    playerID,
		Valid:       valid,
		RequestedAt: now,
		Deadline:    now.Add(ActionTimeout),
	}
	c.pending = pa
	return pa, nil
}

// ClearPending cancels the outstanding per-turn timer. Every new action,
// fold, or street transition must call this before doing anything else.
func (c *Controller) ClearPending() {
	c.pending = nil
}

func (c *Controller) Pending() *PendingAction {
	return c.pending
}

// HandleAction validates that chair is the current actor and the
// requested kind/amount is within the computed bounds, then applies it.
// Per the spec's error taxonomy, an illegal/out-of-turn action is a
// silent rejection: the caller gets an error to log, not a client event.
func (c *Controller) HandleAction(g *engine.Game, chair uint16, kind engine.ActionKind, amount int64) (*engine.ActResult, error) {
	if c.pending == nil || c.pending.Chair != chair {
		return nil, ErrNotActingSeat
	}
	valid, err := g.GetValidActions(chair)
	if err != nil {
		return nil, err
	}
	var bound *engine.ValidAction
	for i := range valid {
		if valid[i].Kind == kind {
			bound = &valid[i]
			break
		}
	}
	if bound == nil {
		return nil, ErrNoPendingAction
	}
	if amount < bound.MinAmount || amount > bound.MaxAmount {
		return nil, ErrNoPendingAction
	}
	c.ClearPending()
	return g.Act(chair, kind, amount)
}

// PickTimeoutAction implements the spec's downgrade policy: check when
// legal, else fold. There is no separate Fast-Fold timeout hook: on a
// Fast-Fold table the folded seat reaches the router, with every other
// remaining seat, through internal/table's onFastFoldReassign at hand end.
func PickTimeoutAction(valid []engine.ValidAction) (engine.ActionKind, int64) {
	for _, v := range valid {
		if v.Kind == engine.ActionCheck {
			return engine.ActionCheck, 0
		}
	}
	for _, v := range valid {
		if v.Kind == engine.ActionFold {
			return engine.ActionFold, 0
		}
	}
	if len(valid) > 0 {
		return valid[0].Kind, valid[0].MinAmount
	}
	return engine.ActionFold, 0
}

// SubmitEarlyFold records a fold for a seat before its turn. The
// preflop big blind is forbidden from early-folding since they still
// hold the option to check a limped pot (spec 4.5/8).
func (c *Controller) SubmitEarlyFold(g *engine.Game, chair uint16, playerID uint64) error {
	if g.Street() == engine.StreetPreflop {
		snap := g.Snapshot()
		if snap.BigBlindChair == chair {
			return ErrEarlyFoldForbidden
		}
	}
	c.pendingEarlyFolds[chair] = playerID
	return nil
}

// PopEarlyFold returns and clears a pending early fold for chair, if any.
func (c *Controller) PopEarlyFold(chair uint16) (uint64, bool) {
	playerID, ok := c.pendingEarlyFolds[chair]
	if ok {
		delete(c.pendingEarlyFolds, chair)
	}
	return playerID, ok
}

func (c *Controller) DiscardEarlyFold(chair uint16) {
	delete(c.pendingEarlyFolds, chair)
}
