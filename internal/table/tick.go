package table

import (
	"log"
	"time"

	"github.com/okihara/plo-game-sub001/internal/action"
)

// tick is the actor's 500ms re-poll: it fires due scheduled callbacks,
// downgrades a timed-out action, evicts offline seats past their TTL,
// advances an in-progress runout, and starts the next hand once its
// delay has elapsed. Every check re-reads current state first, since
// anything here may have been overtaken by an event processed between
// ticks.
func (t *Table) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	now := time.Now()
	t.runScheduledLocked(now)
	t.handleActionTimeoutLocked(now)
	t.releaseOfflineSeatsLocked(now)
	t.advanceRunoutLocked(now)
	if !t.nextHandAt.IsZero() && !now.Before(t.nextHandAt) {
		t.maybeStartHandLocked()
	}
}

func (t *Table) handleActionTimeoutLocked(now time.Time) {
	pending := t.act.Pending()
	if pending == nil || now.Before(pending.Deadline) {
		return
	}
	chair := pending.Chair
	userID := pending.PlayerID
	snap := t.game.Snapshot()
	if snap.ActionChair != chair {
		t.act.ClearPending()
		return
	}
	valid, err := t.game.GetValidActions(chair)
	if err != nil {
		t.act.ClearPending()
		log.Printf("[Table %s] timeout valid-actions failed chair=%d: %v", t.ID, chair, err)
		return
	}
	kind, amount := action.PickTimeoutAction(valid)
	t.act.ClearPending()
	log.Printf("[Table %s] action timeout chair=%d user=%d -> auto %v amount=%d", t.ID, chair, userID, kind, amount)
	res, err := t.game.Act(chair, kind, amount)
	if err != nil {
		log.Printf("[Table %s] timeout auto-action failed chair=%d: %v", t.ID, chair, err)
		return
	}
	t.broadcastActionTakenLocked(userID, chair, kind, amount)
	// On a Fast-Fold table a seat that timed out into a fold stays seated;
	// once the hand ends, sweepAfterHandLocked's reassignment branch hands
	// it to onFastFoldReassign along with every other remaining seat.
	t.applyActResultLocked(res)
}

func (t *Table) releaseOfflineSeatsLocked(now time.Time) {
	for _, s := range t.seats.All() {
		if s.HasTransport {
			continue
		}
		last, ok := t.lastSeen[s.ExternalID]
		if !ok {
			continue
		}
		if now.Sub(last) < offlineSeatTTL {
			continue
		}
		if err := t.handleStandUpLocked(s.ExternalID); err != nil {
			t.lastSeen[s.ExternalID] = now // throttle retries
			log.Printf("[Table %s] auto-standup failed for offline user %d: %v", t.ID, s.ExternalID, err)
			continue
		}
		log.Printf("[Table %s] auto-stood offline user %d after %s", t.ID, s.ExternalID, offlineSeatTTL)
	}
}
