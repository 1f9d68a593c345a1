package table

import (
	"log"
	"time"

	"github.com/okihara/plo-game-sub001/internal/action"
	"github.com/okihara/plo-game-sub001/internal/transport"
)

// runoutState tracks an in-progress all-in runout: every contender is
// either folded or all-in, so no one can act and the remaining streets
// are dealt automatically, each paced by RunoutStreetDelay (1.5x before
// the river) instead of landing on the client all at once (spec 4.7).
type runoutState struct {
	active     bool
	nextDealAt time.Time
}

// startRunoutLocked is entered once, right after the street that left no
// one able to act. It sends the all-in reveal exactly once before the
// first automatic street, then schedules the first paced deal.
func (t *Table) startRunoutLocked() {
	t.runout = &runoutState{active: true}
	t.showdownSentDuringRunOut = true
	t.snapshotAllInEVLocked()
	t.broadcastAllInRevealLocked()
	t.scheduleNextRunoutDealLocked()
}

// broadcastAllInRevealLocked shows every live (non-folded) hand face up
// once the runout begins; Winners is left empty since the hand is still
// in progress, reusing the showdown wire event per the design notes.
func (t *Table) broadcastAllInRevealLocked() {
	snap := t.game.Snapshot()
	env := t.baseEnvelope(transport.ServerShowdown)
	payload := &transport.ShowdownPayload{}
	for _, ps := range snap.Players {
		if ps.Folded {
			continue
		}
		payload.Players = append(payload.Players, transport.ShowdownPlayer{
			Chair:    ps.Chair,
			PlayerID: ps.ID,
			Cards:    renderCardStrings(ps.HandCards),
		})
	}
	env.Showdown = payload
	t.emit(env, 0, true)
}

func (t *Table) scheduleNextRunoutDealLocked() {
	if t.runout == nil {
		return
	}
	delay := action.RunoutStreetDelay
	// 1.5x pacing before the river gives the final card extra weight, a
	// deliberate beat the client relies on for the big reveal.
	if t.isPenultimateRunoutStreetLocked() {
		delay = delay * 3 / 2
	}
	t.runout.nextDealAt = time.Now().Add(delay)
}

func (t *Table) isPenultimateRunoutStreetLocked() bool {
	snap := t.game.Snapshot()
	return len(snap.CommunityCards) == 4 // turn dealt, river still to come
}

// advanceRunoutLocked is polled every tick; it fires the next automatic
// street once its pacing delay has elapsed.
func (t *Table) advanceRunoutLocked(now time.Time) {
	if t.runout == nil || !t.runout.active {
		return
	}
	if now.Before(t.runout.nextDealAt) {
		return
	}
	res, err := t.game.AdvanceRunoutStreet()
	if err != nil {
		log.Printf("[Table %s] runout advance failed: %v", t.ID, err)
		t.runout = nil
		return
	}
	t.broadcastStateLocked()
	if res.HandComplete {
		t.runout = nil
		t.completeHandLocked(res.Settlement)
		return
	}
	if res.AwaitingRunout {
		t.scheduleNextRunoutDealLocked()
		return
	}
	t.runout = nil
}
