package table

import (
	"log"
	"time"

	"github.com/okihara/plo-game-sub001/engine"
	"github.com/okihara/plo-game-sub001/internal/action"
	"github.com/okihara/plo-game-sub001/internal/history"
)

// maybeStartHandLocked begins a hand when the table is eligible: enough
// seated players (spec's MIN_PLAYERS_TO_START, which is 6 on a
// Fast-Fold table) and no hand already running. It never self-schedules
// retries; the caller (sit-down, tick) is expected to call it
// whenever table membership or time has moved.
func (t *Table) maybeStartHandLocked() {
	if t.closed {
		return
	}
	if t.seats.Count(false) < t.Config.minPlayersToStart() {
		return
	}
	if !t.nextHandAt.IsZero() && time.Now().Before(t.nextHandAt) {
		return
	}
	snap := t.game.Snapshot()
	if snap.Round > 0 && !snap.Ended {
		return // hand already in progress
	}
	t.startHandLocked()
}

func (t *Table) startHandLocked() {
	t.nextHandAt = time.Time{}
	t.act.ClearPending()
	for _, s := range t.seats.All() {
		if !s.WaitingForNextHand {
			continue
		}
		if err := t.game.SitDown(s.Chair, s.ExternalID, s.Chips); err != nil {
			log.Printf("[Table %s] seating waiting player %d at chair %d failed: %v", t.ID, s.ExternalID, s.Chair, err)
		}
	}
	t.seats.ClearWaiting()
	t.showdownSentDuringRunOut = false
	t.allInEVProfits = nil

	before := t.game.Snapshot()
	t.handStartStacks = make(map[uint16]int64, len(before.Players))
	for _, ps := range before.Players {
		t.handStartStacks[ps.Chair] = ps.Stack
	}

	if err := t.game.StartNewHand(); err != nil {
		log.Printf("[Table %s] StartNewHand failed: %v", t.ID, err)
		return
	}
	t.round++
	t.handID = t.buildHandID()

	if t.game.NeedsImmediateRunout() {
		// Every contender already shoved their blind: no one can act at
		// all, so go straight to the board per spec 4.2's startNewHand
		// contract ("If no one can act... immediately deal the board").
		res, err := t.game.ForceRunoutFromPreflop()
		if err != nil {
			log.Printf("[Table %s] ForceRunoutFromPreflop failed: %v", t.ID, err)
			return
		}
		log.Printf("[Table %s] hand %s: all seats committed preflop, forcing runout", t.ID, t.handID)
		t.broadcastHandStartLocked()
		t.sendHoleCardsLocked()
		t.applyActResultLocked(res)
		return
	}

	log.Printf("[Table %s] hand %s started, dealer=%d action=%d", t.ID, t.handID, before.DealerChair, t.game.Snapshot().ActionChair)
	t.broadcastHandStartLocked()
	t.sendHoleCardsLocked()
	t.requestNextActionLocked(t.game.Snapshot().ActionChair)
}

// applyActResultLocked classifies the outcome of an engine mutation and
// drives whatever comes next: another action request, a paced street
// transition, the runout sequencer, or hand completion.
func (t *Table) applyActResultLocked(res *engine.ActResult) {
	if res == nil {
		return
	}
	if res.HandComplete {
		t.completeHandLocked(res.Settlement)
		return
	}
	if res.AwaitingRunout {
		t.startRunoutLocked()
		return
	}
	if res.StreetAdvanced {
		t.scheduleLocked(action.ActionAnimationDelay, func() {
			t.broadcastStateLocked()
			t.scheduleLocked(action.StreetTransitionDelay, func() {
				t.advanceToNextActorLocked()
			})
		})
		return
	}
	t.advanceToNextActorLocked()
}

func (t *Table) advanceToNextActorLocked() {
	if t.processEarlyFoldsLocked() {
		return
	}
	chair := t.game.Snapshot().ActionChair
	if chair == engine.InvalidChair {
		return
	}
	t.requestNextActionLocked(chair)
}

// processEarlyFoldsLocked pops and applies a chained early fold for the
// current actor, if one is pending, recursing through consecutive
// deferred folds until a real decision point or hand end (spec 4.5.2).
// Returns true if it consumed the turn (so the caller must not also
// request an action for this actor).
func (t *Table) processEarlyFoldsLocked() bool {
	snap := t.game.Snapshot()
	chair := snap.ActionChair
	if chair == engine.InvalidChair {
		return false
	}
	playerID, ok := t.act.PopEarlyFold(chair)
	if !ok {
		return false
	}
	res, err := t.game.Act(chair, engine.ActionFold, 0)
	if err != nil {
		log.Printf("[Table %s] chained early fold failed chair=%d: %v", t.ID, chair, err)
		return false
	}
	t.broadcastActionTakenLocked(playerID, chair, engine.ActionFold, 0)
	t.applyActResultLocked(res)
	return true
}

func (t *Table) requestNextActionLocked(chair uint16) {
	if chair == engine.InvalidChair {
		return
	}
	s, ok := t.seats.Seat(chair)
	if !ok {
		return
	}
	if !s.HasTransport {
		// Transport absent: silent fold and advance (spec 7.2).
		res, err := t.game.Act(chair, engine.ActionFold, 0)
		if err != nil {
			log.Printf("[Table %s] silent fold failed chair=%d: %v", t.ID, chair, err)
			return
		}
		t.broadcastActionTakenLocked(s.ExternalID, chair, engine.ActionFold, 0)
		t.applyActResultLocked(res)
		return
	}
	pa, err := t.act.RequestNextAction(t.game, chair, s.ExternalID, time.Now())
	if err != nil {
		log.Printf("[Table %s] RequestNextAction failed chair=%d: %v", t.ID, chair, err)
		return
	}
	t.sendActionRequiredLocked(pa)
}

func (t *Table) completeHandLocked(settlement *engine.SettlementResult) {
	t.act.ClearPending()
	snap := t.game.Snapshot()

	for _, ps := range snap.Players {
		t.seats.UpdateChips(ps.Chair, ps.Stack)
	}

	showdown := settlement != nil && len(settlement.RevealedChairs) > 0
	finishLocked := func() {
		t.scheduleLocked(action.HandCompleteDelay, func() {
			t.broadcastHandCompleteLocked(settlement)
			t.persistHandLocked(snap, settlement)
			t.sweepAfterHandLocked(showdown)
		})
	}

	// spec 4.8: a showdown not already surfaced by the runout sequencer
	// (spec 4.7) is sent after SHOWDOWN_DELAY_MS, once hand_complete's
	// own HAND_COMPLETE_DELAY_MS starts counting from there.
	if showdown && !t.showdownSentDuringRunOut {
		t.scheduleLocked(action.ShowdownDelay, func() {
			t.broadcastShowdownLocked(snap, settlement)
			finishLocked()
		})
		return
	}
	finishLocked()
}

func (t *Table) sweepAfterHandLocked(showdown bool) {
	evicted := t.seats.SweepHandEnd()
	for _, s := range evicted {
		if s.Chips <= 0 {
			t.bus.SocketEmit(s.ExternalID, "table_busted", nil)
		}
		t.bus.Leave(s.ExternalID)
		delete(t.lastSeen, s.ExternalID)
	}

	if t.Config.IsFastFold && t.onFastFoldReassign != nil {
		survivors := make([]ReassignPlayer, 0, len(t.seats.All()))
		for _, s := range t.seats.All() {
			survivors = append(survivors, ReassignPlayer{ExternalID: s.ExternalID, DisplayName: s.DisplayName, Chips: s.Chips})
		}
		for _, s := range t.seats.All() {
			_, _ = t.seats.RemoveSeat(s.Chair)
		}
		t.onFastFoldReassign(survivors)
		return
	}

	delay := action.NextHandDelay
	if showdown {
		delay = action.NextHandShowdownDelay
	}
	if t.seats.Count(true) >= t.Config.minPlayersToStart() {
		t.nextHandAt = time.Now().Add(delay)
	} else {
		t.nextHandAt = time.Time{}
	}
}

func (t *Table) persistHandLocked(snap engine.Snapshot, settlement *engine.SettlementResult) {
	if t.recorder == nil {
		return
	}
	rec := history.Record{
		TableID:    t.ID,
		HandID:     t.handID,
		SmallBlind: t.Config.SmallBlind,
		BigBlind:   t.Config.BigBlind,
		PlayedAt:   time.Now().UTC(),
		DealerSeat: snap.DealerChair,
		ActionLog:  t.game.History(),
		Board:      renderCardStrings(snap.CommunityCards),
	}
	for _, ps := range snap.Players {
		startChips := t.handStartStacks[ps.Chair]
		profit := ps.Stack - startChips
		pSnap := history.PlayerSnapshot{
			ExternalID:     ps.ID,
			StartingChips:  startChips,
			HoleCards:      renderCardStrings(ps.HandCards),
			FinishingChips: ps.Stack,
			Profit:         profit,
		}
		if ev, ok := t.allInEVProfits[ps.Chair]; ok {
			pSnap.AllInEVProfit = &ev
		}
		rec.Players = append(rec.Players, pSnap)
	}
	t.recorder.Record(rec)
}
