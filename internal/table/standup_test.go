package table

import (
	"testing"
	"time"

	"github.com/okihara/plo-game-sub001/engine"
)

func newStandUpTestTable(t *testing.T) *Table {
	t.Helper()

	cfg := TableConfig{
		MaxPlayers: 6,
		SmallBlind: 50,
		BigBlind:   100,
		MinBuyIn:   100,
		MaxBuyIn:   10000,
	}
	tbl, err := New("standup_test", cfg, func(uint64, []byte) {}, nil, nil)
	if err != nil {
		t.Fatalf("New table err: %v", err)
	}
	t.Cleanup(tbl.Stop)

	for chair := uint16(0); chair < 3; chair++ {
		userID := uint64(chair + 1)
		c := chair
		if err := tbl.SubmitEvent(Event{
			Type:           EventSitDown,
			UserID:         userID,
			Nickname:       "p",
			Chair:          c,
			Amount:         1000,
			PreferredChair: &c,
		}); err != nil {
			t.Fatalf("sit down chair=%d err: %v", chair, err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := tbl.Snapshot()
		if snap.Round > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("hand never started")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return tbl
}

func foldCurrentActor(t *testing.T, tbl *Table) uint16 {
	t.Helper()
	snap := tbl.Snapshot()
	if snap.ActionChair == engine.InvalidChair {
		t.Fatalf("expected valid action chair, got invalid")
	}
	chair := snap.ActionChair
	var userID uint64
	tbl.mu.Lock()
	for _, s := range tbl.seats.All() {
		if s.Chair == chair {
			userID = s.ExternalID
		}
	}
	tbl.mu.Unlock()
	if err := tbl.SubmitEvent(Event{Type: EventAction, UserID: userID, Action: engine.ActionFold}); err != nil {
		t.Fatalf("fold chair=%d err: %v", chair, err)
	}
	return chair
}

// TestHandleStandUp_MidHand_QueuesEarlyFoldInsteadOfImmediateRemoval
// exercises spec 4.9's deferred unseat: a player who stands up while the
// hand is running, and is not the current actor, must not be evicted
// from the seat map before the hand ends.
func TestHandleStandUp_MidHand_QueuesEarlyFoldInsteadOfImmediateRemoval(t *testing.T) {
	tbl := newStandUpTestTable(t)

	snap := tbl.Snapshot()
	actingChair := snap.ActionChair
	var targetUserID uint64
	var targetChair uint16
	for _, s := range tbl.seats.All() {
		if s.Chair != actingChair {
			targetUserID = s.ExternalID
			targetChair = s.Chair
			break
		}
	}
	if targetUserID == 0 {
		t.Fatalf("expected a non-acting seated player")
	}

	if err := tbl.SubmitEvent(Event{Type: EventStandUp, UserID: targetUserID}); err != nil {
		t.Fatalf("stand up err: %v", err)
	}

	tbl.mu.Lock()
	s, ok := tbl.seats.Seat(targetChair)
	tbl.mu.Unlock()
	if !ok {
		t.Fatalf("expected seat %d to remain until hand end", targetChair)
	}
	if !s.LeftForFastFold {
		t.Fatalf("expected seat %d marked LeftForFastFold", targetChair)
	}
}

// TestHandleActionTimeout_AutoFoldsActingSeat exercises the clock
// downgrade policy (spec 7.1): a player who never responds is folded
// once their PendingAction deadline has elapsed.
func TestHandleActionTimeout_AutoFoldsActingSeat(t *testing.T) {
	tbl := newStandUpTestTable(t)

	tbl.mu.Lock()
	if tbl.act.Pending() != nil {
		tbl.act.Pending().Deadline = time.Now().Add(-time.Second)
	}
	tbl.mu.Unlock()

	tbl.tick()

	tbl.mu.Lock()
	pending := tbl.act.Pending()
	tbl.mu.Unlock()
	if pending == nil {
		t.Fatalf("expected a new pending action for the next actor after timeout")
	}
}
