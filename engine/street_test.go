package engine

import "testing"

func actionAmount(t *testing.T, g *Game, chair uint16, kind ActionKind) int64 {
	t.Helper()
	actions, err := g.GetValidActions(chair)
	if err != nil {
		t.Fatalf("GetValidActions err: %v", err)
	}
	for _, a := range actions {
		if a.Kind == kind {
			return a.MinAmount
		}
	}
	t.Fatalf("action %s not legal for chair %d", kind, chair)
	return 0
}

// With three active seats, a BB fold after two calls still hands the
// flop's opening action to the small blind (multi-way acting order),
// not to the heads-up BTN=SB shortcut that only applies when exactly
// two seats remain seated at StartNewHand.
func TestStreetProgression_FlopFirstActionAfterBBFolds(t *testing.T) {
	g := newTestGame(t, 3, 3)
	if err := g.SitDown(0, 10001, 1000); err != nil {
		t.Fatal(err)
	}
	if err := g.SitDown(1, 10002, 1000); err != nil {
		t.Fatal(err)
	}
	if err := g.SitDown(2, 10003, 1000); err != nil {
		t.Fatal(err)
	}

	if err := g.StartNewHand(); err != nil {
		t.Fatalf("StartNewHand err: %v", err)
	}
	if g.Street() != StreetPreflop {
		t.Fatalf("expected preflop, got %v", g.Street())
	}

	snap := g.Snapshot()
	for i := 0; i < 3; i++ {
		snap = g.Snapshot()
		switch snap.ActionChair {
		case snap.DealerChair:
			amt := actionAmount(t, g, snap.ActionChair, ActionCall)
			if _, err := g.Act(snap.ActionChair, ActionCall, amt); err != nil {
				t.Fatalf("dealer call err: %v", err)
			}
		case snap.SmallBlindChair:
			amt := actionAmount(t, g, snap.ActionChair, ActionCall)
			if _, err := g.Act(snap.ActionChair, ActionCall, amt); err != nil {
				t.Fatalf("sb call err: %v", err)
			}
		case snap.BigBlindChair:
			if _, err := g.Act(snap.ActionChair, ActionFold, 0); err != nil {
				t.Fatalf("bb fold err: %v", err)
			}
		default:
			t.Fatalf("unexpected action chair: %d", snap.ActionChair)
		}
	}

	snap = g.Snapshot()
	if snap.Street != StreetFlop {
		t.Fatalf("expected flop, got %v", snap.Street)
	}
	if len(snap.CommunityCards) != 3 {
		t.Fatalf("expected 3 community cards on flop, got %d", len(snap.CommunityCards))
	}
	if snap.ActionChair != snap.SmallBlindChair {
		t.Fatalf("expected flop action chair=SB(%d), got %d (dealer=%d bb=%d)",
			snap.SmallBlindChair, snap.ActionChair, snap.DealerChair, snap.BigBlindChair)
	}
}
