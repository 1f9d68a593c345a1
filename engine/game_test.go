package engine

import "testing"

// TestHeadsUpPreflopActingOrder pins spec 4.2's heads-up rule: with
// exactly two active seats the dealer also posts the small blind and
// acts first preflop (BTN=SB).
func TestHeadsUpPreflopActingOrder(t *testing.T) {
	g := newTestGame(t, 2, 2)
	if err := g.SitDown(0, 10001, 1000); err != nil {
		t.Fatal(err)
	}
	if err := g.SitDown(1, 10002, 1000); err != nil {
		t.Fatal(err)
	}
	if err := g.StartNewHand(); err != nil {
		t.Fatalf("StartNewHand err: %v", err)
	}

	snap := g.Snapshot()
	if snap.Street != StreetPreflop {
		t.Fatalf("expected preflop, got %v", snap.Street)
	}
	if snap.DealerChair != snap.SmallBlindChair {
		t.Fatalf("heads-up: expected dealer(%d) == small blind(%d)", snap.DealerChair, snap.SmallBlindChair)
	}
	if snap.ActionChair != snap.DealerChair {
		t.Fatalf("heads-up preflop: expected BTN/SB(%d) to act first, got %d", snap.DealerChair, snap.ActionChair)
	}
}

// TestHeadsUpPostflopActingOrder pins spec 4.2's heads-up postflop rule:
// the big blind acts first once a street other than preflop begins.
func TestHeadsUpPostflopActingOrder(t *testing.T) {
	g := newTestGame(t, 2, 2)
	if err := g.SitDown(0, 10001, 1000); err != nil {
		t.Fatal(err)
	}
	if err := g.SitDown(1, 10002, 1000); err != nil {
		t.Fatal(err)
	}
	if err := g.StartNewHand(); err != nil {
		t.Fatalf("StartNewHand err: %v", err)
	}

	snap := g.Snapshot()
	dealer := snap.DealerChair
	bb := snap.BigBlindChair

	// Dealer/SB is first to act preflop; call to close the blind, then BB
	// checks their option to reach the flop.
	amt := actionAmount(t, g, dealer, ActionCall)
	if _, err := g.Act(dealer, ActionCall, amt); err != nil {
		t.Fatalf("dealer call err: %v", err)
	}
	if _, err := g.Act(bb, ActionCheck, 0); err != nil {
		t.Fatalf("bb check err: %v", err)
	}

	snap = g.Snapshot()
	if snap.Street != StreetFlop {
		t.Fatalf("expected flop, got %v", snap.Street)
	}
	if snap.ActionChair != bb {
		t.Fatalf("heads-up postflop: expected BB(%d) to act first, got %d", bb, snap.ActionChair)
	}
}
