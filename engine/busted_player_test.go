package engine

import "testing"

// A seat with zero chips is simply not dealt into the next hand, and any
// stale hole cards left on it from a previous hand are cleared so it
// can't leak into showdown once it rebuys and returns.
func TestStartHand_SkipsBustedSeat(t *testing.T) {
	g := newTestGame(t, 6, 2)
	if err := g.SitDown(0, 10001, 2000); err != nil {
		t.Fatal(err)
	}
	if err := g.SitDown(1, 10002, 2000); err != nil {
		t.Fatal(err)
	}
	if err := g.SitDown(2, 10003, 0); err != nil {
		t.Fatal(err)
	}

	busted := g.Player(2)
	busted.AddHandCard(FullDeck[0], FullDeck[1], FullDeck[2], FullDeck[3])

	if err := g.StartNewHand(); err != nil {
		t.Fatalf("StartNewHand err: %v", err)
	}

	if got := len(g.Player(2).Hand()); got != 0 {
		t.Fatalf("expected busted seat hand cleared, got %d cards", got)
	}

	snap := g.Snapshot()
	for _, p := range snap.Players {
		if p.Chair == 2 && len(p.HandCards) != 0 {
			t.Fatalf("busted seat should not be dealt a hand")
		}
	}
}
