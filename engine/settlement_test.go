package engine

import (
	"testing"

	"github.com/okihara/plo-game-sub001/card"
)

func mustCard(t *testing.T, s string) card.Card {
	t.Helper()
	c, err := card.ParseCard(s)
	if err != nil {
		t.Fatalf("ParseCard(%q): %v", s, err)
	}
	return c
}

// TestSettleShowdown_OddChipGoesToLowestChairAmongTiedWinners pins the
// Open Question resolution recorded in DESIGN.md: when a pot layer splits
// evenly except for a remainder chip, the remainder goes to the lowest
// chair index among the tied winners. Chairs 0 and 2 both make a pair of
// aces with the same board kickers and tie for best hand, while chair 1
// holds a worse pair of sevens.
func TestSettleShowdown_OddChipGoesToLowestChairAmongTiedWinners(t *testing.T) {
	g := newTestGame(t, 3, 3)
	for chair, id := range map[uint16]uint64{0: 1, 1: 2, 2: 3} {
		if err := g.SitDown(chair, id, 1000); err != nil {
			t.Fatalf("SitDown(%d): %v", chair, err)
		}
	}

	g.communityCards = card.CardList{
		mustCard(t, "2s"), mustCard(t, "5h"), mustCard(t, "9c"),
		mustCard(t, "Jd"), mustCard(t, "Kc"),
	}

	// Chairs 0 and 2 hold the same pair (aces) in different suits, so
	// both land on pair-of-aces with K-J-9 kickers from the board: an
	// exact tie. Chair 1's pair of sevens is strictly worse.
	p0 := g.playersByChair[0]
	p0.handCards = card.CardList{mustCard(t, "Ad"), mustCard(t, "Ah"), mustCard(t, "3c"), mustCard(t, "4d")}
	p1 := g.playersByChair[1]
	p1.handCards = card.CardList{mustCard(t, "6d"), mustCard(t, "6h"), mustCard(t, "7c"), mustCard(t, "7d")}
	p2 := g.playersByChair[2]
	p2.handCards = card.CardList{mustCard(t, "As"), mustCard(t, "Ac"), mustCard(t, "3d"), mustCard(t, "4h")}

	g.potManager.pots = []SidePot{{
		Amount:          301,
		EligiblePlayers: map[uint16]bool{0: true, 1: true, 2: true},
	}}

	result, err := g.SettleShowdown()
	if err != nil {
		t.Fatalf("SettleShowdown err: %v", err)
	}
	if len(result.Pots) != 1 {
		t.Fatalf("expected 1 pot result, got %d", len(result.Pots))
	}
	winners := result.Pots[0].Winners
	if len(winners) != 2 {
		t.Fatalf("expected 2 tied winners (chairs 0 and 2), got %d: %+v", len(winners), winners)
	}

	byChair := make(map[uint16]int64, len(winners))
	for _, w := range winners {
		byChair[w.Chair] = w.Amount
	}
	if _, ok := byChair[0]; !ok {
		t.Fatalf("chair 0 expected among winners, got %+v", winners)
	}
	if _, ok := byChair[2]; !ok {
		t.Fatalf("chair 2 expected among winners, got %+v", winners)
	}
	if byChair[0] != 151 {
		t.Fatalf("expected lowest chair (0) to receive the odd chip: got %d, want 151", byChair[0])
	}
	if byChair[2] != 150 {
		t.Fatalf("expected chair 2 to receive the even share: got %d, want 150", byChair[2])
	}
}
