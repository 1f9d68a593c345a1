package engine

import "testing"

// TestCalcPotsByPlayerBets_FullyUncalledBetIsRefundedNotPooled covers the
// case where the whole street folds around a single bettor: nobody, not
// even a folded player, put any chips in, so the bet is wholly uncalled.
// It must be returned to the bettor's stack and never also appear in a
// pot, or that amount gets paid out twice when the pot is later awarded.
func TestCalcPotsByPlayerBets_FullyUncalledBetIsRefundedNotPooled(t *testing.T) {
	pm := &potManager{}
	pm.resetPots()

	bettor := &Player{Chair: 0, stack: 950, bet: 50, totalBetThisHand: 50}

	pm.calcPotsByPlayerBets([]*Player{bettor})

	if pm.total() != 0 {
		t.Fatalf("expected no pooled pot for a wholly uncalled bet, got %d", pm.total())
	}
	if pm.excessChair != 0 || pm.excessAmount != 50 {
		t.Fatalf("expected the full 50 refunded to chair 0, got chair %d amount %d", pm.excessChair, pm.excessAmount)
	}
	if bettor.stack != 1000 {
		t.Fatalf("expected bettor's stack restored to 1000, got %d", bettor.stack)
	}
	if bettor.bet != 0 || bettor.totalBetThisHand != 0 {
		t.Fatalf("expected the refund to unwind both bet and totalBetThisHand, got bet=%d total=%d", bettor.bet, bettor.totalBetThisHand)
	}
}

// TestCalcPotsByPlayerBets_FoldedContributionStaysInThePot covers a bet
// that WAS contested (a second player put chips in before folding): that
// money is real and must stay pooled for the sole remaining eligible
// player, unlike the wholly-uncalled case above.
func TestCalcPotsByPlayerBets_FoldedContributionStaysInThePot(t *testing.T) {
	pm := &potManager{}
	pm.resetPots()

	bettor := &Player{Chair: 0, stack: 900, bet: 100, totalBetThisHand: 100}
	folded := &Player{Chair: 1, stack: 900, bet: 100, totalBetThisHand: 100, folded: true}

	pm.calcPotsByPlayerBets([]*Player{bettor, folded})

	if pm.total() != 200 {
		t.Fatalf("expected both contributions pooled, got %d", pm.total())
	}
	if pm.excessAmount != 0 {
		t.Fatalf("expected no refund when a second player matched the bet, got %d", pm.excessAmount)
	}
	if len(pm.pots) != 1 || !pm.pots[0].EligiblePlayers[0] || pm.pots[0].EligiblePlayers[1] {
		t.Fatalf("expected a single pot eligible to chair 0 only, got %+v", pm.pots)
	}
}

// TestCalcPotsByPlayerBets_UncalledRaiseOnTopOfACalledLevel covers a raise
// that itself goes uncalled while the earlier, smaller bet was called: the
// called portion must pool, and only the raise's excess above the next
// largest bet is refunded.
func TestCalcPotsByPlayerBets_UncalledRaiseOnTopOfACalledLevel(t *testing.T) {
	pm := &potManager{}
	pm.resetPots()

	caller := &Player{Chair: 0, stack: 900, bet: 100, totalBetThisHand: 100}
	raiser := &Player{Chair: 1, stack: 650, bet: 350, totalBetThisHand: 350}

	pm.calcPotsByPlayerBets([]*Player{caller, raiser})

	if pm.total() != 200 {
		t.Fatalf("expected only the called 100+100 pooled, got %d", pm.total())
	}
	if pm.excessChair != 1 || pm.excessAmount != 250 {
		t.Fatalf("expected chair 1 refunded the uncalled 250, got chair %d amount %d", pm.excessChair, pm.excessAmount)
	}
	if raiser.stack != 900 {
		t.Fatalf("expected raiser's stack restored to 900 after refund, got %d", raiser.stack)
	}
}
