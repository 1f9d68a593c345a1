package table

import (
	"log"

	"github.com/okihara/plo-game-sub001/card"
	"github.com/okihara/plo-game-sub001/engine"
)

// EquityEstimator is the all-in EV profit collaborator (spec 4.7 step 1,
// section 9 Design Notes): given the board as it stood before any runout
// card was dealt and every contender's hole cards, it returns each
// chair's expected chip profit versus the pot they're contesting. The
// real implementation (Monte-Carlo or exact enumeration over the
// undealt deck) lives outside this package; a table that never calls
// SetEquityEstimator simply records no allInEVProfit, which the history
// schema already treats as optional.
type EquityEstimator interface {
	Estimate(EquityInput) map[uint16]int64
}

// EquityContender is one non-folded seat's hand going into a runout.
type EquityContender struct {
	Chair     uint16
	HoleCards []card.Card
}

// EquityInput is exactly the contract spec section 9 names: the board
// before any runout card, the contenders still live, and the pot
// structure their equity is measured against.
type EquityInput struct {
	PriorBoard []card.Card
	Contenders []EquityContender
	Pots       []engine.PotSnapshot
	TotalBets  map[uint16]int64
}

// SetEquityEstimator registers the collaborator. Must be called before
// the table starts handling events if all-in EV snapshots are wanted;
// nil (the default) disables the feature entirely.
func (t *Table) SetEquityEstimator(e EquityEstimator) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.equity = e
}

// snapshotAllInEVLocked runs the registered estimator once, right before
// the first runout card is dealt, and stashes the result for
// persistHandLocked. A panic or nil estimator never blocks the hand
// (spec 4.7 step 1, section 7.4's persistence-failure tolerance applies
// equally to this best-effort collaborator).
func (t *Table) snapshotAllInEVLocked() {
	if t.equity == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Table %s] equity estimator panicked, dropping allInEVProfit: %v", t.ID, r)
			t.allInEVProfits = nil
		}
	}()

	snap := t.game.Snapshot()
	input := EquityInput{
		PriorBoard: snap.CommunityCards,
		TotalBets:  make(map[uint16]int64, len(snap.Players)),
		Pots:       snap.Pots,
	}
	for _, ps := range snap.Players {
		if ps.Folded {
			continue
		}
		input.Contenders = append(input.Contenders, EquityContender{Chair: ps.Chair, HoleCards: ps.HandCards})
		input.TotalBets[ps.Chair] = t.game.Player(ps.Chair).TotalBetThisHand()
	}
	t.allInEVProfits = t.equity.Estimate(input)
}
