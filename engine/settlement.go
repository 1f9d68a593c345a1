package engine

import (
	"sort"

	"github.com/okihara/plo-game-sub001/card"
)

// showdownHand is one contender's evaluated best hand, kept only long
// enough to pick winners per pot layer.
type showdownHand struct {
	chair  uint16
	result *handResult
}

// SettleShowdown distributes every pot layer. With exactly one
// non-folded player it awards the whole pot uncontested (finishNoShowdown
// already collected all bets into potManager.pots first); otherwise it
// evaluates each contender's best PLO hand against the board and splits
// each layer among that layer's best-hand holders. An odd chip left over
// after an even split goes to the lowest chair index among the tied
// winners, matching how eligible chairs are enumerated within a layer.
func (g *Game) SettleShowdown() (*SettlementResult, error) {
	if g.noShowdown {
		return g.settleNoShowdown()
	}
	return g.settleByEval()
}

func (g *Game) settleNoShowdown() (*SettlementResult, error) {
	var winner *Player
	for _, p := range g.playersByChair {
		if p != nil && !p.folded {
			winner = p
			break
		}
	}
	if winner == nil {
		return nil, ErrInvalidState("no non-folded player to award an uncontested pot")
	}

	result := &SettlementResult{NoShowdown: true}
	for _, pot := range g.potManager.pots {
		if pot.Amount == 0 {
			continue
		}
		winner.addStack(pot.Amount)
		result.Pots = append(result.Pots, PotResult{
			Amount:  pot.Amount,
			Winners: []WinnerShare{{Chair: winner.Chair, Amount: pot.Amount}},
		})
	}
	return result, nil
}

func (g *Game) settleByEval() (*SettlementResult, error) {
	var board [5]card.Card
	copy(board[:], g.communityCards)

	hands := make(map[uint16]*showdownHand, len(g.playersByChair))
	for chair, p := range g.playersByChair {
		if p == nil || p.folded || len(p.handCards) != 4 {
			continue
		}
		var hole [4]card.Card
		copy(hole[:], p.handCards)
		hands[chair] = &showdownHand{chair: chair, result: EvalBestPLOHand(hole, board)}
	}

	out := &SettlementResult{Pots: make([]PotResult, 0, len(g.potManager.pots))}
	for chair := range hands {
		out.RevealedChairs = append(out.RevealedChairs, chair)
	}
	sort.Slice(out.RevealedChairs, func(i, j int) bool { return out.RevealedChairs[i] < out.RevealedChairs[j] })

	for _, pot := range g.potManager.pots {
		if pot.Amount <= 0 {
			out.Pots = append(out.Pots, PotResult{Amount: pot.Amount})
			continue
		}

		eligible := make([]uint16, 0, len(pot.EligiblePlayers))
		for chair := range pot.EligiblePlayers {
			if hands[chair] != nil {
				eligible = append(eligible, chair)
			}
		}
		sort.Slice(eligible, func(i, j int) bool { return eligible[i] < eligible[j] })

		if len(eligible) == 0 {
			out.Pots = append(out.Pots, PotResult{Amount: pot.Amount})
			continue
		}

		winners := []uint16{eligible[0]}
		best := hands[eligible[0]].result.Score
		for _, chair := range eligible[1:] {
			score := hands[chair].result.Score
			switch {
			case score > best:
				winners = []uint16{chair}
				best = score
			case score == best:
				winners = append(winners, chair)
			}
		}

		share := pot.Amount / int64(len(winners))
		remainder := pot.Amount % int64(len(winners))
		pr := PotResult{Amount: pot.Amount}
		for i, chair := range winners {
			amt := share
			if i == 0 {
				amt += remainder
			}
			if p := g.playersByChair[chair]; p != nil {
				p.addStack(amt)
			}
			pr.Winners = append(pr.Winners, WinnerShare{
				Chair:    chair,
				Amount:   amt,
				HandType: hands[chair].result.HandType,
			})
		}
		out.Pots = append(out.Pots, pr)
	}

	return out, nil
}
