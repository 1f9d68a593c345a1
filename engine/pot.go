package engine

import "sort"

// SidePot is one pot layer: an amount and the seats eligible to win it.
type SidePot struct {
	Amount          int64
	EligiblePlayers map[uint16]bool
}

type potManager struct {
	pots         []SidePot
	excessChair  uint16
	excessAmount int64
}

func (pm *potManager) resetPots() {
	pm.pots = make([]SidePot, 0)
	pm.excessChair = 0
	pm.excessAmount = 0
}

func (pm *potManager) total() int64 {
	var t int64
	for _, p := range pm.pots {
		t += p.Amount
	}
	return t
}

// calcPotsByPlayerBets layers the current street's bets into side pots:
// sort non-zero bets ascending, and for each distinct level subtract the
// previous level and multiply by the count of players who contributed at
// least that much. Eligibility for a layer excludes folded contributors,
// though their chips still count toward the layer's amount. Consecutive
// pots with identical eligible sets are merged across streets.
func (pm *potManager) calcPotsByPlayerBets(playersWithBets []*Player) {
	sort.Slice(playersWithBets, func(i, j int) bool {
		return playersWithBets[i].Bet() < playersWithBets[j].Bet()
	})

	totalContributed := int64(0)
	for i, player := range playersWithBets {
		bet := player.Bet()

		contribution := bet - totalContributed
		if contribution <= 0 {
			continue
		}

		if contributors := len(playersWithBets) - i; contributors == 1 {
			// Nobody, not even a folded player, contributed up to this
			// level: it's a fully uncalled bet/raise. Leave it out of the
			// pots entirely; the refund below returns it to the stack.
			totalContributed += contribution
			continue
		}

		newPot := SidePot{
			Amount:          0,
			EligiblePlayers: make(map[uint16]bool),
		}

		for j := i; j < len(playersWithBets); j++ {
			playerJ := playersWithBets[j]
			actualContribution := contribution
			if remaining := playerJ.Bet() - totalContributed; actualContribution > remaining {
				actualContribution = remaining
			}

			newPot.Amount += actualContribution
			if !playerJ.Folded() {
				newPot.EligiblePlayers[playerJ.ChairID()] = true
			}
		}

		merged := false
		if len(pm.pots) > 0 {
			lastPot := &pm.pots[len(pm.pots)-1]
			if len(lastPot.EligiblePlayers) == len(newPot.EligiblePlayers) {
				samePlayers := true
				for chairID := range newPot.EligiblePlayers {
					if !lastPot.EligiblePlayers[chairID] {
						samePlayers = false
						break
					}
				}
				if samePlayers {
					lastPot.Amount += newPot.Amount
					merged = true
				}
			}
		}

		if !merged {
			pm.addPot(newPot)
		}

		totalContributed += contribution
	}

	// Refund any uncalled excess to the largest bettor.
	pm.excessChair = 0
	pm.excessAmount = 0
	if len(playersWithBets) > 0 {
		lastPlayer := playersWithBets[len(playersWithBets)-1]
		maxBet := lastPlayer.Bet()

		var secondMaxBet int64
		if len(playersWithBets) > 1 {
			secondMaxBet = playersWithBets[len(playersWithBets)-2].Bet()
		}

		if excess := maxBet - secondMaxBet; excess > 0 {
			lastPlayer.addStack(excess)
			lastPlayer.bet -= excess
			lastPlayer.totalBetThisHand -= excess

			pm.excessChair = lastPlayer.ChairID()
			pm.excessAmount = excess
		}
	}
}

func (pm *potManager) addPot(p ...SidePot) {
	pm.pots = append(pm.pots, p...)
}
