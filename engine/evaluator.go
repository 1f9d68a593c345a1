package engine

import "github.com/okihara/plo-game-sub001/card"

// handResult scores one 5-card hand. Score packs category and kickers into
// a single comparable integer: higher is stronger, and equal scores are an
// exact tie (no further tie-break needed).
type handResult struct {
	Score     uint32
	HandType  byte
	BestFive  [5]card.Card
	HoleUsed  [2]card.Card
	BoardUsed [3]card.Card
}

// EvalBestPLOHand finds the best 5-card hand obtainable from exactly 2 of
// the 4 hole cards and exactly 3 of the 5 board cards, per Omaha's
// mandatory-use rule. It enumerates all C(4,2)*C(5,3) = 60 combinations.
func EvalBestPLOHand(hole [4]card.Card, board [5]card.Card) *handResult {
	var best *handResult

	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			h0, h1 := hole[i], hole[j]
			for a := 0; a < 5; a++ {
				for b := a + 1; b < 5; b++ {
					for c := b + 1; c < 5; c++ {
						five := [5]card.Card{h0, h1, board[a], board[b], board[c]}
						score, handType := scoreFive(five)
						if best == nil || score > best.Score {
							best = &handResult{
								Score:     score,
								HandType:  handType,
								BestFive:  five,
								HoleUsed:  [2]card.Card{h0, h1},
								BoardUsed: [3]card.Card{board[a], board[b], board[c]},
							}
						}
					}
				}
			}
		}
	}
	return best
}

// scoreFive ranks a concrete 5-card hand. The encoding (see packScore) is:
//
//	bits [28..32) category (1-9, HandHighCard .. HandStraightFlush)
//	bits [0..20)  up to five kicker ranks (2-14), 4 bits each, most significant first
//
// Larger is stronger; equal values are an exact tie.
func scoreFive(cards [5]card.Card) (uint32, byte) {
	ranks := make([]int, 5)
	suits := make([]card.Suit, 5)
	for i, c := range cards {
		ranks[i] = c.HandRealVal()
		suits[i] = c.Suit()
	}

	counts := map[int]int{}
	for _, r := range ranks {
		counts[r]++
	}

	isFlush := true
	for _, s := range suits[1:] {
		if s != suits[0] {
			isFlush = false
			break
		}
	}

	straightHigh, isStraight := straightHighCard(ranks)

	switch {
	case isStraight && isFlush:
		return packScore(HandStraightFlush, []int{straightHigh}), HandStraightFlush
	case hasCountOf(counts, 4):
		quad, kicker := quadKicker(counts)
		return packScore(HandFourOfKind, []int{quad, kicker}), HandFourOfKind
	case hasCountOf(counts, 3) && hasCountOf(counts, 2):
		trip, pair := fullHouseRanks(counts)
		return packScore(HandFullHouse, []int{trip, pair}), HandFullHouse
	case isFlush:
		return packScore(HandFlush, descending(ranks)), HandFlush
	case isStraight:
		return packScore(HandStraight, []int{straightHigh}), HandStraight
	case hasCountOf(counts, 3):
		trip, kickers := tripKickers(counts)
		return packScore(HandThreeOfKind, append([]int{trip}, kickers...)), HandThreeOfKind
	case countOfCount(counts, 2) == 2:
		hi, lo, kicker := twoPairRanks(counts)
		return packScore(HandTwoPair, []int{hi, lo, kicker}), HandTwoPair
	case hasCountOf(counts, 2):
		pair, kickers := pairKickers(counts)
		return packScore(HandOnePair, append([]int{pair}, kickers...)), HandOnePair
	default:
		return packScore(HandHighCard, descending(ranks)), HandHighCard
	}
}

// packScore packs a hand category (bits 28-31) and up to 5 kicker ranks
// (4 bits each, most significant first, bits 0-19) into one comparable
// integer. Ranks are 2-14 and fit in 4 bits; larger packed value always
// means a strictly stronger hand, and equal values are an exact tie.
func packScore(category byte, kickers []int) uint32 {
	score := uint32(category) << 28
	shift := 16
	for _, k := range kickers {
		if shift < 0 {
			break
		}
		score |= uint32(k) << uint(shift)
		shift -= 4
	}
	return score
}

func hasCountOf(counts map[int]int, n int) bool {
	for _, c := range counts {
		if c == n {
			return true
		}
	}
	return false
}

func countOfCount(counts map[int]int, n int) int {
	total := 0
	for _, c := range counts {
		if c == n {
			total++
		}
	}
	return total
}

func descending(ranks []int) []int {
	out := append([]int{}, ranks...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] > out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func quadKicker(counts map[int]int) (quad int, kicker int) {
	for r, c := range counts {
		if c == 4 {
			quad = r
		} else {
			kicker = r
		}
	}
	return
}

func fullHouseRanks(counts map[int]int) (trip int, pair int) {
	for r, c := range counts {
		switch c {
		case 3:
			trip = r
		case 2:
			pair = r
		}
	}
	return
}

func tripKickers(counts map[int]int) (trip int, kickers []int) {
	for r, c := range counts {
		if c == 3 {
			trip = r
		} else {
			kickers = append(kickers, r)
		}
	}
	kickers = descending(kickers)
	return
}

func twoPairRanks(counts map[int]int) (hi, lo, kicker int) {
	var pairs []int
	for r, c := range counts {
		if c == 2 {
			pairs = append(pairs, r)
		} else {
			kicker = r
		}
	}
	pairs = descending(pairs)
	return pairs[0], pairs[1], kicker
}

func pairKickers(counts map[int]int) (pair int, kickers []int) {
	for r, c := range counts {
		if c == 2 {
			pair = r
		} else {
			kickers = append(kickers, r)
		}
	}
	kickers = descending(kickers)
	return
}

// straightHighCard reports the high card of a straight among the five
// ranks, treating Ace as both 14 (broadway) and 1 (wheel, A-2-3-4-5).
func straightHighCard(ranks []int) (int, bool) {
	seen := map[int]bool{}
	for _, r := range ranks {
		seen[r] = true
	}
	if len(seen) != 5 {
		return 0, false
	}

	sorted := descending(ranks)
	if sorted[0]-sorted[4] == 4 {
		return sorted[0], true
	}
	// wheel: A,5,4,3,2
	if seen[14] && seen[5] && seen[4] && seen[3] && seen[2] {
		return 5, true
	}
	return 0, false
}
