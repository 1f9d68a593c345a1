package engine

import "github.com/okihara/plo-game-sub001/card"

// Player is the engine's per-seat state. It is created by SitDown and kept
// across hands: the stack carries over, and ResetForNewHand clears the
// per-hand fields at each StartNewHand.
type Player struct {
	ID    uint64
	Chair uint16

	stack int64
	bet   int64 // committed this street; reset to 0 at each street advance

	totalBetThisHand int64 // cumulative committed this hand; never decreases

	allIn      bool
	folded     bool
	sittingOut bool
	hasActed   bool
	lastAction ActionKind

	handCards card.CardList
}

func (p *Player) ChairID() uint16 { return p.Chair }

func (p *Player) Stack() int64            { return p.stack }
func (p *Player) Bet() int64              { return p.bet }
func (p *Player) TotalBetThisHand() int64 { return p.totalBetThisHand }
func (p *Player) AllIn() bool             { return p.allIn }
func (p *Player) Folded() bool            { return p.folded }
func (p *Player) SittingOut() bool        { return p.sittingOut }
func (p *Player) HasActed() bool          { return p.hasActed }
func (p *Player) Hand() []card.Card       { return p.handCards }

func (p *Player) ResetForNewHand() {
	p.bet = 0
	p.totalBetThisHand = 0
	p.allIn = false
	p.folded = false
	p.hasActed = false
	p.lastAction = ActionNone
	p.handCards = make(card.CardList, 0, 4)
}

func (p *Player) AddHandCard(cards ...card.Card) {
	p.handCards = append(p.handCards, cards...)
}

func (p *Player) HandCards() card.CardList { return p.handCards }

func (p *Player) setLastAction(a ActionKind) { p.lastAction = a }

// placeBet moves amount from stack to bet, clamping to the player's stack
// and marking them all-in if it is exhausted.
func (p *Player) placeBet(amount int64) {
	if amount <= 0 {
		return
	}
	if p.stack <= amount {
		p.allIn = true
		amount = p.stack
	}
	p.stack -= amount
	p.bet += amount
	p.totalBetThisHand += amount
}

func (p *Player) resetStreetBet() {
	p.bet = 0
}

func (p *Player) addStack(amount int64) {
	p.stack += amount
}

func (p *Player) setFolded(v bool) { p.folded = v }

// PlayerNode is one seat in the hand's circular acting-order list.
type PlayerNode struct {
	Player  *Player
	ChairID uint16
	Next    *PlayerNode
}

// WalkOnce walks the ring starting at n (inclusive) until fn returns true
// or a full lap completes without a match.
func (n *PlayerNode) WalkOnce(fn func(*PlayerNode) bool) *PlayerNode {
	if n == nil {
		return nil
	}
	cur := n
	for {
		if fn(cur) {
			return cur
		}
		cur = cur.Next
		if cur == nil || cur == n {
			break
		}
	}
	return nil
}

// WalkAll visits every node exactly once, starting at n.
func (n *PlayerNode) WalkAll(fn func(cur *PlayerNode)) {
	n.WalkOnce(func(cur *PlayerNode) bool {
		fn(cur)
		return false
	})
}
