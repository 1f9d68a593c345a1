// Package engine implements the pure Pot-Limit Omaha hand state machine:
// deck and seat bookkeeping, pot-limit action validation, side-pot
// splitting, and showdown settlement. Every exported mutator is meant to
// be called under the table actor's single-threaded ownership; Game still
// carries its own mutex so it can be driven directly from tests without a
// surrounding actor.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/okihara/plo-game-sub001/card"
)

// HandHistoryEntry is one logged action within a hand.
type HandHistoryEntry struct {
	Street Street
	Chair  uint16
	Action ActionKind
	Amount int64
}

// ValidAction is one legal action for the current acting seat, with its
// pot-limit numeric bounds.
type ValidAction struct {
	Kind      ActionKind
	MinAmount int64
	MaxAmount int64
}

// WinnerShare records one seat's award from one pot at hand completion.
type WinnerShare struct {
	Chair    uint16
	Amount   int64
	HandType byte
}

// ActResult classifies the outcome of Act/AdvanceRunoutStreet for the
// caller (the action controller and runout sequencer live outside this
// package and decide what to broadcast and when to pace the next step).
type ActResult struct {
	StreetAdvanced bool
	NewStreet      Street
	// AwaitingRunout is true when no remaining seat can act (every
	// contender is folded or all-in) and the board still has undealt
	// streets; no street card is dealt yet in this case. The caller must
	// keep calling AdvanceRunoutStreet, pacing each reveal, until the hand
	// completes.
	AwaitingRunout bool
	HandComplete   bool
	Settlement     *SettlementResult
}

type Game struct {
	cfg Config
	rng *rand.Rand

	playersByChair map[uint16]*Player
	chairNodes     map[uint16]*PlayerNode
	headsUpAtStart bool // len(chairNodes)==2, pinned at hand start

	round          uint16
	street         Street
	communityCards card.CardList
	deck           card.CardList

	dealerNode     *PlayerNode
	smallBlindNode *PlayerNode
	bigBlindNode   *PlayerNode
	curNode        *PlayerNode

	activeCount int // non-folded seats
	allinCount  int

	currentBet       int64
	minRaise         int64
	lastFullRaiseBet int64
	lastRaiserIndex  uint16

	bettingOpened bool // false before the first bet/raise of a street (checks only)

	history        []HandHistoryEntry
	noShowdown     bool
	ended          bool
	potManager     potManager
	lastSettlement *SettlementResult
}

func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:             cfg,
		rng:             rand.New(rand.NewSource(seed)),
		playersByChair:  make(map[uint16]*Player, cfg.MaxPlayers),
		chairNodes:      make(map[uint16]*PlayerNode, cfg.MaxPlayers),
		lastRaiserIndex: InvalidChair,
	}
	g.potManager.resetPots()
	return g, nil
}

// SitDown seats a player with an initial stack.
func (g *Game) SitDown(chair uint16, playerID uint64, stack int64) error {
	if chair >= uint16(g.cfg.MaxPlayers) {
		return fmt.Errorf("invalid chair %d", chair)
	}
	if stack < 0 {
		return fmt.Errorf("stack must be >= 0")
	}
	if g.playersByChair[chair] != nil {
		return fmt.Errorf("chair %d already occupied", chair)
	}
	g.playersByChair[chair] = &Player{ID: playerID, Chair: chair, stack: stack}
	return nil
}

// StandUp removes a player between hands. It refuses to act mid-hand so
// seat bookkeeping never races a live betting round.
func (g *Game) StandUp(chair uint16) error {
	if chair >= uint16(g.cfg.MaxPlayers) {
		return fmt.Errorf("invalid chair %d", chair)
	}
	if g.playersByChair[chair] == nil {
		return fmt.Errorf("chair %d is empty", chair)
	}
	if g.round > 0 && !g.ended {
		return ErrHandInProgress
	}

	delete(g.playersByChair, chair)
	delete(g.chairNodes, chair)

	if g.dealerNode != nil && g.dealerNode.ChairID == chair {
		g.dealerNode = nil
	}
	if g.smallBlindNode != nil && g.smallBlindNode.ChairID == chair {
		g.smallBlindNode = nil
	}
	if g.bigBlindNode != nil && g.bigBlindNode.ChairID == chair {
		g.bigBlindNode = nil
	}
	if g.curNode != nil && g.curNode.ChairID == chair {
		g.curNode = nil
	}
	return nil
}

func (g *Game) SetSittingOut(chair uint16, sittingOut bool) {
	if p := g.playersByChair[chair]; p != nil {
		p.sittingOut = sittingOut
	}
}

func (g *Game) Player(chair uint16) *Player { return g.playersByChair[chair] }

func (g *Game) Street() Street           { return g.street }
func (g *Game) IsHandComplete() bool     { return g.ended }
func (g *Game) CurrentBet() int64        { return g.currentBet }
func (g *Game) MinRaise() int64          { return g.minRaise }
func (g *Game) PotTotal() int64          { return g.potManager.total() + g.currentStreetBetsTotal() }
func (g *Game) CommunityCards() []card.Card {
	return append([]card.Card{}, g.communityCards...)
}
func (g *Game) History() []HandHistoryEntry { return append([]HandHistoryEntry{}, g.history...) }
func (g *Game) CurrentActorChair() uint16 {
	if g.curNode == nil {
		return InvalidChair
	}
	return g.curNode.ChairID
}
func (g *Game) DealerChair() uint16 {
	if g.dealerNode == nil {
		return InvalidChair
	}
	return g.dealerNode.ChairID
}

func (g *Game) currentStreetBetsTotal() int64 {
	var t int64
	for _, p := range g.playersByChair {
		t += p.bet
	}
	return t
}

// createInitialGameState resets every per-hand field; seats and chip
// stacks persist across this call.
func (g *Game) createInitialGameState() {
	g.ended = false
	g.lastSettlement = nil
	g.noShowdown = false
	g.communityCards = nil
	g.history = nil
	g.potManager.resetPots()
	g.activeCount = 0
	g.allinCount = 0
	g.currentBet = 0
	g.minRaise = g.cfg.BigBlind
	g.lastFullRaiseBet = g.cfg.BigBlind
	g.lastRaiserIndex = InvalidChair
	g.bettingOpened = false
}

// StartNewHand advances the dealer, posts blinds, deals hole cards, and
// sets the opening actor. Street advance is handled by advanceStreet and
// onStreetStart; the full-raise reopen rule lives in Act.
func (g *Game) StartNewHand() error {
	g.createInitialGameState()

	active := make([]*Player, 0, g.cfg.MaxPlayers)
	for chair := uint16(0); chair < uint16(g.cfg.MaxPlayers); chair++ {
		p := g.playersByChair[chair]
		if p == nil {
			continue
		}
		// Clear stale hand state on every seated player, including busted
		// or sitting-out ones, so a later rebuy never inherits last hand's
		// cards.
		p.ResetForNewHand()
		if p.stack <= 0 || p.sittingOut {
			continue
		}
		active = append(active, p)
	}
	if len(active) < g.cfg.MinPlayers {
		return fmt.Errorf("not enough players: %d < %d", len(active), g.cfg.MinPlayers)
	}

	g.round++
	g.activeCount = len(active)

	g.rebuildRing(active)
	g.shuffle()
	if err := g.selectDealer(); err != nil {
		return err
	}
	g.headsUpAtStart = len(g.chairNodes) == 2
	g.selectBlindsByDealer()
	g.dealHoleCards()
	g.postBlinds()

	g.street = StreetPreflop
	g.bettingOpened = true
	g.ensurePreflopActor()
	return nil
}

// ensurePreflopActor repositions curNode if the seat selectBlindsByDealer
// chose is already all-in (a short blind). It does not itself trigger a
// runout: when no seat can act, curNode is left nil, GetValidActions/Act
// return ErrOutOfTurn, and NeedsImmediateRunout reports the case so the
// caller drives it through ForceRunoutFromPreflop.
func (g *Game) ensurePreflopActor() {
	if g.curNode == nil {
		return
	}
	if !g.curNode.Player.folded && !g.curNode.Player.allIn {
		return
	}
	g.curNode = g.curNode.WalkOnce(func(n *PlayerNode) bool {
		return n.Player != nil && !n.Player.folded && !n.Player.allIn
	})
}

// NeedsImmediateRunout reports whether the blinds alone covered every
// seat's stack, so nobody can act preflop at all. The caller must follow
// up with ForceRunoutFromPreflop instead of requesting actions.
func (g *Game) NeedsImmediateRunout() bool {
	return !g.ended && g.curNode == nil
}

// ForceRunoutFromPreflop collects the posted blinds into the pot and
// starts the paced runout when NeedsImmediateRunout is true.
func (g *Game) ForceRunoutFromPreflop() (*ActResult, error) {
	if g.curNode != nil {
		return nil, ErrInvalidState("ForceRunoutFromPreflop called with an active actor")
	}
	g.collectBets()
	return g.advanceStreet()
}

func (g *Game) rebuildRing(active []*Player) {
	g.chairNodes = make(map[uint16]*PlayerNode, len(active))
	var first, last *PlayerNode
	for chair := uint16(0); chair < uint16(g.cfg.MaxPlayers); chair++ {
		p := g.playersByChair[chair]
		if p == nil || p.stack <= 0 || p.sittingOut {
			continue
		}
		node := &PlayerNode{ChairID: chair, Player: p}
		g.chairNodes[chair] = node
		if first == nil {
			first = node
		}
		if last != nil {
			last.Next = node
		}
		last = node
	}
	if first != nil && last != nil {
		last.Next = first
	}
}

func (g *Game) shuffle() {
	if len(g.cfg.DeckOverride) > 0 {
		g.deck.Init(g.cfg.DeckOverride)
		return
	}
	cards := make([]card.Card, len(FullDeck))
	copy(cards, FullDeck)
	g.deck.Init(cards)
	g.deck.Shuffle(g.rng)
}

func (g *Game) selectDealer() error {
	nodes := make([]*PlayerNode, 0, len(g.chairNodes))
	for _, n := range g.chairNodes {
		nodes = append(nodes, n)
	}
	if len(nodes) == 0 {
		g.dealerNode = nil
		return nil
	}
	if g.cfg.ForcedDealerChair != nil {
		n, ok := g.chairNodes[*g.cfg.ForcedDealerChair]
		if !ok {
			return fmt.Errorf("forced dealer chair %d is not active this hand", *g.cfg.ForcedDealerChair)
		}
		g.dealerNode = n
		return nil
	}
	if g.round == 1 || g.dealerNode == nil {
		g.dealerNode = nodes[g.rng.Intn(len(nodes))]
		return nil
	}
	prevChair := g.dealerNode.ChairID
	if prevNode, ok := g.chairNodes[prevChair]; ok && prevNode.Next != nil {
		g.dealerNode = prevNode.Next
		return nil
	}
	g.dealerNode = nodes[g.rng.Intn(len(nodes))]
	return nil
}

// selectBlindsByDealer applies the heads-up BTN=SB rule: with exactly two
// active seats the dealer also posts the small blind and acts first
// preflop; otherwise SB=dealer+1, BB=SB+1, opening actor is UTG (BB+1).
func (g *Game) selectBlindsByDealer() {
	dealer := g.dealerNode
	if dealer == nil {
		return
	}
	if g.activeCount == 2 {
		g.smallBlindNode = dealer
		g.bigBlindNode = dealer.Next
		g.curNode = dealer
	} else {
		g.smallBlindNode = dealer.Next
		g.bigBlindNode = g.smallBlindNode.Next
		g.curNode = g.bigBlindNode.Next
	}
}

func (g *Game) dealHoleCards() {
	if g.smallBlindNode == nil {
		return
	}
	for i := 0; i < 4; i++ {
		g.smallBlindNode.WalkAll(func(cur *PlayerNode) {
			cards, ok := g.deck.PopCards(1)
			if !ok {
				panic("deck underflow")
			}
			cur.Player.AddHandCard(cards...)
		})
	}
}

// postBlinds posts SB/BB, clamped to each player's stack. A short blind
// marks that seat all-in without being treated as a raise.
func (g *Game) postBlinds() {
	if g.smallBlindNode != nil && g.cfg.SmallBlind > 0 {
		g.postForced(g.smallBlindNode.Player, g.cfg.SmallBlind)
	}
	if g.bigBlindNode != nil {
		g.postForced(g.bigBlindNode.Player, g.cfg.BigBlind)
	}
	g.currentBet = g.cfg.BigBlind
	g.minRaise = g.cfg.BigBlind
	g.lastFullRaiseBet = g.cfg.BigBlind
	if g.bigBlindNode != nil {
		g.lastRaiserIndex = g.bigBlindNode.ChairID
	}
	g.recountAllin()
}

func (g *Game) postForced(p *Player, amount int64) {
	if p == nil || p.stack <= 0 {
		return
	}
	p.placeBet(amount)
	p.hasActed = false
}

func (g *Game) recountAllin() {
	g.allinCount = 0
	for _, p := range g.playersByChair {
		if p != nil && !p.folded && p.allIn {
			g.allinCount++
		}
	}
}

// onStreetStart resets per-street actor state and positions the first
// actor: heads-up uses BB postflop (BTN/SB preflop is set by
// selectBlindsByDealer instead), otherwise the first non-folded,
// non-all-in seat clockwise from the dealer's left (SB side).
func (g *Game) onStreetStart() {
	for _, p := range g.playersByChair {
		if p != nil {
			p.hasActed = false
		}
	}
	g.bettingOpened = g.street == StreetPreflop // blinds count as the opening bet
	if g.street != StreetPreflop {
		g.currentBet = 0
		g.minRaise = g.cfg.BigBlind
		g.lastFullRaiseBet = g.cfg.BigBlind
		g.lastRaiserIndex = InvalidChair

		var first *PlayerNode
		if g.headsUpAtStart {
			first = g.bigBlindNode
		} else {
			first = g.smallBlindNode
		}
		g.curNode = first.WalkOnce(func(n *PlayerNode) bool {
			return n.Player != nil && !n.Player.folded && !n.Player.allIn
		})
	}
}

// GetValidActions computes the pot-limit bounds for the seat currently
// permitted to act. Returned amounts are the incremental chips the seat
// would add this action (matching Act's amount parameter), not the
// resulting total street bet.
func (g *Game) GetValidActions(chair uint16) ([]ValidAction, error) {
	if g.ended {
		return nil, ErrHandEnded
	}
	if g.curNode == nil || g.curNode.ChairID != chair {
		return nil, ErrOutOfTurn
	}
	p := g.playersByChair[chair]
	if p == nil || p.folded || p.allIn {
		return nil, ErrInvalidState("acting seat cannot act")
	}

	toCall := g.currentBet - p.bet
	chips := p.stack
	pot := g.potManager.total() + g.currentStreetBetsTotal()

	actions := []ValidAction{{Kind: ActionFold, MinAmount: 0, MaxAmount: 0}}

	if toCall <= 0 {
		actions = append(actions, ValidAction{Kind: ActionCheck})
		betMin := g.cfg.BigBlind
		if betMin > chips {
			betMin = chips
		}
		betMax := pot
		if betMax > chips {
			betMax = chips
		}
		if chips > 0 && betMax > 0 {
			actions = append(actions, ValidAction{Kind: ActionBet, MinAmount: betMin, MaxAmount: betMax})
			if chips <= betMax {
				actions = append(actions, ValidAction{Kind: ActionAllin, MinAmount: chips, MaxAmount: chips})
			}
		}
	} else {
		callAmt := toCall
		if callAmt > chips {
			callAmt = chips
		}
		actions = append(actions, ValidAction{Kind: ActionCall, MinAmount: callAmt, MaxAmount: callAmt})

		raiseMin := (g.currentBet + g.minRaise) - p.bet
		raiseMax := toCall + (pot + toCall)
		if raiseMax > chips {
			raiseMax = chips
		}
		canRaise := raiseMin <= raiseMax && chips > toCall
		// A short all-in that fell below the last full-raise increment
		// does not reopen betting: a seat that already acted since the
		// last full raise only owes the extra call, never a re-raise.
		isReopen := !p.hasActed
		if canRaise && isReopen {
			actions = append(actions, ValidAction{Kind: ActionRaise, MinAmount: raiseMin, MaxAmount: raiseMax})
			if chips > 0 && chips <= raiseMax {
				actions = append(actions, ValidAction{Kind: ActionAllin, MinAmount: chips, MaxAmount: chips})
			}
		} else if chips > 0 && chips <= callAmt {
			// Covered entirely by the call: shoving and calling coincide.
			actions = append(actions, ValidAction{Kind: ActionAllin, MinAmount: chips, MaxAmount: chips})
		} else if isReopen && chips > callAmt {
			// Stack covers more than the call but can't reach a full raise:
			// still a legal shove (spec 4.2: allin offered iff chips>0 and
			// chips<=pot-limit max), it just won't reopen action for seats
			// that already acted since the last full raise.
			actions = append(actions, ValidAction{Kind: ActionAllin, MinAmount: chips, MaxAmount: chips})
		}
	}

	return actions, nil
}

// Act applies amount (the incremental chips this seat adds this action,
// matching GetValidActions' bounds) for the given action kind. Street
// advance, runout detection, and hand completion are all handled here;
// the caller classifies the ActResult for broadcast/pacing purposes.
func (g *Game) Act(chair uint16, kind ActionKind, amount int64) (*ActResult, error) {
	if g.ended {
		return nil, ErrHandEnded
	}
	if g.curNode == nil || g.curNode.ChairID != chair {
		return nil, ErrOutOfTurn
	}
	player := g.curNode.Player

	valid, err := g.GetValidActions(chair)
	if err != nil {
		return nil, err
	}
	var bound *ValidAction
	for i := range valid {
		if valid[i].Kind == kind {
			bound = &valid[i]
			break
		}
	}
	if bound == nil {
		return nil, fmt.Errorf("action %s not legal for chair %d", kind, chair)
	}
	if kind != ActionFold && kind != ActionCheck {
		if amount < bound.MinAmount || amount > bound.MaxAmount {
			return nil, fmt.Errorf("amount %d outside bounds [%d,%d] for %s", amount, bound.MinAmount, bound.MaxAmount, kind)
		}
	}

	g.history = append(g.history, HandHistoryEntry{Street: g.street, Chair: chair, Action: kind, Amount: amount})
	player.hasActed = true
	player.setLastAction(kind)

	newHighWater := player.bet + amount
	isAggression := kind == ActionBet || kind == ActionRaise || (kind == ActionAllin && newHighWater > g.currentBet)

	switch kind {
	case ActionFold:
		player.setFolded(true)
		g.activeCount--
		for i := range g.potManager.pots {
			delete(g.potManager.pots[i].EligiblePlayers, chair)
		}
		if g.activeCount <= 1 {
			g.noShowdown = true
			return g.finishNoShowdown()
		}
	case ActionCheck:
		// no chip movement
	case ActionCall, ActionBet, ActionRaise, ActionAllin:
		player.placeBet(amount)
		if player.allIn {
			g.allinCount++
		}
	}

	if isAggression {
		increment := newHighWater - g.currentBet
		fullRaise := increment >= g.minRaise
		g.currentBet = newHighWater
		if fullRaise {
			g.minRaise = increment
			g.lastFullRaiseBet = newHighWater
			g.lastRaiserIndex = chair
			for c, p := range g.playersByChair {
				if c != chair && p != nil && !p.folded && !p.allIn {
					p.hasActed = false
				}
			}
		}
		g.bettingOpened = true
	}

	return g.advanceAfterAction()
}

func (g *Game) advanceAfterAction() (*ActResult, error) {
	next := g.findNextActor(g.curNode)
	if next != nil {
		g.curNode = next
		return &ActResult{}, nil
	}

	// No one left who can act: the street is closed.
	g.collectBets()
	return g.advanceStreet()
}

// findNextActor walks forward from cur looking for a seat that still owes
// a decision this street: non-folded, non-all-in, and either it hasn't
// acted yet or its street bet trails the high water.
func (g *Game) findNextActor(cur *PlayerNode) *PlayerNode {
	if cur == nil || cur.Next == nil {
		return nil
	}
	return cur.Next.WalkOnce(func(n *PlayerNode) bool {
		p := n.Player
		if p == nil || p.folded || p.allIn {
			return false
		}
		return !p.hasActed || p.bet != g.currentBet
	})
}

func (g *Game) collectBets() {
	playersWithBets := make([]*Player, 0, g.activeCount)
	for chair := uint16(0); chair < uint16(g.cfg.MaxPlayers); chair++ {
		p := g.playersByChair[chair]
		if p != nil && p.bet > 0 {
			playersWithBets = append(playersWithBets, p)
		}
	}
	g.potManager.calcPotsByPlayerBets(playersWithBets)
	for _, p := range playersWithBets {
		p.resetStreetBet()
	}
	g.currentBet = 0
}

// advanceStreet deals the next street's community cards and finds the
// next actor. If nobody remaining can act (every contender is folded or
// all-in), it does NOT deal: dealing is left entirely to the caller's
// paced AdvanceRunoutStreet calls (spec 4.7 "reveal remaining streets
// sequentially"), so the very first runout street gets the same
// RunoutStreetDelay pacing as every subsequent one instead of landing on
// the client at the same instant as the all-in showdown reveal.
func (g *Game) advanceStreet() (*ActResult, error) {
	if g.street == StreetRiver {
		return g.finishAtShowdown()
	}

	if g.activeCount-g.allinCount <= 1 {
		return &ActResult{AwaitingRunout: true}, nil
	}

	g.street++
	g.dealCommunityCardsForStreet()
	g.onStreetStart()

	return &ActResult{StreetAdvanced: true, NewStreet: g.street}, nil
}

// AdvanceRunoutStreet deals exactly one more street when betting closed
// early because every contender is all-in. The runout sequencer calls
// this once per paced reveal; the call that completes the river board
// settles the hand in the same step, since no further board card remains
// to pace and the spec wants hand completion to begin right after the
// river reveal, not one more runout delay later.
func (g *Game) AdvanceRunoutStreet() (*ActResult, error) {
	if g.ended {
		return nil, ErrHandEnded
	}
	g.street++
	g.dealCommunityCardsForStreet()
	if g.street == StreetRiver {
		return g.finishAtShowdown()
	}
	return &ActResult{StreetAdvanced: true, NewStreet: g.street, AwaitingRunout: true}, nil
}

func (g *Game) dealCommunityCardsForStreet() {
	want := 0
	switch g.street {
	case StreetFlop:
		want = 3
	case StreetTurn, StreetRiver:
		want = 1
	case StreetShowdown:
		want = 5 - len(g.communityCards)
	}
	if want <= 0 {
		return
	}
	if cards, ok := g.deck.PopCards(want); ok {
		g.communityCards = append(g.communityCards, cards...)
	}
}

func (g *Game) finishAtShowdown() (*ActResult, error) {
	g.street = StreetShowdown
	g.dealCommunityCardsForStreet()
	settlement, err := g.SettleShowdown()
	if err != nil {
		return nil, err
	}
	g.lastSettlement = settlement
	g.ended = true
	return &ActResult{HandComplete: true, Settlement: settlement}, nil
}

func (g *Game) finishNoShowdown() (*ActResult, error) {
	g.collectBets()
	settlement, err := g.SettleShowdown()
	if err != nil {
		return nil, err
	}
	g.lastSettlement = settlement
	g.ended = true
	return &ActResult{HandComplete: true, Settlement: settlement}, nil
}
