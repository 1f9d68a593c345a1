package engine

import "github.com/okihara/plo-game-sub001/card"

// InvalidChair is the sentinel seat index meaning "no seat".
const InvalidChair uint16 = 65535

// Street identifies a betting round.
type Street byte

const (
	StreetPreflop  Street = 0
	StreetFlop     Street = 1
	StreetTurn     Street = 2
	StreetRiver    Street = 3
	StreetShowdown Street = 4
	StreetDone     Street = 5
)

var streetNames = map[Street]string{
	StreetPreflop:  "preflop",
	StreetFlop:     "flop",
	StreetTurn:     "turn",
	StreetRiver:    "river",
	StreetShowdown: "showdown",
	StreetDone:     "done",
}

func (s Street) String() string {
	if n, ok := streetNames[s]; ok {
		return n
	}
	return "unknown"
}

// ActionKind enumerates the legal player actions.
type ActionKind byte

const (
	ActionNone  ActionKind = 0
	ActionCheck ActionKind = 1
	ActionBet   ActionKind = 2
	ActionCall  ActionKind = 3
	ActionRaise ActionKind = 4
	ActionFold  ActionKind = 5
	ActionAllin ActionKind = 6
)

var actionNames = map[ActionKind]string{
	ActionNone:  "none",
	ActionCheck: "check",
	ActionBet:   "bet",
	ActionCall:  "call",
	ActionRaise: "raise",
	ActionFold:  "fold",
	ActionAllin: "allin",
}

func (a ActionKind) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

// Hand category ranks, worst to best. Larger is stronger.
const (
	HandHighCard byte = iota + 1
	HandOnePair
	HandTwoPair
	HandThreeOfKind
	HandStraight
	HandFlush
	HandFullHouse
	HandFourOfKind
	HandStraightFlush
)

// FullDeck is the standard 52-card deck in a fixed, unshuffled order.
var FullDeck = card.FullDeck()
