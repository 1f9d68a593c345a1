package engine

import "github.com/okihara/plo-game-sub001/card"

// PlayerSnapshot is one seat's unmasked hand state. Hole-card masking for
// seats other than the viewer belongs to the spectator projection layer,
// not here: this snapshot is the ground truth the table actor holds.
type PlayerSnapshot struct {
	ID         uint64
	Chair      uint16
	Stack      int64
	Bet        int64
	Folded     bool
	AllIn      bool
	SittingOut bool
	LastAction ActionKind
	HandCards  []card.Card
}

type PotSnapshot struct {
	Amount          int64
	EligiblePlayers []uint16
}

// Snapshot is the engine's full unmasked state at an instant, used both
// to build outbound client views and to persist hand history.
type Snapshot struct {
	Round  uint16
	Street Street
	Ended  bool

	DealerChair     uint16
	SmallBlindChair uint16
	BigBlindChair   uint16
	ActionChair     uint16

	CurrentBet      int64
	MinRaise        int64
	LastRaiserChair uint16

	CommunityCards []card.Card
	Pots           []PotSnapshot
	Players        []PlayerSnapshot
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Round:           g.round,
		Street:          g.street,
		Ended:           g.ended,
		CurrentBet:      g.currentBet,
		MinRaise:        g.minRaise,
		LastRaiserChair: g.lastRaiserIndex,
		CommunityCards:  append([]card.Card{}, g.communityCards...),
		DealerChair:     InvalidChair,
		SmallBlindChair: InvalidChair,
		BigBlindChair:   InvalidChair,
		ActionChair:     InvalidChair,
	}
	if g.dealerNode != nil {
		s.DealerChair = g.dealerNode.ChairID
	}
	if g.smallBlindNode != nil {
		s.SmallBlindChair = g.smallBlindNode.ChairID
	}
	if g.bigBlindNode != nil {
		s.BigBlindChair = g.bigBlindNode.ChairID
	}
	if g.curNode != nil {
		s.ActionChair = g.curNode.ChairID
	}

	for chair := uint16(0); chair < uint16(g.cfg.MaxPlayers); chair++ {
		p := g.playersByChair[chair]
		if p == nil {
			continue
		}
		s.Players = append(s.Players, PlayerSnapshot{
			ID:         p.ID,
			Chair:      p.Chair,
			Stack:      p.stack,
			Bet:        p.bet,
			Folded:     p.folded,
			AllIn:      p.allIn,
			SittingOut: p.sittingOut,
			LastAction: p.lastAction,
			HandCards:  append([]card.Card{}, p.handCards...),
		})
	}

	for _, pot := range g.potManager.pots {
		ps := PotSnapshot{Amount: pot.Amount}
		for chair := range pot.EligiblePlayers {
			ps.EligiblePlayers = append(ps.EligiblePlayers, chair)
		}
		s.Pots = append(s.Pots, ps)
	}

	return s
}
