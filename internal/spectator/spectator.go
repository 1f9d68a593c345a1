// Package spectator builds the read-only client projection of a table's
// engine snapshot (SpectatorManager) and exposes the admin chip-override
// entry point (AdminHelper) gated by an external authenticator.
package spectator

import (
	"github.com/okihara/plo-game-sub001/card"
	"github.com/okihara/plo-game-sub001/engine"
	"github.com/okihara/plo-game-sub001/internal/seatmgr"
)

// ClientGameState is what one connected seat is allowed to see: every
// other seat's hole cards are masked unless the projection is built for
// the privileged spectator channel (Project's asSpectator argument) or
// the hand has ended.
type ClientGameState struct {
	TableID string `json:"tableId"`

	Players []ClientPlayerView `json:"players"`

	CommunityCards []string         `json:"communityCards"`
	Pot            int64            `json:"pot"`
	SidePots       []ClientSidePot  `json:"sidePots"`
	CurrentStreet  string           `json:"currentStreet"`

	DealerSeat        uint16 `json:"dealerSeat"`
	CurrentPlayerSeat uint16 `json:"currentPlayerSeat"`
	CurrentBet        int64  `json:"currentBet"`
	MinRaise          int64  `json:"minRaise"`
	SmallBlind        int64  `json:"smallBlind"`
	BigBlind          int64  `json:"bigBlind"`

	IsHandInProgress bool  `json:"isHandInProgress"`
	ActionTimeoutAt  int64 `json:"actionTimeoutAtMs,omitempty"`
	ActionTimeoutMs  int64 `json:"actionTimeoutMs,omitempty"`
}

type ClientPlayerView struct {
	Chair       uint16   `json:"seatIndex"`
	PlayerID    uint64   `json:"playerId"`
	DisplayName string   `json:"displayName"`
	Chips       int64    `json:"chips"`
	CurrentBet  int64    `json:"currentBet"`
	Folded      bool     `json:"folded"`
	IsAllIn     bool     `json:"isAllIn"`
	IsConnected bool     `json:"isConnected"`
	IsSittingOut bool    `json:"isSittingOut"`
	HoleCards   []string `json:"holeCards,omitempty"` // only present for viewer's own seat, a spectator, or once the hand has ended
}

type ClientSidePot struct {
	Amount          int64    `json:"amount"`
	EligibleSeats   []uint16 `json:"eligibleSeats"`
}

// Project builds the ClientGameState for a single viewer. viewerChair is
// the InvalidChair sentinel for a pure spectator connection (no seat);
// asSpectator additionally unmasks every hole card, for the privileged
// read-only channel the spec carves out for Spectators.
func Project(tableID string, snap engine.Snapshot, seats *seatmgr.Manager, viewerChair uint16, asSpectator bool, smallBlind, bigBlind int64, actionTimeoutAt, actionTimeoutMs int64) ClientGameState {
	out := ClientGameState{
		TableID:           tableID,
		CommunityCards:    renderCards(snap.CommunityCards),
		Pot:               potTotal(snap),
		CurrentStreet:     snap.Street.String(),
		DealerSeat:        snap.DealerChair,
		CurrentPlayerSeat: snap.ActionChair,
		CurrentBet:        snap.CurrentBet,
		MinRaise:          snap.MinRaise,
		SmallBlind:        smallBlind,
		BigBlind:          bigBlind,
		IsHandInProgress:  !snap.Ended && snap.Street != engine.StreetDone,
		ActionTimeoutAt:   actionTimeoutAt,
		ActionTimeoutMs:   actionTimeoutMs,
	}

	for _, pot := range snap.Pots {
		out.SidePots = append(out.SidePots, ClientSidePot{Amount: pot.Amount, EligibleSeats: pot.EligiblePlayers})
	}

	for _, ps := range snap.Players {
		view := ClientPlayerView{
			Chair:      ps.Chair,
			PlayerID:   ps.ID,
			Chips:      ps.Stack,
			CurrentBet: ps.Bet,
			Folded:     ps.Folded,
			IsAllIn:    ps.AllIn,
			IsSittingOut: ps.SittingOut,
		}
		if s, ok := seats.Seat(ps.Chair); ok {
			view.DisplayName = s.DisplayName
			view.IsConnected = s.HasTransport
		}
		if asSpectator || ps.Chair == viewerChair || snap.Ended {
			view.HoleCards = renderCards(ps.HandCards)
		}
		out.Players = append(out.Players, view)
	}

	return out
}

func potTotal(snap engine.Snapshot) int64 {
	var total int64
	for _, p := range snap.Pots {
		total += p.Amount
	}
	return total
}

func renderCards(cards []card.Card) []string {
	if len(cards) == 0 {
		return nil
	}
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
