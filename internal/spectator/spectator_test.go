package spectator

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/okihara/plo-game-sub001/card"
	"github.com/okihara/plo-game-sub001/engine"
	"github.com/okihara/plo-game-sub001/internal/seatmgr"
)

func mustCards(t *testing.T, strs ...string) []card.Card {
	t.Helper()
	out := make([]card.Card, len(strs))
	for i, s := range strs {
		c, err := card.ParseCard(s)
		if err != nil {
			t.Fatalf("parse card %q: %v", s, err)
		}
		out[i] = c
	}
	return out
}

func sampleSnapshot(t *testing.T) engine.Snapshot {
	t.Helper()
	return engine.Snapshot{
		Street:         engine.StreetFlop,
		DealerChair:    0,
		ActionChair:    1,
		CurrentBet:     100,
		MinRaise:       100,
		CommunityCards: mustCards(t, "2h", "7c", "9d"),
		Pots:           []engine.PotSnapshot{{Amount: 300, EligiblePlayers: []uint16{0, 1}}},
		Players: []engine.PlayerSnapshot{
			{ID: 1001, Chair: 0, Stack: 900, HandCards: mustCards(t, "As", "Ks", "4d", "5d")},
			{ID: 1002, Chair: 1, Stack: 900, HandCards: mustCards(t, "Qc", "Jc", "3h", "3s")},
		},
	}
}

func sampleSeats(t *testing.T) *seatmgr.Manager {
	t.Helper()
	m := seatmgr.New(6)
	chair0 := uint16(0)
	chair1 := uint16(1)
	if _, err := m.SeatPlayer(1001, "alice", 1000, &chair0, false); err != nil {
		t.Fatalf("seat alice: %v", err)
	}
	if _, err := m.SeatPlayer(1002, "bob", 1000, &chair1, false); err != nil {
		t.Fatalf("seat bob: %v", err)
	}
	return m
}

func TestProject_MasksOtherSeatsHoleCards(t *testing.T) {
	snap := sampleSnapshot(t)
	seats := sampleSeats(t)

	view := Project("t1", snap, seats, 0, false, 50, 100, 0, 0)

	var self, other *ClientPlayerView
	for i := range view.Players {
		if view.Players[i].Chair == 0 {
			self = &view.Players[i]
		} else {
			other = &view.Players[i]
		}
	}
	if self == nil || other == nil {
		t.Fatalf("expected both seats in projection, got %+v", view.Players)
	}
	if len(self.HoleCards) != 4 {
		t.Fatalf("expected viewer's own hole cards visible, got %v", self.HoleCards)
	}
	if len(other.HoleCards) != 0 {
		t.Fatalf("expected other seat's hole cards masked, got %v", other.HoleCards)
	}
}

func TestProject_SpectatorSeesEveryHand(t *testing.T) {
	snap := sampleSnapshot(t)
	seats := sampleSeats(t)

	view := Project("t1", snap, seats, engine.InvalidChair, true, 50, 100, 0, 0)

	for _, p := range view.Players {
		if len(p.HoleCards) != 4 {
			t.Fatalf("expected spectator view to reveal chair %d's hand, got %v", p.Chair, p.HoleCards)
		}
	}
}

func TestProject_HandEndedRevealsEveryHandEvenToPlayers(t *testing.T) {
	snap := sampleSnapshot(t)
	snap.Ended = true
	seats := sampleSeats(t)

	view := Project("t1", snap, seats, 0, false, 50, 100, 0, 0)

	got := make(map[uint16]int)
	for _, p := range view.Players {
		got[p.Chair] = len(p.HoleCards)
	}
	want := map[uint16]int{0: 4, 1: 4}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected hole-card visibility after hand end (-want +got):\n%s", diff)
	}
}
