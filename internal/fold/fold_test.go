package fold

import (
	"testing"

	"github.com/okihara/plo-game-sub001/engine"
)

func newTestGame(t *testing.T) *engine.Game {
	t.Helper()
	g, err := engine.NewGame(engine.Config{
		MaxPlayers: 6,
		MinPlayers: 2,
		SmallBlind: 50,
		BigBlind:   100,
		Seed:       1,
	})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	if err := g.SitDown(0, 10001, 1000); err != nil {
		t.Fatalf("SitDown 0: %v", err)
	}
	if err := g.SitDown(1, 10002, 1000); err != nil {
		t.Fatalf("SitDown 1: %v", err)
	}
	if err := g.SitDown(2, 10003, 1000); err != nil {
		t.Fatalf("SitDown 2: %v", err)
	}
	if err := g.StartNewHand(); err != nil {
		t.Fatalf("StartNewHand err: %v", err)
	}
	return g
}

func TestProcessFold_FoldsActingSeat(t *testing.T) {
	g := newTestGame(t)
	actor := g.CurrentActorChair()

	res, err := ProcessFold(g, actor, true)
	if err != nil {
		t.Fatalf("ProcessFold err: %v", err)
	}
	if res.ActResult == nil {
		t.Fatalf("expected a non-nil ActResult")
	}

	snap := g.Snapshot()
	for _, ps := range snap.Players {
		if ps.Chair == actor && !ps.Folded {
			t.Fatalf("expected chair %d to be folded", actor)
		}
	}
}

func TestProcessSilentFold_SameBehaviorAsProcessFold(t *testing.T) {
	g := newTestGame(t)
	actor := g.CurrentActorChair()

	res, err := ProcessSilentFold(g, actor)
	if err != nil {
		t.Fatalf("ProcessSilentFold err: %v", err)
	}
	if !res.RequiresAdvance && !res.ActResult.HandComplete {
		t.Fatalf("expected RequiresAdvance unless the hand ended")
	}
}

func TestProcessFold_InvalidChairReturnsError(t *testing.T) {
	g := newTestGame(t)
	actor := g.CurrentActorChair()
	wrongChair := actor + 1
	if wrongChair >= 6 {
		wrongChair = 0
	}
	if wrongChair == actor {
		t.Skip("no distinct non-acting chair to test against")
	}

	if _, err := ProcessFold(g, wrongChair, true); err == nil {
		t.Fatalf("expected an error folding a non-acting chair out of turn")
	}
}
