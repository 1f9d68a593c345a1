package action

import (
	"testing"
	"time"

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

func TestRequestNextAction_SetsDeadlineFromActionTimeout(t *testing.T) {
	g := newTestGame(t)
	c := New()
	actor := g.CurrentActorChair()
	now := time.Now()

	pa, err := c.RequestNextAction(g, actor, 99, now)
	if err != nil {
		t.Fatalf("RequestNextAction err: %v", err)
	}
	if pa.Deadline.Sub(now) != ActionTimeout {
		t.Fatalf("expected deadline %v after now, got %v", ActionTimeout, pa.Deadline.Sub(now))
	}
	if c.Pending() != pa {
		t.Fatalf("expected Pending() to return the same PendingAction")
	}
}

func TestHandleAction_RejectsWrongActingSeat(t *testing.T) {
	g := newTestGame(t)
	c := New()
	actor := g.CurrentActorChair()
	if _, err := c.RequestNextAction(g, actor, 99, time.Now()); err != nil {
		t.Fatalf("RequestNextAction err: %v", err)
	}

	other := actor + 1
	if other >= 6 {
		other = 0
	}
	if _, err := c.HandleAction(g, other, engine.ActionFold, 0); err != ErrNotActingSeat {
		t.Fatalf("expected ErrNotActingSeat, got %v", err)
	}
}

func TestHandleAction_ClearsPendingOnSuccess(t *testing.T) {
	g := newTestGame(t)
	c := New()
	actor := g.CurrentActorChair()
	if _, err := c.RequestNextAction(g, actor, 99, time.Now()); err != nil {
		t.Fatalf("RequestNextAction err: %v", err)
	}

	if _, err := c.HandleAction(g, actor, engine.ActionFold, 0); err != nil {
		t.Fatalf("HandleAction err: %v", err)
	}
	if c.Pending() != nil {
		t.Fatalf("expected Pending() to be cleared after a successful action")
	}
}

func TestPickTimeoutAction_PrefersCheckOverFold(t *testing.T) {
	valid := []engine.ValidAction{
		{Kind: engine.ActionFold},
		{Kind: engine.ActionCheck},
		{Kind: engine.ActionBet, MinAmount: 100, MaxAmount: 500},
	}
	kind, amount := PickTimeoutAction(valid)
	if kind != engine.ActionCheck || amount != 0 {
		t.Fatalf("expected check/0, got %v/%d", kind, amount)
	}
}

func TestPickTimeoutAction_FallsBackToFold(t *testing.T) {
	valid := []engine.ValidAction{
		{Kind: engine.ActionCall, MinAmount: 100, MaxAmount: 100},
		{Kind: engine.ActionFold},
	}
	kind, amount := PickTimeoutAction(valid)
	if kind != engine.ActionFold || amount != 0 {
		t.Fatalf("expected fold/0, got %v/%d", kind, amount)
	}
}

func TestSubmitEarlyFold_ForbidsPreflopBigBlind(t *testing.T) {
	g := newTestGame(t)
	c := New()
	snap := g.Snapshot()

	err := c.SubmitEarlyFold(g, snap.BigBlindChair, 123)
	if err != ErrEarlyFoldForbidden {
		t.Fatalf("expected ErrEarlyFoldForbidden for the preflop big blind, got %v", err)
	}
}

func TestSubmitAndPopEarlyFold_RoundTrips(t *testing.T) {
	g := newTestGame(t)
	c := New()
	snap := g.Snapshot()

	var nonBB uint16
	for _, ps := range snap.Players {
		if ps.Chair != snap.BigBlindChair {
			nonBB = ps.Chair
			break
		}
	}

	if err := c.SubmitEarlyFold(g, nonBB, 456); err != nil {
		t.Fatalf("SubmitEarlyFold err: %v", err)
	}
	playerID, ok := c.PopEarlyFold(nonBB)
	if !ok || playerID != 456 {
		t.Fatalf("expected (456, true), got (%d, %v)", playerID, ok)
	}
	if _, ok := c.PopEarlyFold(nonBB); ok {
		t.Fatalf("expected the early fold to be consumed after one Pop")
	}
}
