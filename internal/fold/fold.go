// Package fold is the FoldProcessor: folds applied on a player's behalf
// (disconnects, departures, and pending early folds chained in as the
// turn arrives). The folded seat must be the current acting seat.
package fold

import "github.com/okihara/plo-game-sub001/engine"

// Result reports whether the caller must still advance the hand (the
// engine already advances internally on a successful Act, so this is
// mostly a pass-through, kept distinct to match the spec's named
// contract: processFold/processSilentFold both return a requiresAdvance
// flag alongside the new state).
type Result struct {
	ActResult       *engine.ActResult
	RequiresAdvance bool
}

// ProcessFold folds the acting player identified by chair. wasCurrentPlayer
// records whether this was the live acting seat (vs. an early fold now
// being executed); both paths apply through the same engine.Act call so
// hand history and reopen bookkeeping stay consistent.
func ProcessFold(g *engine.Game, chair uint16, wasCurrentPlayer bool) (*Result, error) {
	res, err := g.Act(chair, engine.ActionFold, 0)
	if err != nil {
		return nil, err
	}
	return &Result{ActResult: res, RequiresAdvance: !res.HandComplete}, nil
}

// ProcessSilentFold is used when the seat has already departed (offline
// TTL expiry, stand-up mid-hand). Like ProcessFold it goes through
// engine.Act, so the chair must be the current acting seat; otherwise
// engine.ErrOutOfTurn is returned.
func ProcessSilentFold(g *engine.Game, chair uint16) (*Result, error) {
	return ProcessFold(g, chair, false)
}
