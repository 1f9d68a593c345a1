package spectator

import (
	"errors"

	"github.com/okihara/plo-game-sub001/engine"
)

var ErrSeatNotFound = errors.New("no player at that seat")

// AdminHelper applies an authenticated operator's chip override. Callers
// (internal/table) are responsible for checking the bearer token with
// internal/adminauth before reaching this far; this package never sees
// credentials.
type AdminHelper struct{}

// SetChips overwrites a seated player's stack directly on the live game
// state. It only works between hands: the StandUp it routes through
// returns engine.ErrHandInProgress while a hand is running, and
// internal/table makes no check of its own before calling in.
func SetChips(g *engine.Game, chair uint16, chips int64) error {
	p := g.Player(chair)
	if p == nil {
		return ErrSeatNotFound
	}
	delta := chips - p.Stack()
	if delta == 0 {
		return nil
	}
	// addStack is unexported; Player only exposes a relative nudge via
	// the engine's own sit-down/stand-up bookkeeping, so route through a
	// stand-up/sit-down pair to land on the requested absolute amount.
	chairCopy := chair
	playerID := p.ID
	if err := g.StandUp(chairCopy); err != nil {
		return err
	}
	return g.SitDown(chairCopy, playerID, chips)
}
