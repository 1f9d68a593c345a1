package engine

import (
	"fmt"
	"time"

	"github.com/okihara/plo-game-sub001/card"
)

// Config parameterizes a single table's engine instance. Seed and
// DeckOverride exist so tests and replay tooling can reconstruct a hand
// deterministically.
type Config struct {
	MaxPlayers int
	MinPlayers int

	SmallBlind int64
	BigBlind   int64

	ActionTimeout time.Duration

	// Seed drives the shuffle's *rand.Rand. Zero means time-based.
	Seed int64

	// ForcedDealerChair pins the button seat for deterministic reconstruction.
	ForcedDealerChair *uint16
	// DeckOverride pins the full 52-card deal order, consumed from index 0 upward.
	DeckOverride []card.Card
}

func (c Config) validate() error {
	if c.MaxPlayers <= 0 {
		return fmt.Errorf("MaxPlayers must be > 0")
	}
	if c.MinPlayers <= 0 {
		return fmt.Errorf("MinPlayers must be > 0")
	}
	if c.MinPlayers > c.MaxPlayers {
		return fmt.Errorf("MinPlayers must be <= MaxPlayers")
	}
	if c.SmallBlind < 0 || c.BigBlind <= 0 || c.SmallBlind > c.BigBlind {
		return fmt.Errorf("invalid blinds: sb=%d bb=%d", c.SmallBlind, c.BigBlind)
	}
	if c.ActionTimeout < 0 {
		return fmt.Errorf("ActionTimeout must be >= 0")
	}
	if c.ForcedDealerChair != nil && int(*c.ForcedDealerChair) >= c.MaxPlayers {
		return fmt.Errorf("forced dealer chair out of range: %d", *c.ForcedDealerChair)
	}
	return validateDeckOverride(c.DeckOverride)
}

func validateDeckOverride(deck []card.Card) error {
	if len(deck) == 0 {
		return nil
	}
	if len(deck) != len(FullDeck) {
		return fmt.Errorf("deck override must contain %d cards, got %d", len(FullDeck), len(deck))
	}
	valid := make(map[card.Card]struct{}, len(FullDeck))
	for _, c := range FullDeck {
		valid[c] = struct{}{}
	}
	seen := make(map[card.Card]struct{}, len(deck))
	for i, c := range deck {
		if _, ok := valid[c]; !ok {
			return fmt.Errorf("deck override contains invalid card at index %d: %v", i, c)
		}
		if _, ok := seen[c]; ok {
			return fmt.Errorf("deck override contains duplicate card at index %d: %v", i, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}
