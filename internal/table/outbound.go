package table

import (
	"log"
	"time"

	"github.com/okihara/plo-game-sub001/card"
	"github.com/okihara/plo-game-sub001/engine"
	"github.com/okihara/plo-game-sub001/internal/action"
	"github.com/okihara/plo-game-sub001/internal/spectator"
	"github.com/okihara/plo-game-sub001/internal/transport"
)

var handCategoryNames = map[byte]string{
	engine.HandHighCard:      "high card",
	engine.HandOnePair:       "one pair",
	engine.HandTwoPair:       "two pair",
	engine.HandThreeOfKind:   "three of a kind",
	engine.HandStraight:      "straight",
	engine.HandFlush:         "flush",
	engine.HandFullHouse:     "full house",
	engine.HandFourOfKind:    "four of a kind",
	engine.HandStraightFlush: "straight flush",
}

func handCategoryName(cat byte) string {
	if n, ok := handCategoryNames[cat]; ok {
		return n
	}
	return "unknown"
}

func renderCardStrings(cards []card.Card) []string {
	if len(cards) == 0 {
		return nil
	}
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func (t *Table) baseEnvelope(typ transport.ServerEventType) transport.ServerEnvelope {
	return transport.ServerEnvelope{
		Type:      typ,
		TableID:   t.ID,
		ServerSeq: t.nextSeq(),
		TsMs:      time.Now().UnixMilli(),
	}
}

func (t *Table) emit(env transport.ServerEnvelope, target uint64, toRoom bool) {
	data, err := transport.Encode(env)
	if err != nil {
		log.Printf("[Table %s] encode %s failed: %v", t.ID, env.Type, err)
		return
	}
	if toRoom {
		t.bus.RoomEmit(string(env.Type), data)
		return
	}
	t.bus.SocketEmit(target, string(env.Type), data)
}

func (t *Table) sendTableJoinedLocked(userID uint64, chair uint16) {
	env := t.baseEnvelope(transport.ServerTableJoined)
	env.TableJoined = &transport.TableJoinedPayload{TableID: t.ID, Chair: chair}
	t.emit(env, userID, false)
}

// broadcastHandStartLocked has no dedicated wire event of its own: the
// authoritative game_state broadcast right after StartNewHand is what
// tells every client a new hand began (new dealer button, fresh pots).
func (t *Table) broadcastHandStartLocked() {
	t.broadcastStateLocked()
}

func (t *Table) sendHoleCardsLocked() {
	snap := t.game.Snapshot()
	for _, ps := range snap.Players {
		s, ok := t.seats.Seat(ps.Chair)
		if !ok || !s.HasTransport || len(ps.HandCards) == 0 {
			continue
		}
		env := t.baseEnvelope(transport.ServerHoleCards)
		env.HoleCards = &transport.HoleCardsPayload{Cards: renderCardStrings(ps.HandCards)}
		t.emit(env, ps.ID, false)
	}
}

// broadcastStateLocked sends each seated viewer its own masked projection
// (spec 4.8: hole cards are visible only to their owner pre-showdown).
func (t *Table) broadcastStateLocked() {
	snap := t.game.Snapshot()
	pending := t.act.Pending()
	for _, s := range t.seats.All() {
		if !s.HasTransport {
			continue
		}
		t.emit(t.stateEnvelopeFor(snap, s.Chair, pending), s.ExternalID, false)
	}
}

func (t *Table) stateEnvelopeFor(snap engine.Snapshot, viewerChair uint16, pending *action.PendingAction) transport.ServerEnvelope {
	var timeoutAt, timeoutMs int64
	if pending != nil {
		timeoutAt = pending.Deadline.UnixMilli()
		timeoutMs = int64(action.ActionTimeout / time.Millisecond)
	}
	proj := spectator.Project(t.ID, snap, t.seats, viewerChair, false, t.Config.SmallBlind, t.Config.BigBlind, timeoutAt, timeoutMs)
	env := t.baseEnvelope(transport.ServerGameState)
	env.GameState = &proj
	return env
}

// encodeStateFor rebuilds and encodes the masked state for one resuming
// viewer, used on reconnect instead of waiting for the next broadcast.
func (t *Table) encodeStateFor(userID uint64) []byte {
	chair, _ := t.seats.ChairOf(userID)
	env := t.stateEnvelopeFor(t.game.Snapshot(), chair, t.act.Pending())
	data, err := transport.Encode(env)
	if err != nil {
		log.Printf("[Table %s] encode resume state for %d failed: %v", t.ID, userID, err)
		return nil
	}
	return data
}

func (t *Table) broadcastActionTakenLocked(userID uint64, chair uint16, kind engine.ActionKind, amount int64) {
	env := t.baseEnvelope(transport.ServerActionTaken)
	env.ActionTaken = &transport.ActionTakenPayload{
		PlayerID: userID,
		Chair:    chair,
		Action:   kind.String(),
		Amount:   amount,
	}
	t.emit(env, 0, true)
}

func (t *Table) sendActionRequiredLocked(pa *action.PendingAction) {
	views := make([]transport.ValidActionView, 0, len(pa.Valid))
	for _, v := range pa.Valid {
		views = append(views, transport.ValidActionView{
			Kind:      v.Kind.String(),
			MinAmount: v.MinAmount,
			MaxAmount: v.MaxAmount,
		})
	}
	env := t.baseEnvelope(transport.ServerActionRequired)
	env.ActionReq = &transport.ActionRequiredPayload{
		PlayerID:    pa.PlayerID,
		Chair:       pa.Chair,
		Valid:       views,
		TimeoutMs:   int64(action.ActionTimeout / time.Millisecond),
		TimeoutAtMs: pa.Deadline.UnixMilli(),
	}
	t.emit(env, 0, true)
}

func (t *Table) broadcastShowdownLocked(snap engine.Snapshot, settlement *engine.SettlementResult) {
	playerID := make(map[uint16]uint64, len(snap.Players))
	for _, ps := range snap.Players {
		playerID[ps.Chair] = ps.ID
	}

	env := t.baseEnvelope(transport.ServerShowdown)
	payload := &transport.ShowdownPayload{}
	for _, pot := range settlement.Pots {
		for _, w := range pot.Winners {
			payload.Winners = append(payload.Winners, transport.ShowdownWinner{
				PlayerID: playerID[w.Chair],
				Amount:   w.Amount,
				HandName: handCategoryName(w.HandType),
			})
		}
	}
	for _, chair := range settlement.RevealedChairs {
		ps := findPlayerSnapshot(snap, chair)
		if ps == nil {
			continue
		}
		payload.Players = append(payload.Players, transport.ShowdownPlayer{
			Chair:    chair,
			PlayerID: ps.ID,
			Cards:    renderCardStrings(ps.HandCards),
		})
	}
	env.Showdown = payload
	t.emit(env, 0, true)
}

func (t *Table) broadcastHandCompleteLocked(settlement *engine.SettlementResult) {
	env := t.baseEnvelope(transport.ServerHandComplete)
	payload := &transport.HandCompletePayload{}
	if settlement != nil {
		snap := t.game.Snapshot()
		playerID := make(map[uint16]uint64, len(snap.Players))
		for _, ps := range snap.Players {
			playerID[ps.Chair] = ps.ID
		}
		for _, pot := range settlement.Pots {
			for _, w := range pot.Winners {
				payload.Winners = append(payload.Winners, transport.ShowdownWinner{
					PlayerID: playerID[w.Chair],
					Amount:   w.Amount,
					HandName: handCategoryName(w.HandType),
				})
			}
		}
	}
	env.HandComplete = payload
	t.emit(env, 0, true)
}

func findPlayerSnapshot(snap engine.Snapshot, chair uint16) *engine.PlayerSnapshot {
	for i := range snap.Players {
		if snap.Players[i].Chair == chair {
			return &snap.Players[i]
		}
	}
	return nil
}
