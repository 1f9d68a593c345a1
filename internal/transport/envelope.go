// Package transport is the websocket gateway and JSON event envelope.
// It replaces the teacher's protobuf wire format with the closed enum
// of typed payloads the design notes call for: one discriminated union
// per direction, serialized with encoding/json instead of a generated
// pb package this pack does not retrieve.
package transport

import (
	"encoding/json"
	"fmt"

	"github.com/okihara/plo-game-sub001/internal/spectator"
)

// ClientEventType enumerates every ingress event kind (client -> server).
type ClientEventType string

const (
	ClientJoinTable  ClientEventType = "join_table"
	ClientSitDown    ClientEventType = "sit_down"
	ClientStandUp    ClientEventType = "stand_up"
	ClientAction     ClientEventType = "player_action"
	ClientEarlyFold  ClientEventType = "early_fold"
	ClientLeave      ClientEventType = "table_leave"
	ClientAdminChips ClientEventType = "debug_set_chips"
)

// ServerEventType enumerates every egress event kind (server -> client).
type ServerEventType string

const (
	ServerTableJoined     ServerEventType = "table_joined"
	ServerTableLeft       ServerEventType = "table_left"
	ServerTableBusted     ServerEventType = "table_busted"
	ServerHoleCards       ServerEventType = "game_hole_cards"
	ServerGameState       ServerEventType = "game_state"
	ServerActionRequired  ServerEventType = "game_action_required"
	ServerActionTaken     ServerEventType = "game_action_taken"
	ServerShowdown        ServerEventType = "game_showdown"
	ServerHandComplete    ServerEventType = "game_hand_complete"
	ServerError           ServerEventType = "error"
)

// ClientEnvelope is the ingress tagged union: Type selects which of the
// payload fields is populated; the others are left zero/omitted.
type ClientEnvelope struct {
	Type    ClientEventType `json:"type"`
	TableID string          `json:"tableId,omitempty"`

	SitDown    *SitDownPayload    `json:"sitDown,omitempty"`
	Action     *ActionPayload     `json:"action,omitempty"`
	AdminChips *AdminChipsPayload `json:"adminChips,omitempty"`
}

type SitDownPayload struct {
	Chair    *uint16 `json:"chair,omitempty"`
	BuyIn    int64   `json:"buyIn"`
	Nickname string  `json:"nickname,omitempty"`
}

type ActionPayload struct {
	Action string `json:"action"` // fold|check|call|bet|raise|allin
	Amount int64  `json:"amount"`
}

type AdminChipsPayload struct {
	Token    string `json:"token"`
	PlayerID uint64 `json:"playerId"`
	Chips    int64  `json:"chips"`
}

// ServerEnvelope is the egress tagged union.
type ServerEnvelope struct {
	Type      ServerEventType `json:"type"`
	TableID   string          `json:"tableId"`
	ServerSeq uint64          `json:"serverSeq"`
	TsMs      int64           `json:"tsMs"`

	TableJoined  *TableJoinedPayload  `json:"tableJoined,omitempty"`
	TableBusted  *TableBustedPayload  `json:"tableBusted,omitempty"`
	HoleCards    *HoleCardsPayload    `json:"holeCards,omitempty"`
	GameState    *spectator.ClientGameState `json:"gameState,omitempty"`
	ActionReq    *ActionRequiredPayload `json:"actionRequired,omitempty"`
	ActionTaken  *ActionTakenPayload  `json:"actionTaken,omitempty"`
	Showdown     *ShowdownPayload     `json:"showdown,omitempty"`
	HandComplete *HandCompletePayload `json:"handComplete,omitempty"`
	Error        *ErrorPayload        `json:"error,omitempty"`
}

type TableJoinedPayload struct {
	TableID string `json:"tableId"`
	Chair   uint16 `json:"chair"`
}

type TableBustedPayload struct {
	Message string `json:"message"`
}

type HoleCardsPayload struct {
	Cards []string `json:"cards"`
}

type ValidActionView struct {
	Kind      string `json:"kind"`
	MinAmount int64  `json:"minAmount"`
	MaxAmount int64  `json:"maxAmount"`
}

type ActionRequiredPayload struct {
	PlayerID    uint64            `json:"playerId"`
	Chair       uint16            `json:"chair"`
	Valid       []ValidActionView `json:"validActions"`
	TimeoutMs   int64             `json:"timeoutMs"`
	TimeoutAtMs int64             `json:"timeoutAtMs"`
}

type ActionTakenPayload struct {
	PlayerID uint64 `json:"playerId"`
	Chair    uint16 `json:"chair"`
	Action   string `json:"action"`
	Amount   int64  `json:"amount"`
}

type ShowdownWinner struct {
	PlayerID uint64 `json:"playerId"`
	Amount   int64  `json:"amount"`
	HandName string `json:"handName"`
}

type ShowdownPlayer struct {
	Chair    uint16   `json:"seatIndex"`
	PlayerID uint64   `json:"playerId"`
	Cards    []string `json:"cards"`
	HandName string   `json:"handName,omitempty"`
}

type ShowdownPayload struct {
	Winners []ShowdownWinner `json:"winners"`
	Players []ShowdownPlayer `json:"players"`
}

type HandCompletePayload struct {
	Winners []ShowdownWinner `json:"winners"`
	Rake    int64            `json:"rake"`
}

type ErrorPayload struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// Encode marshals env as the wire format (JSON text frames).
func Encode(env any) ([]byte, error) {
	return json.Marshal(env)
}

// DecodeClientEnvelope unmarshals one ingress message.
func DecodeClientEnvelope(data []byte) (*ClientEnvelope, error) {
	var env ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode client envelope: %w", err)
	}
	return &env, nil
}
