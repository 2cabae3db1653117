// Package message builds the outbound frames of the session protocol.
// Every frame is a flat JSON object with a type discriminator; room and
// game views are merged into the envelope through struct embedding, so
// the payload shape matches what clients expect field for field.
package message

import (
	"encoding/json"
	"fmt"

	"ashtapada/internal/services/game"
	"ashtapada/internal/services/room"
)

func marshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// Frames are built from our own structs; failure here is a
		// programming error.
		panic(fmt.Sprintf("message: marshal %T: %v", v, err))
	}
	return data
}

// Connected greets a brand-new connection with its assigned identity.
func Connected(playerID string) []byte {
	return marshal(struct {
		Type     string `json:"type"`
		PlayerID string `json:"playerId"`
	}{Type: "CONNECTED", PlayerID: playerID})
}

// Reconnected greets a returning connection. RoomID is empty when the
// player was not in a room.
func Reconnected(playerID, roomID string) []byte {
	return marshal(struct {
		Type     string `json:"type"`
		PlayerID string `json:"playerId"`
		RoomID   string `json:"roomId,omitempty"`
	}{Type: "RECONNECTED", PlayerID: playerID, RoomID: roomID})
}

// Error reports a rejected action to the sender only.
func Error(format string, args ...any) []byte {
	return marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{Type: "ERROR", Message: fmt.Sprintf(format, args...)})
}

type roomEnvelope struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	*room.View
}

func RoomCreated(roomID string, view *room.View) []byte {
	return marshal(roomEnvelope{Type: "ROOM_CREATED", RoomID: roomID, View: view})
}

func RoomJoined(roomID string, view *room.View) []byte {
	return marshal(roomEnvelope{Type: "ROOM_JOINED", RoomID: roomID, View: view})
}

func JoinedAsSpectator(roomID string, view *room.View) []byte {
	return marshal(roomEnvelope{Type: "JOINED_AS_SPECTATOR", RoomID: roomID, View: view})
}

func PlayerJoined(view *room.View) []byte {
	return marshal(struct {
		Type string `json:"type"`
		*room.View
	}{Type: "PLAYER_JOINED", View: view})
}

func PlayerLeft(playerID string, view *room.View) []byte {
	return marshal(struct {
		Type     string `json:"type"`
		PlayerID string `json:"playerId"`
		*room.View
	}{Type: "PLAYER_LEFT", PlayerID: playerID, View: view})
}

func LeftRoom() []byte {
	return marshal(struct {
		Type string `json:"type"`
	}{Type: "LEFT_ROOM"})
}

func RoomState(view *room.View) []byte {
	return marshal(struct {
		Type string `json:"type"`
		*room.View
	}{Type: "ROOM_STATE", View: view})
}

// RoomClosed tells spectators their room vanished when its last player
// left.
func RoomClosed(roomID string) []byte {
	return marshal(struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}{Type: "ROOM_CLOSED", RoomID: roomID})
}

func GameStarted(view *game.View) []byte {
	return marshal(struct {
		Type string `json:"type"`
		*game.View
	}{Type: "GAME_STARTED", View: view})
}

func GameState(view *game.View) []byte {
	return marshal(struct {
		Type string `json:"type"`
		*game.View
	}{Type: "GAME_STATE", View: view})
}

// DiceRolled carries the roll outcome merged with the refreshed game
// view. The outer diceValue shadows the view's own nullable field.
func DiceRolled(playerID string, dice int, moves []game.Move, skipped bool, view *game.View) []byte {
	return marshal(struct {
		Type       string      `json:"type"`
		PlayerID   string      `json:"playerId"`
		DiceValue  int         `json:"diceValue"`
		ValidMoves []game.Move `json:"validMoves"`
		Skipped    bool        `json:"skipped"`
		*game.View
	}{Type: "DICE_ROLLED", PlayerID: playerID, DiceValue: dice, ValidMoves: moves, Skipped: skipped, View: view})
}

func PieceMoved(playerID string, tokenID int, captured *game.Capture, gameOver bool, winner *string, view *game.View) []byte {
	return marshal(struct {
		Type     string        `json:"type"`
		PlayerID string        `json:"playerId"`
		TokenID  int           `json:"tokenId"`
		Captured *game.Capture `json:"captured"`
		GameOver bool          `json:"gameOver"`
		Winner   *string       `json:"winner"`
		*game.View
	}{Type: "PIECE_MOVED", PlayerID: playerID, TokenID: tokenID, Captured: captured, GameOver: gameOver, Winner: winner, View: view})
}

func PlayerDisconnected(playerID string, gameOver bool, winner *string, view *game.View) []byte {
	return marshal(struct {
		Type     string  `json:"type"`
		PlayerID string  `json:"playerId"`
		GameOver bool    `json:"gameOver"`
		Winner   *string `json:"winner"`
		*game.View
	}{Type: "PLAYER_DISCONNECTED", PlayerID: playerID, GameOver: gameOver, Winner: winner, View: view})
}

// Chat relays a lobby or table message to everyone in the room.
func Chat(playerID, playerName, text string, timestamp int64) []byte {
	return marshal(struct {
		Type       string `json:"type"`
		PlayerID   string `json:"playerId"`
		PlayerName string `json:"playerName"`
		Message    string `json:"message"`
		Timestamp  int64  `json:"timestamp"`
	}{Type: "CHAT", PlayerID: playerID, PlayerName: playerName, Message: text, Timestamp: timestamp})
}
