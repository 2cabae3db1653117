package message

import (
	"encoding/json"
	"testing"

	"ashtapada/internal/services/game"
	"ashtapada/internal/services/room"
)

func decode(t *testing.T, frame []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(frame, &m); err != nil {
		t.Fatalf("frame is not JSON: %v", err)
	}
	return m
}

func TestRoomEnvelopeIsFlat(t *testing.T) {
	view := &room.View{
		ID:          "ABC234",
		Players:     []room.PlayerView{{ID: "p1", Name: "alice", IsHost: true}},
		Spectators:  []room.SpectatorView{},
		PlayerCount: 1,
	}
	m := decode(t, RoomCreated("ABC234", view))

	if m["type"] != "ROOM_CREATED" || m["roomId"] != "ABC234" {
		t.Fatalf("envelope = %v", m)
	}
	// The view is merged into the envelope, not nested under a key.
	if _, nested := m["View"]; nested {
		t.Fatal("view was nested instead of flattened")
	}
	if m["playerCount"] != float64(1) {
		t.Fatalf("playerCount = %v, want 1", m["playerCount"])
	}
	if m["gameStarted"] != false {
		t.Fatalf("gameStarted = %v", m["gameStarted"])
	}
}

func TestDiceRolledShadowsViewDiceValue(t *testing.T) {
	view := &game.View{RoomID: "ABC234", Phase: game.PhaseSelectPiece, DiceValue: nil}
	m := decode(t, DiceRolled("p1", 6, []game.Move{{TokenID: 0, CanMove: true, Type: game.MoveExitHome}}, false, view))

	// The roll result, not the view's nullable field, must win the merge.
	if m["diceValue"] != float64(6) {
		t.Fatalf("diceValue = %v, want 6", m["diceValue"])
	}
	if m["phase"] != "SELECT_PIECE" {
		t.Fatalf("phase = %v", m["phase"])
	}
	moves := m["validMoves"].([]any)
	if moves[0].(map[string]any)["type"] != "EXIT_HOME" {
		t.Fatalf("validMoves = %v", moves)
	}
}

func TestPieceMovedCarriesNullsUntilGameOver(t *testing.T) {
	view := &game.View{RoomID: "ABC234", Phase: game.PhaseRollDice}
	m := decode(t, PieceMoved("p1", 2, nil, false, nil, view))

	if m["captured"] != nil || m["winner"] != nil {
		t.Fatalf("captured = %v, winner = %v, want nulls", m["captured"], m["winner"])
	}
	if m["gameOver"] != false {
		t.Fatalf("gameOver = %v", m["gameOver"])
	}
}

func TestReconnectedOmitsEmptyRoom(t *testing.T) {
	m := decode(t, Reconnected("p1", ""))
	if _, present := m["roomId"]; present {
		t.Fatal("empty roomId should be omitted")
	}

	m = decode(t, Reconnected("p1", "ABC234"))
	if m["roomId"] != "ABC234" {
		t.Fatalf("roomId = %v", m["roomId"])
	}
}

func TestErrorFormats(t *testing.T) {
	m := decode(t, Error("Unknown message type: %s", "DANCE"))
	if m["message"] != "Unknown message type: DANCE" {
		t.Fatalf("message = %v", m["message"])
	}
}
