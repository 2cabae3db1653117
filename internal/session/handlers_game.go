package session

import (
	"encoding/json"

	"ashtapada/internal/session/message"
)

func (g *Gateway) registerGameHandlers() {
	g.router["ROLL_DICE"] = handleRollDice
	g.router["MOVE_PIECE"] = handleMovePiece
}

func handleRollDice(g *Gateway, cs *clientSession, body json.RawMessage) {
	if cs.roomID == "" {
		cs.conn.TrySend(message.Error("Not in a game"))
		return
	}

	result, err := g.games.Roll(cs.roomID, cs.playerID)
	if err != nil {
		cs.conn.TrySend(message.Error("%s", err))
		return
	}

	frame := message.DiceRolled(cs.playerID, result.DiceValue, result.ValidMoves, result.Skipped, g.games.View(cs.roomID))
	g.rooms.Broadcast(cs.roomID, frame, "")
}

func handleMovePiece(g *Gateway, cs *clientSession, body json.RawMessage) {
	var req struct {
		TokenID *int `json:"tokenId"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.TokenID == nil {
		cs.conn.TrySend(message.Error("Token ID is required"))
		return
	}
	if cs.roomID == "" {
		cs.conn.TrySend(message.Error("Not in a game"))
		return
	}

	result, err := g.games.MovePiece(cs.roomID, cs.playerID, *req.TokenID)
	if err != nil {
		cs.conn.TrySend(message.Error("%s", err))
		return
	}

	var winner *string
	if result.GameOver {
		winner = &result.Winner
	}
	frame := message.PieceMoved(cs.playerID, *req.TokenID, result.Captured, result.GameOver, winner, g.games.View(cs.roomID))
	g.rooms.Broadcast(cs.roomID, frame, "")

	if result.GameOver {
		g.finishGame(cs.roomID, result.Winner)
	}
}
