package session

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"ashtapada/internal/events"
	"ashtapada/internal/services/game"
	"ashtapada/internal/session/message"
)

func (g *Gateway) registerLobbyHandlers() {
	g.router["CREATE_ROOM"] = handleCreateRoom
	g.router["JOIN_ROOM"] = handleJoinRoom
	g.router["LEAVE_ROOM"] = handleLeaveRoom
	g.router["START_GAME"] = handleStartGame
	g.router["CHAT"] = handleChat
}

func handleCreateRoom(g *Gateway, cs *clientSession, body json.RawMessage) {
	var req struct {
		PlayerName string `json:"playerName"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		cs.conn.TrySend(message.Error("Invalid message format"))
		return
	}
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		cs.conn.TrySend(message.Error("Player name is required"))
		return
	}

	r := g.rooms.Create(cs.playerID, name, cs.conn)
	cs.roomID = r.Code
	g.tracker.RebindRoom(cs.addr, r.Code)

	cs.conn.TrySend(message.RoomCreated(r.Code, g.rooms.View(r.Code)))
	g.events.Publish("room.created", events.RoomEvent{RoomID: r.Code, PlayerID: cs.playerID})
}

func handleJoinRoom(g *Gateway, cs *clientSession, body json.RawMessage) {
	var req struct {
		RoomID     string `json:"roomId"`
		PlayerName string `json:"playerName"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		cs.conn.TrySend(message.Error("Invalid message format"))
		return
	}
	name := strings.TrimSpace(req.PlayerName)
	if req.RoomID == "" || name == "" {
		cs.conn.TrySend(message.Error("Room ID and player name are required"))
		return
	}

	result, err := g.rooms.Join(req.RoomID, cs.playerID, name, cs.conn)
	if err != nil {
		cs.conn.TrySend(message.Error("%s", err))
		return
	}
	code := result.Room.Code
	cs.roomID = code
	g.tracker.RebindRoom(cs.addr, code)

	view := g.rooms.View(code)
	if result.Spectator {
		cs.conn.TrySend(message.JoinedAsSpectator(code, view))
	} else {
		cs.conn.TrySend(message.RoomJoined(code, view))
	}
	g.rooms.Broadcast(code, message.PlayerJoined(view), cs.playerID)

	// A spectator walking into a running game needs the board too.
	if result.Room.Started {
		if gv := g.games.View(code); gv != nil {
			cs.conn.TrySend(message.GameState(gv))
		}
	}
	log.Printf("[Session] %s joined room %s (spectator=%v)", name, code, result.Spectator)
}

func handleLeaveRoom(g *Gateway, cs *clientSession, body json.RawMessage) {
	if cs.roomID == "" {
		return
	}
	roomID := cs.roomID

	// Walking out of a running game is a forfeit, same as dropping the
	// connection.
	if g.games.Has(roomID) {
		g.dropFromGame(roomID, cs.playerID)
	}
	g.dropFromLobby(roomID, cs.playerID)

	cs.roomID = ""
	g.tracker.RebindRoom(cs.addr, "")
	cs.conn.TrySend(message.LeftRoom())
}

func handleStartGame(g *Gateway, cs *clientSession, body json.RawMessage) {
	if cs.roomID == "" {
		cs.conn.TrySend(message.Error("Not in a room"))
		return
	}
	r := g.rooms.Get(cs.roomID)
	if r == nil {
		cs.conn.TrySend(message.Error("Room not found"))
		return
	}
	if r.HostID != cs.playerID {
		cs.conn.TrySend(message.Error("Only host can start the game"))
		return
	}
	if !g.rooms.CanStart(cs.roomID) {
		cs.conn.TrySend(message.Error("Need at least 2 players to start"))
		return
	}
	if err := g.rooms.Start(cs.roomID); err != nil {
		cs.conn.TrySend(message.Error("%s", err))
		return
	}

	roster := make([]*game.PlayerInfo, 0, len(r.Players))
	for _, p := range r.Players {
		roster = append(roster, &game.PlayerInfo{
			ID:         p.ID,
			Name:       p.Name,
			Color:      p.Color(),
			ColorIndex: p.ColorIndex,
		})
	}
	g.games.Initialize(cs.roomID, roster)

	g.rooms.Broadcast(cs.roomID, message.GameStarted(g.games.View(cs.roomID)), "")
	g.events.Publish("game.started", events.GameEvent{RoomID: cs.roomID, Players: len(roster)})
}

func handleChat(g *Gateway, cs *clientSession, body json.RawMessage) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &req); err != nil || cs.roomID == "" {
		return
	}
	r := g.rooms.Get(cs.roomID)
	if r == nil {
		return
	}
	name, ok := r.ParticipantName(cs.playerID)
	if !ok {
		return
	}
	g.rooms.Broadcast(cs.roomID, message.Chat(cs.playerID, name, req.Text, time.Now().UnixMilli()), "")
}
