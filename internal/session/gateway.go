// Package session routes the wire protocol onto the room registry and the
// game store. Everything in here runs on the network hub's goroutine, so
// handlers mutate state without locks.
package session

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"ashtapada/internal/events"
	"ashtapada/internal/network"
	"ashtapada/internal/services/game"
	"ashtapada/internal/services/room"
	"ashtapada/internal/services/tracker"
	"ashtapada/internal/session/message"
)

// DefaultReconnectGrace is how long an identity survives without a live
// connection before it is released.
const DefaultReconnectGrace = 30 * time.Second

// commandFunc is the signature every inbound command handler shares. The
// body is the full raw frame; the protocol is flat, so each handler decodes
// only the fields it needs.
type commandFunc func(g *Gateway, cs *clientSession, body json.RawMessage)

// clientSession is the per-connection state the gateway keeps.
type clientSession struct {
	conn     network.Conn
	playerID string
	addr     string
	roomID   string
}

// Gateway implements network.EventHandler.
type Gateway struct {
	tracker *tracker.Tracker
	rooms   *room.Registry
	games   *game.Store
	events  *events.Publisher

	clients map[network.Conn]*clientSession
	router  map[string]commandFunc

	grace time.Duration

	// dispatch re-enters the hub goroutine from timer callbacks.
	dispatch func(func())
}

func NewGateway(tr *tracker.Tracker, rooms *room.Registry, games *game.Store, ev *events.Publisher, grace time.Duration) *Gateway {
	g := &Gateway{
		tracker:  tr,
		rooms:    rooms,
		games:    games,
		events:   ev,
		clients:  make(map[network.Conn]*clientSession),
		router:   make(map[string]commandFunc),
		grace:    grace,
		dispatch: func(fn func()) { fn() },
	}
	games.SetTimeoutHandler(g.handleTurnTimeout)
	g.registerLobbyHandlers()
	g.registerGameHandlers()
	return g
}

// BindScheduler routes deferred work (turn timers, grace expiry) through
// the given scheduler, normally the hub's task queue. Without it callbacks
// run inline, which is what tests want.
func (g *Gateway) BindScheduler(do func(func())) {
	g.dispatch = do
	g.games.SetDispatch(do)
}

// OnConnect assigns or restores the client's identity. A returning address
// inside the grace period gets its old player id back together with a full
// state replay.
func (g *Gateway) OnConnect(c network.Conn) {
	addr := c.Addr()

	if b, ok := g.tracker.Resolve(addr); ok {
		roomID := b.RoomID
		if roomID != "" {
			// The room may have died, or the player may have been removed
			// from it, while the client was away.
			r := g.rooms.Get(roomID)
			if r == nil {
				roomID = ""
			} else if _, member := r.ParticipantName(b.PlayerID); !member {
				roomID = ""
			}
		}

		cs := &clientSession{conn: c, playerID: b.PlayerID, addr: addr, roomID: roomID}
		g.clients[c] = cs
		g.tracker.Bind(addr, b.PlayerID, roomID)
		c.TrySend(message.Reconnected(b.PlayerID, roomID))
		log.Printf("[Session] Reconnected %s as %s", addr, b.PlayerID)

		if roomID != "" {
			g.rooms.Reattach(roomID, cs.playerID, c)
			view := g.rooms.View(roomID)
			c.TrySend(message.RoomState(view))
			if view.GameStarted {
				if gv := g.games.View(roomID); gv != nil {
					c.TrySend(message.GameState(gv))
				}
			}
		}
		return
	}

	playerID := uuid.NewString()
	g.clients[c] = &clientSession{conn: c, playerID: playerID, addr: addr}
	g.tracker.Bind(addr, playerID, "")
	c.TrySend(message.Connected(playerID))
	log.Printf("[Session] Connected %s as %s", addr, playerID)
}

// OnDisconnect absorbs a dropped connection. Mid-game the player forfeits
// immediately; their identity lingers for the grace period so a quick
// reconnect resumes the room.
func (g *Gateway) OnDisconnect(c network.Conn) {
	cs := g.clients[c]
	if cs == nil {
		return
	}
	delete(g.clients, c)
	log.Printf("[Session] Disconnected %s (%s)", cs.addr, cs.playerID)

	if cs.roomID != "" {
		if g.games.Has(cs.roomID) {
			g.dropFromGame(cs.roomID, cs.playerID)
		} else {
			g.dropFromLobby(cs.roomID, cs.playerID)
		}
	}

	g.tracker.MarkDisconnected(cs.addr)
	addr, playerID := cs.addr, cs.playerID
	expire := func() { g.expireIdentity(addr, playerID) }
	if g.grace <= 0 {
		g.dispatch(expire)
		return
	}
	time.AfterFunc(g.grace, func() { g.dispatch(expire) })
}

// expireIdentity runs after the grace period. If the identity is gone for
// good its room membership goes with it; a mid-game disconnect only left
// the game roster, so the seat would otherwise linger forever.
func (g *Gateway) expireIdentity(addr, playerID string) {
	b, expired := g.tracker.Expire(addr, playerID)
	if !expired || b.RoomID == "" {
		return
	}
	g.dropFromLobby(b.RoomID, playerID)
}

// OnMessage routes an inbound frame to its command handler.
func (g *Gateway) OnMessage(c network.Conn, msg network.Message) {
	cs := g.clients[c]
	if cs == nil {
		return
	}
	fn := g.router[msg.Type]
	if fn == nil {
		c.TrySend(message.Error("Unknown message type: %s", msg.Type))
		return
	}
	fn(g, cs, msg.Body)
}

// dropFromGame removes a player from a running game and tells the room.
// The player keeps their room membership; the room view is only touched by
// an explicit leave.
func (g *Gateway) dropFromGame(roomID, playerID string) {
	result, ok := g.games.HandleDisconnect(roomID, playerID)
	if !ok {
		return
	}
	var winner *string
	if result.GameOver && result.Winner != "" {
		winner = &result.Winner
	}
	g.rooms.Broadcast(roomID, message.PlayerDisconnected(playerID, result.GameOver, winner, g.games.View(roomID)), playerID)
	if result.GameOver {
		g.finishGame(roomID, result.Winner)
	}
}

// dropFromLobby removes a participant from a room that has no running game
// and notifies whoever needs to know, including spectators orphaned by a
// room closure.
func (g *Gateway) dropFromLobby(roomID, playerID string) {
	result := g.rooms.Remove(roomID, playerID)
	if result.Closed {
		g.closeRoom(roomID, result.Orphans)
		return
	}
	if result.Room != nil && result.WasPlayer {
		g.rooms.Broadcast(roomID, message.PlayerLeft(playerID, g.rooms.View(roomID)), playerID)
	}
}

// closeRoom notifies orphaned spectators and clears their room bindings.
func (g *Gateway) closeRoom(roomID string, orphans []*room.Spectator) {
	g.games.Delete(roomID)
	g.events.Publish("room.closed", events.RoomEvent{RoomID: roomID})

	orphaned := make(map[string]bool, len(orphans))
	for _, s := range orphans {
		orphaned[s.ID] = true
	}
	frame := message.RoomClosed(roomID)
	for _, cs := range g.clients {
		if cs.roomID == roomID && orphaned[cs.playerID] {
			cs.roomID = ""
			g.tracker.RebindRoom(cs.addr, "")
			cs.conn.TrySend(frame)
		}
	}
}

// finishGame tears the session down once a winner is decided. The room
// itself stays open so the table can chat or start over.
func (g *Gateway) finishGame(roomID, winner string) {
	g.events.Publish("game.finished", events.GameEvent{RoomID: roomID, Winner: winner})
	g.games.Delete(roomID)
	g.rooms.Reopen(roomID)
}

// handleTurnTimeout broadcasts the refreshed state after the turn timer
// advanced past an idle player.
func (g *Gateway) handleTurnTimeout(roomID string) {
	if view := g.games.View(roomID); view != nil {
		g.rooms.Broadcast(roomID, message.GameState(view), "")
	}
}
