// Package room owns the lobby side of the server: room creation and join
// codes, seat and color assignment, spectator admission, host transfer and
// the broadcast primitive. All methods are called from the hub event loop;
// the package itself holds no locks.
package room

import (
	"time"

	"ashtapada/internal/game/board"
)

// Sender is the delivery capability held per participant. The network
// client implements it; tests substitute fakes. TrySend must never block.
type Sender interface {
	TrySend(data []byte) bool
}

// Player is a seated participant. The sender stays unexported so a live
// connection can never leak into a serialized view.
type Player struct {
	ID         string
	Name       string
	ColorIndex int
	IsHost     bool
	IsReady    bool

	sender Sender
}

// Color returns the board color for the player's seat.
func (p *Player) Color() board.Color {
	return board.Colors[p.ColorIndex]
}

// Spectator watches a room without holding a seat.
type Spectator struct {
	ID   string
	Name string

	sender Sender
}

// Room groups up to MaxPlayers seated players plus any number of
// spectators under a short join code.
type Room struct {
	Code       string
	HostID     string
	Players    []*Player
	Spectators []*Spectator
	Started    bool
	CreatedAt  time.Time
}

// Player returns the seated player with the given id, or nil.
func (r *Room) Player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ParticipantName resolves a player or spectator name, in that order.
func (r *Room) ParticipantName(id string) (string, bool) {
	if p := r.Player(id); p != nil {
		return p.Name, true
	}
	for _, s := range r.Spectators {
		if s.ID == id {
			return s.Name, true
		}
	}
	return "", false
}

// renumber reassigns seats contiguously from zero and makes the first
// remaining player the host. Only valid before the game starts.
func (r *Room) renumber() {
	for i, p := range r.Players {
		p.ColorIndex = i
		p.IsHost = i == 0
	}
	if len(r.Players) > 0 {
		r.HostID = r.Players[0].ID
	}
}
