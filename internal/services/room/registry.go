package room

import (
	"errors"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"ashtapada/internal/game/board"
)

const codeLength = 6

// codeAlphabet skips characters that read ambiguously on a shared screen
// (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotEnoughPlayers = errors.New("need at least 2 players to start")
)

// Registry owns every active room. It is handed to the gateway by
// reference; nothing here is package-global state.
type Registry struct {
	rooms map[string]*Room
	rng   *rand.Rand
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		rng:   rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 2)),
	}
}

func (reg *Registry) generateCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[reg.rng.IntN(len(codeAlphabet))]
	}
	return string(b)
}

// Create opens a new room and seats the host at seat 0.
func (reg *Registry) Create(hostID, hostName string, sender Sender) *Room {
	code := reg.generateCode()
	for reg.rooms[code] != nil {
		code = reg.generateCode()
	}

	r := &Room{
		Code:   code,
		HostID: hostID,
		Players: []*Player{{
			ID:         hostID,
			Name:       hostName,
			ColorIndex: 0,
			IsHost:     true,
			sender:     sender,
		}},
		CreatedAt: time.Now(),
	}
	reg.rooms[code] = r
	log.Printf("[RoomRegistry] Room %s created by %s", code, hostName)
	return r
}

// Get looks a room up by its code, case-insensitively.
func (reg *Registry) Get(code string) *Room {
	return reg.rooms[strings.ToUpper(code)]
}

// JoinResult reports how a joiner was admitted.
type JoinResult struct {
	Room      *Room
	Spectator bool
}

// Join admits a participant. A full room or a started game admits the
// joiner as a spectator instead of rejecting them.
func (reg *Registry) Join(code, id, name string, sender Sender) (JoinResult, error) {
	r := reg.Get(code)
	if r == nil {
		return JoinResult{}, ErrRoomNotFound
	}

	if r.Started || len(r.Players) >= board.MaxPlayers {
		r.Spectators = append(r.Spectators, &Spectator{ID: id, Name: name, sender: sender})
		return JoinResult{Room: r, Spectator: true}, nil
	}

	seat := len(r.Players)
	r.Players = append(r.Players, &Player{
		ID:         id,
		Name:       name,
		ColorIndex: seat,
		sender:     sender,
	})
	return JoinResult{Room: r}, nil
}

// RemoveResult describes the outcome of removing a participant.
type RemoveResult struct {
	Room      *Room
	WasPlayer bool
	// Closed is set when the last seated player left; the room is gone
	// and Orphans lists the spectators that were watching it.
	Closed  bool
	Orphans []*Spectator
}

// Remove takes a participant out of whichever role they hold. Removing the
// last player destroys the room even if spectators remain; the caller is
// responsible for telling the orphaned spectators.
func (reg *Registry) Remove(code, id string) RemoveResult {
	r := reg.Get(code)
	if r == nil {
		return RemoveResult{}
	}

	for i, p := range r.Players {
		if p.ID != id {
			continue
		}
		r.Players = append(r.Players[:i], r.Players[i+1:]...)

		if len(r.Players) == 0 {
			delete(reg.rooms, r.Code)
			log.Printf("[RoomRegistry] Room %s closed (no players left)", r.Code)
			return RemoveResult{WasPlayer: true, Closed: true, Orphans: r.Spectators}
		}
		// Before the game starts seats stay contiguous and the host is
		// always seat 0.
		if !r.Started {
			r.renumber()
		}
		return RemoveResult{Room: r, WasPlayer: true}
	}

	for i, s := range r.Spectators {
		if s.ID == id {
			r.Spectators = append(r.Spectators[:i], r.Spectators[i+1:]...)
			return RemoveResult{Room: r}
		}
	}
	return RemoveResult{Room: r}
}

// CanStart reports whether the room has enough players for a game.
func (reg *Registry) CanStart(code string) bool {
	r := reg.Get(code)
	return r != nil && len(r.Players) >= 2
}

// Start flips the room into its started state.
func (reg *Registry) Start(code string) error {
	r := reg.Get(code)
	if r == nil {
		return ErrRoomNotFound
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	r.Started = true
	return nil
}

// Reopen clears the started flag after a finished game so the same table
// can play again. Mid-game departures leave seat gaps, so seats are
// renumbered before anyone new is admitted.
func (reg *Registry) Reopen(code string) {
	if r := reg.Get(code); r != nil {
		r.Started = false
		r.renumber()
	}
}

// View snapshots a room for broadcasting, or nil for an unknown code.
func (reg *Registry) View(code string) *View {
	r := reg.Get(code)
	if r == nil {
		return nil
	}
	return r.view()
}

// Reattach swaps in a fresh delivery handle after a reconnection so
// broadcasts reach the new connection.
func (reg *Registry) Reattach(code, id string, sender Sender) {
	r := reg.Get(code)
	if r == nil {
		return
	}
	if p := r.Player(id); p != nil {
		p.sender = sender
		return
	}
	for _, s := range r.Spectators {
		if s.ID == id {
			s.sender = sender
			return
		}
	}
}

// Broadcast fires data at every player and spectator except excludeID.
// Delivery is best-effort per recipient: a slow or dead connection is
// skipped, never waited on.
func (reg *Registry) Broadcast(code string, data []byte, excludeID string) {
	r := reg.Get(code)
	if r == nil {
		return
	}
	for _, p := range r.Players {
		if p.ID == excludeID || p.sender == nil {
			continue
		}
		p.sender.TrySend(data)
	}
	for _, s := range r.Spectators {
		if s.ID == excludeID || s.sender == nil {
			continue
		}
		s.sender.TrySend(data)
	}
}

// Count reports the number of active rooms.
func (reg *Registry) Count() int {
	return len(reg.rooms)
}
