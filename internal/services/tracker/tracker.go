// Package tracker maps a client network address to a stable participant
// identity and its current room, so a reconnecting client resumes the same
// session instead of becoming a new participant. Entries outlive the
// connection by a grace period; expiry is scheduled by the caller and runs
// on the hub event loop like every other mutation.
package tracker

import (
	"log"
	"time"
)

// Binding is what an address currently resolves to.
type Binding struct {
	PlayerID    string
	RoomID      string
	ConnectedAt time.Time

	// live is cleared on disconnect and set again on (re)bind; Expire
	// only removes entries that stayed dark for the whole grace period.
	live bool
}

// Tracker owns the address -> identity mapping. A miss is not an error: it
// simply means a brand-new identity.
type Tracker struct {
	entries map[string]*Binding
}

func New() *Tracker {
	return &Tracker{entries: make(map[string]*Binding)}
}

// Resolve returns the existing binding for an address, if any.
func (t *Tracker) Resolve(addr string) (Binding, bool) {
	b := t.entries[addr]
	if b == nil {
		return Binding{}, false
	}
	return *b, true
}

// Bind records (or refreshes) the identity and room for an address and
// marks the connection live.
func (t *Tracker) Bind(addr, playerID, roomID string) {
	t.entries[addr] = &Binding{
		PlayerID:    playerID,
		RoomID:      roomID,
		ConnectedAt: time.Now(),
		live:        true,
	}
}

// RebindRoom updates only the room for an address; an empty roomID means
// "no room".
func (t *Tracker) RebindRoom(addr, roomID string) {
	if b := t.entries[addr]; b != nil {
		b.RoomID = roomID
	}
}

// MarkDisconnected flags the address as having no live connection, making
// it eligible for expiry after the grace period.
func (t *Tracker) MarkDisconnected(addr string) {
	if b := t.entries[addr]; b != nil {
		b.live = false
	}
}

// Expire removes the binding if it still belongs to the given identity and
// no reconnection happened in the meantime. Called after the grace period;
// the removed binding is returned so the caller can clean up whatever the
// identity was attached to.
func (t *Tracker) Expire(addr, playerID string) (Binding, bool) {
	b := t.entries[addr]
	if b == nil || b.PlayerID != playerID || b.live {
		return Binding{}, false
	}
	delete(t.entries, addr)
	log.Printf("[IdentityTracker] Released %s (%s)", addr, playerID)
	return *b, true
}

// Release drops the binding for an address unconditionally.
func (t *Tracker) Release(addr string) {
	delete(t.entries, addr)
}

// Count reports the number of tracked addresses.
func (t *Tracker) Count() int {
	return len(t.entries)
}
