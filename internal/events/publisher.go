// Package events publishes room and game lifecycle notifications to NATS
// so external consumers (lobbies, stats collectors) can follow the server
// without touching the websocket protocol. Publishing is optional and
// best-effort: with no broker configured every call is a no-op, and a
// failed publish never disturbs gameplay.
package events

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix namespaces every published subject.
const SubjectPrefix = "ashtapada."

// RoomEvent describes a room lifecycle change.
type RoomEvent struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId,omitempty"`
}

// GameEvent describes a game lifecycle change.
type GameEvent struct {
	RoomID  string `json:"roomId"`
	Players int    `json:"players,omitempty"`
	Winner  string `json:"winner,omitempty"`
}

// Publisher wraps a NATS connection. A nil Publisher is valid and silent.
type Publisher struct {
	nc *nats.Conn
}

// Connect dials the broker. An empty URL yields a disabled publisher.
func Connect(url string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	nc, err := nats.Connect(url, nats.Name("ashtapada-server"))
	if err != nil {
		return nil, err
	}
	log.Printf("[Events] Connected to NATS at %s", url)
	return &Publisher{nc: nc}, nil
}

// Publish sends one event on SubjectPrefix+subject.
func (p *Publisher) Publish(subject string, v any) {
	if p == nil || p.nc == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[Events] Marshal %s: %v", subject, err)
		return
	}
	if err := p.nc.Publish(SubjectPrefix+subject, data); err != nil {
		log.Printf("[Events] Publish %s: %v", subject, err)
	}
}

// Close flushes and drops the connection.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Drain()
}
