package network

// Conn is the capability a connected client exposes to the game logic.
// Keeping it an interface lets the session layer run against fakes in
// tests; nothing outside this package ever touches the websocket itself.
type Conn interface {
	// Addr is the client network address used for identity tracking.
	Addr() string

	// TrySend queues an outbound frame without blocking and reports
	// whether it was accepted. A full queue or a dead connection drops
	// the frame.
	TrySend(data []byte) bool
}

// EventHandler connects the network layer to the game logic. All three
// callbacks run on the hub goroutine, so implementations may mutate
// shared state freely.
type EventHandler interface {
	// OnConnect fires when a client finishes the websocket handshake.
	OnConnect(c Conn)

	// OnDisconnect fires when a client's connection goes away.
	OnDisconnect(c Conn)

	// OnMessage fires for every parsed inbound message.
	OnMessage(c Conn, msg Message)
}
