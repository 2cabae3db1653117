package network

// clientMessage packs an inbound message with the client that sent it.
type clientMessage struct {
	client *Client
	msg    Message
}

// Hub serializes every event touching game state onto one goroutine:
// connects, disconnects, inbound messages and scheduled tasks (timer and
// grace-period callbacks re-entering via Do). That single goroutine is the
// concurrency model of the whole server; handlers never need locks.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	incoming   chan clientMessage

	// tasks carries closures posted by Do from other goroutines.
	tasks chan func()

	handler EventHandler
}

func NewHub(handler EventHandler) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan clientMessage),
		tasks:      make(chan func(), 64),
		handler:    handler,
	}
}

// Do schedules fn onto the hub goroutine. Safe to call from timers and
// other goroutines; fn runs with the same serialization guarantees as a
// message handler.
func (h *Hub) Do(fn func()) {
	h.tasks <- fn
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.handler.OnConnect(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				// Closing send stops the client's writeLoop.
				close(client.send)
				h.handler.OnDisconnect(client)
			}

		case cm := <-h.incoming:
			h.handler.OnMessage(cm.client, cm.msg)

		case fn := <-h.tasks:
			fn()
		}
	}
}
