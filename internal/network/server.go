package network

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The session protocol does its own identity handling; any origin
	// may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server exposes the websocket endpoint and a health check over HTTP and
// feeds accepted connections into the hub.
type Server struct {
	hub  *Hub
	http *http.Server
}

func NewServer(handler EventHandler) *Server {
	s := &Server{hub: NewHub(handler)}

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ws", s.serveWS)

	s.http = &http.Server{Handler: router}
	return s
}

// Hub exposes the event loop, mainly so callers can wire Do as the
// scheduler for timers.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) serveWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Network] Upgrade failed: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		hub:  s.hub,
		addr: clientAddr(c.Request),
		send: make(chan []byte, sendBuffer),
	}
	s.hub.register <- client

	go client.writeLoop()
	go client.readLoop()
}

// clientAddr derives the address identity is keyed on. Behind a proxy the
// first X-Forwarded-For hop is the real client.
func clientAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Listen starts the hub and serves HTTP until the server is shut down.
func (s *Server) Listen(address string) error {
	go s.hub.Run()

	s.http.Addr = address
	log.Printf("[Network] Listening on ws://%s/ws", address)
	return s.http.ListenAndServe()
}

// Shutdown closes the HTTP listener and every live websocket.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Do(func() {
		for client := range s.hub.clients {
			client.conn.Close()
		}
	})
	return s.http.Shutdown(ctx)
}
