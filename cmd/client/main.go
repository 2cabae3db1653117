// Terminal client for poking at a running server. Type "help" for the
// command list; every inbound frame is printed as indented JSON.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = "localhost:3001"
	}

	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go readLoop(conn, done)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			handleInput(conn, scanner.Text())
		}
	}()

	select {
	case <-done:
		log.Println("Disconnected from server.")
	case <-interrupt:
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}

func readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var pretty map[string]any
		if json.Unmarshal(data, &pretty) == nil {
			out, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Printf("<< %s\n", out)
		} else {
			fmt.Printf("<< %s\n", data)
		}
	}
}

func send(conn *websocket.Conn, frame map[string]any) {
	data, _ := json.Marshal(frame)
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("Write: %v", err)
	}
}

func handleInput(conn *websocket.Conn, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch strings.ToLower(fields[0]) {
	case "create":
		if len(fields) < 2 {
			fmt.Println("usage: create <playerName>")
			return
		}
		send(conn, map[string]any{"type": "CREATE_ROOM", "playerName": strings.Join(fields[1:], " ")})

	case "join":
		if len(fields) < 3 {
			fmt.Println("usage: join <roomId> <playerName>")
			return
		}
		send(conn, map[string]any{"type": "JOIN_ROOM", "roomId": fields[1], "playerName": strings.Join(fields[2:], " ")})

	case "leave":
		send(conn, map[string]any{"type": "LEAVE_ROOM"})

	case "start":
		send(conn, map[string]any{"type": "START_GAME"})

	case "roll":
		send(conn, map[string]any{"type": "ROLL_DICE"})

	case "move":
		if len(fields) < 2 {
			fmt.Println("usage: move <tokenId>")
			return
		}
		tokenID, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Println("tokenId must be a number")
			return
		}
		send(conn, map[string]any{"type": "MOVE_PIECE", "tokenId": tokenID})

	case "chat":
		if len(fields) < 2 {
			fmt.Println("usage: chat <text>")
			return
		}
		send(conn, map[string]any{"type": "CHAT", "text": strings.Join(fields[1:], " ")})

	case "help":
		fmt.Println("commands: create <name> | join <code> <name> | leave | start | roll | move <tokenId> | chat <text> | quit")

	case "quit", "exit":
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		os.Exit(0)

	default:
		fmt.Println("unknown command, try: help")
	}
}
