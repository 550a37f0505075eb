// Interactive test client for the dodge relay server.
//
// Commands:
//
//	create <name> [color]
//	join <code> <name> [color]
//	ready | unready
//	start
//	move <x> <y>
//	lobby <x> <y>
//	die <x> <y>
//	revive <player_id>
//	finish
package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type message struct {
	Type       string  `json:"type"`
	PlayerName string  `json:"player_name,omitempty"`
	Color      string  `json:"color,omitempty"`
	RoomCode   string  `json:"room_code,omitempty"`
	Ready      bool    `json:"ready,omitempty"`
	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	TargetID   string  `json:"target_id,omitempty"`
}

func send(c *websocket.Conn, m message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parse(line string) (message, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return message{}, false
	}

	switch fields[0] {
	case "create":
		if len(fields) < 2 {
			return message{}, false
		}
		m := message{Type: "create_room", PlayerName: fields[1]}
		if len(fields) > 2 {
			m.Color = fields[2]
		}
		return m, true
	case "join":
		if len(fields) < 3 {
			return message{}, false
		}
		m := message{Type: "join_room", RoomCode: fields[1], PlayerName: fields[2]}
		if len(fields) > 3 {
			m.Color = fields[3]
		}
		return m, true
	case "ready":
		return message{Type: "player_ready", Ready: true}, true
	case "unready":
		return message{Type: "player_ready", Ready: false}, true
	case "start":
		return message{Type: "start_game"}, true
	case "move":
		if len(fields) < 3 {
			return message{}, false
		}
		return message{Type: "player_position", X: atof(fields[1]), Y: atof(fields[2])}, true
	case "lobby":
		if len(fields) < 3 {
			return message{}, false
		}
		return message{Type: "lobby_position", X: atof(fields[1]), Y: atof(fields[2])}, true
	case "die":
		if len(fields) < 3 {
			return message{}, false
		}
		return message{Type: "player_died", X: atof(fields[1]), Y: atof(fields[2])}, true
	case "revive":
		if len(fields) < 2 {
			return message{}, false
		}
		return message{Type: "revive_player", TargetID: fields[1]}, true
	case "finish":
		return message{Type: "player_finished"}, true
	}
	return message{}, false
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	addr := "localhost:8080"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- RECV: %s", string(data))
		}
	}()

	go func() {
		<-interrupt
		log.Println("Interrupt received, closing connection.")
		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("Write close error:", err)
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		os.Exit(0)
	}()

	log.Println("Client started. Try: create alice | join ABCD bob | ready | start")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		m, ok := parse(strings.TrimSpace(line))
		if !ok {
			log.Println("Unrecognized command.")
			continue
		}
		if err := send(c, m); err != nil {
			log.Println("Write error:", err)
			return
		}
		log.Printf("-> SENT: %s", m.Type)
	}
}
