// Terminal device client for exercising the server by hand.
//
// Commands:
//
//	setup Ana,Beto,Bot1*   start a game (names with * are bots)
//	seen 0                 player at roster index 0 saw their card
//	say Ana rojo           Ana describes "rojo"
//	skip Ana               Ana passes
//	vote                   open voting
//	cast Ana Beto          Ana votes for Beto
//	reset                  new game, same roster
//	mute on | mute off     toggle narration
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeSetup         = 101
	MsgTypeRevealSeen    = 201
	MsgTypeDescribe      = 202
	MsgTypeSkipTurn      = 203
	MsgTypeStartVote     = 204
	MsgTypeCastVote      = 205
	MsgTypeReset         = 206
	MsgTypeMute          = 207
	MsgTypeNarration     = 303
	MsgTypeNarrationDone = 304
)

// send frames and sends a message to the server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	impostors := flag.Int("impostors", 1, "impostor count for setup")
	difficulty := flag.String("difficulty", "normal", "word difficulty")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop; narrations are acked immediately so the server's turn
	// loop keeps moving.
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))

			if msgID == MsgTypeNarration {
				var narration struct {
					ID   string `json:"id"`
					Text string `json:"text"`
				}
				if err := json.Unmarshal(data, &narration); err == nil {
					log.Printf("** %s", narration.Text)
					ack, _ := json.Marshal(map[string]string{"id": narration.ID})
					send(c, MsgTypeNarrationDone, ack)
				}
			}
		}
	}()

	log.Println("Client started. Type 'setup Ana,Beto,Bot1*' to begin.")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		default:
		}

		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(strings.TrimSpace(text))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "setup":
			if len(fields) < 2 {
				log.Println("usage: setup Ana,Beto,Bot1*")
				continue
			}
			type player struct {
				Name  string `json:"name"`
				IsBot bool   `json:"isBot"`
			}
			var players []player
			for _, name := range strings.Split(fields[1], ",") {
				isBot := strings.HasSuffix(name, "*")
				players = append(players, player{
					Name:  strings.TrimSuffix(name, "*"),
					IsBot: isBot,
				})
			}
			payload, _ := json.Marshal(map[string]interface{}{
				"players":       players,
				"impostorCount": *impostors,
				"difficulty":    *difficulty,
			})
			sendOrLog(c, MsgTypeSetup, payload)
		case "seen":
			if len(fields) < 2 {
				log.Println("usage: seen <index>")
				continue
			}
			index, err := strconv.Atoi(fields[1])
			if err != nil {
				log.Println("usage: seen <index>")
				continue
			}
			payload, _ := json.Marshal(map[string]int{"index": index})
			sendOrLog(c, MsgTypeRevealSeen, payload)
		case "say":
			if len(fields) < 3 {
				log.Println("usage: say <name> <text>")
				continue
			}
			payload, _ := json.Marshal(map[string]string{
				"playerName": fields[1],
				"text":       strings.Join(fields[2:], " "),
			})
			sendOrLog(c, MsgTypeDescribe, payload)
		case "skip":
			if len(fields) < 2 {
				log.Println("usage: skip <name>")
				continue
			}
			payload, _ := json.Marshal(map[string]string{"playerName": fields[1]})
			sendOrLog(c, MsgTypeSkipTurn, payload)
		case "vote":
			sendOrLog(c, MsgTypeStartVote, []byte("{}"))
		case "cast":
			if len(fields) < 3 {
				log.Println("usage: cast <voter> <target>")
				continue
			}
			payload, _ := json.Marshal(map[string]string{
				"voterName":    fields[1],
				"votedForName": fields[2],
			})
			sendOrLog(c, MsgTypeCastVote, payload)
		case "reset":
			sendOrLog(c, MsgTypeReset, []byte("{}"))
		case "mute":
			muted := len(fields) > 1 && fields[1] == "on"
			payload, _ := json.Marshal(map[string]bool{"muted": muted})
			sendOrLog(c, MsgTypeMute, payload)
		case "quit", "exit":
			c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		default:
			log.Printf("Unknown command %q", fields[0])
		}
	}
}

func sendOrLog(c *websocket.Conn, msgID uint16, data []byte) {
	if err := send(c, msgID, data); err != nil {
		log.Println("Write error:", err)
	}
}
