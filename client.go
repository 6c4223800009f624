package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pingPeriod        = 30 * time.Second // liveness probe interval
	pongWait          = 2 * pingPeriod   // two missed pongs = dead connection
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   string
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection. A failed read,
// a missed pong or a rate-limit breach all take the same removal path
// as an explicit close.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks a binary frame (see SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes with a 0xFF marker byte so WritePump can distinguish from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// handleMessage decodes one inbound message and dispatches it. Malformed
// or unknown messages are logged and ignored; a panic in a handler is
// contained here so one match's bug cannot take down the process.
func (c *Client) handleMessage(raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic handling message from %s: %v", c.remoteAddr, r)
		}
	}()

	var msg InMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch msg.Type {
	case MsgJoin:
		c.handleJoin(msg)
	case MsgReconnect:
		c.handleReconnect(msg)
	case MsgMove:
		if c.playerID != "" {
			c.hub.lobby.HandleMove(c.playerID, msg.Direction)
		}
	case MsgPlaceBomb:
		if c.playerID != "" {
			c.hub.lobby.HandlePlaceBomb(c.playerID)
		}
	case MsgChat:
		if c.playerID != "" {
			c.hub.lobby.Chat(c.playerID, msg.Message)
		}
	default:
		log.Printf("unknown message type %q from %s", msg.Type, c.remoteAddr)
	}
}

func (c *Client) handleJoin(msg InMessage) {
	if c.playerID != "" {
		c.SendJSON(ErrorMsg{Type: MsgError, Message: "already joined"})
		return
	}
	p, err := c.hub.lobby.AddPlayer(c, msg.Nickname)
	if err != nil {
		c.SendJSON(ErrorMsg{Type: MsgError, Message: err.Error()})
		return
	}
	c.playerID = p.ID
}

func (c *Client) handleReconnect(msg InMessage) {
	if c.playerID != "" {
		c.SendJSON(ErrorMsg{Type: MsgError, Message: "already joined"})
		return
	}
	p, err := c.hub.lobby.Reconnect(c, msg.PlayerID, msg.Nickname, msg.Token)
	if err != nil {
		c.SendJSON(ErrorMsg{Type: MsgError, Message: err.Error()})
		return
	}
	c.playerID = p.ID
}
