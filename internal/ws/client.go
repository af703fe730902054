package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
	sendQueueSize  = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is consumed cross-origin by the browser frontend.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection and its subscription state.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// clientMessage is what subscribers send: join or leave a session's group.
type clientMessage struct {
	Action     string `json:"action"`
	DownloadID string `json:"downloadId"`
}

// Serve upgrades the request and runs the connection's pumps.
func Serve(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Websocket upgrade failed: %v", err)
			return
		}

		client := &Client{
			id:   uuid.NewString(),
			hub:  hub,
			conn: conn,
			send: make(chan []byte, sendQueueSize),
		}

		if !hub.addClient(client) {
			conn.Close()
			return
		}
		log.Printf("Client connected: %s", client.id)

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.conn.Close()
		log.Printf("Client disconnected: %s", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.DownloadID == "" {
			continue
		}

		switch msg.Action {
		case "subscribe":
			c.hub.subscribe(c, msg.DownloadID)
		case "unsubscribe":
			c.hub.unsubscribe(c, msg.DownloadID)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
