package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/wellsgz/udprtt/internal/logging"
	"github.com/wellsgz/udprtt/internal/monitor"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Status is pushed at least this often even without probe updates
	refreshPeriod = time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type string      `json:"type"` // "status"
	Data interface{} `json:"data"`
}

// Client represents a WebSocket client streaming run status
type Client struct {
	hub  *monitor.Hub
	conn *websocket.Conn
	sub  <-chan monitor.Status
	done <-chan struct{}
}

// readPump drains the connection so control frames are processed
func (c *Client) readPump(closed chan<- struct{}) {
	defer close(closed)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Debug("WebSocket", "read error", "error", err)
			}
			return
		}
	}
}

// writePump pushes status updates to the WebSocket connection
func (c *Client) writePump(closed <-chan struct{}) {
	ping := time.NewTicker(pingPeriod)
	refresh := time.NewTicker(refreshPeriod)
	defer func() {
		ping.Stop()
		refresh.Stop()
		c.hub.Unsubscribe(c.sub)
		c.conn.Close()
	}()

	// initial snapshot
	if err := c.send(c.hub.Latest()); err != nil {
		return
	}

	for {
		select {
		case status, ok := <-c.sub:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.send(status); err != nil {
				return
			}

		case <-refresh.C:
			if err := c.send(c.hub.Latest()); err != nil {
				return
			}

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-closed:
			return

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}

func (c *Client) send(status monitor.Status) error {
	data, err := json.Marshal(ServerMessage{Type: "status", Data: status})
	if err != nil {
		logging.Error("WebSocket", "marshal error", err)
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// ServeWebSocket streams run status to WebSocket clients
func ServeWebSocket(hub *monitor.Hub, done <-chan struct{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logging.Debug("WebSocket", "upgrade error", "error", err)
			return
		}

		client := &Client{
			hub:  hub,
			conn: conn,
			sub:  hub.Subscribe(),
			done: done,
		}

		closed := make(chan struct{})
		go client.writePump(closed)
		go client.readPump(closed)
	}
}
