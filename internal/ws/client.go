package ws

import (
	"github.com/gorilla/websocket"
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	UserID string
}

func NewClient(userID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan Message, 256),
		UserID: userID,
	}
}

// Register attaches the client to the hub; call before starting the pumps.
func (c *Client) Register() {
	c.hub.attach(c)
}

// ReadPump drains the socket until the peer goes away; consoles send nothing
// meaningful upstream.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) WritePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
	// send channel closed, tell the peer we are done
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
